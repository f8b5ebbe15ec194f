package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuirkyMessages returns the configured quirky message rotation: the
// messages_file if set, otherwise the inline list. A nil result means the
// built-in rotation should be used. Blank entries are dropped.
func (c *Config) QuirkyMessages() ([]string, error) {
	if c.Quirky.MessagesFile != "" {
		return LoadMessages(c.Resolve(c.Quirky.MessagesFile))
	}
	return compact(c.Quirky.Messages), nil
}

// LoadMessages reads a YAML sequence of strings, or a mapping with a
// "messages" sequence, from path.
func LoadMessages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read messages %s: %w", path, err)
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		var doc struct {
			Messages []string `yaml:"messages"`
		}
		if docErr := yaml.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("config: parse messages %s: %w", path, err)
		}
		list = doc.Messages
	}

	list = compact(list)
	if len(list) == 0 {
		return nil, fmt.Errorf("config: messages %s contains no messages", path)
	}
	return list, nil
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
