package config

import (
	"os"
	"path/filepath"
)

// recognizerScripts are the Python entry points DetectRecognizer looks for,
// in order of preference.
var recognizerScripts = []string{
	"speech_recognizer.py",
	"recognizer.py",
	filepath.Join("recognizer", "main.py"),
}

// DetectRecognizer tries to infer the recognizer command from dir. An
// executable file named "recognizer" wins; otherwise the first Python script
// from a fixed list is run with python3 in unbuffered mode. It reports false
// when nothing suitable exists.
func DetectRecognizer(dir string) (command string, args []string, ok bool) {
	bin := filepath.Join(dir, "recognizer")
	if info, err := os.Stat(bin); err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0 {
		return bin, nil, true
	}

	for _, script := range recognizerScripts {
		path := filepath.Join(dir, script)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return "python3", []string{"-u", path}, true
		}
	}
	return "", nil, false
}
