package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. VISOR_MQTT_BROKER.
const EnvPrefix = "VISOR_"

// applyEnv overlays VISOR_* environment variables onto cfg. Only fields
// tagged with env are overridable, and unset variables leave the file value
// in place.
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}
