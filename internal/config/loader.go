package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key looked up in the environment.
const EnvPrefix = "INTILLA"

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Load reads configuration in increasing priority:
//  1. Default values
//  2. The YAML file at path (optional; "" searches ./config.yaml)
//  3. INTILLA_* environment variables (plus OPENAI_API_KEY and friends)
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range extraEnv {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: bind env for %s: %v", ErrConfiguration, key, err)
		}
	}

	if err := readFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// readFile loads the YAML file if one is available. An explicit path must
// exist; the implicit ./config.yaml may be absent.
func readFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}
