// Package config defines the arena server's environment-driven
// configuration surface (§6 "Configuration").
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envPrefix namespaces every bound environment variable, e.g. ARENA_PORT.
const envPrefix = "ARENA"

// Config is the full set of server-side defaults and knobs a client
// request may override per side.
type Config struct {
	Port string

	DefaultWhiteEndpoint   string
	DefaultWhiteCredential string
	DefaultWhiteModel      string

	DefaultBlackEndpoint   string
	DefaultBlackCredential string
	DefaultBlackModel      string

	MaxRetries     int
	BypassPassword string
	LogPath        string
}

// Load reads Config from the environment, using the ARENA_ prefix and the
// defaults below, in the same declarative-binding style the example
// service code in the retrieval pack uses for viper-backed configuration.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("default_white_endpoint", "")
	v.SetDefault("default_white_credential", "")
	v.SetDefault("default_white_model", "")
	v.SetDefault("default_black_endpoint", "")
	v.SetDefault("default_black_credential", "")
	v.SetDefault("default_black_model", "")
	v.SetDefault("max_retries", 3)
	v.SetDefault("bypass_password", "")
	v.SetDefault("log_path", "llm_exchanges.log")

	for _, key := range []string{
		"port",
		"default_white_endpoint", "default_white_credential", "default_white_model",
		"default_black_endpoint", "default_black_credential", "default_black_model",
		"max_retries", "bypass_password", "log_path",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	return Config{
		Port:                   v.GetString("port"),
		DefaultWhiteEndpoint:   v.GetString("default_white_endpoint"),
		DefaultWhiteCredential: v.GetString("default_white_credential"),
		DefaultWhiteModel:      v.GetString("default_white_model"),
		DefaultBlackEndpoint:   v.GetString("default_black_endpoint"),
		DefaultBlackCredential: v.GetString("default_black_credential"),
		DefaultBlackModel:      v.GetString("default_black_model"),
		MaxRetries:             v.GetInt("max_retries"),
		BypassPassword:         v.GetString("bypass_password"),
		LogPath:                v.GetString("log_path"),
	}, nil
}
