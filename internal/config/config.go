package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the CLI configuration, loaded from file and BASKETS_* env vars.
type Config struct {
	BaseURL           string `mapstructure:"base_url"            validate:"required,url"`
	CSRFCookieName    string `mapstructure:"csrf_cookie_name"    validate:"required"`
	CSRFToken         string `mapstructure:"csrf_token"`
	SessionCookieName string `mapstructure:"session_cookie_name" validate:"required"`
	SessionCookie     string `mapstructure:"session_cookie"`
	Timeout           int    `mapstructure:"timeout"             validate:"min=0"`
	LogLevel          string `mapstructure:"log_level"           validate:"required,oneof=debug info warn error"`
}

func Load(cfgFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("BASKETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("baskets")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.baskets")
		v.SetConfigType("yaml")
	}

	// Defaults. Every key needs one for AutomaticEnv to expose it.
	v.SetDefault("base_url", "http://localhost:8000")
	v.SetDefault("csrf_cookie_name", "csrftoken")
	v.SetDefault("csrf_token", "")
	v.SetDefault("session_cookie_name", "sessionid")
	v.SetDefault("session_cookie", "")
	v.SetDefault("timeout", 30)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, env vars and defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
