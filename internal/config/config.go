package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// TurnConfig holds the relay settings consumed by the credential issuer and
// the connectivity responder. Realm/Username/Password are reserved for the
// long-term credential scheme and unused so far.
type TurnConfig struct {
	PublicIP     string `mapstructure:"public_ip"`
	Port         int    `mapstructure:"port"`
	Realm        string `mapstructure:"realm"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	SharedSecret string `mapstructure:"shared_secret"`
}

type Config struct {
	Mode       string     `mapstructure:"mode"`
	Bind       string     `mapstructure:"bind"`
	Port       int        `mapstructure:"port"`
	StaticPath string     `mapstructure:"static_path"`
	Secret     string     `mapstructure:"secret"`
	Turn       TurnConfig `mapstructure:"turn"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("bind", "0.0.0.0")
	v.SetDefault("port", 8086)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "dev-cookie-secret")
	v.SetDefault("turn.public_ip", "")
	v.SetDefault("turn.port", 19302)
	v.SetDefault("turn.realm", "signal")
	v.SetDefault("turn.username", "user")
	v.SetDefault("turn.password", "password")
	// Development fallback only; production deployments must override.
	v.SetDefault("turn.shared_secret", "signal-turn-shared-key")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Turn port: %d\n", cfg.Mode, cfg.Port, cfg.Turn.Port)
	return &cfg, nil
}
