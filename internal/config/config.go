// Package config loads runtime configuration for both binaries from the
// environment (or a local .env file), backed by viper so deployments can
// stay file-free in containers.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application. Values are read by
// viper from environment variables or an optional .env file.
type Config struct {
	// faced
	ListenAddr   string  `mapstructure:"FACEAUTH_LISTEN_ADDR"`
	DatabaseDSN  string  `mapstructure:"FACEAUTH_DATABASE_DSN"`
	RedisAddr    string  `mapstructure:"FACEAUTH_REDIS_ADDR"`
	EmbedderAddr string  `mapstructure:"FACEAUTH_EMBEDDER_ADDR"`
	Threshold    float64 `mapstructure:"FACEAUTH_THRESHOLD"`
	JWTSecret    string  `mapstructure:"FACEAUTH_JWT_SECRET"`
	JWTAudience  string  `mapstructure:"FACEAUTH_JWT_AUDIENCE"`

	// facectl
	ServerURL      string        `mapstructure:"FACEAUTH_SERVER_URL"`
	RequestTimeout time.Duration `mapstructure:"FACEAUTH_REQUEST_TIMEOUT"`

	Debug bool `mapstructure:"FACEAUTH_DEBUG"`
}

// Load reads configuration from environment variables or a .env file in the
// working directory. A missing .env file is not an error.
func Load() (Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("FACEAUTH_LISTEN_ADDR", ":8080")
	v.SetDefault("FACEAUTH_DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=faceauth port=5432 sslmode=disable")
	v.SetDefault("FACEAUTH_REDIS_ADDR", "redis:6379")
	v.SetDefault("FACEAUTH_EMBEDDER_ADDR", "embedder:50051")
	v.SetDefault("FACEAUTH_THRESHOLD", 0.55)
	v.SetDefault("FACEAUTH_SERVER_URL", "http://localhost:8080")
	v.SetDefault("FACEAUTH_REQUEST_TIMEOUT", 15*time.Second)

	for _, key := range []string{
		"FACEAUTH_LISTEN_ADDR",
		"FACEAUTH_DATABASE_DSN",
		"FACEAUTH_REDIS_ADDR",
		"FACEAUTH_EMBEDDER_ADDR",
		"FACEAUTH_THRESHOLD",
		"FACEAUTH_JWT_SECRET",
		"FACEAUTH_JWT_AUDIENCE",
		"FACEAUTH_SERVER_URL",
		"FACEAUTH_REQUEST_TIMEOUT",
		"FACEAUTH_DEBUG",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
