package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the exam API service.
type Config struct {
	AppName      string
	AppEnv       string
	AppPort      string
	DatabaseURL  string
	RedisURL     string
	NATSURL      string
	ChannelBase  string
	JWTSecret    string
	BanThreshold int
	TokenTTL     time.Duration
	SeedEnabled  bool
	SeedToken    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("UJIAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Ujian API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("channel.base", "ujian")
	v.SetDefault("ban.threshold", 1)
	v.SetDefault("token.ttl", "5m")
	v.SetDefault("seed.enabled", false)

	ttlString := v.GetString("token.ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cfg := Config{
		AppName:      v.GetString("app.name"),
		AppEnv:       v.GetString("app.env"),
		AppPort:      v.GetString("app.port"),
		DatabaseURL:  v.GetString("database.url"),
		RedisURL:     v.GetString("redis.url"),
		NATSURL:      v.GetString("nats.url"),
		ChannelBase:  v.GetString("channel.base"),
		JWTSecret:    v.GetString("jwt.secret"),
		BanThreshold: v.GetInt("ban.threshold"),
		TokenTTL:     ttl,
		SeedEnabled:  v.GetBool("seed.enabled"),
		SeedToken:    v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BanThreshold < 1 {
		cfg.BanThreshold = 1
	}

	return cfg, nil
}
