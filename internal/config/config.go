package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	JWTSecret           string
	JWTTokenTTL         time.Duration
	UploadDir           string
	SeedEnabled         bool
	SeedAdminEmail      string
	SeedAdminPassword   string
	SeedStudentEmail    string
	SeedStudentPassword string
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
	v.SetEnvPrefix("SMS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.token_ttl", "24h")
	v.SetDefault("upload.dir", "./web")
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.admin_email", "admin@sms.com")
	v.SetDefault("seed.admin_password", "Admin@123")
	v.SetDefault("seed.student_email", "student@sms.com")
	v.SetDefault("seed.student_password", "Student@123")

	ttlString := v.GetString("jwt.token_ttl")
	if ttlString == "" {
		ttlString = "24h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt token ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTTokenTTL:         ttl,
		UploadDir:           v.GetString("upload.dir"),
		SeedEnabled:         v.GetBool("seed.enabled"),
		SeedAdminEmail:      v.GetString("seed.admin_email"),
		SeedAdminPassword:   v.GetString("seed.admin_password"),
		SeedStudentEmail:    v.GetString("seed.student_email"),
		SeedStudentPassword: v.GetString("seed.student_password"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
