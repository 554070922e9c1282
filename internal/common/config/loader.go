// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from configs/config.yaml, overlays an
// environment-specific file when APP_ENVIRONMENT is set, then applies
// environment variable overrides.
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if env := os.Getenv("APP_ENVIRONMENT"); env != "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("merging %s config: %w", env, err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv walks up from the working directory looking for a .env file.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "founder-intake")
	v.SetDefault("app.environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout_sec", 15)
	v.SetDefault("http.write_timeout_sec", 30)

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.dbname", "founder_intake")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("database.elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("database.elasticsearch.index", "intake-submissions")

	v.SetDefault("apis.openai.base_url", "https://api.openai.com")
	v.SetDefault("apis.openai.model", "gpt-4o-mini")
	v.SetDefault("apis.openai.timeout_sec", 60)
	v.SetDefault("apis.openai.temperature", 0.7)

	v.SetDefault("integrations.aws.region", "us-east-1")
	v.SetDefault("integrations.aws.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvOverrides maps well-known environment variables onto config keys.
func bindEnvOverrides(v *viper.Viper) {
	bindings := map[string]string{
		"apis.openai.api_key":          "OPENAI_API_KEY",
		"database.postgres.password":   "POSTGRES_PASSWORD",
		"database.redis.password":      "REDIS_PASSWORD",
		"dashboard.password":           "DASHBOARD_PASSWORD",
		"integrations.aws.admin_email": "ADMIN_EMAIL",
	}
	for key, env := range bindings {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", cfg.HTTP.Port)
	}
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if cfg.Database.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if cfg.APIs.OpenAI.BaseURL == "" {
		return fmt.Errorf("openai base_url is required")
	}
	if cfg.App.Environment == "production" && cfg.Dashboard.Password == "" {
		return fmt.Errorf("dashboard password is required in production")
	}
	return nil
}

// DSN renders the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}
