package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/devlabsgt/backend/internal/platform/envutil"
	"github.com/devlabsgt/backend/internal/platform/logger"
)

type Config struct {
	Mode string `yaml:"mode"`
	Port string `yaml:"port"`

	JWTSecretKey    string        `yaml:"jwt_secret_key"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	RecoveryCodeTTL time.Duration `yaml:"recovery_code_ttl"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	MetricsEnabled bool   `yaml:"metrics_enabled"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`
}

// LoadConfig reads .env, then the environment, then an optional YAML
// file named by CONFIG_FILE. File values win over environment values.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}

	cfg := Config{
		Mode:            envutil.Get("LOG_MODE", "development"),
		Port:            envutil.Get("PORT", "8080"),
		JWTSecretKey:    envutil.Get("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  time.Duration(envutil.GetInt("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL: time.Duration(envutil.GetInt("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		RecoveryCodeTTL: envutil.GetDuration("RECOVERY_CODE_TTL", 15*time.Minute),
		RedisAddr:       envutil.Get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   envutil.Get("REDIS_PASSWORD", ""),
		RedisDB:         envutil.GetInt("REDIS_DB", 0),
		MetricsEnabled:  envutil.GetBool("METRICS_ENABLED", true),
		ServiceVersion:  envutil.Get("SERVICE_VERSION", "dev"),
		Environment:     envutil.Get("ENVIRONMENT", "development"),
	}

	if path := envutil.Get("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("configuration file applied", "path", path)
	}

	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set, using insecure default")
	}
	return cfg, nil
}
