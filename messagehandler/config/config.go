package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsFile string
}

// Config defines the *single*, authoritative bootstrap configuration.
type Config struct {
	ProjectID      string
	InstanceID     string
	TopicID        string
	SubscriptionID string

	RegistrationEndpoint string
	DefaultTopics        []string

	ShowForegroundMessages bool
	DisplayDuration        time.Duration
	AssetPath              string

	Redis    RedisConfig
	Firebase FirebaseConfig
}

// UpdateConfigWithEnvOverrides applies environment variables and final validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	if val := os.Getenv("PROJECT_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "PROJECT_ID", "source", "env")
		cfg.ProjectID = val
	}
	if val := os.Getenv("INSTANCE_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "INSTANCE_ID", "source", "env")
		cfg.InstanceID = val
	}
	if val := os.Getenv("TOPIC_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "TOPIC_ID", "source", "env")
		cfg.TopicID = val
	}
	if val := os.Getenv("SUBSCRIPTION_ID"); val != "" {
		logger.Debug("Overriding config value", "key", "SUBSCRIPTION_ID", "source", "env")
		cfg.SubscriptionID = val
	}
	if val := os.Getenv("REGISTRATION_ENDPOINT"); val != "" {
		logger.Debug("Overriding config value", "key", "REGISTRATION_ENDPOINT", "source", "env")
		cfg.RegistrationEndpoint = val
	}

	if topics := os.Getenv("DEFAULT_TOPICS"); topics != "" {
		logger.Debug("Overriding config value", "key", "DEFAULT_TOPICS", "source", "env")
		rawTopics := strings.Split(topics, ",")
		var cleanTopics []string
		for _, t := range rawTopics {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				cleanTopics = append(cleanTopics, trimmed)
			}
		}
		cfg.DefaultTopics = cleanTopics
	}

	if val := os.Getenv("SHOW_FOREGROUND_MESSAGES"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.ShowForegroundMessages = enabled
	}
	if val := os.Getenv("DISPLAY_DURATION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			logger.Debug("Overriding config value", "key", "DISPLAY_DURATION", "source", "env")
			cfg.DisplayDuration = d
		}
	}
	if val := os.Getenv("ASSET_PATH"); val != "" {
		cfg.AssetPath = val
	}

	// Redis Overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// Firebase Overrides
	if val := os.Getenv("FIREBASE_CREDENTIALS_FILE"); val != "" {
		logger.Debug("Overriding config value", "key", "FIREBASE_CREDENTIALS_FILE", "source", "env")
		cfg.Firebase.CredentialsFile = val
	}

	// Final Validation
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project_id is required (set via YAML or PROJECT_ID env var)")
	}
	if cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription_id is required (set via YAML or SUBSCRIPTION_ID env var)")
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = "default"
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
