package config

import (
	"fmt"
	"log/slog"
	"time"
)

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type YamlFirebaseConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID      string `yaml:"project_id"`
	InstanceID     string `yaml:"instance_id"`
	TopicID        string `yaml:"topic_id"`
	SubscriptionID string `yaml:"subscription_id"`

	RegistrationEndpoint string   `yaml:"registration_endpoint"`
	DefaultTopics        []string `yaml:"default_topics"`

	ShowForegroundMessages bool   `yaml:"show_foreground_messages"`
	DisplayDuration        string `yaml:"display_duration"`
	AssetPath              string `yaml:"asset_path"`

	RedisConfig    YamlRedisConfig    `yaml:"redis"`
	FirebaseConfig YamlFirebaseConfig `yaml:"firebase"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ProjectID:              baseCfg.ProjectID,
		InstanceID:             baseCfg.InstanceID,
		TopicID:                baseCfg.TopicID,
		SubscriptionID:         baseCfg.SubscriptionID,
		RegistrationEndpoint:   baseCfg.RegistrationEndpoint,
		DefaultTopics:          baseCfg.DefaultTopics,
		ShowForegroundMessages: baseCfg.ShowForegroundMessages,
		AssetPath:              baseCfg.AssetPath,
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
		},
		Firebase: FirebaseConfig{
			CredentialsFile: baseCfg.FirebaseConfig.CredentialsFile,
		},
	}

	if baseCfg.DisplayDuration != "" {
		d, err := time.ParseDuration(baseCfg.DisplayDuration)
		if err != nil {
			return nil, fmt.Errorf("invalid display_duration %q: %w", baseCfg.DisplayDuration, err)
		}
		cfg.DisplayDuration = d
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"subscription_id", cfg.SubscriptionID,
		"default_topics", len(cfg.DefaultTopics),
	)

	return cfg, nil
}
