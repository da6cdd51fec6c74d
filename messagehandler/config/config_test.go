package config_test

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGFlutterdev/firebase-message-handler/messagehandler/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ProjectID:            "base-project",
			InstanceID:           "base-instance",
			SubscriptionID:       "base-sub",
			RegistrationEndpoint: "https://base.example.com/devices",
			DefaultTopics:        []string{"news"},
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		cfg := baseConfig()

		t.Setenv("PROJECT_ID", "env-project")
		t.Setenv("SUBSCRIPTION_ID", "env-sub")
		t.Setenv("REGISTRATION_ENDPOINT", "https://env.example.com/devices")
		t.Setenv("DEFAULT_TOPICS", "alerts, offers ,")
		t.Setenv("DISPLAY_DURATION", "6s")
		t.Setenv("REDIS_ADDR", "redis:6379")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "env-project", finalCfg.ProjectID)
		assert.Equal(t, "env-sub", finalCfg.SubscriptionID)
		assert.Equal(t, "https://env.example.com/devices", finalCfg.RegistrationEndpoint)
		assert.Equal(t, []string{"alerts", "offers"}, finalCfg.DefaultTopics)
		assert.Equal(t, 6*time.Second, finalCfg.DisplayDuration)
		assert.Equal(t, "redis:6379", finalCfg.Redis.Addr)
		assert.True(t, finalCfg.Redis.Enabled)
	})

	t.Run("Success - Defaults preserved", func(t *testing.T) {
		cfg := baseConfig()
		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "base-project", finalCfg.ProjectID)
		assert.Equal(t, []string{"news"}, finalCfg.DefaultTopics)
		assert.Equal(t, "https://base.example.com/devices", finalCfg.RegistrationEndpoint)
	})

	t.Run("Empty instance id falls back to default", func(t *testing.T) {
		cfg := baseConfig()
		cfg.InstanceID = ""
		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "default", finalCfg.InstanceID)
	})

	t.Run("Validation Failure - Missing ProjectID", func(t *testing.T) {
		cfg := &config.Config{SubscriptionID: "sub"}
		os.Unsetenv("PROJECT_ID")
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})

	t.Run("Validation Failure - Missing SubscriptionID", func(t *testing.T) {
		cfg := &config.Config{ProjectID: "project"}
		os.Unsetenv("SUBSCRIPTION_ID")
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})
}
