package main

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub/v2"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/GGFlutterdev/firebase-message-handler/internal/platform/fcm"
	pssource "github.com/GGFlutterdev/firebase-message-handler/internal/source/pubsub"
	fsStore "github.com/GGFlutterdev/firebase-message-handler/internal/storage/firestore"
	redisStore "github.com/GGFlutterdev/firebase-message-handler/internal/storage/redis"

	"github.com/GGFlutterdev/firebase-message-handler/messagehandler"
	"github.com/GGFlutterdev/firebase-message-handler/messagehandler/config"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/routing"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/state"
)

//go:embed local.yaml
var configFile []byte

func main() {
	var logLevel slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug", "DEBUG":
		logLevel = slog.LevelDebug
	case "warn", "WARN":
		logLevel = slog.LevelWarn
	case "error", "ERROR":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "firebase-message-handler")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Config Loading ---
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		logger.Error("Failed to unmarshal embedded yaml config", "err", err)
		os.Exit(1)
	}
	baseCfg, err := config.NewConfigFromYaml(&yamlCfg, logger)
	if err != nil {
		logger.Error("Config mapping failed", "err", err)
		os.Exit(1)
	}
	cfg, err := config.UpdateConfigWithEnvOverrides(baseCfg, logger)
	if err != nil {
		logger.Error("Config failed", "err", err)
		os.Exit(1)
	}

	// --- Firebase (topic management) ---
	var firebaseOpts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		firebaseOpts = append(firebaseOpts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, firebaseOpts...)
	if err != nil {
		logger.Error("Failed to initialize Firebase App", "err", err)
		os.Exit(1)
	}
	fcmMessaging, err := fbApp.Messaging(ctx)
	if err != nil {
		logger.Error("Failed to create FCM messaging client", "err", err)
		os.Exit(1)
	}
	topicManager := fcm.NewTopicManager(fcmMessaging, logger)

	// --- State Store ---
	var stateStore state.Store
	if cfg.Redis.Enabled {
		logger.Info("Initializing Redis state store...", "addr", cfg.Redis.Addr)
		redisClient, err := redisStore.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("Failed to connect to Redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		stateStore = redisStore.NewStateStore(redisClient, cfg.InstanceID)
	} else {
		fsClient, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			logger.Error("Firestore client failed", "err", err)
			os.Exit(1)
		}
		defer fsClient.Close()
		stateStore = fsStore.NewStateStore(fsClient, cfg.InstanceID)
		logger.Info("State store initialized", "type", "firestore")
	}

	// --- Message Source ---
	psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Error("PubSub client failed", "err", err)
		os.Exit(1)
	}
	defer psClient.Close()

	source := pssource.NewSource(psClient, pssource.Config{
		ProjectID:      cfg.ProjectID,
		TopicID:        cfg.TopicID,
		SubscriptionID: cfg.SubscriptionID,
	}, logger)
	if err := source.EnsureSubscription(ctx); err != nil {
		logger.Error("Failed to ensure subscription", "err", err)
		os.Exit(1)
	}

	// --- Handler ---
	handlerCfg := &messagehandler.Config{
		RegistrationEndpoint:   cfg.RegistrationEndpoint,
		DefaultTopics:          cfg.DefaultTopics,
		AuthTokenProvider:      staticEnvProvider("AUTH_TOKEN"),
		UserIDProvider:         staticEnvProvider("USER_ID"),
		ShowForegroundMessages: cfg.ShowForegroundMessages,
		DisplayDuration:        cfg.DisplayDuration,
		AssetPath:              cfg.AssetPath,
	}

	handler, err := messagehandler.New(handlerCfg, messagehandler.Dependencies{
		Store:       stateStore,
		Permissions: grantedPermissions{},
		Tokens:      envTokenSource{logger: logger},
		Topics:      topicManager,
		Source:      source,
	}, logger)
	if err != nil {
		logger.Error("Handler creation failed", "err", err)
		os.Exit(1)
	}

	handler.SetNavigator(logNavigator{logger: logger})
	handler.RegisterRoute("message", func(p routing.Payload) string {
		return "/messages/" + p.ID
	})

	logger.Info("Starting session...")
	if err := handler.InitSession(ctx); err != nil {
		logger.Error("Session init failed", "err", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Shutting down")
}

// staticEnvProvider reads a credential once per call from the environment.
func staticEnvProvider(key string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		val := os.Getenv(key)
		if val == "" {
			return "", errors.New(key + " is not set")
		}
		return val, nil
	}
}

// grantedPermissions stands in for the platform prompt in a headless run.
type grantedPermissions struct{}

func (grantedPermissions) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// envTokenSource treats DEVICE_TOKEN as the installation's FCM token.
type envTokenSource struct {
	logger *slog.Logger
}

func (s envTokenSource) Token(ctx context.Context) (string, error) {
	token := os.Getenv("DEVICE_TOKEN")
	if token == "" {
		return "", errors.New("DEVICE_TOKEN is not set")
	}
	return token, nil
}

func (s envTokenSource) DeleteToken(ctx context.Context) error {
	s.logger.Warn("DeleteToken is a no-op for the env-backed token source")
	return nil
}

// logNavigator records resolved paths instead of driving a UI stack.
type logNavigator struct {
	logger *slog.Logger
}

func (n logNavigator) NavigateTo(ctx context.Context, path string) error {
	n.logger.Info("Navigate", "path", path)
	return nil
}
