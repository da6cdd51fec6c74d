// Package messagehandler centralizes push-notification session setup:
// permission prompting, token registration with the backend, default topic
// subscription and routing of inbound messages to navigation paths.
package messagehandler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/GGFlutterdev/firebase-message-handler/internal/registration"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/device"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/routing"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/state"
)

// ErrNotInitialized is returned when session operations run before the
// handler was constructed with a configuration.
var ErrNotInitialized = errors.New("messagehandler: not initialized")

// Navigator is the sink route resolutions are delivered to. It stands in
// for the UI navigation stack of the embedding application.
type Navigator interface {
	NavigateTo(ctx context.Context, path string) error
}

// Registrar announces a token to the backend, reporting success as a bool.
// *registration.Registrar satisfies it; tests supply their own.
type Registrar interface {
	Register(ctx context.Context, token string) bool
}

// Dependencies are the collaborators a Handler drives. Store, Permissions
// and Tokens are required; Topics is required when DefaultTopics or the
// topic pass-throughs are used; Source and Registrar are optional.
type Dependencies struct {
	Store       state.Store
	Permissions device.PermissionRequester
	Tokens      device.TokenSource
	Topics      device.TopicManager
	Source      device.MessageSource

	// Registrar overrides the built-in registration call-through.
	Registrar Registrar
}

// Handler sequences a push-notification session. It replaces the usual
// process-wide singleton with an explicit object; construct one per
// process and drive it from the application's event loop.
type Handler struct {
	cfg    *Config
	deps   Dependencies
	routes *routing.Registry

	navigator Navigator
	logger    *slog.Logger

	listening    bool
	listenCancel context.CancelFunc
}

// New validates the configuration and assembles a Handler.
func New(cfg *Config, deps Dependencies, logger *slog.Logger) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNotInitialized
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil {
		return nil, errors.New("messagehandler: a state store is required")
	}
	if deps.Permissions == nil || deps.Tokens == nil {
		return nil, errors.New("messagehandler: permission and token collaborators are required")
	}

	if deps.Registrar == nil {
		deps.Registrar = registration.NewRegistrar(
			cfg.RegistrationEndpoint, cfg.AuthTokenProvider, cfg.Transport, logger)
	}

	return &Handler{
		cfg:    cfg,
		deps:   deps,
		routes: routing.NewRegistry(),
		logger: logger.With("component", "MessageHandler"),
	}, nil
}

// SetNavigator installs the navigation sink used for opened messages.
func (h *Handler) SetNavigator(n Navigator) {
	if h.cfg == nil {
		return
	}
	h.navigator = n
}

// RegisterRoute maps a message type to a path builder. The last
// registration for a type wins.
func (h *Handler) RegisterRoute(messageType string, builder routing.PathBuilder) {
	if h.cfg == nil {
		return
	}
	h.routes.Register(messageType, builder)
}

// RegisterRoutes maps several message types at once.
func (h *Handler) RegisterRoutes(builders map[string]routing.PathBuilder) {
	if h.cfg == nil {
		return
	}
	h.routes.RegisterAll(builders)
}

// InitSession runs the session sequence: permission prompt (once per
// installation), token fetch, registration when the token or user changed,
// default topic subscription, listener attachment (once per handler).
//
// Individual step failures are logged and absorbed; the only error a caller
// sees is ErrNotInitialized.
//
// The background listener inherits ctx, so pass a context that outlives the
// session rather than a request-scoped one; cancelling it stops the listener.
func (h *Handler) InitSession(ctx context.Context) error {
	if h.cfg == nil {
		return ErrNotInitialized
	}
	log := h.logger.With("op", "InitSession")

	h.ensurePermission(ctx, log)

	token, err := h.deps.Tokens.Token(ctx)
	if err != nil {
		log.Error("Failed to fetch FCM token", "err", err)
		return nil
	}
	if token == "" {
		log.Warn("Token source returned an empty token, skipping session setup")
		return nil
	}

	h.registerIfChanged(ctx, token, log)
	h.subscribeDefaults(ctx, token, log)
	h.attachListeners(ctx, log)
	return nil
}

// SubscribeTopic subscribes the current token to a topic.
func (h *Handler) SubscribeTopic(ctx context.Context, topic string) bool {
	if h.cfg == nil || h.deps.Topics == nil {
		return false
	}
	token, err := h.deps.Tokens.Token(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch token for topic subscribe", "topic", topic, "err", err)
		return false
	}
	if err := h.deps.Topics.Subscribe(ctx, token, topic); err != nil {
		h.logger.Warn("Topic subscribe failed", "topic", topic, "err", err)
		return false
	}
	return true
}

// UnsubscribeTopic removes the current token from a topic.
func (h *Handler) UnsubscribeTopic(ctx context.Context, topic string) bool {
	if h.cfg == nil || h.deps.Topics == nil {
		return false
	}
	token, err := h.deps.Tokens.Token(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch token for topic unsubscribe", "topic", topic, "err", err)
		return false
	}
	if err := h.deps.Topics.Unsubscribe(ctx, token, topic); err != nil {
		h.logger.Warn("Topic unsubscribe failed", "topic", topic, "err", err)
		return false
	}
	return true
}

// Token returns the current FCM token, or ok=false when the fetch failed.
func (h *Handler) Token(ctx context.Context) (string, bool) {
	if h.cfg == nil {
		return "", false
	}
	token, err := h.deps.Tokens.Token(ctx)
	if err != nil {
		h.logger.Error("Failed to fetch FCM token", "err", err)
		return "", false
	}
	return token, true
}

// DeleteToken invalidates the current FCM token.
func (h *Handler) DeleteToken(ctx context.Context) bool {
	if h.cfg == nil {
		return false
	}
	if err := h.deps.Tokens.DeleteToken(ctx); err != nil {
		h.logger.Error("Failed to delete FCM token", "err", err)
		return false
	}
	return true
}

// Reset clears the persisted scalars, the route registry and the listener
// attachment so the next InitSession behaves like a first run.
func (h *Handler) Reset(ctx context.Context) bool {
	if h.cfg == nil {
		return false
	}
	h.routes.Clear()
	if h.listenCancel != nil {
		h.listenCancel()
		h.listenCancel = nil
	}
	h.listening = false

	if err := h.deps.Store.Reset(ctx); err != nil {
		h.logger.Error("Failed to reset persisted state", "err", err)
		return false
	}
	h.logger.Info("Handler state reset")
	return true
}

// --- Session steps ---

func (h *Handler) ensurePermission(ctx context.Context, log *slog.Logger) {
	requested, err := h.deps.Store.PermissionRequested(ctx)
	if err != nil {
		log.Warn("Failed to read permission flag, prompting anyway", "err", err)
	}
	if requested {
		log.Debug("Permission already requested, skipping prompt")
		return
	}

	granted, err := h.deps.Permissions.RequestPermission(ctx)
	if err != nil {
		log.Error("Permission request failed", "err", err)
	} else if !granted {
		log.Info("Notification permission denied by user")
	}

	// The flag records that we prompted, not the outcome: once set we
	// never prompt again until Reset.
	if err := h.deps.Store.SetPermissionRequested(ctx, true); err != nil {
		log.Warn("Failed to persist permission flag", "err", err)
	}
}

func (h *Handler) registerIfChanged(ctx context.Context, token string, log *slog.Logger) {
	userID, err := h.cfg.UserIDProvider(ctx)
	if err != nil {
		log.Error("Failed to resolve current user id", "err", err)
		return
	}

	lastToken, err := h.deps.Store.LastToken(ctx)
	if err != nil {
		log.Warn("Failed to read cached token", "err", err)
	}
	lastUser, err := h.deps.Store.LastUserID(ctx)
	if err != nil {
		log.Warn("Failed to read cached user id", "err", err)
	}

	if token == lastToken && userID == lastUser {
		log.Debug("Token and user unchanged, skipping registration")
		return
	}

	if !h.deps.Registrar.Register(ctx, token) {
		// Leave the cache untouched so the next pass retries.
		return
	}

	if err := h.deps.Store.SetLastToken(ctx, token); err != nil {
		log.Warn("Failed to cache token", "err", err)
	}
	if err := h.deps.Store.SetLastUserID(ctx, userID); err != nil {
		log.Warn("Failed to cache user id", "err", err)
	}
}

// subscribeDefaults subscribes each default topic, deduplicated within this
// pass only. Repeated InitSession calls subscribe again; FCM treats the
// call as an upsert so the repeat is harmless.
func (h *Handler) subscribeDefaults(ctx context.Context, token string, log *slog.Logger) {
	if len(h.cfg.DefaultTopics) == 0 {
		return
	}
	if h.deps.Topics == nil {
		log.Warn("Default topics configured but no topic manager supplied")
		return
	}

	seen := make(map[string]struct{}, len(h.cfg.DefaultTopics))
	for _, topic := range h.cfg.DefaultTopics {
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}

		if err := h.deps.Topics.Subscribe(ctx, token, topic); err != nil {
			log.Warn("Default topic subscribe failed", "topic", topic, "err", err)
			continue
		}
		log.Debug("Subscribed to default topic", "topic", topic)
	}
}

func (h *Handler) attachListeners(ctx context.Context, log *slog.Logger) {
	if h.listening || h.deps.Source == nil {
		return
	}
	h.listening = true

	listenCtx, cancel := context.WithCancel(ctx)
	h.listenCancel = cancel

	go func() {
		if err := h.deps.Source.Listen(listenCtx, h); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Message source stopped", "err", err)
		}
	}()
	log.Debug("Message listeners attached")
}

// --- device.Listener ---

var _ device.Listener = (*Handler)(nil)

// OnMessage handles a message that arrived in the foreground.
func (h *Handler) OnMessage(ctx context.Context, p routing.Payload) {
	if h.cfg == nil {
		return
	}
	if !h.cfg.ShowForegroundMessages {
		return
	}
	if h.cfg.Display == nil {
		h.logger.Info("Foreground message", "type", p.Type, "title", p.Title)
		return
	}
	h.cfg.Display(p, DisplayOptions{
		Duration:  h.cfg.displayDuration(),
		AssetPath: h.cfg.AssetPath,
	})
}

// OnMessageOpened handles a message the user opened from the background.
func (h *Handler) OnMessageOpened(ctx context.Context, p routing.Payload) {
	h.navigate(ctx, p)
}

// OnInitialMessage handles the message that launched the application.
func (h *Handler) OnInitialMessage(ctx context.Context, p routing.Payload) {
	h.navigate(ctx, p)
}

// navigate resolves a payload to a navigation action. A configured custom
// callback takes the message whole; otherwise the route registry decides.
// Unknown types are a silent no-op.
func (h *Handler) navigate(ctx context.Context, p routing.Payload) {
	if h.cfg == nil {
		return
	}
	if h.cfg.OnNavigate != nil {
		if err := h.cfg.OnNavigate(p); err != nil {
			h.logger.Error("Custom navigation handler failed", "type", p.Type, "err", err)
		}
		return
	}

	path, ok := h.routes.Resolve(p)
	if !ok {
		h.logger.Debug("No route registered for message", "type", p.Type)
		return
	}
	if h.navigator == nil {
		h.logger.Warn("Route resolved but no navigator installed", "path", path)
		return
	}
	if err := h.navigator.NavigateTo(ctx, path); err != nil {
		h.logger.Error("Navigation failed", "path", path, "err", err)
	}
}
