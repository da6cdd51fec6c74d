package messagehandler

import (
	"errors"
	"time"

	"github.com/GGFlutterdev/firebase-message-handler/pkg/backend"
	"github.com/GGFlutterdev/firebase-message-handler/pkg/routing"
)

const defaultDisplayDuration = 4 * time.Second

// DisplayOptions accompany a foreground payload into the display callback.
type DisplayOptions struct {
	Duration  time.Duration
	AssetPath string
}

// DisplayFunc renders a foreground message in-app (a banner, an overlay).
type DisplayFunc func(p routing.Payload, opts DisplayOptions)

// NavigateFunc is the custom navigation callback. When configured it
// receives every opened message and the route registry is bypassed.
type NavigateFunc func(p routing.Payload) error

// Config is the immutable configuration a Handler is constructed with. It
// is held for the life of the handler and replaced wholesale by building a
// new one.
type Config struct {
	// RegistrationEndpoint is the backend path tokens are announced to.
	// Empty disables registration.
	RegistrationEndpoint string

	// DefaultTopics are subscribed on every session init.
	DefaultTopics []string

	// AuthTokenProvider and UserIDProvider are required.
	AuthTokenProvider backend.AuthTokenProvider
	UserIDProvider    backend.UserIDProvider

	// Transport overrides the built-in registration HTTP call.
	Transport backend.Transport

	// OnNavigate, when set, takes over routing of opened messages.
	OnNavigate NavigateFunc

	// ShowForegroundMessages enables the display callback for messages
	// arriving while the app is in the foreground.
	ShowForegroundMessages bool

	// Display renders a foreground message. Ignored unless
	// ShowForegroundMessages is set; when nil the message is only logged.
	Display DisplayFunc

	// DisplayDuration is how long a displayed message stays up.
	// Zero means the default of four seconds.
	DisplayDuration time.Duration

	// AssetPath points the display callback at a notification icon or
	// sound asset.
	AssetPath string
}

func (c *Config) validate() error {
	if c.AuthTokenProvider == nil {
		return errors.New("messagehandler: config requires an AuthTokenProvider")
	}
	if c.UserIDProvider == nil {
		return errors.New("messagehandler: config requires a UserIDProvider")
	}
	return nil
}

func (c *Config) displayDuration() time.Duration {
	if c.DisplayDuration > 0 {
		return c.DisplayDuration
	}
	return defaultDisplayDuration
}
