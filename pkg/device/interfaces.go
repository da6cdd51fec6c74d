// Package device contains the contracts between the message handler and the
// platform it runs against: the push transport, the permission surface and
// the token lifecycle. Implementations live under internal/ or are supplied
// by the embedding application's device bridge.
package device

import (
	"context"

	"github.com/GGFlutterdev/firebase-message-handler/pkg/routing"
)

// PermissionRequester prompts the user for notification permission.
type PermissionRequester interface {
	// RequestPermission shows the platform prompt and reports whether the
	// user granted it.
	RequestPermission(ctx context.Context) (bool, error)
}

// TokenSource provides the device-registration token for the current
// installation.
type TokenSource interface {
	// Token returns the current FCM token.
	Token(ctx context.Context) (string, error)
	// DeleteToken invalidates the current token.
	DeleteToken(ctx context.Context) error
}

// TopicManager subscribes and unsubscribes a device token to broadcast
// topics.
type TopicManager interface {
	Subscribe(ctx context.Context, token, topic string) error
	Unsubscribe(ctx context.Context, token, topic string) error
}

// Listener receives inbound messages from a MessageSource. The three entry
// points are independent; the source imposes no ordering between them.
type Listener interface {
	// OnMessage is invoked for messages arriving while the application is
	// in the foreground.
	OnMessage(ctx context.Context, p routing.Payload)
	// OnMessageOpened is invoked when the user opens a message that
	// arrived while the application was in the background.
	OnMessageOpened(ctx context.Context, p routing.Payload)
	// OnInitialMessage is invoked at most once, for the message that
	// launched the application, if any.
	OnInitialMessage(ctx context.Context, p routing.Payload)
}

// MessageSource delivers inbound push messages to a Listener.
type MessageSource interface {
	// Listen blocks, delivering messages until ctx is cancelled or the
	// underlying transport fails.
	Listen(ctx context.Context, l Listener) error
}
