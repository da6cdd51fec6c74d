// Package pubsub delivers inbound push payloads from a Google Pub/Sub
// subscription. It stands in for the device-side message stream when the
// handler runs as a backend companion process.
package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GGFlutterdev/firebase-message-handler/pkg/device"
)

// Config identifies the subscription the source drains.
type Config struct {
	ProjectID      string
	TopicID        string
	SubscriptionID string
}

type Source struct {
	client *pubsub.Client
	cfg    Config
	logger *slog.Logger

	initialOnce sync.Once
}

func NewSource(client *pubsub.Client, cfg Config, logger *slog.Logger) *Source {
	return &Source{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "PubsubSource"),
	}
}

// EnsureSubscription creates the subscription when it does not exist yet.
func (s *Source) EnsureSubscription(ctx context.Context) error {
	subConfig := &pubsubpb.Subscription{
		Name:               fmt.Sprintf("projects/%s/subscriptions/%s", s.cfg.ProjectID, s.cfg.SubscriptionID),
		Topic:              fmt.Sprintf("projects/%s/topics/%s", s.cfg.ProjectID, s.cfg.TopicID),
		AckDeadlineSeconds: 10,
	}

	s.logger.Debug("Ensuring subscription exists", "sub", subConfig.Name, "topic", subConfig.Topic)
	_, err := s.client.SubscriptionAdminClient.CreateSubscription(ctx, subConfig)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			s.logger.Debug("Subscription already exists, skipping creation", "sub", subConfig.Name)
			return nil
		}
		return fmt.Errorf("could not create subscription %s: %w", subConfig.Name, err)
	}
	return nil
}

// Listen drains the subscription until ctx is cancelled, fanning each
// message out to the listener. Malformed messages are acked and dropped;
// there is no point redelivering them.
func (s *Source) Listen(ctx context.Context, l device.Listener) error {
	sub := s.client.Subscriber(s.cfg.SubscriptionID)

	err := sub.Receive(ctx, func(msgCtx context.Context, m *pubsub.Message) {
		// Ack either way: a payload we cannot parse today will not parse
		// tomorrow.
		m.Ack()
		s.dispatch(msgCtx, m.ID, m.Data, m.Attributes, l)
	})
	if err != nil {
		return fmt.Errorf("pubsub receive failed: %w", err)
	}
	return nil
}

// dispatch decodes one raw message and routes it to the listener entry point
// the event attribute selects. The initial message fires at most once per
// source; malformed bodies are logged and dropped.
func (s *Source) dispatch(ctx context.Context, msgID string, data []byte, attrs map[string]string, l device.Listener) {
	payload, event, err := decodePayload(data, attrs)
	if err != nil {
		s.logger.Warn("Dropping malformed message", "msg_id", msgID, "err", err)
		return
	}

	switch event {
	case eventOpened:
		l.OnMessageOpened(ctx, payload)
	case eventInitial:
		s.initialOnce.Do(func() {
			l.OnInitialMessage(ctx, payload)
		})
	default:
		l.OnMessage(ctx, payload)
	}
}
