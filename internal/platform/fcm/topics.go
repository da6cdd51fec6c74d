package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// This interface allows us to mock the client for unit testing.
// *messaging.Client satisfies it.
type MessagingClient interface {
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
	UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

// TopicManager binds a device token to FCM broadcast topics.
type TopicManager struct {
	client MessagingClient
	logger *slog.Logger
}

func NewTopicManager(client MessagingClient, logger *slog.Logger) *TopicManager {
	return &TopicManager{
		client: client,
		logger: logger.With("component", "FCMTopicManager"),
	}
}

func (m *TopicManager) Subscribe(ctx context.Context, token, topic string) error {
	return m.apply(ctx, "subscribe", token, topic, m.client.SubscribeToTopic)
}

func (m *TopicManager) Unsubscribe(ctx context.Context, token, topic string) error {
	return m.apply(ctx, "unsubscribe", token, topic, m.client.UnsubscribeFromTopic)
}

type topicCall func(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)

func (m *TopicManager) apply(ctx context.Context, op, token, topic string, call topicCall) error {
	if token == "" {
		return fmt.Errorf("fcm %s: empty token", op)
	}

	resp, err := call(ctx, []string{token}, topic)
	if err != nil {
		// Fatal validation errors are not worth retrying on the next
		// session pass, so we drop them here.
		if messaging.IsInvalidArgument(err) {
			m.logger.Error("FCM rejected topic request as InvalidArgument (dropping)", "op", op, "topic", topic, "err", err)
			return nil
		}
		return fmt.Errorf("fcm %s transport failed: %w", op, err)
	}

	if resp.FailureCount > 0 {
		// One token in, so at most one entry.
		reason := "unknown"
		if len(resp.Errors) > 0 {
			reason = resp.Errors[0].Reason
		}
		return fmt.Errorf("fcm %s of topic %q failed: %s", op, topic, reason)
	}

	m.logger.Debug("Topic request applied", "op", op, "topic", topic)
	return nil
}
