package fcm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GGFlutterdev/firebase-message-handler/internal/platform/fcm"
)

// MockClient satisfies the MessagingClient interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	args := m.Called(ctx, tokens, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.TopicManagementResponse), args.Error(1)
}

func (m *MockClient) UnsubscribeFromTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	args := m.Called(ctx, tokens, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.TopicManagementResponse), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopicManager_Lifecycle(t *testing.T) {
	logger := newTestLogger()
	ctx := context.Background()

	t.Run("Happy Path - Subscribe", func(t *testing.T) {
		mockClient := new(MockClient)
		manager := fcm.NewTopicManager(mockClient, logger)

		mockResponse := &messaging.TopicManagementResponse{SuccessCount: 1}
		mockClient.On("SubscribeToTopic", ctx, []string{"token-1"}, "news").Return(mockResponse, nil)

		err := manager.Subscribe(ctx, "token-1", "news")

		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Happy Path - Unsubscribe", func(t *testing.T) {
		mockClient := new(MockClient)
		manager := fcm.NewTopicManager(mockClient, logger)

		mockResponse := &messaging.TopicManagementResponse{SuccessCount: 1}
		mockClient.On("UnsubscribeFromTopic", ctx, []string{"token-1"}, "news").Return(mockResponse, nil)

		err := manager.Unsubscribe(ctx, "token-1", "news")

		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Empty token is rejected locally", func(t *testing.T) {
		mockClient := new(MockClient)
		manager := fcm.NewTopicManager(mockClient, logger)

		err := manager.Subscribe(ctx, "", "news")

		require.Error(t, err)
		mockClient.AssertNotCalled(t, "SubscribeToTopic")
	})

	t.Run("Transport Failure (Retryable)", func(t *testing.T) {
		mockClient := new(MockClient)
		manager := fcm.NewTopicManager(mockClient, logger)

		mockClient.On("SubscribeToTopic", ctx, mock.Anything, "news").Return(nil, errors.New("network down"))

		err := manager.Subscribe(ctx, "token-1", "news")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "transport failed")
	})

	t.Run("Per-token failure surfaces the reason", func(t *testing.T) {
		mockClient := new(MockClient)
		manager := fcm.NewTopicManager(mockClient, logger)

		mockResponse := &messaging.TopicManagementResponse{
			FailureCount: 1,
			Errors:       []*messaging.ErrorInfo{{Index: 0, Reason: "INVALID_ARGUMENT"}},
		}
		mockClient.On("SubscribeToTopic", ctx, mock.Anything, "news").Return(mockResponse, nil)

		err := manager.Subscribe(ctx, "token-1", "news")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	})

	// Note: We rely on integration coverage for messaging.IsInvalidArgument
	// handling, as constructing the Firebase SDK's internal error types in a
	// unit test is brittle.
}
