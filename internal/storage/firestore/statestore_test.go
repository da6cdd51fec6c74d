//go:build integration

package firestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fs "github.com/GGFlutterdev/firebase-message-handler/internal/storage/firestore"
)

func setupSuite(t *testing.T) (context.Context, *fs.StateStore) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	client, err := firestore.NewClient(ctx, "test-state-store")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return ctx, fs.NewStateStore(client, "install-1")
}

func TestStateStore_RoundTrip(t *testing.T) {
	ctx, store := setupSuite(t)

	t.Run("fresh installation reads zero values", func(t *testing.T) {
		requested, err := store.PermissionRequested(ctx)
		require.NoError(t, err)
		assert.False(t, requested)

		token, err := store.LastToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("scalars survive independently", func(t *testing.T) {
		require.NoError(t, store.SetPermissionRequested(ctx, true))
		require.NoError(t, store.SetLastToken(ctx, "token-1"))
		require.NoError(t, store.SetLastUserID(ctx, "user-1"))

		requested, err := store.PermissionRequested(ctx)
		require.NoError(t, err)
		assert.True(t, requested)

		token, err := store.LastToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)

		userID, err := store.LastUserID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("reset returns the installation to first-run state", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx))

		requested, err := store.PermissionRequested(ctx)
		require.NoError(t, err)
		assert.False(t, requested)

		token, err := store.LastToken(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}
