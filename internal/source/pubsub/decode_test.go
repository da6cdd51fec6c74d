package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	t.Run("body and attributes merge into the data map", func(t *testing.T) {
		body := []byte(`{"title":"Order shipped","body":"On its way","data":{"type":"order","id":"5"}}`)
		attrs := map[string]string{"campaign": "spring"}

		payload, event, err := decodePayload(body, attrs)

		require.NoError(t, err)
		assert.Empty(t, event)
		assert.Equal(t, "order", payload.Type)
		assert.Equal(t, "5", payload.ID)
		assert.Equal(t, "Order shipped", payload.Title)
		assert.Equal(t, "On its way", payload.Body)
		assert.Equal(t, "spring", payload.Data["campaign"])
	})

	t.Run("attributes win on key collisions", func(t *testing.T) {
		body := []byte(`{"data":{"type":"order"}}`)
		attrs := map[string]string{"type": "chat"}

		payload, _, err := decodePayload(body, attrs)

		require.NoError(t, err)
		assert.Equal(t, "chat", payload.Type)
	})

	t.Run("event attribute is extracted, not forwarded", func(t *testing.T) {
		payload, event, err := decodePayload(nil, map[string]string{
			"event": "opened",
			"type":  "chat",
		})

		require.NoError(t, err)
		assert.Equal(t, "opened", event)
		assert.Equal(t, "chat", payload.Type)
		assert.NotContains(t, payload.Data, "event")
	})

	t.Run("empty body with attributes only", func(t *testing.T) {
		payload, event, err := decodePayload(nil, map[string]string{"type": "ping"})

		require.NoError(t, err)
		assert.Empty(t, event)
		assert.Equal(t, "ping", payload.Type)
		assert.Empty(t, payload.Title)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		_, _, err := decodePayload([]byte(`{not-json`), nil)

		assert.Error(t, err)
	})
}
