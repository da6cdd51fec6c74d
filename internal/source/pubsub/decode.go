package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/GGFlutterdev/firebase-message-handler/pkg/routing"
)

// Attribute selecting which listener entry point a message targets.
const (
	eventAttribute = "event"
	eventOpened    = "opened"
	eventInitial   = "initial"
)

// wireMessage mirrors the JSON body a notification producer publishes.
type wireMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// decodePayload turns a raw Pub/Sub message into a routing payload plus the
// event attribute. Message attributes override body data on key collisions
// so per-delivery attributes always win.
func decodePayload(body []byte, attrs map[string]string) (routing.Payload, string, error) {
	var wire wireMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &wire); err != nil {
			return routing.Payload{}, "", fmt.Errorf("failed to unmarshal message body: %w", err)
		}
	}

	data := make(map[string]string, len(wire.Data)+len(attrs))
	for k, v := range wire.Data {
		data[k] = v
	}

	event := ""
	for k, v := range attrs {
		if k == eventAttribute {
			event = v
			continue
		}
		data[k] = v
	}

	return routing.NewPayload(wire.Title, wire.Body, data), event, nil
}
