// Package routing contains the domain model for inbound push messages and
// the mapping from message types to in-app navigation paths.
package routing

import "fmt"

// Well-known keys in a message's data map.
const (
	DataKeyType = "type"
	DataKeyID   = "id"
)

// Payload is the normalized, routing-relevant view of an inbound push
// message. It is built once per message and discarded after routing.
type Payload struct {
	ID    string
	Type  string
	Title string
	Body  string

	// Data is the raw key/value map received from the transport layer.
	Data map[string]string
}

// NewPayload builds a Payload from the transport-level title/body and the
// raw data map. The type and id fields are read from the map when present;
// non-string values coming off the wire are coerced with fmt.Sprint by the
// transport adapters before they reach here.
func NewPayload(title, body string, data map[string]string) Payload {
	if data == nil {
		data = map[string]string{}
	}
	return Payload{
		ID:    data[DataKeyID],
		Type:  data[DataKeyType],
		Title: title,
		Body:  body,
		Data:  data,
	}
}

// CoerceData flattens an attribute map with arbitrary value types into the
// string map a Payload carries.
func CoerceData(raw map[string]any) map[string]string {
	data := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			data[k] = s
			continue
		}
		data[k] = fmt.Sprint(v)
	}
	return data
}
