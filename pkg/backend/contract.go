// Package backend defines the contract between the message handler and the
// application backend that tokens are registered with.
package backend

import "context"

// Request carries everything a transport needs to perform one registration
// call. The body shape is fixed by the handler; the transport owns headers,
// retries and connection management.
type Request struct {
	Endpoint    string
	Body        []byte
	BearerToken string
	RequestID   string
}

// Transport performs the HTTP call. Supplying one lets the embedding
// application reuse its own client and interceptors; when nil the handler
// falls back to a plain net/http POST.
type Transport func(ctx context.Context, req Request) error

// AuthTokenProvider returns the bearer credential presented to the backend.
type AuthTokenProvider func(ctx context.Context) (string, error)

// UserIDProvider returns the id of the currently signed-in user.
type UserIDProvider func(ctx context.Context) (string, error)
