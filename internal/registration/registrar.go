// Package registration implements the call-through that announces a device
// token to the application backend.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/GGFlutterdev/firebase-message-handler/pkg/backend"
)

type registerBody struct {
	FCMToken string `json:"fcm_token"`
}

// Registrar posts new tokens to the configured endpoint. It reports success
// as a bool and never propagates an error: registration is best-effort and
// is retried implicitly on the next session init.
type Registrar struct {
	endpoint  string
	authToken backend.AuthTokenProvider
	transport backend.Transport
	logger    *slog.Logger
}

func NewRegistrar(endpoint string, authToken backend.AuthTokenProvider, transport backend.Transport, logger *slog.Logger) *Registrar {
	if transport == nil {
		transport = defaultTransport(&http.Client{Timeout: 10 * time.Second})
	}
	return &Registrar{
		endpoint:  endpoint,
		authToken: authToken,
		transport: transport,
		logger:    logger.With("component", "Registrar"),
	}
}

// Register announces the token to the backend. With no endpoint configured
// there is nothing to do and the step counts as succeeded.
func (r *Registrar) Register(ctx context.Context, token string) bool {
	if r.endpoint == "" {
		r.logger.Debug("No registration endpoint configured, skipping")
		return true
	}

	bearer, err := r.authToken(ctx)
	if err != nil {
		r.logger.Error("Failed to obtain auth token for registration", "err", err)
		return false
	}

	body, err := json.Marshal(registerBody{FCMToken: token})
	if err != nil {
		r.logger.Error("Failed to encode registration body", "err", err)
		return false
	}

	req := backend.Request{
		Endpoint:    r.endpoint,
		Body:        body,
		BearerToken: bearer,
		RequestID:   uuid.NewString(),
	}

	if err := r.transport(ctx, req); err != nil {
		r.logger.Error("Token registration failed", "request_id", req.RequestID, "err", err)
		return false
	}

	r.logger.Info("Token registered", "request_id", req.RequestID)
	return true
}

// defaultTransport is used when the application does not supply its own.
func defaultTransport(client *http.Client) backend.Transport {
	return func(ctx context.Context, req backend.Request) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(req.Body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)
		httpReq.Header.Set("X-Request-ID", req.RequestID)

		resp, err := client.Do(httpReq)
		if err != nil {
			return err
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("registration endpoint returned %d", resp.StatusCode)
		}
		return nil
	}
}
