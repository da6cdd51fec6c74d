// Package state defines the persistent per-installation flag/value store the
// message handler remembers its progress in.
package state

import "context"

// Store persists the three scalars the handler caches between sessions.
// Absence means never set: implementations return the zero value, not an
// error, for keys that were never written.
type Store interface {
	// PermissionRequested reports whether the permission prompt has
	// already been shown for this installation.
	PermissionRequested(ctx context.Context) (bool, error)
	SetPermissionRequested(ctx context.Context, requested bool) error

	// LastToken returns the most recently registered FCM token.
	LastToken(ctx context.Context) (string, error)
	SetLastToken(ctx context.Context, token string) error

	// LastUserID returns the user id the last registration ran under.
	LastUserID(ctx context.Context) (string, error)
	SetLastUserID(ctx context.Context, userID string) error

	// Reset removes all three scalars.
	Reset(ctx context.Context) error
}
