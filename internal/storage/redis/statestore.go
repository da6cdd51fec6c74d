// Package redis implements the handler state store on top of a Redis
// key-value store.
package redis

import (
	"context"
	"errors"
	"fmt"
)

// KeyValueClient defines the subset of Redis commands the store needs.
// *Client satisfies it; tests supply a mock.
type KeyValueClient interface {
	// Get decodes the value into dest, or returns ErrNotFound.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores the value.
	Set(ctx context.Context, key string, value interface{}) error
	// Del removes the keys.
	Del(ctx context.Context, keys ...string) error
}

// StateStore persists the handler's three scalars under
// msghandler:<instance>:<field>. The instance id scopes the keys to one
// app installation so several installations can share a database.
type StateStore struct {
	client   KeyValueClient
	instance string
}

func NewStateStore(client KeyValueClient, instanceID string) *StateStore {
	return &StateStore{client: client, instance: instanceID}
}

const (
	fieldPermissionRequested = "permission_requested"
	fieldLastToken           = "last_token"
	fieldLastUserID          = "last_user_id"
)

func (s *StateStore) PermissionRequested(ctx context.Context) (bool, error) {
	var requested bool
	err := s.client.Get(ctx, s.key(fieldPermissionRequested), &requested)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return requested, nil
}

func (s *StateStore) SetPermissionRequested(ctx context.Context, requested bool) error {
	return s.client.Set(ctx, s.key(fieldPermissionRequested), requested)
}

func (s *StateStore) LastToken(ctx context.Context) (string, error) {
	return s.getString(ctx, fieldLastToken)
}

func (s *StateStore) SetLastToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key(fieldLastToken), token)
}

func (s *StateStore) LastUserID(ctx context.Context) (string, error) {
	return s.getString(ctx, fieldLastUserID)
}

func (s *StateStore) SetLastUserID(ctx context.Context, userID string) error {
	return s.client.Set(ctx, s.key(fieldLastUserID), userID)
}

// Reset removes all three scalars in one round trip.
func (s *StateStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx,
		s.key(fieldPermissionRequested),
		s.key(fieldLastToken),
		s.key(fieldLastUserID),
	)
}

func (s *StateStore) getString(ctx context.Context, field string) (string, error) {
	var val string
	err := s.client.Get(ctx, s.key(field), &val)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *StateStore) key(field string) string {
	return fmt.Sprintf("msghandler:%s:%s", s.instance, field)
}
