// Package firestore implements the handler state store on Google Cloud
// Firestore, one document per app installation.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const stateCollection = "handler_state"

// StateStore persists the handler's scalars in a single document under
// handler_state/{instanceID}.
type StateStore struct {
	client   *firestore.Client
	instance string
}

func NewStateStore(client *firestore.Client, instanceID string) *StateStore {
	return &StateStore{client: client, instance: instanceID}
}

// stateRecord is the internal DB representation.
type stateRecord struct {
	PermissionRequested bool      `firestore:"permission_requested"`
	LastToken           string    `firestore:"last_token"`
	LastUserID          string    `firestore:"last_user_id"`
	UpdatedAt           time.Time `firestore:"updated_at"`
}

func (s *StateStore) PermissionRequested(ctx context.Context) (bool, error) {
	record, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	return record.PermissionRequested, nil
}

func (s *StateStore) SetPermissionRequested(ctx context.Context, requested bool) error {
	return s.merge(ctx, map[string]interface{}{"permission_requested": requested})
}

func (s *StateStore) LastToken(ctx context.Context) (string, error) {
	record, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return record.LastToken, nil
}

func (s *StateStore) SetLastToken(ctx context.Context, token string) error {
	return s.merge(ctx, map[string]interface{}{"last_token": token})
}

func (s *StateStore) LastUserID(ctx context.Context) (string, error) {
	record, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return record.LastUserID, nil
}

func (s *StateStore) SetLastUserID(ctx context.Context, userID string) error {
	return s.merge(ctx, map[string]interface{}{"last_user_id": userID})
}

// Reset deletes the whole state document. A later read behaves as if the
// installation had never been seen.
func (s *StateStore) Reset(ctx context.Context) error {
	_, err := s.stateRef().Delete(ctx)
	return err
}

// --- Helpers ---

// load returns the zero record when the document does not exist yet.
func (s *StateStore) load(ctx context.Context) (stateRecord, error) {
	var record stateRecord

	doc, err := s.stateRef().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return record, nil
	}
	if err != nil {
		return record, err
	}

	if err := doc.DataTo(&record); err != nil {
		return stateRecord{}, err
	}
	return record, nil
}

func (s *StateStore) merge(ctx context.Context, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	_, err := s.stateRef().Set(ctx, fields, firestore.MergeAll)
	return err
}

func (s *StateStore) stateRef() *firestore.DocumentRef {
	return s.client.Collection(stateCollection).Doc(s.instance)
}
