// Package memory provides an in-process store.RecordStore. It backs tests
// and ephemeral sessions; nothing survives the process.
package memory

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/store"
)

// RecordStore keeps records in a map guarded by a mutex. Values are copied on
// the way in and out so callers never share backing arrays with the store.
type RecordStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]map[store.Key][]byte
	logger  *slog.Logger
}

var _ store.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates an empty RecordStore.
// If logger is nil, a default logger will be used.
func NewRecordStore(logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{
		records: make(map[uuid.UUID]map[store.Key][]byte),
		logger:  logger.With(slog.String("component", "memory_record_store")),
	}
}

func checkKey(key store.Key, op string) error {
	if !key.IsValid() {
		return store.NewStoreError(key.String(), op, "unknown key", store.ErrInvalidKey)
	}
	return nil
}

// Get implements store.RecordStore.
func (s *RecordStore) Get(ctx context.Context, userID uuid.UUID, key store.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(key, "get"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[userID][key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(value), nil
}

// Put implements store.RecordStore.
func (s *RecordStore) Put(ctx context.Context, userID uuid.UUID, key store.Key, value []byte) error {
	return s.PutMany(ctx, userID, []store.Entry{{Key: key, Value: value}})
}

// PutMany implements store.RecordStore. The batch is applied under a single
// lock, so readers see all of it or none.
func (s *RecordStore) PutMany(ctx context.Context, userID uuid.UUID, entries []store.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateEntries(entries); err != nil {
		return store.NewStoreError("records", "put_many", "rejected batch", err)
	}
	for _, e := range entries {
		if e.Value == nil {
			return store.NewStoreError(e.Key.String(), "put_many", "nil value", store.ErrInvalidRecord)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userRecords(userID)
	for _, e := range entries {
		user[e.Key] = slices.Clone(e.Value)
	}

	s.logger.DebugContext(ctx, "records written",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(entries)))
	return nil
}

// CompareAndSwap implements store.RecordStore.
func (s *RecordStore) CompareAndSwap(
	ctx context.Context,
	userID uuid.UUID,
	key store.Key,
	old, next []byte,
) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := checkKey(key, "compare_and_swap"); err != nil {
		return false, err
	}
	if next == nil {
		return false, store.NewStoreError(key.String(), "compare_and_swap", "nil value", store.ErrInvalidRecord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[userID][key]
	switch {
	case old == nil && ok:
		return false, nil
	case old != nil && (!ok || !bytes.Equal(current, old)):
		return false, nil
	}

	s.userRecords(userID)[key] = slices.Clone(next)
	return true, nil
}

// Delete implements store.RecordStore.
func (s *RecordStore) Delete(ctx context.Context, userID uuid.UUID, key store.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkKey(key, "delete"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records[userID], key)
	return nil
}

// userRecords returns the map of userID, creating it. Callers hold mu.
func (s *RecordStore) userRecords(userID uuid.UUID) map[store.Key][]byte {
	user, ok := s.records[userID]
	if !ok {
		user = make(map[store.Key][]byte)
		s.records[userID] = user
	}
	return user
}
