package testsupport

import (
	"context"
	"testing"

	"greenroom/internal/config"
	"greenroom/internal/content"
)

// MustOpenStore opens a content.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *content.Store {
	t.Helper()

	store, err := content.Open(cfg)
	if err != nil {
		t.Fatalf("content.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustInsertRecord creates a record for tests using the provided store.
func MustInsertRecord(t testing.TB, store *content.Store, recordType content.RecordType, title, submissionID string) int64 {
	t.Helper()

	id, err := store.InsertRecord(context.Background(), recordType, title, "", content.StatusPending, submissionID)
	if err != nil {
		t.Fatalf("store.InsertRecord: %v", err)
	}
	return id
}
