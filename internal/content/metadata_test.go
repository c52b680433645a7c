package content_test

import (
	"context"
	"testing"

	"greenroom/internal/content"
	"greenroom/internal/testsupport"
)

func TestSetMetadataUniqueSkipsExisting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	id := testsupport.MustInsertRecord(t, store, content.TypeSpeaker, "Jane Doe", "")

	if err := store.SetMetadata(ctx, id, content.MetaEmail, "jane@x.test", true); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := store.SetMetadata(ctx, id, content.MetaEmail, "other@x.test", true); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}

	values, err := store.MetadataValues(ctx, id, content.MetaEmail)
	if err != nil {
		t.Fatalf("MetadataValues failed: %v", err)
	}
	if len(values) != 1 || values[0] != "jane@x.test" {
		t.Fatalf("expected unique write to keep first value, got %v", values)
	}
}

func TestSetMetadataAppendsWhenNotUnique(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	id := testsupport.MustInsertRecord(t, store, content.TypeSession, "Session", "sub-meta")

	for _, value := range []string{"11", "12"} {
		if err := store.SetMetadata(ctx, id, "event_speaker", value, false); err != nil {
			t.Fatalf("SetMetadata failed: %v", err)
		}
	}

	values, err := store.MetadataValues(ctx, id, "event_speaker")
	if err != nil {
		t.Fatalf("MetadataValues failed: %v", err)
	}
	if len(values) != 2 || values[0] != "11" || values[1] != "12" {
		t.Fatalf("expected ordered appended values, got %v", values)
	}
}

func TestMetadataValueAbsentKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	id := testsupport.MustInsertRecord(t, store, content.TypeSpeaker, "Jane Doe", "")

	value, err := store.MetadataValue(ctx, id, content.MetaWebsite)
	if err != nil {
		t.Fatalf("MetadataValue failed: %v", err)
	}
	if value != "" {
		t.Fatalf("expected empty value for absent key, got %q", value)
	}

	meta, err := store.Metadata(ctx, id)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if _, ok := meta[content.MetaWebsite]; ok {
		t.Fatal("expected no key present for absent metadata")
	}
}

func TestReplaceMetadata(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	id := testsupport.MustInsertRecord(t, store, content.TypeSpeaker, "Jane Doe", "")

	if err := store.SetMetadata(ctx, id, content.MetaCompany, "Old Co", true); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := store.ReplaceMetadata(ctx, id, content.MetaCompany, "New Co"); err != nil {
		t.Fatalf("ReplaceMetadata failed: %v", err)
	}

	values, err := store.MetadataValues(ctx, id, content.MetaCompany)
	if err != nil {
		t.Fatalf("MetadataValues failed: %v", err)
	}
	if len(values) != 1 || values[0] != "New Co" {
		t.Fatalf("expected replaced value, got %v", values)
	}
}
