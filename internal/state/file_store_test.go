package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "message-map.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	mapping := domain.MessageMapping{
		SurfaceID: "chan-1",
		MessageID: "msg-1",
		UpdatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Put(ctx, "p1", mapping); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != mapping {
		t.Fatalf("unexpected mapping: %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "message-map.json")
	ctx := context.Background()

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Put(ctx, "p1", domain.MessageMapping{SurfaceID: "chan-1", MessageID: "msg-1"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	mappings, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mappings) != 1 || mappings["p1"].MessageID != "msg-1" {
		t.Fatalf("mapping not recovered: %+v", mappings)
	}
}

func TestFileStoreStartsEmptyOnMissingFile(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	mappings, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected empty store, got %+v", mappings)
	}
}

func TestFileStoreStartsEmptyOnCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "message-map.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store, err := NewFileStore(path)
	if err == nil {
		t.Fatalf("expected decode error surfaced")
	}
	if store == nil {
		t.Fatalf("expected usable store despite corrupt file")
	}
	mappings, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected empty store after corrupt file, got %+v", mappings)
	}
}

func TestFileStoreDeleteAndReset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "message-map.json")
	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "p1", domain.MessageMapping{MessageID: "msg-1"}); err != nil {
		t.Fatalf("put p1: %v", err)
	}
	if err := store.Put(ctx, "p2", domain.MessageMapping{MessageID: "msg-2"}); err != nil {
		t.Fatalf("put p2: %v", err)
	}

	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("double delete must be a no-op: %v", err)
	}
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted key gone, got %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("reset must delete the backing file, stat err %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset without backing file must be a no-op: %v", err)
	}
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	mappings, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mappings) != 0 {
		t.Fatalf("expected empty store after reset, got %+v", mappings)
	}
}
