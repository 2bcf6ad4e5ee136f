package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/octobees/decisionfindr/api/internal/database"
)

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	s := NewSQLStore(db)
	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "search_history_u1", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "search_history_u1", []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "search_history_u1")
	if err != nil || !ok || string(got) != `[1,2]` {
		t.Fatalf("unexpected value %q ok=%v err=%v", got, ok, err)
	}

	_ = s.Set(ctx, "search_history_u2", []byte(`[]`))
	_ = s.Set(ctx, "search%history_u3", []byte(`[]`))
	keys, err := s.Keys(ctx, "search_history_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "search_history_u1" || keys[1] != "search_history_u2" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := s.Delete(ctx, "search_history_u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "search_history_u1"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a_b%c\`); got != `a\_b\%c\\` {
		t.Fatalf("unexpected escape: %s", got)
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("a*b?[c]"); got != `a\*b\?\[c\]` {
		t.Fatalf("unexpected escape: %s", got)
	}
}
