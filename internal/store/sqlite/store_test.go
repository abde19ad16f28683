package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/listenupapp/genregraph/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// inTx runs fn in a write transaction and fails the test on error.
func inTx(t *testing.T, s *Store, fn func(ctx context.Context, tx store.Tx) error) {
	t.Helper()
	ctx := context.Background()
	if err := s.InTx(ctx, func(tx store.Tx) error { return fn(ctx, tx) }); err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"genres", "genre_akas", "genre_parents", "genre_derived_from", "genre_influences",
		"genre_history", "genre_relevance_votes", "account_permissions", "goose_db_version",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()

	// Migrations already applied must not run again.
	s, err = Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Genres().Save(ctx, makeTestGenre(t, "Rock")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	err = s.ReadTx(ctx, func(tx store.Tx) error {
		genres, err := tx.Genres().List(ctx)
		if err != nil {
			return err
		}
		if len(genres) != 0 {
			t.Errorf("expected rollback, found %d genres", len(genres))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadTx: %v", err)
	}
}

func TestPermissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	authz := store.NewPermissionAuthorizer(s)

	inTx(t, s, func(ctx context.Context, tx store.Tx) error {
		if err := tx.Permissions().Grant(ctx, 1, "EDIT_GENRE"); err != nil {
			return err
		}
		// Granting twice is a no-op.
		if err := tx.Permissions().Grant(ctx, 1, "EDIT_GENRE"); err != nil {
			return err
		}
		return tx.Permissions().Grant(ctx, 1, "VOTE_GENRE_RELEVANCE")
	})

	ok, err := authz.HasPermission(ctx, 1, "EDIT_GENRE")
	if err != nil || !ok {
		t.Fatalf("HasPermission: got %v, %v", ok, err)
	}
	ok, err = authz.HasPermission(ctx, 2, "EDIT_GENRE")
	if err != nil || ok {
		t.Fatalf("HasPermission for other account: got %v, %v", ok, err)
	}

	inTx(t, s, func(ctx context.Context, tx store.Tx) error {
		return tx.Permissions().Revoke(ctx, 1, "EDIT_GENRE")
	})
	inTx(t, s, func(ctx context.Context, tx store.Tx) error {
		perms, err := tx.Permissions().List(ctx, 1)
		if err != nil {
			return err
		}
		if len(perms) != 1 || perms[0] != "VOTE_GENRE_RELEVANCE" {
			t.Errorf("List: got %v", perms)
		}
		return nil
	})
}
