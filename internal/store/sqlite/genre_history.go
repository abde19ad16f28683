package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/id"
)

const genreHistoryColumns = `id, genre_id, name, subtitle, type, nsfw, short_description,
	long_description, notes, akas, parent_ids, derived_from_ids, influence_ids,
	operation, account_id, created_at`

func scanGenreHistory(scanner interface{ Scan(dest ...any) error }) (*domain.GenreHistory, error) {
	var (
		h                domain.GenreHistory
		subtitle         sql.NullString
		shortDescription sql.NullString
		longDescription  sql.NullString
		notes            sql.NullString
		nsfw             int
		akas             string
		parentIDs        string
		derivedFromIDs   string
		influenceIDs     string
		accountID        sql.NullInt64
		createdAt        string
	)

	err := scanner.Scan(
		&h.ID,
		&h.GenreID,
		&h.Name,
		&subtitle,
		&h.Type,
		&nsfw,
		&shortDescription,
		&longDescription,
		&notes,
		&akas,
		&parentIDs,
		&derivedFromIDs,
		&influenceIDs,
		&h.Operation,
		&accountID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	h.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	h.Subtitle = stringPtr(subtitle)
	h.ShortDescription = stringPtr(shortDescription)
	h.LongDescription = stringPtr(longDescription)
	h.Notes = stringPtr(notes)
	h.Nsfw = nsfw != 0
	h.AccountID = intPtr(accountID)

	if err := json.Unmarshal([]byte(akas), &h.Akas); err != nil {
		return nil, fmt.Errorf("decode akas: %w", err)
	}
	for _, col := range []struct {
		raw  string
		dest *[]int
	}{
		{parentIDs, &h.ParentIDs},
		{derivedFromIDs, &h.DerivedFromIDs},
		{influenceIDs, &h.InfluenceIDs},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dest); err != nil {
			return nil, fmt.Errorf("decode relation ids: %w", err)
		}
	}
	return &h, nil
}

type genreHistoryRepo struct {
	tx *sql.Tx
}

// Create assigns an ID and appends the snapshot.
func (r *genreHistoryRepo) Create(ctx context.Context, h *domain.GenreHistory) error {
	if h.ID == "" {
		historyID, err := id.NewGenreHistoryID()
		if err != nil {
			return err
		}
		h.ID = historyID
	}

	encoded := make([]string, 4)
	for i, v := range []any{h.Akas, nonNil(h.ParentIDs), nonNil(h.DerivedFromIDs), nonNil(h.InfluenceIDs)} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		encoded[i] = string(data)
	}

	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO genre_history (
			id, genre_id, name, subtitle, type, nsfw, short_description,
			long_description, notes, akas, parent_ids, derived_from_ids, influence_ids,
			operation, account_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.GenreID,
		h.Name,
		nullableString(h.Subtitle),
		string(h.Type),
		boolToInt(h.Nsfw),
		nullableString(h.ShortDescription),
		nullableString(h.LongDescription),
		nullableString(h.Notes),
		encoded[0],
		encoded[1],
		encoded[2],
		encoded[3],
		string(h.Operation),
		nullableInt(h.AccountID),
		formatTime(h.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert history for genre %d: %w", h.GenreID, err)
	}
	return nil
}

// FindLatestByGenreID returns the newest snapshot, or nil when there is none.
func (r *genreHistoryRepo) FindLatestByGenreID(ctx context.Context, genreID int) (*domain.GenreHistory, error) {
	entries, err := r.query(ctx, `SELECT `+genreHistoryColumns+` FROM genre_history
		WHERE genre_id = ? ORDER BY seq DESC LIMIT 1`, genreID)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// FindByGenreID returns a genre's snapshots, oldest first.
func (r *genreHistoryRepo) FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreHistory, error) {
	return r.query(ctx, `SELECT `+genreHistoryColumns+` FROM genre_history
		WHERE genre_id = ? ORDER BY seq`, genreID)
}

// ListLatest returns the newest entries across all genres.
func (r *genreHistoryRepo) ListLatest(ctx context.Context, limit int) ([]*domain.GenreHistory, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+genreHistoryColumns+` FROM genre_history
		ORDER BY seq DESC LIMIT ?`, limit)
}

func (r *genreHistoryRepo) query(ctx context.Context, query string, args ...any) ([]*domain.GenreHistory, error) {
	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []*domain.GenreHistory
	for rows.Next() {
		h, err := scanGenreHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
