package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/store"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
const genreColumns = `id, name, subtitle, type, nsfw, short_description,
	long_description, notes, relevance, created_at, updated_at`

// scanGenre scans a sql.Row (or sql.Rows via its Scan method) into a domain.Genre.
// AKAs are loaded separately.
func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var (
		g                domain.Genre
		subtitle         sql.NullString
		shortDescription sql.NullString
		longDescription  sql.NullString
		notes            sql.NullString
		nsfw             int
		createdAt        string
		updatedAt        string
	)

	err := scanner.Scan(
		&g.ID,
		&g.Name,
		&subtitle,
		&g.Type,
		&nsfw,
		&shortDescription,
		&longDescription,
		&notes,
		&g.Relevance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	g.Subtitle = stringPtr(subtitle)
	g.ShortDescription = stringPtr(shortDescription)
	g.LongDescription = stringPtr(longDescription)
	g.Notes = stringPtr(notes)
	g.Nsfw = nsfw != 0

	return &g, nil
}

type genreRepo struct {
	tx *sql.Tx
}

// FindByID retrieves a genre by ID.
// Returns store.ErrNotFound if the genre does not exist.
func (r *genreRepo) FindByID(ctx context.Context, id int) (*domain.Genre, error) {
	g, err := scanGenre(r.tx.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithDetails(map[string]int{"genre_id": id})
	}
	if err != nil {
		return nil, fmt.Errorf("get genre %d: %w", id, err)
	}

	akas, err := r.loadAkas(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Akas = akas[id]
	return g, nil
}

// List returns all genres ordered by ID.
func (r *genreRepo) List(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT `+genreColumns+` FROM genres ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	akas, err := r.loadAkas(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, g := range genres {
		g.Akas = akas[g.ID]
	}
	return genres, nil
}

// Save inserts a new genre (ID zero) or updates an existing one, then replaces its AKAs.
func (r *genreRepo) Save(ctx context.Context, g *domain.Genre) (int, error) {
	args := []any{
		g.Name,
		nullableString(g.Subtitle),
		string(g.Type),
		boolToInt(g.Nsfw),
		nullableString(g.ShortDescription),
		nullableString(g.LongDescription),
		nullableString(g.Notes),
		g.Relevance,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	}

	id := g.ID
	if id == 0 {
		res, err := r.tx.ExecContext(ctx, `
			INSERT INTO genres (
				name, subtitle, type, nsfw, short_description,
				long_description, notes, relevance, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
		if err != nil {
			return 0, fmt.Errorf("insert genre: %w", err)
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert genre: %w", err)
		}
		id = int(lastID)
	} else {
		res, err := r.tx.ExecContext(ctx, `
			UPDATE genres SET
				name = ?, subtitle = ?, type = ?, nsfw = ?, short_description = ?,
				long_description = ?, notes = ?, relevance = ?, created_at = ?, updated_at = ?
			WHERE id = ?`, append(args, id)...)
		if err != nil {
			return 0, fmt.Errorf("update genre %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, store.ErrNotFound.WithDetails(map[string]int{"genre_id": id})
		}
	}

	if err := r.replaceAkas(ctx, id, g.Akas); err != nil {
		return 0, err
	}
	return id, nil
}

// Delete removes a genre. AKAs, edges and votes go with it through ON DELETE CASCADE.
func (r *genreRepo) Delete(ctx context.Context, id int) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete genre %d: %w", id, err)
	}
	return nil
}

// loadAkas returns AKAs keyed by genre ID, for one genre or for all when id is zero.
func (r *genreRepo) loadAkas(ctx context.Context, id int) (map[int]domain.GenreAkas, error) {
	query := `SELECT genre_id, tier, name FROM genre_akas`
	var args []any
	if id != 0 {
		query += ` WHERE genre_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY genre_id, tier, position`

	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load akas: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.GenreAkas)
	for rows.Next() {
		var (
			genreID int
			tier    domain.AkaTier
			name    string
		)
		if err := rows.Scan(&genreID, &tier, &name); err != nil {
			return nil, fmt.Errorf("scan aka: %w", err)
		}
		akas := out[genreID]
		switch tier {
		case domain.AkaTierPrimary:
			akas.Primary = append(akas.Primary, name)
		case domain.AkaTierSecondary:
			akas.Secondary = append(akas.Secondary, name)
		case domain.AkaTierTertiary:
			akas.Tertiary = append(akas.Tertiary, name)
		}
		out[genreID] = akas
	}
	return out, rows.Err()
}

func (r *genreRepo) replaceAkas(ctx context.Context, id int, akas domain.GenreAkas) error {
	if _, err := r.tx.ExecContext(ctx, `DELETE FROM genre_akas WHERE genre_id = ?`, id); err != nil {
		return fmt.Errorf("clear akas of genre %d: %w", id, err)
	}
	for _, tier := range []domain.AkaTier{domain.AkaTierPrimary, domain.AkaTierSecondary, domain.AkaTierTertiary} {
		for pos, name := range akas.Tier(tier) {
			_, err := r.tx.ExecContext(ctx,
				`INSERT INTO genre_akas (genre_id, tier, position, name) VALUES (?, ?, ?, ?)`,
				id, string(tier), pos, name)
			if err != nil {
				return fmt.Errorf("insert aka %q of genre %d: %w", name, id, err)
			}
		}
	}
	return nil
}
