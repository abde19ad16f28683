package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
	"github.com/listenupapp/genregraph/internal/store"
)

type genreVoteRepo struct {
	tx *sql.Tx
}

func scanVote(scanner interface{ Scan(dest ...any) error }) (*domain.GenreRelevanceVote, error) {
	var (
		v         domain.GenreRelevanceVote
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&v.GenreID, &v.AccountID, &v.Relevance, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// Save upserts a vote. A repeated vote keeps its created_at.
func (r *genreVoteRepo) Save(ctx context.Context, v *domain.GenreRelevanceVote) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO genre_relevance_votes (genre_id, account_id, relevance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (genre_id, account_id) DO UPDATE SET
			relevance = excluded.relevance,
			updated_at = excluded.updated_at`,
		v.GenreID, v.AccountID, v.Relevance, formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save vote on genre %d: %w", v.GenreID, err)
	}
	return nil
}

func (r *genreVoteRepo) Delete(ctx context.Context, genreID, accountID int) error {
	_, err := r.tx.ExecContext(ctx,
		`DELETE FROM genre_relevance_votes WHERE genre_id = ? AND account_id = ?`, genreID, accountID)
	if err != nil {
		return fmt.Errorf("delete vote on genre %d: %w", genreID, err)
	}
	return nil
}

func (r *genreVoteRepo) FindByGenreID(ctx context.Context, genreID int) ([]*domain.GenreRelevanceVote, error) {
	rows, err := r.tx.QueryContext(ctx, `
		SELECT genre_id, account_id, relevance, created_at, updated_at
		FROM genre_relevance_votes WHERE genre_id = ? ORDER BY account_id`, genreID)
	if err != nil {
		return nil, fmt.Errorf("list votes on genre %d: %w", genreID, err)
	}
	defer rows.Close()

	var votes []*domain.GenreRelevanceVote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *genreVoteRepo) FindByGenreAndAccount(ctx context.Context, genreID, accountID int) (*domain.GenreRelevanceVote, error) {
	v, err := scanVote(r.tx.QueryRowContext(ctx, `
		SELECT genre_id, account_id, relevance, created_at, updated_at
		FROM genre_relevance_votes WHERE genre_id = ? AND account_id = ?`, genreID, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return v, err
}

func (r *genreVoteRepo) SaveRelevance(ctx context.Context, genreID, relevance int) error {
	res, err := r.tx.ExecContext(ctx, `UPDATE genres SET relevance = ? WHERE id = ?`, relevance, genreID)
	if err != nil {
		return fmt.Errorf("save relevance of genre %d: %w", genreID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithDetails(map[string]int{"genre_id": genreID})
	}
	return nil
}
