package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
)

type permissionRepo struct {
	tx *sql.Tx
}

func (r *permissionRepo) Grant(ctx context.Context, accountID int, p domain.Permission) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO account_permissions (account_id, permission) VALUES (?, ?)`,
		accountID, string(p))
	if err != nil {
		return fmt.Errorf("grant %s to account %d: %w", p, accountID, err)
	}
	return nil
}

func (r *permissionRepo) Revoke(ctx context.Context, accountID int, p domain.Permission) error {
	_, err := r.tx.ExecContext(ctx,
		`DELETE FROM account_permissions WHERE account_id = ? AND permission = ?`,
		accountID, string(p))
	if err != nil {
		return fmt.Errorf("revoke %s from account %d: %w", p, accountID, err)
	}
	return nil
}

func (r *permissionRepo) Has(ctx context.Context, accountID int, p domain.Permission) (bool, error) {
	var n int
	err := r.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM account_permissions WHERE account_id = ? AND permission = ?`,
		accountID, string(p)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s for account %d: %w", p, accountID, err)
	}
	return n > 0, nil
}

func (r *permissionRepo) List(ctx context.Context, accountID int) ([]domain.Permission, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT permission FROM account_permissions WHERE account_id = ? ORDER BY permission`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list permissions of account %d: %w", accountID, err)
	}
	defer rows.Close()

	perms := []domain.Permission{}
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
