package store

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/listenupapp/genregraph/internal/domain"
)

type permissionRepo struct {
	txn *badger.Txn
}

func (r *permissionRepo) Grant(ctx context.Context, accountID int, p domain.Permission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.txn.Set(accountPermissionKey(accountID, p), []byte{})
}

func (r *permissionRepo) Revoke(ctx context.Context, accountID int, p domain.Permission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.txn.Delete(accountPermissionKey(accountID, p))
}

func (r *permissionRepo) Has(ctx context.Context, accountID int, p domain.Permission) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return exists(r.txn, accountPermissionKey(accountID, p))
}

// List returns the account's permissions in name order.
func (r *permissionRepo) List(ctx context.Context, accountID int) ([]domain.Permission, error) {
	prefix := accountPermissionAccountPrefix(accountID)
	keys, err := collectKeys(ctx, r.txn, prefix)
	if err != nil {
		return nil, err
	}
	perms := make([]domain.Permission, 0, len(keys))
	for _, key := range keys {
		perms = append(perms, domain.Permission(bytes.TrimPrefix(key, prefix)))
	}
	return perms, nil
}
