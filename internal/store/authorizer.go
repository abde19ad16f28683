package store

import (
	"context"
	"fmt"

	"github.com/listenupapp/genregraph/internal/domain"
)

// PermissionAuthorizer answers permission checks from the account_permissions
// records of any backend.
type PermissionAuthorizer struct {
	tx Transactor
}

// NewPermissionAuthorizer creates an authorizer reading through tx.
func NewPermissionAuthorizer(tx Transactor) *PermissionAuthorizer {
	return &PermissionAuthorizer{tx: tx}
}

// HasPermission reports whether the account holds p.
func (a *PermissionAuthorizer) HasPermission(ctx context.Context, accountID int, p domain.Permission) (bool, error) {
	var ok bool
	err := a.tx.ReadTx(ctx, func(tx Tx) error {
		var err error
		ok, err = tx.Permissions().Has(ctx, accountID, p)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check permission %s for account %d: %w", p, accountID, err)
	}
	return ok, nil
}
