package repository

import (
	"context"
	"fmt"

	"solotto/domain/interfaces"
)

// AdminRoleRepository implements admin role lookups
type AdminRoleRepository struct {
	q Queryable
}

// NewAdminRoleRepository creates a new admin role repository
func NewAdminRoleRepository(q Queryable) interfaces.AdminRoleRepository {
	return &AdminRoleRepository{q: q}
}

// HasRole reports whether a wallet holds the named role
func (r *AdminRoleRepository) HasRole(ctx context.Context, wallet, role string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM admin_roles WHERE wallet = $1 AND role = $2)`

	var has bool
	if err := r.q.QueryRow(ctx, query, wallet, role).Scan(&has); err != nil {
		return false, fmt.Errorf("failed to check role %s for %s: %w", role, wallet, err)
	}
	return has, nil
}
