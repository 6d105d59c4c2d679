package repository

import (
	"context"
	"testing"

	"solotto/domain/entities"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRepository_Append(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAuditLogRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists the entry with its details", func(t *testing.T) {
		entry := &entities.AuditEntry{
			Action:      entities.AuditActionDrawCompleted,
			ActorWallet: "admin-wallet",
			Details: map[string]any{
				"draw_id":      float64(7),
				"winner_count": float64(102),
			},
		}

		err := repo.Append(ctx, entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())

		var action string
		var details map[string]any
		err = testDB.DB.Pool.QueryRow(ctx,
			`SELECT action, details FROM audit_log WHERE id = $1`, entry.ID).
			Scan(&action, &details)
		require.NoError(t, err)
		assert.Equal(t, entities.AuditActionDrawCompleted, action)
		assert.Equal(t, entry.Details, details)
	})

	t.Run("entry without details", func(t *testing.T) {
		entry := &entities.AuditEntry{Action: entities.AuditActionRateLimitFailOpen}

		err := repo.Append(ctx, entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
	})
}

func TestAdminRoleRepository_HasRole(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAdminRoleRepository(testDB.DB)
	ctx := context.Background()

	_, err := testDB.DB.Pool.Exec(ctx,
		`INSERT INTO admin_roles (wallet, role) VALUES ($1, $2)`, "admin-wallet", "admin")
	require.NoError(t, err)

	t.Run("wallet holds the role", func(t *testing.T) {
		has, err := repo.HasRole(ctx, "admin-wallet", "admin")
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("wallet without the role", func(t *testing.T) {
		has, err := repo.HasRole(ctx, "admin-wallet", "auditor")
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		has, err := repo.HasRole(ctx, "someone-else", "admin")
		require.NoError(t, err)
		assert.False(t, has)
	})
}
