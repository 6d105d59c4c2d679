package repository

import (
	"context"
	"testing"

	"solotto/domain/interfaces"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedTransactionRepository_Exists(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewProcessedTransactionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown signature", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("credited signature", func(t *testing.T) {
		tx := testutil.CreateTestProcessedTransaction("sig-credited", "buyer-wallet")
		require.NoError(t, repo.Create(ctx, tx))

		exists, err := repo.Exists(ctx, "sig-credited")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestProcessedTransactionRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewProcessedTransactionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		tx := testutil.CreateTestProcessedTransaction("sig-1", "buyer-wallet")

		err := repo.Create(ctx, tx)
		require.NoError(t, err)

		assert.NotZero(t, tx.ID)
		assert.False(t, tx.CreatedAt.IsZero())
	})

	t.Run("duplicate signature returns the sentinel error", func(t *testing.T) {
		first := testutil.CreateTestProcessedTransaction("sig-2", "buyer-wallet")
		require.NoError(t, repo.Create(ctx, first))

		second := testutil.CreateTestProcessedTransaction("sig-2", "other-wallet")
		err := repo.Create(ctx, second)
		assert.ErrorIs(t, err, interfaces.ErrDuplicateSignature)
	})
}
