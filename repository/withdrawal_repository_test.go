package repository

import (
	"context"
	"testing"

	"solotto/domain/entities"
	"solotto/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		req := testutil.CreateTestWithdrawal(uuid.New().String(), "ref-wallet", 60_000_000)

		err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.False(t, req.CreatedAt.IsZero())

		stored, err := repo.GetByIDForUpdate(ctx, req.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, req.Wallet, stored.Wallet)
		assert.Equal(t, req.AmountLamports, stored.AmountLamports)
		assert.Equal(t, entities.WithdrawalStatusPending, stored.Status)
		assert.Nil(t, stored.PayoutSignature)
		assert.Nil(t, stored.CompletedAt)
	})

	t.Run("unknown ID", func(t *testing.T) {
		req, err := repo.GetByIDForUpdate(ctx, uuid.New().String())
		require.NoError(t, err)
		assert.Nil(t, req)
	})
}

func TestWithdrawalRepository_ListPending(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no pending requests", func(t *testing.T) {
		reqs, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, reqs)
	})

	t.Run("excludes settled requests", func(t *testing.T) {
		pending := testutil.CreateTestWithdrawal(uuid.New().String(), "wallet-a", 50_000_000)
		require.NoError(t, repo.Create(ctx, pending))

		completed := testutil.CreateTestWithdrawal(uuid.New().String(), "wallet-b", 60_000_000)
		require.NoError(t, repo.Create(ctx, completed))
		require.NoError(t, repo.MarkCompleted(ctx, completed.ID, "sig-done"))

		failed := testutil.CreateTestWithdrawal(uuid.New().String(), "wallet-c", 70_000_000)
		require.NoError(t, repo.Create(ctx, failed))
		require.NoError(t, repo.MarkFailed(ctx, failed.ID, "destination rejected"))

		reqs, err := repo.ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, pending.ID, reqs[0].ID)
	})
}

func TestWithdrawalRepository_MarkCompleted(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	t.Run("records signature and completion time", func(t *testing.T) {
		req := testutil.CreateTestWithdrawal(uuid.New().String(), "ref-wallet", 55_000_000)
		require.NoError(t, repo.Create(ctx, req))

		require.NoError(t, repo.MarkCompleted(ctx, req.ID, "sig-settle"))

		stored, err := repo.GetByIDForUpdate(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WithdrawalStatusCompleted, stored.Status)
		require.NotNil(t, stored.PayoutSignature)
		assert.Equal(t, "sig-settle", *stored.PayoutSignature)
		assert.NotNil(t, stored.CompletedAt)
	})

	t.Run("settled request cannot complete again", func(t *testing.T) {
		req := testutil.CreateTestWithdrawal(uuid.New().String(), "ref-wallet", 55_000_000)
		require.NoError(t, repo.Create(ctx, req))
		require.NoError(t, repo.MarkCompleted(ctx, req.ID, "sig-first"))

		err := repo.MarkCompleted(ctx, req.ID, "sig-second")
		assert.Error(t, err)

		stored, err := repo.GetByIDForUpdate(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, "sig-first", *stored.PayoutSignature)
	})
}

func TestWithdrawalRepository_MarkFailed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	t.Run("records the failure reason", func(t *testing.T) {
		req := testutil.CreateTestWithdrawal(uuid.New().String(), "ref-wallet", 90_000_000)
		require.NoError(t, repo.Create(ctx, req))

		require.NoError(t, repo.MarkFailed(ctx, req.ID, "transfer rejected"))

		stored, err := repo.GetByIDForUpdate(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.WithdrawalStatusFailed, stored.Status)
		require.NotNil(t, stored.FailureReason)
		assert.Equal(t, "transfer rejected", *stored.FailureReason)
	})

	t.Run("completed request cannot fail", func(t *testing.T) {
		req := testutil.CreateTestWithdrawal(uuid.New().String(), "ref-wallet", 90_000_000)
		require.NoError(t, repo.Create(ctx, req))
		require.NoError(t, repo.MarkCompleted(ctx, req.ID, "sig-done"))

		err := repo.MarkFailed(ctx, req.ID, "too late")
		assert.Error(t, err)
	})
}
