package repository

import (
	"context"
	"testing"

	"solotto/domain/entities"
	"solotto/domain/interfaces"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralRepository_Codes(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReferralRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		code, err := repo.GetCode(ctx, "NOSUCH")
		require.NoError(t, err)
		assert.Nil(t, code)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		created := &entities.ReferralCode{Code: "CREATOR1", OwnerWallet: "creator-wallet"}
		require.NoError(t, repo.CreateCode(ctx, created))
		assert.False(t, created.CreatedAt.IsZero())

		code, err := repo.GetCode(ctx, "CREATOR1")
		require.NoError(t, err)
		require.NotNil(t, code)
		assert.Equal(t, "CREATOR1", code.Code)
		assert.Equal(t, "creator-wallet", code.OwnerWallet)
	})

	t.Run("duplicate code is refused", func(t *testing.T) {
		require.NoError(t, repo.CreateCode(ctx, &entities.ReferralCode{Code: "TAKEN", OwnerWallet: "wallet-a"}))

		err := repo.CreateCode(ctx, &entities.ReferralCode{Code: "TAKEN", OwnerWallet: "wallet-b"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})
}

func TestReferralRepository_Earnings(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReferralRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no earnings row", func(t *testing.T) {
		earnings, err := repo.GetEarnings(ctx, "unknown-wallet")
		require.NoError(t, err)
		assert.Nil(t, earnings)
	})

	t.Run("credit creates the row then accumulates", func(t *testing.T) {
		require.NoError(t, repo.CreditEarnings(ctx, "ref-wallet", 2_500_000))
		require.NoError(t, repo.CreditEarnings(ctx, "ref-wallet", 1_000_000))

		earnings, err := repo.GetEarnings(ctx, "ref-wallet")
		require.NoError(t, err)
		require.NotNil(t, earnings)
		assert.Equal(t, int64(3_500_000), earnings.TotalEarned)
		assert.Equal(t, int64(3_500_000), earnings.Pending)
		assert.Equal(t, int64(0), earnings.Withdrawn)
	})

	t.Run("debit respects the pending balance", func(t *testing.T) {
		require.NoError(t, repo.CreditEarnings(ctx, "debit-wallet", 100_000_000))

		require.NoError(t, repo.DebitPending(ctx, "debit-wallet", 60_000_000))

		err := repo.DebitPending(ctx, "debit-wallet", 60_000_000)
		assert.ErrorIs(t, err, interfaces.ErrInsufficientPending)

		earnings, err := repo.GetEarnings(ctx, "debit-wallet")
		require.NoError(t, err)
		assert.Equal(t, int64(40_000_000), earnings.Pending)
		assert.Equal(t, int64(100_000_000), earnings.TotalEarned)
	})

	t.Run("debit without an earnings row", func(t *testing.T) {
		err := repo.DebitPending(ctx, "no-row-wallet", 1)
		assert.ErrorIs(t, err, interfaces.ErrInsufficientPending)
	})

	t.Run("failed withdrawal refund restores pending", func(t *testing.T) {
		require.NoError(t, repo.CreditEarnings(ctx, "refund-wallet", 80_000_000))
		require.NoError(t, repo.DebitPending(ctx, "refund-wallet", 80_000_000))
		require.NoError(t, repo.CreditPending(ctx, "refund-wallet", 80_000_000))

		earnings, err := repo.GetEarnings(ctx, "refund-wallet")
		require.NoError(t, err)
		assert.Equal(t, int64(80_000_000), earnings.Pending)
	})

	t.Run("settled withdrawal moves the amount to withdrawn", func(t *testing.T) {
		require.NoError(t, repo.CreditEarnings(ctx, "settled-wallet", 70_000_000))
		require.NoError(t, repo.DebitPending(ctx, "settled-wallet", 70_000_000))
		require.NoError(t, repo.CreditWithdrawn(ctx, "settled-wallet", 70_000_000))

		earnings, err := repo.GetEarnings(ctx, "settled-wallet")
		require.NoError(t, err)
		assert.Equal(t, int64(0), earnings.Pending)
		assert.Equal(t, int64(70_000_000), earnings.Withdrawn)
		assert.Equal(t, int64(70_000_000), earnings.TotalEarned)
	})

	t.Run("credit withdrawn without an earnings row", func(t *testing.T) {
		err := repo.CreditWithdrawn(ctx, "no-row-wallet", 1)
		assert.Error(t, err)
	})
}

func TestReferralRepository_UpsertRelationship(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewReferralRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.UpsertRelationship(ctx, "referrer", "referred", 10))
	require.NoError(t, repo.UpsertRelationship(ctx, "referrer", "referred", 5))
	require.NoError(t, repo.UpsertRelationship(ctx, "referrer", "other", 3))

	var tickets int64
	err := testDB.DB.Pool.QueryRow(ctx,
		`SELECT tickets_purchased FROM referrals WHERE referrer_wallet = $1 AND referred_wallet = $2`,
		"referrer", "referred").Scan(&tickets)
	require.NoError(t, err)
	assert.Equal(t, int64(15), tickets)

	var pairs int64
	err = testDB.DB.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_wallet = $1`, "referrer").Scan(&pairs)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pairs)
}
