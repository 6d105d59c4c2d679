package repository

import (
	"context"
	"testing"

	"solotto/domain/entities"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundSplitRepository(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	drawRepo := NewDrawRepository(testDB.DB)
	repo := NewFundSplitRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(entities.TierDaily)
	require.NoError(t, drawRepo.Create(ctx, draw))

	t.Run("create and retrieve by signature", func(t *testing.T) {
		code := "CREATOR1"
		split := &entities.FundSplit{
			TransactionSignature: "sig-split",
			DrawID:               draw.ID,
			Wallet:               "buyer-wallet",
			TotalLamports:        10_000_000,
			LotteryLamports:      7_000_000,
			OperatorLamports:     0,
			CreatorLamports:      500_000,
			ReferrerLamports:     2_500_000,
			ReferralKind:         entities.ReferralKindCreator,
			ReferralCode:         &code,
		}

		err := repo.Create(ctx, split)
		require.NoError(t, err)
		assert.NotZero(t, split.ID)

		stored, err := repo.GetBySignature(ctx, "sig-split")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, split.TotalLamports, stored.TotalLamports)
		assert.Equal(t, split.LotteryLamports, stored.LotteryLamports)
		assert.Equal(t, split.ReferrerLamports, stored.ReferrerLamports)
		assert.Equal(t, entities.ReferralKindCreator, stored.ReferralKind)
		require.NotNil(t, stored.ReferralCode)
		assert.Equal(t, code, *stored.ReferralCode)
	})

	t.Run("unknown signature", func(t *testing.T) {
		split, err := repo.GetBySignature(ctx, "never-recorded")
		require.NoError(t, err)
		assert.Nil(t, split)
	})

	t.Run("split that does not sum is refused", func(t *testing.T) {
		split := &entities.FundSplit{
			TransactionSignature: "sig-bad-sum",
			DrawID:               draw.ID,
			Wallet:               "buyer-wallet",
			TotalLamports:        10_000_000,
			LotteryLamports:      7_000_000,
			OperatorLamports:     1_000_000,
			ReferralKind:         entities.ReferralKindNone,
		}

		err := repo.Create(ctx, split)
		assert.Error(t, err)
	})
}
