package repository

import (
	"context"
	"testing"
	"time"

	"solotto/domain/entities"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierDaily)

		err := repo.Create(ctx, draw)
		require.NoError(t, err)

		assert.NotZero(t, draw.ID)
		assert.Equal(t, int64(0), draw.TotalPoolLamports)
		assert.Equal(t, int64(0), draw.JackpotLamports)
		assert.Equal(t, int64(0), draw.TotalTicketsSold)
		assert.False(t, draw.CreatedAt.IsZero())
	})

	t.Run("second open draw for the same tier is refused", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierWeekly)
		require.NoError(t, repo.Create(ctx, draw))

		another := testutil.CreateTestDraw(entities.TierWeekly)
		err := repo.Create(ctx, another)
		assert.Error(t, err)
	})

	t.Run("completed draw does not block a new one", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierMonthly)
		require.NoError(t, repo.Create(ctx, draw))
		require.NoError(t, repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusCompleted))

		next := testutil.CreateTestDraw(entities.TierMonthly)
		require.NoError(t, repo.Create(ctx, next))
		assert.NotEqual(t, draw.ID, next.ID)
	})
}

func TestDrawRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("draw not found", func(t *testing.T) {
		draw, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, draw)
	})

	t.Run("draw found", func(t *testing.T) {
		created := testutil.CreateTestDraw(entities.TierDaily)
		require.NoError(t, repo.Create(ctx, created))

		draw, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, draw)

		assert.Equal(t, created.ID, draw.ID)
		assert.Equal(t, entities.TierDaily, draw.Tier)
		assert.Equal(t, entities.DrawStatusActive, draw.Status)
		assert.True(t, draw.StartTime.Equal(created.StartTime))
		assert.True(t, draw.EndTime.Equal(created.EndTime))
		assert.True(t, draw.DrawTime.Equal(created.DrawTime))
	})
}

func TestDrawRepository_GetOpenByTier(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no open draw", func(t *testing.T) {
		draw, err := repo.GetOpenByTier(ctx, entities.TierMonthly)
		require.NoError(t, err)
		assert.Nil(t, draw)
	})

	t.Run("returns the open draw for the tier only", func(t *testing.T) {
		daily := testutil.CreateTestDraw(entities.TierDaily)
		require.NoError(t, repo.Create(ctx, daily))

		weekly := testutil.CreateTestDraw(entities.TierWeekly)
		require.NoError(t, repo.Create(ctx, weekly))

		draw, err := repo.GetOpenByTier(ctx, entities.TierDaily)
		require.NoError(t, err)
		require.NotNil(t, draw)
		assert.Equal(t, daily.ID, draw.ID)
	})

	t.Run("pre_order draw counts as open", func(t *testing.T) {
		preOrder := testutil.CreateTestDraw(entities.TierMonthly)
		preOrder.Status = entities.DrawStatusPreOrder
		require.NoError(t, repo.Create(ctx, preOrder))

		draw, err := repo.GetOpenByTier(ctx, entities.TierMonthly)
		require.NoError(t, err)
		require.NotNil(t, draw)
		assert.Equal(t, preOrder.ID, draw.ID)
	})

	t.Run("completed draw is not open", func(t *testing.T) {
		daily, err := repo.GetOpenByTier(ctx, entities.TierDaily)
		require.NoError(t, err)
		require.NotNil(t, daily)
		require.NoError(t, repo.UpdateStatus(ctx, daily.ID, entities.DrawStatusCompleted))

		draw, err := repo.GetOpenByTier(ctx, entities.TierDaily)
		require.NoError(t, err)
		assert.Nil(t, draw)
	})
}

func TestDrawRepository_GetDueDraws(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no due draws", func(t *testing.T) {
		draws, err := repo.GetDueDraws(ctx, time.Now())
		require.NoError(t, err)
		assert.Empty(t, draws)
	})

	t.Run("returns only active draws past their draw time", func(t *testing.T) {
		due := testutil.CreateTestDueDraw(entities.TierDaily)
		require.NoError(t, repo.Create(ctx, due))

		notYet := testutil.CreateTestDraw(entities.TierWeekly)
		require.NoError(t, repo.Create(ctx, notYet))

		preOrder := testutil.CreateTestDueDraw(entities.TierMonthly)
		preOrder.Status = entities.DrawStatusPreOrder
		require.NoError(t, repo.Create(ctx, preOrder))

		draws, err := repo.GetDueDraws(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, draws, 1)
		assert.Equal(t, due.ID, draws[0].ID)
	})
}

func TestDrawRepository_UpdateStatus(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("activates a pre_order draw", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierDaily)
		draw.Status = entities.DrawStatusPreOrder
		require.NoError(t, repo.Create(ctx, draw))

		require.NoError(t, repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusActive))

		updated, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.DrawStatusActive, updated.Status)
	})

	t.Run("completed draw cannot move backward", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierWeekly)
		require.NoError(t, repo.Create(ctx, draw))
		require.NoError(t, repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusCompleted))

		err := repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusActive)
		assert.Error(t, err)

		unchanged, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.DrawStatusCompleted, unchanged.Status)
	})

	t.Run("draw not found", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, 999999, entities.DrawStatusCompleted)
		assert.Error(t, err)
	})
}

func TestDrawRepository_IncrementTotals(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("accumulates pool, jackpot and ticket counters", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierDaily)
		require.NoError(t, repo.Create(ctx, draw))

		require.NoError(t, repo.IncrementTotals(ctx, draw.ID, 10_000_000, 7_000_000, 10))
		require.NoError(t, repo.IncrementTotals(ctx, draw.ID, 5_000_000, 3_500_000, 5))

		updated, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(15_000_000), updated.TotalPoolLamports)
		assert.Equal(t, int64(10_500_000), updated.JackpotLamports)
		assert.Equal(t, int64(15), updated.TotalTicketsSold)
	})

	t.Run("refuses a completed draw", func(t *testing.T) {
		draw := testutil.CreateTestDraw(entities.TierWeekly)
		require.NoError(t, repo.Create(ctx, draw))
		require.NoError(t, repo.UpdateStatus(ctx, draw.ID, entities.DrawStatusCompleted))

		err := repo.IncrementTotals(ctx, draw.ID, 1_000_000, 700_000, 1)
		assert.Error(t, err)
	})
}
