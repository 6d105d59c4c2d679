package repository

import (
	"context"
	"testing"

	"solotto/domain/entities"
	"solotto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketRepository_CreateBatch(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	drawRepo := NewDrawRepository(testDB.DB)
	repo := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(entities.TierDaily)
	require.NoError(t, drawRepo.Create(ctx, draw))

	t.Run("assigns IDs and timestamps to every ticket", func(t *testing.T) {
		tickets := testutil.CreateTestTickets(draw.ID, 5)

		err := repo.CreateBatch(ctx, tickets)
		require.NoError(t, err)

		for _, ticket := range tickets {
			assert.NotZero(t, ticket.ID)
			assert.False(t, ticket.CreatedAt.IsZero())
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, repo.CreateBatch(ctx, nil))
	})

	t.Run("duplicate ticket code is refused", func(t *testing.T) {
		tickets := testutil.CreateTestTickets(draw.ID, 2)
		tickets[1].Code = tickets[0].Code

		err := repo.CreateBatch(ctx, tickets)
		assert.Error(t, err)
	})
}

func TestTicketRepository_GetByDraw(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	drawRepo := NewDrawRepository(testDB.DB)
	repo := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(entities.TierDaily)
	require.NoError(t, drawRepo.Create(ctx, draw))

	t.Run("no tickets", func(t *testing.T) {
		tickets, err := repo.GetByDraw(ctx, draw.ID)
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})

	t.Run("returns tickets in insertion order", func(t *testing.T) {
		created := testutil.CreateTestTickets(draw.ID, 3)
		require.NoError(t, repo.CreateBatch(ctx, created))

		tickets, err := repo.GetByDraw(ctx, draw.ID)
		require.NoError(t, err)
		require.Len(t, tickets, 3)

		for i, ticket := range tickets {
			assert.Equal(t, created[i].ID, ticket.ID)
			assert.Equal(t, created[i].Code, ticket.Code)
			assert.Equal(t, created[i].Wallet, ticket.Wallet)
		}
	})
}

func TestTicketRepository_CountByWallet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	drawRepo := NewDrawRepository(testDB.DB)
	repo := NewTicketRepository(testDB.DB)
	ctx := context.Background()

	daily := testutil.CreateTestDraw(entities.TierDaily)
	require.NoError(t, drawRepo.Create(ctx, daily))
	weekly := testutil.CreateTestDraw(entities.TierWeekly)
	require.NoError(t, drawRepo.Create(ctx, weekly))

	t.Run("no tickets", func(t *testing.T) {
		count, err := repo.CountByWallet(ctx, "unknown-wallet")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("counts across draws", func(t *testing.T) {
		first := testutil.CreateTestTickets(daily.ID, 2)
		for _, ticket := range first {
			ticket.Wallet = "counted-wallet"
		}
		require.NoError(t, repo.CreateBatch(ctx, first))

		second := testutil.CreateTestTickets(weekly.ID, 3)
		for _, ticket := range second {
			ticket.Wallet = "counted-wallet"
		}
		require.NoError(t, repo.CreateBatch(ctx, second))

		other := testutil.CreateTestTickets(daily.ID, 4)
		require.NoError(t, repo.CreateBatch(ctx, other))

		count, err := repo.CountByWallet(ctx, "counted-wallet")
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})
}
