package application

import (
	"context"
	"testing"
	"time"

	"solotto/domain/entities"
	"solotto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDrawSweepFixture() (*FakeUnitOfWork, *testhelpers.MockDrawRepository, *testhelpers.MockTicketRepository, *testhelpers.MockWinnerRepository, *testhelpers.MockAuditLogRepository, *DrawSweepWorker) {
	drawRepo := new(testhelpers.MockDrawRepository)
	ticketRepo := new(testhelpers.MockTicketRepository)
	winnerRepo := new(testhelpers.MockWinnerRepository)
	auditRepo := new(testhelpers.MockAuditLogRepository)
	bus := new(testhelpers.MockEventPublisher)
	bus.On("Publish", mock.Anything).Return(nil)

	uow := &FakeUnitOfWork{
		Draws:    drawRepo,
		Tickets:  ticketRepo,
		Winners:  winnerRepo,
		AuditLog: auditRepo,
		Bus:      bus,
	}
	factory := &FakeUnitOfWorkFactory{New: func() UnitOfWork { return uow }}
	worker := NewDrawSweepWorker(factory, time.Minute)

	return uow, drawRepo, ticketRepo, winnerRepo, auditRepo, worker
}

func TestDrawSweepWorker_Sweep_SettlesDueDraw(t *testing.T) {
	t.Parallel()

	uow, drawRepo, ticketRepo, winnerRepo, auditRepo, worker := newDrawSweepFixture()

	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := &entities.Draw{
		ID:                9,
		Tier:              entities.TierDaily,
		Status:            entities.DrawStatusActive,
		StartTime:         end.AddDate(0, 0, -1),
		EndTime:           end,
		DrawTime:          end,
		TotalPoolLamports: 1_000_000_000,
	}

	drawRepo.On("GetDueDraws", mock.Anything, mock.Anything).Return([]*entities.Draw{due}, nil)
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(9)).Return(due, nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(9)).Return([]*entities.Ticket{
		{ID: 1, DrawID: 9, Wallet: "w"},
	}, nil)
	winnerRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	drawRepo.On("UpdateStatus", mock.Anything, int64(9), entities.DrawStatusCompleted).Return(nil)

	var audited *entities.AuditEntry
	auditRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		audited = args.Get(1).(*entities.AuditEntry)
	}).Return(nil)

	var next *entities.Draw
	drawRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		next = args.Get(1).(*entities.Draw)
	}).Return(nil)

	require.NoError(t, worker.Sweep(context.Background()))

	require.NotNil(t, audited)
	assert.Equal(t, entities.AuditActionDrawCompleted, audited.Action)

	// The successor draw opens where the settled one closed, one cadence later
	require.NotNil(t, next)
	assert.Equal(t, entities.TierDaily, next.Tier)
	assert.Equal(t, entities.DrawStatusActive, next.Status)
	assert.Equal(t, end, next.StartTime)
	assert.Equal(t, end.AddDate(0, 0, 1), next.EndTime)
	assert.Equal(t, end.AddDate(0, 0, 1), next.DrawTime)

	assert.Equal(t, 1, uow.Committed)
}

func TestDrawSweepWorker_Sweep_EmptyDrawAborted(t *testing.T) {
	t.Parallel()

	uow, drawRepo, ticketRepo, winnerRepo, auditRepo, worker := newDrawSweepFixture()

	due := &entities.Draw{
		ID:       4,
		Tier:     entities.TierWeekly,
		Status:   entities.DrawStatusActive,
		DrawTime: time.Now().Add(-time.Hour),
	}

	drawRepo.On("GetDueDraws", mock.Anything, mock.Anything).Return([]*entities.Draw{due}, nil)
	drawRepo.On("GetByIDForUpdate", mock.Anything, int64(4)).Return(due, nil)
	ticketRepo.On("GetByDraw", mock.Anything, int64(4)).Return([]*entities.Ticket{}, nil)

	var audited *entities.AuditEntry
	auditRepo.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		audited = args.Get(1).(*entities.AuditEntry)
	}).Return(nil)

	require.NoError(t, worker.Sweep(context.Background()))

	// The draw stays active for operator review; only the abort is recorded
	require.NotNil(t, audited)
	assert.Equal(t, entities.AuditActionDrawAborted, audited.Action)
	winnerRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	drawRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	drawRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, 1, uow.Committed)
}

func TestDrawSweepWorker_Sweep_NoDueDraws(t *testing.T) {
	t.Parallel()

	uow, drawRepo, _, _, auditRepo, worker := newDrawSweepFixture()

	drawRepo.On("GetDueDraws", mock.Anything, mock.Anything).Return([]*entities.Draw{}, nil)

	require.NoError(t, worker.Sweep(context.Background()))

	auditRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	assert.Equal(t, 0, uow.Committed)
}

func TestAdvanceByTier(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.AddDate(0, 1, 0), advanceByTier(base, entities.TierMonthly))
	assert.Equal(t, base.AddDate(0, 0, 7), advanceByTier(base, entities.TierWeekly))
	assert.Equal(t, base.AddDate(0, 0, 1), advanceByTier(base, entities.TierDaily))
}
