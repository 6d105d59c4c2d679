package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solotto/domain/entities"
	"solotto/domain/services"

	log "github.com/sirupsen/logrus"
)

// DrawSweepWorker settles due draws on an interval and schedules the next
// draw for each settled tier
type DrawSweepWorker struct {
	uowFactory UnitOfWorkFactory
	interval   time.Duration
}

// NewDrawSweepWorker creates a new draw sweep worker
func NewDrawSweepWorker(uowFactory UnitOfWorkFactory, interval time.Duration) *DrawSweepWorker {
	return &DrawSweepWorker{
		uowFactory: uowFactory,
		interval:   interval,
	}
}

// Start begins the draw sweep worker. Returns a stop function.
func (w *DrawSweepWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Draw sweep worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if err := w.Sweep(ctx); err != nil {
				log.Errorf("Error processing due draws: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Info("Draw sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Draw sweep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// Sweep settles every draw whose draw time has elapsed. Each draw gets its
// own transaction so one failure never blocks the others.
func (w *DrawSweepWorker) Sweep(ctx context.Context) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	dueDraws, err := uow.DrawRepository().GetDueDraws(ctx, time.Now().UTC())
	if err != nil {
		uow.Rollback()
		return fmt.Errorf("failed to get due draws: %w", err)
	}
	uow.Rollback() // Close the read transaction

	if len(dueDraws) == 0 {
		return nil
	}

	log.Infof("Found %d due draws to settle", len(dueDraws))

	var successCount, failureCount int
	for _, draw := range dueDraws {
		if err := w.settleDraw(ctx, draw.ID); err != nil {
			log.Errorf("Error settling draw %d (%s): %v", draw.ID, draw.Tier, err)
			failureCount++
		} else {
			successCount++
		}
	}

	log.WithFields(log.Fields{
		"total_draws": len(dueDraws),
		"successful":  successCount,
		"failed":      failureCount,
	}).Info("Completed draw sweep")

	return nil
}

// settleDraw conducts a single draw in its own transaction
func (w *DrawSweepWorker) settleDraw(ctx context.Context, drawID int64) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	drawService := services.NewDrawService(
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.WinnerRepository(),
		services.NewCryptoShuffler(),
		uow.EventBus(),
	)

	result, err := drawService.ConductDraw(ctx, drawID)
	if err != nil {
		if errors.Is(err, services.ErrEmptyDraw) {
			uow.Rollback()
			return w.recordAbortedDraw(ctx, drawID)
		}
		return fmt.Errorf("failed to conduct draw: %w", err)
	}

	if err := uow.AuditLogRepository().Append(ctx, &entities.AuditEntry{
		Action: entities.AuditActionDrawCompleted,
		Details: map[string]any{
			"draw_id":      result.Draw.ID,
			"tier":         result.Draw.Tier,
			"prize_pool":   result.PrizePool,
			"winner_count": len(result.Winners),
		},
	}); err != nil {
		return fmt.Errorf("failed to record draw audit entry: %w", err)
	}

	if err := w.scheduleNext(ctx, uow, result.Draw); err != nil {
		return fmt.Errorf("failed to schedule next draw: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// recordAbortedDraw writes the empty-draw audit entry in a fresh transaction
// after the settlement attempt has been rolled back
func (w *DrawSweepWorker) recordAbortedDraw(ctx context.Context, drawID int64) error {
	log.WithField("draw_id", drawID).Warn("Due draw has no tickets, leaving it for operator review")

	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AuditLogRepository().Append(ctx, &entities.AuditEntry{
		Action: entities.AuditActionDrawAborted,
		Details: map[string]any{
			"draw_id": drawID,
			"reason":  "no tickets sold",
		},
	}); err != nil {
		return fmt.Errorf("failed to record abort audit entry: %w", err)
	}

	return uow.Commit()
}

// scheduleNext creates the following draw for a settled tier. The partial
// unique index on open draws makes a concurrent duplicate insert fail, which
// is the desired outcome.
func (w *DrawSweepWorker) scheduleNext(ctx context.Context, uow UnitOfWork, completed *entities.Draw) error {
	start := completed.EndTime
	end := advanceByTier(start, completed.Tier)

	next := &entities.Draw{
		Tier:      completed.Tier,
		Status:    entities.DrawStatusActive,
		StartTime: start,
		EndTime:   end,
		DrawTime:  end,
	}

	if err := uow.DrawRepository().Create(ctx, next); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"draw_id":   next.ID,
		"tier":      next.Tier,
		"draw_time": next.DrawTime.UTC(),
	}).Info("Scheduled next draw")

	return nil
}

func advanceByTier(t time.Time, tier entities.Tier) time.Time {
	switch tier {
	case entities.TierMonthly:
		return t.AddDate(0, 1, 0)
	case entities.TierWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 1)
	}
}
