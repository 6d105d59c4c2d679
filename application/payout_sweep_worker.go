package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"
	"solotto/domain/services"

	log "github.com/sirupsen/logrus"
)

// PayoutSweepWorker disburses unpaid winner prizes and pending withdrawals
// on an interval. Items flagged as settlement inconsistencies are excluded
// from further sweeps for the life of the process; they require manual
// reconciliation, never an automatic retry.
type PayoutSweepWorker struct {
	uowFactory     UnitOfWorkFactory
	chain          interfaces.ChainGateway
	alertPublisher interfaces.EventPublisher
	interval       time.Duration
	batchSize      int

	mu          sync.Mutex
	quarantined map[string]struct{}
}

// NewPayoutSweepWorker creates a new payout sweep worker
func NewPayoutSweepWorker(
	uowFactory UnitOfWorkFactory,
	chain interfaces.ChainGateway,
	alertPublisher interfaces.EventPublisher,
	interval time.Duration,
	batchSize int,
) *PayoutSweepWorker {
	return &PayoutSweepWorker{
		uowFactory:     uowFactory,
		chain:          chain,
		alertPublisher: alertPublisher,
		interval:       interval,
		batchSize:      batchSize,
		quarantined:    make(map[string]struct{}),
	}
}

// Start begins the payout sweep worker. Returns a stop function.
func (w *PayoutSweepWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Payout sweep worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			if err := w.Sweep(ctx); err != nil {
				log.Errorf("Error during payout sweep: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Info("Payout sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Payout sweep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// Sweep processes one batch of unpaid winners and one batch of pending
// withdrawals. Each item runs in its own transaction.
func (w *PayoutSweepWorker) Sweep(ctx context.Context) error {
	winnerIDs, withdrawalIDs, err := w.listPayable(ctx)
	if err != nil {
		return err
	}

	for _, id := range winnerIDs {
		key := fmt.Sprintf("winner:%d", id)
		if w.isQuarantined(key) {
			continue
		}
		if err := w.payOne(ctx, key, func(ctx context.Context, svc interfaces.PayoutService) (*interfaces.PayoutOutcome, error) {
			return svc.PayWinner(ctx, id)
		}, entities.AuditActionWinnerPaid, map[string]any{"winner_id": id}); err != nil {
			log.Errorf("Error paying winner %d: %v", id, err)
		}
	}

	for _, id := range withdrawalIDs {
		key := fmt.Sprintf("withdrawal:%s", id)
		if w.isQuarantined(key) {
			continue
		}
		withdrawalID := id
		if err := w.payOne(ctx, key, func(ctx context.Context, svc interfaces.PayoutService) (*interfaces.PayoutOutcome, error) {
			return svc.PayWithdrawal(ctx, withdrawalID)
		}, entities.AuditActionWithdrawalSettled, map[string]any{"withdrawal_id": id}); err != nil {
			log.Errorf("Error paying withdrawal %s: %v", id, err)
		}
	}

	return nil
}

// listPayable loads the current batch of work in a short read transaction
func (w *PayoutSweepWorker) listPayable(ctx context.Context) ([]int64, []string, error) {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	winners, err := uow.WinnerRepository().ListUnpaid(ctx, w.batchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list unpaid winners: %w", err)
	}
	withdrawals, err := uow.WithdrawalRepository().ListPending(ctx, w.batchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	winnerIDs := make([]int64, 0, len(winners))
	for _, win := range winners {
		winnerIDs = append(winnerIDs, win.ID)
	}
	withdrawalIDs := make([]string, 0, len(withdrawals))
	for _, req := range withdrawals {
		withdrawalIDs = append(withdrawalIDs, req.ID)
	}

	return winnerIDs, withdrawalIDs, nil
}

// payOne runs a single payout attempt in its own transaction. A commit
// failure after a paid outcome means funds left the treasury without the
// record update landing: the item is quarantined and alerted, never retried.
func (w *PayoutSweepWorker) payOne(
	ctx context.Context,
	key string,
	pay func(context.Context, interfaces.PayoutService) (*interfaces.PayoutOutcome, error),
	auditAction string,
	auditDetails map[string]any,
) error {
	uow := w.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	payoutService := services.NewPayoutService(
		uow.WinnerRepository(),
		uow.WithdrawalRepository(),
		uow.ReferralRepository(),
		uow.DrawRepository(),
		w.chain,
		uow.EventBus(),
		w.alertPublisher,
	)

	outcome, err := pay(ctx, payoutService)
	if err != nil {
		if services.IsCode(err, services.CodeSettlementInconsistency) {
			w.quarantine(key)
		}
		return err
	}

	if outcome.Status == interfaces.PayoutSkipped {
		return nil
	}

	details := map[string]any{"status": string(outcome.Status)}
	for k, v := range auditDetails {
		details[k] = v
	}
	if outcome.Signature != "" {
		details["signature"] = outcome.Signature
	}
	if err := uow.AuditLogRepository().Append(ctx, &entities.AuditEntry{
		Action:  auditAction,
		Details: details,
	}); err != nil {
		return fmt.Errorf("failed to record payout audit entry: %w", err)
	}

	if err := uow.Commit(); err != nil {
		if outcome.Status == interfaces.PayoutPaid {
			w.quarantine(key)
			w.alertCommitFailure(key, outcome.Signature, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (w *PayoutSweepWorker) isQuarantined(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.quarantined[key]
	return ok
}

func (w *PayoutSweepWorker) quarantine(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quarantined[key] = struct{}{}
}

// alertCommitFailure reports a paid-but-uncommitted item through the
// non-transactional alert publisher
func (w *PayoutSweepWorker) alertCommitFailure(key, signature string, cause error) {
	log.WithError(cause).WithFields(log.Fields{
		"alert":     "settlement_inconsistency",
		"item":      key,
		"signature": signature,
	}).Error("FUNDS SENT ON-CHAIN BUT RECORD UPDATE FAILED - manual reconciliation required")

	if w.alertPublisher == nil {
		return
	}
	if err := w.alertPublisher.Publish(events.SettlementInconsistencyEvent{
		Kind:      "commit",
		ItemID:    key,
		Signature: signature,
		Detail:    cause.Error(),
	}); err != nil {
		log.WithError(err).Error("failed to publish settlement inconsistency alert")
	}
}
