package services

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// payoutService implements on-chain disbursement for winners and
// withdrawals. Repositories come from the caller's unit of work; the alert
// publisher is deliberately NOT transactional so settlement-inconsistency
// alerts survive a failed commit.
type payoutService struct {
	winnerRepo     interfaces.WinnerRepository
	withdrawalRepo interfaces.WithdrawalRepository
	referralRepo   interfaces.ReferralRepository
	drawRepo       interfaces.DrawRepository
	chain          interfaces.ChainGateway
	eventPublisher interfaces.EventPublisher
	alertPublisher interfaces.EventPublisher
}

// NewPayoutService creates a payout service bound to one unit of work
func NewPayoutService(
	winnerRepo interfaces.WinnerRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	referralRepo interfaces.ReferralRepository,
	drawRepo interfaces.DrawRepository,
	chain interfaces.ChainGateway,
	eventPublisher interfaces.EventPublisher,
	alertPublisher interfaces.EventPublisher,
) interfaces.PayoutService {
	return &payoutService{
		winnerRepo:     winnerRepo,
		withdrawalRepo: withdrawalRepo,
		referralRepo:   referralRepo,
		drawRepo:       drawRepo,
		chain:          chain,
		eventPublisher: eventPublisher,
		alertPublisher: alertPublisher,
	}
}

// payerForTier maps a draw tier to its disbursing account name
func payerForTier(tier entities.Tier) string {
	switch tier {
	case entities.TierMonthly:
		return interfaces.PayerMonthly
	case entities.TierWeekly:
		return interfaces.PayerWeekly
	default:
		return interfaces.PayerDaily
	}
}

// PayWinner attempts exactly one transfer for an unpaid winner. A transfer
// submission or confirmation failure leaves the winner unpaid for the next
// sweep; a record-update failure after a confirmed transfer is a settlement
// inconsistency and must never be auto-retried.
func (s *payoutService) PayWinner(ctx context.Context, winnerID int64) (*interfaces.PayoutOutcome, error) {
	winner, err := s.winnerRepo.GetByIDForUpdate(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock winner %d: %w", winnerID, err)
	}
	if winner == nil {
		return nil, NewServiceError(CodeValidation, "winner %d not found", winnerID)
	}
	if winner.IsPaid() {
		return &interfaces.PayoutOutcome{Status: interfaces.PayoutSkipped}, nil
	}

	draw, err := s.drawRepo.GetByID(ctx, winner.DrawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", winner.DrawID, err)
	}
	if draw == nil {
		return nil, NewServiceError(CodeValidation, "draw %d for winner %d not found", winner.DrawID, winnerID)
	}

	signature, err := s.transfer(ctx, payerForTier(draw.Tier), winner.Wallet, winner.PrizeLamports)
	if err != nil {
		return nil, fmt.Errorf("failed to disburse prize for winner %d: %w", winnerID, err)
	}

	if err := s.winnerRepo.MarkPaid(ctx, winner.ID, signature); err != nil {
		return nil, s.settlementInconsistency("winner", fmt.Sprintf("%d", winner.ID), winner.Wallet, winner.PrizeLamports, signature, err)
	}

	s.publishSettled("winner", fmt.Sprintf("%d", winner.ID), winner.Wallet, winner.PrizeLamports, signature)

	log.WithFields(log.Fields{
		"winner_id": winner.ID,
		"draw_id":   winner.DrawID,
		"wallet":    winner.Wallet,
		"lamports":  winner.PrizeLamports,
		"signature": signature,
	}).Info("Winner prize disbursed")

	return &interfaces.PayoutOutcome{Status: interfaces.PayoutPaid, Signature: signature}, nil
}

// PayWithdrawal attempts exactly one transfer for a pending withdrawal. A
// submission failure is terminal for the request: it is marked failed and
// the debited pending earnings are refunded.
func (s *payoutService) PayWithdrawal(ctx context.Context, withdrawalID string) (*interfaces.PayoutOutcome, error) {
	req, err := s.withdrawalRepo.GetByIDForUpdate(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock withdrawal %s: %w", withdrawalID, err)
	}
	if req == nil {
		return nil, NewServiceError(CodeValidation, "withdrawal %s not found", withdrawalID)
	}
	if req.IsSettled() {
		return &interfaces.PayoutOutcome{Status: interfaces.PayoutSkipped}, nil
	}

	signature, err := s.transfer(ctx, interfaces.PayerTreasury, req.Wallet, req.AmountLamports)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"withdrawal_id": req.ID,
			"wallet":        req.Wallet,
			"lamports":      req.AmountLamports,
		}).Warn("Withdrawal transfer failed, marking failed and refunding pending")

		if err := s.withdrawalRepo.MarkFailed(ctx, req.ID, err.Error()); err != nil {
			return nil, fmt.Errorf("failed to mark withdrawal %s failed: %w", req.ID, err)
		}
		if err := s.referralRepo.CreditPending(ctx, req.Wallet, req.AmountLamports); err != nil {
			return nil, fmt.Errorf("failed to refund pending earnings for %s: %w", req.Wallet, err)
		}
		return &interfaces.PayoutOutcome{Status: interfaces.PayoutFailed}, nil
	}

	if err := s.withdrawalRepo.MarkCompleted(ctx, req.ID, signature); err != nil {
		return nil, s.settlementInconsistency("withdrawal", req.ID, req.Wallet, req.AmountLamports, signature, err)
	}
	if err := s.referralRepo.CreditWithdrawn(ctx, req.Wallet, req.AmountLamports); err != nil {
		return nil, s.settlementInconsistency("withdrawal", req.ID, req.Wallet, req.AmountLamports, signature, err)
	}

	s.publishSettled("withdrawal", req.ID, req.Wallet, req.AmountLamports, signature)

	log.WithFields(log.Fields{
		"withdrawal_id": req.ID,
		"wallet":        req.Wallet,
		"lamports":      req.AmountLamports,
		"signature":     signature,
	}).Info("Withdrawal disbursed")

	return &interfaces.PayoutOutcome{Status: interfaces.PayoutPaid, Signature: signature}, nil
}

// transfer submits a single native transfer and waits for confirmation
func (s *payoutService) transfer(ctx context.Context, payer, toWallet string, lamports int64) (string, error) {
	signature, err := s.chain.SubmitTransfer(ctx, payer, toWallet, lamports)
	if err != nil {
		return "", fmt.Errorf("transfer submission failed: %w", err)
	}
	if err := s.chain.Confirm(ctx, signature); err != nil {
		return "", fmt.Errorf("transfer confirmation failed: %w", err)
	}
	return signature, nil
}

// settlementInconsistency handles the one failure mode that retry cannot
// fix: funds left the treasury but the record update failed. It alerts
// through the non-transactional publisher and logs at the highest severity;
// the returned error tells the caller to stop, not retry.
func (s *payoutService) settlementInconsistency(kind, itemID, wallet string, lamports int64, signature string, cause error) error {
	log.WithError(cause).WithFields(log.Fields{
		"alert":     "settlement_inconsistency",
		"kind":      kind,
		"item_id":   itemID,
		"wallet":    wallet,
		"lamports":  lamports,
		"signature": signature,
	}).Error("FUNDS SENT ON-CHAIN BUT RECORD UPDATE FAILED - manual reconciliation required")

	if s.alertPublisher != nil {
		if err := s.alertPublisher.Publish(events.SettlementInconsistencyEvent{
			Kind:      kind,
			ItemID:    itemID,
			Wallet:    wallet,
			Lamports:  lamports,
			Signature: signature,
			Detail:    cause.Error(),
		}); err != nil {
			log.WithError(err).Error("failed to publish settlement inconsistency alert")
		}
	}

	return WrapServiceError(CodeSettlementInconsistency, cause,
		"%s %s paid on-chain (signature %s) but record update failed", kind, itemID, signature)
}

func (s *payoutService) publishSettled(kind, itemID, wallet string, lamports int64, signature string) {
	if err := s.eventPublisher.Publish(events.PayoutSettledEvent{
		Kind:      kind,
		ItemID:    itemID,
		Wallet:    wallet,
		Lamports:  lamports,
		Signature: signature,
	}); err != nil {
		log.WithError(err).Warn("failed to publish payout settled event")
	}
}
