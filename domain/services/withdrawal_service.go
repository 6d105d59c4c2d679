package services

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"
	"solotto/domain/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Freshness window for signed withdrawal messages. Bounds replay risk; a
// small negative allowance tolerates client clock skew.
const (
	withdrawalMessageMaxAge  = 5 * time.Minute
	withdrawalMessageMaxSkew = 30 * time.Second
)

// WithdrawalMessage builds the exact message a wallet must sign to request
// a withdrawal
func WithdrawalMessage(wallet string, ts time.Time) string {
	return fmt.Sprintf("withdraw:%s:%d", wallet, ts.Unix())
}

// withdrawalService implements the request side of referral withdrawals
type withdrawalService struct {
	referralRepo   interfaces.ReferralRepository
	withdrawalRepo interfaces.WithdrawalRepository
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewWithdrawalService creates a withdrawal service bound to one unit of work
func NewWithdrawalService(
	referralRepo interfaces.ReferralRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WithdrawalService {
	return &withdrawalService{
		referralRepo:   referralRepo,
		withdrawalRepo: withdrawalRepo,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
}

// RequestWithdrawal verifies the signed message, debits pending earnings
// and creates a pending withdrawal request
func (s *withdrawalService) RequestWithdrawal(ctx context.Context, input *interfaces.WithdrawalRequestInput) (*entities.WithdrawalRequest, error) {
	if !utils.IsValidWalletAddress(input.Wallet) {
		return nil, NewServiceError(CodeValidation, "malformed wallet address")
	}
	if input.AmountLamports < entities.MinWithdrawalLamports {
		return nil, NewServiceError(CodeValidation, "amount below minimum withdrawal of %d lamports", entities.MinWithdrawalLamports)
	}

	if err := s.verifySignedMessage(input); err != nil {
		return nil, err
	}

	earnings, err := s.referralRepo.GetEarningsForUpdate(ctx, input.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to lock referral earnings for %s: %w", input.Wallet, err)
	}
	if earnings == nil || earnings.Pending < input.AmountLamports {
		return nil, NewServiceError(CodeValidation, "insufficient pending earnings")
	}

	if err := s.referralRepo.DebitPending(ctx, input.Wallet, input.AmountLamports); err != nil {
		if errors.Is(err, interfaces.ErrInsufficientPending) {
			return nil, NewServiceError(CodeValidation, "insufficient pending earnings")
		}
		return nil, fmt.Errorf("failed to debit pending earnings: %w", err)
	}

	req := &entities.WithdrawalRequest{
		ID:             uuid.NewString(),
		Wallet:         input.Wallet,
		AmountLamports: input.AmountLamports,
		Status:         entities.WithdrawalStatusPending,
	}
	if err := s.withdrawalRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WithdrawalRequestedEvent{
		WithdrawalID: req.ID,
		Wallet:       req.Wallet,
		Lamports:     req.AmountLamports,
	}); err != nil {
		log.WithError(err).Warn("failed to publish withdrawal requested event")
	}

	log.WithFields(log.Fields{
		"withdrawal_id": req.ID,
		"wallet":        req.Wallet,
		"lamports":      req.AmountLamports,
	}).Info("Withdrawal requested")

	return req, nil
}

// verifySignedMessage checks the structured message, its freshness window
// and the ed25519 signature against the wallet's public key
func (s *withdrawalService) verifySignedMessage(input *interfaces.WithdrawalRequestInput) error {
	expected := WithdrawalMessage(input.Wallet, input.Timestamp)
	if input.Message != expected {
		return NewServiceError(CodeAuthorization, "signed message does not match expected structure")
	}

	age := s.now().Sub(input.Timestamp)
	if age > withdrawalMessageMaxAge || age < -withdrawalMessageMaxSkew {
		return NewServiceError(CodeAuthorization, "signed message outside freshness window")
	}

	pubkey, err := utils.DecodeWallet(input.Wallet)
	if err != nil || len(pubkey) != ed25519.PublicKeySize {
		return NewServiceError(CodeAuthorization, "wallet is not a valid ed25519 public key")
	}
	sig, err := utils.DecodeSignature(input.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return NewServiceError(CodeAuthorization, "malformed signature")
	}

	if !ed25519.Verify(ed25519.PublicKey(pubkey), []byte(input.Message), sig) {
		return NewServiceError(CodeAuthorization, "signature verification failed")
	}
	return nil
}
