package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// ReferralRepository implements referral code, earnings and relationship
// data access
type ReferralRepository struct {
	q Queryable
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(q Queryable) interfaces.ReferralRepository {
	return &ReferralRepository{q: q}
}

// GetCode returns a registered creator code, or nil if unknown
func (r *ReferralRepository) GetCode(ctx context.Context, code string) (*entities.ReferralCode, error) {
	query := `
		SELECT code, owner_wallet, created_at
		FROM referral_codes
		WHERE code = $1
	`

	var rc entities.ReferralCode
	err := r.q.QueryRow(ctx, query, code).Scan(&rc.Code, &rc.OwnerWallet, &rc.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get referral code %s: %w", code, err)
	}
	return &rc, nil
}

// CreateCode registers a creator code
func (r *ReferralRepository) CreateCode(ctx context.Context, code *entities.ReferralCode) error {
	query := `
		INSERT INTO referral_codes (code, owner_wallet)
		VALUES ($1, $2)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, code.Code, code.OwnerWallet).Scan(&code.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("referral code %s already registered", code.Code)
		}
		return fmt.Errorf("failed to create referral code: %w", err)
	}
	return nil
}

// CreditEarnings adds to a referrer's total_earned and pending balances,
// creating the earnings row if needed
func (r *ReferralRepository) CreditEarnings(ctx context.Context, wallet string, lamports int64) error {
	query := `
		INSERT INTO referral_earnings (wallet, total_earned_lamports, pending_lamports, withdrawn_lamports)
		VALUES ($1, $2, $2, 0)
		ON CONFLICT (wallet) DO UPDATE
		SET total_earned_lamports = referral_earnings.total_earned_lamports + $2,
		    pending_lamports = referral_earnings.pending_lamports + $2,
		    updated_at = now()
	`

	if _, err := r.q.Exec(ctx, query, wallet, lamports); err != nil {
		return fmt.Errorf("failed to credit earnings for %s: %w", wallet, err)
	}
	return nil
}

func (r *ReferralRepository) getEarnings(ctx context.Context, wallet, suffix string) (*entities.ReferralEarnings, error) {
	query := `
		SELECT wallet, total_earned_lamports, pending_lamports, withdrawn_lamports, updated_at
		FROM referral_earnings
		WHERE wallet = $1
	` + suffix

	var e entities.ReferralEarnings
	err := r.q.QueryRow(ctx, query, wallet).Scan(
		&e.Wallet,
		&e.TotalEarned,
		&e.Pending,
		&e.Withdrawn,
		&e.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get earnings for %s: %w", wallet, err)
	}
	return &e, nil
}

// GetEarnings returns the earnings row for a wallet, or nil
func (r *ReferralRepository) GetEarnings(ctx context.Context, wallet string) (*entities.ReferralEarnings, error) {
	return r.getEarnings(ctx, wallet, "")
}

// GetEarningsForUpdate returns the earnings row with a row lock
func (r *ReferralRepository) GetEarningsForUpdate(ctx context.Context, wallet string) (*entities.ReferralEarnings, error) {
	return r.getEarnings(ctx, wallet, " FOR UPDATE")
}

// DebitPending subtracts from pending; the balance guard in the WHERE
// clause refuses a debit that would go negative
func (r *ReferralRepository) DebitPending(ctx context.Context, wallet string, lamports int64) error {
	query := `
		UPDATE referral_earnings
		SET pending_lamports = pending_lamports - $2,
		    updated_at = now()
		WHERE wallet = $1
		  AND pending_lamports >= $2
	`

	result, err := r.q.Exec(ctx, query, wallet, lamports)
	if err != nil {
		return fmt.Errorf("failed to debit pending for %s: %w", wallet, err)
	}
	if result.RowsAffected() == 0 {
		return interfaces.ErrInsufficientPending
	}
	return nil
}

// CreditPending adds back to pending (failed withdrawal refund)
func (r *ReferralRepository) CreditPending(ctx context.Context, wallet string, lamports int64) error {
	query := `
		UPDATE referral_earnings
		SET pending_lamports = pending_lamports + $2,
		    updated_at = now()
		WHERE wallet = $1
	`

	result, err := r.q.Exec(ctx, query, wallet, lamports)
	if err != nil {
		return fmt.Errorf("failed to credit pending for %s: %w", wallet, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no earnings row for wallet %s", wallet)
	}
	return nil
}

// CreditWithdrawn adds to the withdrawn total
func (r *ReferralRepository) CreditWithdrawn(ctx context.Context, wallet string, lamports int64) error {
	query := `
		UPDATE referral_earnings
		SET withdrawn_lamports = withdrawn_lamports + $2,
		    updated_at = now()
		WHERE wallet = $1
	`

	result, err := r.q.Exec(ctx, query, wallet, lamports)
	if err != nil {
		return fmt.Errorf("failed to credit withdrawn for %s: %w", wallet, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no earnings row for wallet %s", wallet)
	}
	return nil
}

// UpsertRelationship records cumulative tickets purchased through a
// (referrer, referred) pair
func (r *ReferralRepository) UpsertRelationship(ctx context.Context, referrer, referred string, tickets int64) error {
	query := `
		INSERT INTO referrals (referrer_wallet, referred_wallet, tickets_purchased)
		VALUES ($1, $2, $3)
		ON CONFLICT (referrer_wallet, referred_wallet) DO UPDATE
		SET tickets_purchased = referrals.tickets_purchased + $3,
		    updated_at = now()
	`

	if _, err := r.q.Exec(ctx, query, referrer, referred, tickets); err != nil {
		return fmt.Errorf("failed to upsert referral relationship %s -> %s: %w", referrer, referred, err)
	}
	return nil
}
