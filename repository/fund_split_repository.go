package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// FundSplitRepository implements fund split audit record access
type FundSplitRepository struct {
	q Queryable
}

// NewFundSplitRepository creates a new fund split repository
func NewFundSplitRepository(q Queryable) interfaces.FundSplitRepository {
	return &FundSplitRepository{q: q}
}

// Create inserts the immutable split record
func (r *FundSplitRepository) Create(ctx context.Context, split *entities.FundSplit) error {
	query := `
		INSERT INTO fund_splits (transaction_signature, draw_id, wallet, total_lamports,
		                         lottery_lamports, operator_lamports, creator_lamports,
		                         referrer_lamports, referral_kind, referral_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		split.TransactionSignature,
		split.DrawID,
		split.Wallet,
		split.TotalLamports,
		split.LotteryLamports,
		split.OperatorLamports,
		split.CreatorLamports,
		split.ReferrerLamports,
		split.ReferralKind,
		split.ReferralCode,
	).Scan(&split.ID, &split.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fund split: %w", err)
	}
	return nil
}

// GetBySignature returns the split recorded for a transaction
func (r *FundSplitRepository) GetBySignature(ctx context.Context, signature string) (*entities.FundSplit, error) {
	query := `
		SELECT id, transaction_signature, draw_id, wallet, total_lamports,
		       lottery_lamports, operator_lamports, creator_lamports,
		       referrer_lamports, referral_kind, referral_code, created_at
		FROM fund_splits
		WHERE transaction_signature = $1
	`

	var split entities.FundSplit
	err := r.q.QueryRow(ctx, query, signature).Scan(
		&split.ID,
		&split.TransactionSignature,
		&split.DrawID,
		&split.Wallet,
		&split.TotalLamports,
		&split.LotteryLamports,
		&split.OperatorLamports,
		&split.CreatorLamports,
		&split.ReferrerLamports,
		&split.ReferralKind,
		&split.ReferralCode,
		&split.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund split for %s: %w", signature, err)
	}
	return &split, nil
}
