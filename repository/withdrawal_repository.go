package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const withdrawalColumns = `id, wallet, amount_lamports, status, payout_signature,
	       failure_reason, created_at, completed_at`

// WithdrawalRepository implements withdrawal request data access
type WithdrawalRepository struct {
	q Queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(q Queryable) interfaces.WithdrawalRepository {
	return &WithdrawalRepository{q: q}
}

// Create inserts a new pending request
func (r *WithdrawalRepository) Create(ctx context.Context, req *entities.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (id, wallet, amount_lamports, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, req.ID, req.Wallet, req.AmountLamports, req.Status).
		Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return nil
}

// GetByIDForUpdate retrieves a request with a row lock
func (r *WithdrawalRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`

	var req entities.WithdrawalRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.Wallet,
		&req.AmountLamports,
		&req.Status,
		&req.PayoutSignature,
		&req.FailureReason,
		&req.CreatedAt,
		&req.CompletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %s for update: %w", id, err)
	}
	return &req, nil
}

// ListPending returns pending requests oldest first
func (r *WithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*entities.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var reqs []*entities.WithdrawalRequest
	for rows.Next() {
		var req entities.WithdrawalRequest
		err := rows.Scan(
			&req.ID,
			&req.Wallet,
			&req.AmountLamports,
			&req.Status,
			&req.PayoutSignature,
			&req.FailureReason,
			&req.CreatedAt,
			&req.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal request: %w", err)
		}
		reqs = append(reqs, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawal requests: %w", err)
	}

	return reqs, nil
}

// MarkCompleted records the payout signature and completion time. Only a
// pending request can complete; the status guard keeps a settled amount
// from being reprocessed.
func (r *WithdrawalRepository) MarkCompleted(ctx context.Context, id, signature string) error {
	query := `
		UPDATE withdrawal_requests
		SET status = 'completed',
		    payout_signature = $2,
		    completed_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, signature)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawal %s completed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal %s not found or not pending", id)
	}
	return nil
}

// MarkFailed records a terminal failure
func (r *WithdrawalRepository) MarkFailed(ctx context.Context, id, reason string) error {
	query := `
		UPDATE withdrawal_requests
		SET status = 'failed',
		    failure_reason = $2,
		    completed_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, id, reason)
	if err != nil {
		return fmt.Errorf("failed to mark withdrawal %s failed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("withdrawal %s not found or not pending", id)
	}
	return nil
}
