package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"
)

// ProcessedTransactionRepository implements the payment dedupe store
type ProcessedTransactionRepository struct {
	q Queryable
}

// NewProcessedTransactionRepository creates a new processed transaction repository
func NewProcessedTransactionRepository(q Queryable) interfaces.ProcessedTransactionRepository {
	return &ProcessedTransactionRepository{q: q}
}

// Exists reports whether a signature has already been credited
func (r *ProcessedTransactionRepository) Exists(ctx context.Context, signature string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed_transactions WHERE signature = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, signature).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check processed transaction %s: %w", signature, err)
	}
	return exists, nil
}

// Create inserts the dedupe record. The unique constraint on signature is
// the serialization point for concurrent duplicate purchases.
func (r *ProcessedTransactionRepository) Create(ctx context.Context, tx *entities.ProcessedTransaction) error {
	query := `
		INSERT INTO processed_transactions (signature, wallet, amount_lamports, ticket_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, tx.Signature, tx.Wallet, tx.AmountLamports, tx.TicketCount).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return interfaces.ErrDuplicateSignature
		}
		return fmt.Errorf("failed to create processed transaction: %w", err)
	}
	return nil
}
