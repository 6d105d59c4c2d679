package entities

import "time"

// WithdrawalStatus is the lifecycle state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusFailed    WithdrawalStatus = "failed"
)

// MinWithdrawalLamports is the smallest amount a referrer may withdraw
// (0.05 SOL). Enforced at request time.
const MinWithdrawalLamports int64 = 50_000_000

// WithdrawalRequest is one payout intent against a referrer's pending
// earnings. The amount is debited from pending at request time and either
// moved to withdrawn on completion or refunded on failure.
type WithdrawalRequest struct {
	ID              string           `db:"id"`
	Wallet          string           `db:"wallet"`
	AmountLamports  int64            `db:"amount_lamports"`
	Status          WithdrawalStatus `db:"status"`
	PayoutSignature *string          `db:"payout_signature"`
	FailureReason   *string          `db:"failure_reason"`
	CreatedAt       time.Time        `db:"created_at"`
	CompletedAt     *time.Time       `db:"completed_at"`
}

// IsSettled returns true once the request has reached a terminal state
func (w *WithdrawalRequest) IsSettled() bool {
	return w.Status != WithdrawalStatusPending
}
