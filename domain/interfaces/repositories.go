package interfaces

import (
	"context"
	"errors"
	"time"

	"solotto/domain/entities"
	"solotto/domain/events"
)

// ErrDuplicateSignature is returned when inserting a processed transaction
// whose signature was already credited. The unique constraint behind it is
// the serialization point for concurrent duplicate purchases.
var ErrDuplicateSignature = errors.New("transaction signature already processed")

// ErrInsufficientPending is returned when a pending-earnings debit would go
// negative.
var ErrInsufficientPending = errors.New("insufficient pending earnings")

// DrawRepository defines data access for lottery draws
type DrawRepository interface {
	// GetByID retrieves a draw by its ID
	GetByID(ctx context.Context, id int64) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw by ID with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error)

	// GetOpenByTier returns the draw accepting purchases for a tier, if any.
	// A partial unique index guarantees at most one such draw per tier.
	GetOpenByTier(ctx context.Context, tier entities.Tier) (*entities.Draw, error)

	// GetDueDraws returns active draws whose draw time has elapsed
	GetDueDraws(ctx context.Context, before time.Time) ([]*entities.Draw, error)

	// Create inserts a new draw
	Create(ctx context.Context, draw *entities.Draw) error

	// UpdateStatus moves a draw forward in its lifecycle
	UpdateStatus(ctx context.Context, id int64, status entities.DrawStatus) error

	// IncrementTotals atomically adds to the pool, jackpot and sold counters
	// of an open draw
	IncrementTotals(ctx context.Context, drawID, poolDelta, jackpotDelta, ticketDelta int64) error
}

// TicketRepository defines data access for tickets
type TicketRepository interface {
	// CreateBatch inserts all tickets at once. Ticket codes carry a unique
	// constraint.
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error

	// GetByDraw returns every ticket in a draw's pool
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error)

	// CountByWallet returns the lifetime ticket count for a wallet across
	// all draws (bonus cap enforcement)
	CountByWallet(ctx context.Context, wallet string) (int64, error)
}

// ProcessedTransactionRepository defines the dedupe store for credited
// payments
type ProcessedTransactionRepository interface {
	// Exists reports whether a signature has already been credited
	Exists(ctx context.Context, signature string) (bool, error)

	// Create inserts the dedupe record. Returns ErrDuplicateSignature when
	// the signature was credited concurrently.
	Create(ctx context.Context, tx *entities.ProcessedTransaction) error
}

// FundSplitRepository defines data access for fund split audit records
type FundSplitRepository interface {
	// Create inserts the immutable split record
	Create(ctx context.Context, split *entities.FundSplit) error

	// GetBySignature returns the split recorded for a transaction
	GetBySignature(ctx context.Context, signature string) (*entities.FundSplit, error)
}

// ReferralRepository defines data access for referral codes, earnings and
// relationships
type ReferralRepository interface {
	// GetCode returns a registered creator code, or nil if unknown
	GetCode(ctx context.Context, code string) (*entities.ReferralCode, error)

	// CreateCode registers a creator code
	CreateCode(ctx context.Context, code *entities.ReferralCode) error

	// CreditEarnings adds to a referrer's total_earned and pending balances,
	// creating the earnings row if needed
	CreditEarnings(ctx context.Context, wallet string, lamports int64) error

	// GetEarnings returns the earnings row for a wallet, or nil
	GetEarnings(ctx context.Context, wallet string) (*entities.ReferralEarnings, error)

	// GetEarningsForUpdate returns the earnings row with a row lock
	GetEarningsForUpdate(ctx context.Context, wallet string) (*entities.ReferralEarnings, error)

	// DebitPending subtracts from pending; fails if the balance would go
	// negative
	DebitPending(ctx context.Context, wallet string, lamports int64) error

	// CreditPending adds back to pending (failed withdrawal refund)
	CreditPending(ctx context.Context, wallet string, lamports int64) error

	// CreditWithdrawn adds to the withdrawn total
	CreditWithdrawn(ctx context.Context, wallet string, lamports int64) error

	// UpsertRelationship records cumulative tickets purchased through a
	// (referrer, referred) pair
	UpsertRelationship(ctx context.Context, referrer, referred string, tickets int64) error
}

// WithdrawalRepository defines data access for withdrawal requests
type WithdrawalRepository interface {
	// Create inserts a new pending request
	Create(ctx context.Context, req *entities.WithdrawalRequest) error

	// GetByIDForUpdate retrieves a request with a row lock
	GetByIDForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error)

	// ListPending returns pending requests oldest first
	ListPending(ctx context.Context, limit int) ([]*entities.WithdrawalRequest, error)

	// MarkCompleted records the payout signature and completion time
	MarkCompleted(ctx context.Context, id, signature string) error

	// MarkFailed records a terminal failure
	MarkFailed(ctx context.Context, id, reason string) error
}

// WinnerRepository defines data access for winner records
type WinnerRepository interface {
	// CreateBatch inserts all winners of a draw at once
	CreateBatch(ctx context.Context, winners []*entities.Winner) error

	// GetByIDForUpdate retrieves a winner with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winner, error)

	// ListUnpaid returns winners without a recorded payout, oldest first
	ListUnpaid(ctx context.Context, limit int) ([]*entities.Winner, error)

	// GetByDraw returns all winners of a draw
	GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error)

	// MarkPaid records the payout signature and paid timestamp
	MarkPaid(ctx context.Context, id int64, signature string) error
}

// AuditLogRepository appends immutable audit records
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entities.AuditEntry) error
}

// AdminRoleRepository looks up role grants for privileged operations
type AdminRoleRepository interface {
	// HasRole reports whether the wallet carries the given role
	HasRole(ctx context.Context, wallet, role string) (bool, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding
// transaction resolves. Flush after commit, Discard after rollback.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
