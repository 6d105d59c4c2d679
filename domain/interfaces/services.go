package interfaces

import (
	"context"
	"time"

	"solotto/domain/entities"
)

// PurchaseRequest is a claimed ticket purchase awaiting verification
type PurchaseRequest struct {
	Wallet               string
	TicketCount          int64
	ReferralCode         string // empty for none
	TransactionSignature string
	DrawID               int64
	Tier                 entities.Tier
}

// PurchaseResult reports the credited tickets
type PurchaseResult struct {
	TicketCount  int64
	BonusTickets int64
	TotalTickets int64
	TicketCodes  []string
}

// PurchaseService verifies a claimed purchase against the chain and credits
// tickets
type PurchaseService interface {
	ProcessPurchase(ctx context.Context, req *PurchaseRequest) (*PurchaseResult, error)
}

// DrawResult summarizes winner selection for one draw
type DrawResult struct {
	Draw      *entities.Draw
	PrizePool int64
	Winners   []*entities.Winner
}

// DrawService selects winners for due draws and completes them
type DrawService interface {
	// ConductDraw settles a single due draw: shuffles its ticket pool,
	// allocates prizes per the tier's distribution table, persists the
	// winner batch and marks the draw completed.
	ConductDraw(ctx context.Context, drawID int64) (*DrawResult, error)
}

// PayoutStatus classifies the outcome of a single payout attempt
type PayoutStatus string

const (
	PayoutPaid    PayoutStatus = "paid"
	PayoutFailed  PayoutStatus = "failed"
	PayoutSkipped PayoutStatus = "skipped"
)

// PayoutOutcome reports what happened to one item. For PayoutFailed the
// failure was terminal and has been recorded; retryable failures surface as
// errors instead so the caller rolls back and the next sweep retries.
type PayoutOutcome struct {
	Status    PayoutStatus
	Signature string
}

// PayoutService disburses on-chain payments for unpaid winners and pending
// withdrawals. Each item is safe to process concurrently and to retry: a
// row lock plus a persisted-status re-check guarantee at most one transfer.
type PayoutService interface {
	// PayWinner attempts exactly one transfer for an unpaid winner
	PayWinner(ctx context.Context, winnerID int64) (*PayoutOutcome, error)

	// PayWithdrawal attempts exactly one transfer for a pending withdrawal
	PayWithdrawal(ctx context.Context, withdrawalID string) (*PayoutOutcome, error)
}

// WithdrawalRequestInput is a signature-authenticated withdrawal intent
type WithdrawalRequestInput struct {
	Wallet         string
	AmountLamports int64
	Timestamp      time.Time
	Message        string // the exact signed message
	Signature      string // base58 ed25519 signature over Message
}

// WithdrawalService handles the request side of referral withdrawals
type WithdrawalService interface {
	// RequestWithdrawal verifies the signed message, debits pending
	// earnings and creates a pending withdrawal request
	RequestWithdrawal(ctx context.Context, input *WithdrawalRequestInput) (*entities.WithdrawalRequest, error)
}

// Shuffler produces a uniformly random permutation of n elements, expressed
// as an index permutation. Kept abstract so a verifiable-random-function
// source can replace the default generator without touching allocation
// logic.
type Shuffler interface {
	Permutation(n int) ([]int, error)
}

// RateLimiter is the sliding-window admission control used by the guard.
// Implementations fail open: a backing-store outage must not lock callers
// out, but every fail-open pass is reported.
type RateLimiter interface {
	// Allow reports whether the identifier may proceed, and whether the
	// decision was degraded (fail-open because the limiter backend was
	// unavailable).
	Allow(ctx context.Context, identifier string) (allowed, degraded bool, err error)
}

// PriceSource provides a best-effort SOL/USD price with a hard fallback
type PriceSource interface {
	// PriceUsd returns the current cached price, falling back to the
	// configured worst-case assumption when no fresh quote is available
	PriceUsd(ctx context.Context) float64
}
