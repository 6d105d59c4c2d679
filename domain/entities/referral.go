package entities

import "time"

// ReferralCode maps a registered creator code to its owning wallet
type ReferralCode struct {
	Code        string    `db:"code"`
	OwnerWallet string    `db:"owner_wallet"`
	CreatedAt   time.Time `db:"created_at"`
}

// ReferralEarnings holds a referrer's running totals in lamports.
// Invariant: TotalEarned == Pending + Withdrawn, modulo withdrawal requests
// in flight (their amount is carried on the request row until settled).
type ReferralEarnings struct {
	Wallet      string    `db:"wallet"`
	TotalEarned int64     `db:"total_earned_lamports"`
	Pending     int64     `db:"pending_lamports"`
	Withdrawn   int64     `db:"withdrawn_lamports"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Referral tracks the cumulative relationship between a referrer and one
// referred wallet
type Referral struct {
	ID               int64     `db:"id"`
	ReferrerWallet   string    `db:"referrer_wallet"`
	ReferredWallet   string    `db:"referred_wallet"`
	TicketsPurchased int64     `db:"tickets_purchased"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
