package entities

import "time"

// PrizeTier labels the kind of prize a winner row represents
type PrizeTier string

const (
	PrizeTierJackpot  PrizeTier = "jackpot"
	PrizeTierRunnerUp PrizeTier = "runner-up"
	PrizeTierRandom   PrizeTier = "random"
)

// Winner is one prize allocation for a completed draw. Created in a single
// batch by the draw engine; only the payout disburser may set the payout
// signature and paid timestamp.
type Winner struct {
	ID              int64      `db:"id"`
	DrawID          int64      `db:"draw_id"`
	TicketID        int64      `db:"ticket_id"`
	Wallet          string     `db:"wallet"`
	PrizeTier       PrizeTier  `db:"prize_tier"`
	PrizeLamports   int64      `db:"prize_lamports"`
	PayoutSignature *string    `db:"payout_signature"`
	PaidAt          *time.Time `db:"paid_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// IsPaid returns true if the prize has been disbursed on-chain
func (w *Winner) IsPaid() bool {
	return w.PaidAt != nil
}
