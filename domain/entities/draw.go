package entities

import "time"

// DrawStatus is the lifecycle state of a draw. Transitions are strictly
// forward: pre_order -> active -> completed.
type DrawStatus string

const (
	DrawStatusPreOrder  DrawStatus = "pre_order"
	DrawStatusActive    DrawStatus = "active"
	DrawStatusCompleted DrawStatus = "completed"
)

// PayoutNumerator / PayoutDenominator define the fraction of a draw's pool
// that is distributed as prizes. The remaining 30% stays with the operator.
const (
	PayoutNumerator   = 70
	PayoutDenominator = 100
)

// Draw represents a single lottery instance of a given tier
type Draw struct {
	ID                int64      `db:"id"`
	Tier              Tier       `db:"tier"`
	Status            DrawStatus `db:"status"`
	StartTime         time.Time  `db:"start_time"`
	EndTime           time.Time  `db:"end_time"`
	DrawTime          time.Time  `db:"draw_time"`
	TotalPoolLamports int64      `db:"total_pool_lamports"`
	JackpotLamports   int64      `db:"jackpot_lamports"` // running floor(payment*0.7) accumulator, display only
	TotalTicketsSold  int64      `db:"total_tickets_sold"`
	CreatedAt         time.Time  `db:"created_at"`
}

// IsCompleted returns true if the draw has been settled
func (d *Draw) IsCompleted() bool {
	return d.Status == DrawStatusCompleted
}

// IsOpenForPurchase returns true if tickets may still be credited to this draw
func (d *Draw) IsOpenForPurchase() bool {
	return d.Status == DrawStatusActive || d.Status == DrawStatusPreOrder
}

// IsDue returns true if the draw should be settled at the given instant
func (d *Draw) IsDue(now time.Time) bool {
	return d.Status == DrawStatusActive && !now.Before(d.DrawTime)
}

// PrizePool returns the amount available for prize distribution:
// floor(total_pool * 0.7). The authoritative figure is always derived from
// the pool, never from the jackpot accumulator.
func (d *Draw) PrizePool() int64 {
	return d.TotalPoolLamports * PayoutNumerator / PayoutDenominator
}
