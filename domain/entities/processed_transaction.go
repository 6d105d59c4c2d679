package entities

import "time"

// ProcessedTransaction is the dedupe record for a credited on-chain payment.
// The uniqueness of Signature is the sole double-spend guard for ticket
// crediting: under concurrent retries exactly one insert succeeds.
type ProcessedTransaction struct {
	ID             int64     `db:"id"`
	Signature      string    `db:"signature"`
	Wallet         string    `db:"wallet"`
	AmountLamports int64     `db:"amount_lamports"`
	TicketCount    int64     `db:"ticket_count"`
	CreatedAt      time.Time `db:"created_at"`
}
