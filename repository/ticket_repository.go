package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"
)

// TicketRepository implements ticket data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(q Queryable) interfaces.TicketRepository {
	return &TicketRepository{q: q}
}

// CreateBatch creates all tickets of a purchase in a single batch insert
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	query := `
		INSERT INTO tickets (draw_id, wallet, code, is_bonus, transaction_signature, referral_code)
		VALUES `

	values := make([]any, 0, len(tickets)*6)
	for i, ticket := range tickets {
		if i > 0 {
			query += ", "
		}
		offset := i * 6
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			offset+1, offset+2, offset+3, offset+4, offset+5, offset+6)
		values = append(values, ticket.DrawID, ticket.Wallet, ticket.Code,
			ticket.IsBonus, ticket.TransactionSignature, ticket.ReferralCode)
	}
	query += " RETURNING id, created_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to batch create tickets: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&tickets[i].ID, &tickets[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan ticket result: %w", err)
		}
		i++
	}

	return rows.Err()
}

// GetByDraw returns every ticket in a draw's pool, oldest first
func (r *TicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error) {
	query := `
		SELECT id, draw_id, wallet, code, is_bonus, transaction_signature, referral_code, created_at
		FROM tickets
		WHERE draw_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		var t entities.Ticket
		err := rows.Scan(
			&t.ID,
			&t.DrawID,
			&t.Wallet,
			&t.Code,
			&t.IsBonus,
			&t.TransactionSignature,
			&t.ReferralCode,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// CountByWallet returns the lifetime ticket count for a wallet
func (r *TicketRepository) CountByWallet(ctx context.Context, wallet string) (int64, error) {
	query := `SELECT COUNT(*) FROM tickets WHERE wallet = $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, wallet).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets for wallet %s: %w", wallet, err)
	}
	return count, nil
}
