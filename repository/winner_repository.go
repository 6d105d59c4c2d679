package repository

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const winnerColumns = `id, draw_id, ticket_id, wallet, prize_tier, prize_lamports,
	       payout_signature, paid_at, created_at`

// WinnerRepository implements winner data access
type WinnerRepository struct {
	q Queryable
}

// NewWinnerRepository creates a new winner repository
func NewWinnerRepository(q Queryable) interfaces.WinnerRepository {
	return &WinnerRepository{q: q}
}

// CreateBatch inserts all winners of a draw in one batch insert
func (r *WinnerRepository) CreateBatch(ctx context.Context, winners []*entities.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	query := `
		INSERT INTO winners (draw_id, ticket_id, wallet, prize_tier, prize_lamports)
		VALUES `

	values := make([]any, 0, len(winners)*5)
	for i, w := range winners {
		if i > 0 {
			query += ", "
		}
		offset := i * 5
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			offset+1, offset+2, offset+3, offset+4, offset+5)
		values = append(values, w.DrawID, w.TicketID, w.Wallet, w.PrizeTier, w.PrizeLamports)
	}
	query += " RETURNING id, created_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to batch create winners: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&winners[i].ID, &winners[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan winner result: %w", err)
		}
		i++
	}

	return rows.Err()
}

func scanWinner(row pgx.Row) (*entities.Winner, error) {
	var w entities.Winner
	err := row.Scan(
		&w.ID,
		&w.DrawID,
		&w.TicketID,
		&w.Wallet,
		&w.PrizeTier,
		&w.PrizeLamports,
		&w.PayoutSignature,
		&w.PaidAt,
		&w.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByIDForUpdate retrieves a winner with a row lock
func (r *WinnerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winner, error) {
	query := `SELECT ` + winnerColumns + ` FROM winners WHERE id = $1 FOR UPDATE`

	w, err := scanWinner(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get winner %d for update: %w", id, err)
	}
	return w, nil
}

// ListUnpaid returns winners without a recorded payout, oldest first
func (r *WinnerRepository) ListUnpaid(ctx context.Context, limit int) ([]*entities.Winner, error) {
	query := `
		SELECT ` + winnerColumns + `
		FROM winners
		WHERE paid_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid winners: %w", err)
	}
	defer rows.Close()

	var winners []*entities.Winner
	for rows.Next() {
		var w entities.Winner
		err := rows.Scan(
			&w.ID,
			&w.DrawID,
			&w.TicketID,
			&w.Wallet,
			&w.PrizeTier,
			&w.PrizeLamports,
			&w.PayoutSignature,
			&w.PaidAt,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}

// GetByDraw returns all winners of a draw
func (r *WinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	query := `
		SELECT ` + winnerColumns + `
		FROM winners
		WHERE draw_id = $1
		ORDER BY id ASC
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winners for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var winners []*entities.Winner
	for rows.Next() {
		var w entities.Winner
		err := rows.Scan(
			&w.ID,
			&w.DrawID,
			&w.TicketID,
			&w.Wallet,
			&w.PrizeTier,
			&w.PrizeLamports,
			&w.PayoutSignature,
			&w.PaidAt,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan winner: %w", err)
		}
		winners = append(winners, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate winners: %w", err)
	}

	return winners, nil
}

// MarkPaid records the payout signature and paid timestamp. The paid_at
// guard refuses a second payment.
func (r *WinnerRepository) MarkPaid(ctx context.Context, id int64, signature string) error {
	query := `
		UPDATE winners
		SET payout_signature = $2,
		    paid_at = now()
		WHERE id = $1
		  AND paid_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, id, signature)
	if err != nil {
		return fmt.Errorf("failed to mark winner %d paid: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("winner %d not found or already paid", id)
	}
	return nil
}
