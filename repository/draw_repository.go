package repository

import (
	"context"
	"fmt"
	"time"

	"solotto/domain/entities"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const drawColumns = `id, tier, status, start_time, end_time, draw_time,
	       total_pool_lamports, jackpot_lamports, total_tickets_sold, created_at`

// DrawRepository implements draw data access
type DrawRepository struct {
	q Queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(q Queryable) interfaces.DrawRepository {
	return &DrawRepository{q: q}
}

func scanDraw(row pgx.Row) (*entities.Draw, error) {
	var draw entities.Draw
	err := row.Scan(
		&draw.ID,
		&draw.Tier,
		&draw.Status,
		&draw.StartTime,
		&draw.EndTime,
		&draw.DrawTime,
		&draw.TotalPoolLamports,
		&draw.JackpotLamports,
		&draw.TotalTicketsSold,
		&draw.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw by ID %d: %w", id, err)
	}
	return draw, nil
}

// GetByIDForUpdate retrieves a draw by ID with a row lock
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	query := `SELECT ` + drawColumns + ` FROM draws WHERE id = $1 FOR UPDATE`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for update by ID %d: %w", id, err)
	}
	return draw, nil
}

// GetOpenByTier returns the draw accepting purchases for a tier, if any
func (r *DrawRepository) GetOpenByTier(ctx context.Context, tier entities.Tier) (*entities.Draw, error) {
	query := `
		SELECT ` + drawColumns + `
		FROM draws
		WHERE tier = $1
		  AND status IN ('pre_order', 'active')
	`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, tier))
	if err != nil {
		return nil, fmt.Errorf("failed to get open draw for tier %s: %w", tier, err)
	}
	return draw, nil
}

// GetDueDraws returns active draws whose draw time has elapsed
func (r *DrawRepository) GetDueDraws(ctx context.Context, before time.Time) ([]*entities.Draw, error) {
	query := `
		SELECT ` + drawColumns + `
		FROM draws
		WHERE status = 'active'
		  AND draw_time <= $1
		ORDER BY draw_time ASC
	`

	rows, err := r.q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get due draws: %w", err)
	}
	defer rows.Close()

	var draws []*entities.Draw
	for rows.Next() {
		var draw entities.Draw
		err := rows.Scan(
			&draw.ID,
			&draw.Tier,
			&draw.Status,
			&draw.StartTime,
			&draw.EndTime,
			&draw.DrawTime,
			&draw.TotalPoolLamports,
			&draw.JackpotLamports,
			&draw.TotalTicketsSold,
			&draw.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, &draw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draws: %w", err)
	}

	return draws, nil
}

// Create inserts a new draw
func (r *DrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	query := `
		INSERT INTO draws (tier, status, start_time, end_time, draw_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, total_pool_lamports, jackpot_lamports, total_tickets_sold, created_at
	`

	err := r.q.QueryRow(ctx, query,
		draw.Tier,
		draw.Status,
		draw.StartTime,
		draw.EndTime,
		draw.DrawTime,
	).Scan(
		&draw.ID,
		&draw.TotalPoolLamports,
		&draw.JackpotLamports,
		&draw.TotalTicketsSold,
		&draw.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

// UpdateStatus moves a draw forward in its lifecycle. Backward transitions
// are refused at the SQL level.
func (r *DrawRepository) UpdateStatus(ctx context.Context, id int64, status entities.DrawStatus) error {
	query := `
		UPDATE draws
		SET status = $2
		WHERE id = $1
		  AND status != 'completed'
	`

	result, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of draw %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found or already completed", id)
	}
	return nil
}

// IncrementTotals atomically adds to the pool, jackpot and sold counters of
// an open draw
func (r *DrawRepository) IncrementTotals(ctx context.Context, drawID, poolDelta, jackpotDelta, ticketDelta int64) error {
	query := `
		UPDATE draws
		SET total_pool_lamports = total_pool_lamports + $2,
		    jackpot_lamports = jackpot_lamports + $3,
		    total_tickets_sold = total_tickets_sold + $4
		WHERE id = $1
		  AND status IN ('pre_order', 'active')
	`

	result, err := r.q.Exec(ctx, query, drawID, poolDelta, jackpotDelta, ticketDelta)
	if err != nil {
		return fmt.Errorf("failed to increment totals for draw %d: %w", drawID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("draw %d not found or not open", drawID)
	}
	return nil
}
