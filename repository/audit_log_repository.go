package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/interfaces"
)

// AuditLogRepository implements append-only audit trail access
type AuditLogRepository struct {
	q Queryable
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(q Queryable) interfaces.AuditLogRepository {
	return &AuditLogRepository{q: q}
}

// Append writes one audit entry. Entries are never updated or deleted.
func (r *AuditLogRepository) Append(ctx context.Context, entry *entities.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_log (action, actor_wallet, details)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query, entry.Action, entry.ActorWallet, details).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
