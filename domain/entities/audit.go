package entities

import "time"

// Audit action types recorded by the admission guard and the settlement
// engine. The audit log is append-only.
const (
	AuditActionPurchaseProcessed      = "purchase_processed"
	AuditActionWithdrawalRequested    = "withdrawal_requested"
	AuditActionWithdrawalSettled      = "withdrawal_settled"
	AuditActionWinnerPaid             = "winner_paid"
	AuditActionDrawCompleted          = "draw_completed"
	AuditActionDrawAborted            = "draw_aborted"
	AuditActionAdminAction            = "admin_action"
	AuditActionRateLimitFailOpen      = "rate_limit_fail_open"
	AuditActionSettlementInconsistent = "settlement_inconsistency"
)

// AuditEntry is one immutable audit record
type AuditEntry struct {
	ID          int64          `db:"id"`
	Action      string         `db:"action"`
	ActorWallet string         `db:"actor_wallet"`
	Details     map[string]any `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
}
