package events

import "solotto/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTicketsPurchased        EventType = "tickets_purchased"
	EventTypeDrawCompleted           EventType = "draw_completed"
	EventTypePayoutSettled           EventType = "payout_settled"
	EventTypeWithdrawalRequested     EventType = "withdrawal_requested"
	EventTypeSettlementInconsistency EventType = "settlement_inconsistency"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TicketsPurchasedEvent is published after a verified purchase commits
type TicketsPurchasedEvent struct {
	DrawID        int64
	Tier          entities.Tier
	Wallet        string
	TicketCount   int64
	BonusTickets  int64
	TotalLamports int64
	ReferralKind  entities.ReferralKind
}

func (e TicketsPurchasedEvent) Type() EventType { return EventTypeTicketsPurchased }

// DrawCompletedEvent is published after winner selection commits
type DrawCompletedEvent struct {
	DrawID      int64
	Tier        entities.Tier
	PrizePool   int64
	WinnerCount int
}

func (e DrawCompletedEvent) Type() EventType { return EventTypeDrawCompleted }

// PayoutSettledEvent is published after a winner or withdrawal payout commits
type PayoutSettledEvent struct {
	Kind      string // "winner" or "withdrawal"
	ItemID    string
	Wallet    string
	Lamports  int64
	Signature string
}

func (e PayoutSettledEvent) Type() EventType { return EventTypePayoutSettled }

// WithdrawalRequestedEvent is published when a pending withdrawal is created
type WithdrawalRequestedEvent struct {
	WithdrawalID string
	Wallet       string
	Lamports     int64
}

func (e WithdrawalRequestedEvent) Type() EventType { return EventTypeWithdrawalRequested }

// SettlementInconsistencyEvent signals funds sent on-chain without the
// matching record update. It must never be consumed by an automatic retry;
// it exists to page a human.
type SettlementInconsistencyEvent struct {
	Kind      string
	ItemID    string
	Wallet    string
	Lamports  int64
	Signature string
	Detail    string
}

func (e SettlementInconsistencyEvent) Type() EventType { return EventTypeSettlementInconsistency }
