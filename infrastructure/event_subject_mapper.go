package infrastructure

import (
	"fmt"

	"solotto/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeTicketsPurchased:
		return "lottery.tickets.purchased"
	case events.EventTypeDrawCompleted:
		return "lottery.draws.completed"
	case events.EventTypePayoutSettled:
		return "lottery.payouts.settled"
	case events.EventTypeWithdrawalRequested:
		return "lottery.withdrawals.requested"
	case events.EventTypeSettlementInconsistency:
		return "lottery.alerts.settlement_inconsistency"
	default:
		// Fallback for unknown event types
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case "lottery.tickets.purchased":
		return events.EventTypeTicketsPurchased
	case "lottery.draws.completed":
		return events.EventTypeDrawCompleted
	case "lottery.payouts.settled":
		return events.EventTypePayoutSettled
	case "lottery.withdrawals.requested":
		return events.EventTypeWithdrawalRequested
	case "lottery.alerts.settlement_inconsistency":
		return events.EventTypeSettlementInconsistency
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"lottery.tickets.purchased",
		"lottery.draws.completed",
		"lottery.payouts.settled",
		"lottery.withdrawals.requested",
		"lottery.alerts.settlement_inconsistency",
	}
}
