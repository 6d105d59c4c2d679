package application

import (
	"context"

	"solotto/domain/interfaces"
)

// UnitOfWork bundles every repository behind a single database transaction.
// Events published through EventBus during the transaction are flushed only
// after a successful commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DrawRepository() interfaces.DrawRepository
	TicketRepository() interfaces.TicketRepository
	ProcessedTransactionRepository() interfaces.ProcessedTransactionRepository
	FundSplitRepository() interfaces.FundSplitRepository
	ReferralRepository() interfaces.ReferralRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	WinnerRepository() interfaces.WinnerRepository
	AuditLogRepository() interfaces.AuditLogRepository
	AdminRoleRepository() interfaces.AdminRoleRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
