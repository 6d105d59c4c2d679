package repository

import (
	"context"
	"fmt"

	"solotto/application"
	"solotto/database"
	"solotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher

	drawRepo       interfaces.DrawRepository
	ticketRepo     interfaces.TicketRepository
	processedRepo  interfaces.ProcessedTransactionRepository
	fundSplitRepo  interfaces.FundSplitRepository
	referralRepo   interfaces.ReferralRepository
	withdrawalRepo interfaces.WithdrawalRepository
	winnerRepo     interfaces.WinnerRepository
	auditRepo      interfaces.AuditLogRepository
	adminRoleRepo  interfaces.AdminRoleRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{
		db: db,
	}
}

// CreateWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.drawRepo = NewDrawRepository(tx)
	u.ticketRepo = NewTicketRepository(tx)
	u.processedRepo = NewProcessedTransactionRepository(tx)
	u.fundSplitRepo = NewFundSplitRepository(tx)
	u.referralRepo = NewReferralRepository(tx)
	u.withdrawalRepo = NewWithdrawalRepository(tx)
	u.winnerRepo = NewWinnerRepository(tx)
	u.auditRepo = NewAuditLogRepository(tx)
	u.adminRoleRepo = NewAdminRoleRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// DrawRepository returns the draw repository for this unit of work
func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	if u.drawRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRepo
}

// TicketRepository returns the ticket repository for this unit of work
func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

// ProcessedTransactionRepository returns the dedupe repository for this unit of work
func (u *unitOfWork) ProcessedTransactionRepository() interfaces.ProcessedTransactionRepository {
	if u.processedRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.processedRepo
}

// FundSplitRepository returns the fund split repository for this unit of work
func (u *unitOfWork) FundSplitRepository() interfaces.FundSplitRepository {
	if u.fundSplitRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.fundSplitRepo
}

// ReferralRepository returns the referral repository for this unit of work
func (u *unitOfWork) ReferralRepository() interfaces.ReferralRepository {
	if u.referralRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.referralRepo
}

// WithdrawalRepository returns the withdrawal repository for this unit of work
func (u *unitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.withdrawalRepo
}

// WinnerRepository returns the winner repository for this unit of work
func (u *unitOfWork) WinnerRepository() interfaces.WinnerRepository {
	if u.winnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.winnerRepo
}

// AuditLogRepository returns the audit log repository for this unit of work
func (u *unitOfWork) AuditLogRepository() interfaces.AuditLogRepository {
	if u.auditRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.auditRepo
}

// AdminRoleRepository returns the admin role repository for this unit of work
func (u *unitOfWork) AdminRoleRepository() interfaces.AdminRoleRepository {
	if u.adminRoleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.adminRoleRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalPublisher
}
