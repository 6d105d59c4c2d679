package application

import (
	"context"

	"solotto/domain/interfaces"
)

// FakeUnitOfWork exposes caller-supplied repositories behind the UnitOfWork
// interface for unit tests. Begin/Commit/Rollback are counted, not executed.
type FakeUnitOfWork struct {
	Draws        interfaces.DrawRepository
	Tickets      interfaces.TicketRepository
	ProcessedTxs interfaces.ProcessedTransactionRepository
	FundSplits   interfaces.FundSplitRepository
	Referrals    interfaces.ReferralRepository
	Withdrawals  interfaces.WithdrawalRepository
	Winners      interfaces.WinnerRepository
	AuditLog     interfaces.AuditLogRepository
	AdminRoles   interfaces.AdminRoleRepository
	Bus          interfaces.EventPublisher

	BeginErr  error
	CommitErr error

	Begun      int
	Committed  int
	RolledBack int
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	if u.BeginErr != nil {
		return u.BeginErr
	}
	u.Begun++
	return nil
}

func (u *FakeUnitOfWork) Commit() error {
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.Committed++
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	u.RolledBack++
	return nil
}

func (u *FakeUnitOfWork) DrawRepository() interfaces.DrawRepository { return u.Draws }
func (u *FakeUnitOfWork) TicketRepository() interfaces.TicketRepository {
	return u.Tickets
}
func (u *FakeUnitOfWork) ProcessedTransactionRepository() interfaces.ProcessedTransactionRepository {
	return u.ProcessedTxs
}
func (u *FakeUnitOfWork) FundSplitRepository() interfaces.FundSplitRepository { return u.FundSplits }
func (u *FakeUnitOfWork) ReferralRepository() interfaces.ReferralRepository   { return u.Referrals }
func (u *FakeUnitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	return u.Withdrawals
}
func (u *FakeUnitOfWork) WinnerRepository() interfaces.WinnerRepository     { return u.Winners }
func (u *FakeUnitOfWork) AuditLogRepository() interfaces.AuditLogRepository { return u.AuditLog }
func (u *FakeUnitOfWork) AdminRoleRepository() interfaces.AdminRoleRepository {
	return u.AdminRoles
}
func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher { return u.Bus }

// FakeUnitOfWorkFactory hands out units of work from a caller-supplied
// constructor so each Create can observe or vary state
type FakeUnitOfWorkFactory struct {
	New func() UnitOfWork
}

func (f *FakeUnitOfWorkFactory) Create() UnitOfWork {
	return f.New()
}
