package testhelpers

import (
	"context"
	"time"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id int64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetOpenByTier(ctx context.Context, tier entities.Tier) (*entities.Draw, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetDueDraws(ctx context.Context, before time.Time) ([]*entities.Draw, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) Create(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) UpdateStatus(ctx context.Context, id int64, status entities.DrawStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDrawRepository) IncrementTotals(ctx context.Context, drawID, poolDelta, jackpotDelta, ticketDelta int64) error {
	args := m.Called(ctx, drawID, poolDelta, jackpotDelta, ticketDelta)
	return args.Error(0)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Ticket, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByWallet(ctx context.Context, wallet string) (int64, error) {
	args := m.Called(ctx, wallet)
	return args.Get(0).(int64), args.Error(1)
}

// MockProcessedTransactionRepository is a mock implementation of ProcessedTransactionRepository
type MockProcessedTransactionRepository struct {
	mock.Mock
}

func (m *MockProcessedTransactionRepository) Exists(ctx context.Context, signature string) (bool, error) {
	args := m.Called(ctx, signature)
	return args.Bool(0), args.Error(1)
}

func (m *MockProcessedTransactionRepository) Create(ctx context.Context, tx *entities.ProcessedTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockFundSplitRepository is a mock implementation of FundSplitRepository
type MockFundSplitRepository struct {
	mock.Mock
}

func (m *MockFundSplitRepository) Create(ctx context.Context, split *entities.FundSplit) error {
	args := m.Called(ctx, split)
	return args.Error(0)
}

func (m *MockFundSplitRepository) GetBySignature(ctx context.Context, signature string) (*entities.FundSplit, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FundSplit), args.Error(1)
}

// MockReferralRepository is a mock implementation of ReferralRepository
type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) GetCode(ctx context.Context, code string) (*entities.ReferralCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralCode), args.Error(1)
}

func (m *MockReferralRepository) CreateCode(ctx context.Context, code *entities.ReferralCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockReferralRepository) CreditEarnings(ctx context.Context, wallet string, lamports int64) error {
	args := m.Called(ctx, wallet, lamports)
	return args.Error(0)
}

func (m *MockReferralRepository) GetEarnings(ctx context.Context, wallet string) (*entities.ReferralEarnings, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralEarnings), args.Error(1)
}

func (m *MockReferralRepository) GetEarningsForUpdate(ctx context.Context, wallet string) (*entities.ReferralEarnings, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReferralEarnings), args.Error(1)
}

func (m *MockReferralRepository) DebitPending(ctx context.Context, wallet string, lamports int64) error {
	args := m.Called(ctx, wallet, lamports)
	return args.Error(0)
}

func (m *MockReferralRepository) CreditPending(ctx context.Context, wallet string, lamports int64) error {
	args := m.Called(ctx, wallet, lamports)
	return args.Error(0)
}

func (m *MockReferralRepository) CreditWithdrawn(ctx context.Context, wallet string, lamports int64) error {
	args := m.Called(ctx, wallet, lamports)
	return args.Error(0)
}

func (m *MockReferralRepository) UpsertRelationship(ctx context.Context, referrer, referred string, tickets int64) error {
	args := m.Called(ctx, referrer, referred, tickets)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, req *entities.WithdrawalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*entities.WithdrawalRequest, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.WithdrawalRequest), args.Error(1)
}

func (m *MockWithdrawalRepository) MarkCompleted(ctx context.Context, id, signature string) error {
	args := m.Called(ctx, id, signature)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) MarkFailed(ctx context.Context, id, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

// MockWinnerRepository is a mock implementation of WinnerRepository
type MockWinnerRepository struct {
	mock.Mock
}

func (m *MockWinnerRepository) CreateBatch(ctx context.Context, winners []*entities.Winner) error {
	args := m.Called(ctx, winners)
	return args.Error(0)
}

func (m *MockWinnerRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Winner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) ListUnpaid(ctx context.Context, limit int) ([]*entities.Winner, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) GetByDraw(ctx context.Context, drawID int64) ([]*entities.Winner, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Winner), args.Error(1)
}

func (m *MockWinnerRepository) MarkPaid(ctx context.Context, id int64, signature string) error {
	args := m.Called(ctx, id, signature)
	return args.Error(0)
}

// MockAuditLogRepository is a mock implementation of AuditLogRepository
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockAdminRoleRepository is a mock implementation of AdminRoleRepository
type MockAdminRoleRepository struct {
	mock.Mock
}

func (m *MockAdminRoleRepository) HasRole(ctx context.Context, wallet, role string) (bool, error) {
	args := m.Called(ctx, wallet, role)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockTransactionalEventPublisher is a mock implementation of TransactionalEventPublisher
type MockTransactionalEventPublisher struct {
	mock.Mock
}

func (m *MockTransactionalEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionalEventPublisher) Discard() {
	m.Called()
}

// MockChainGateway is a mock implementation of ChainGateway
type MockChainGateway struct {
	mock.Mock
}

func (m *MockChainGateway) GetTransaction(ctx context.Context, signature string) (*interfaces.TransactionInfo, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TransactionInfo), args.Error(1)
}

func (m *MockChainGateway) SubmitTransfer(ctx context.Context, payerAccount, toWallet string, lamports int64) (string, error) {
	args := m.Called(ctx, payerAccount, toWallet, lamports)
	return args.String(0), args.Error(1)
}

func (m *MockChainGateway) Confirm(ctx context.Context, signature string) error {
	args := m.Called(ctx, signature)
	return args.Error(0)
}

func (m *MockChainGateway) PayerWallet(payerAccount string) (string, error) {
	args := m.Called(payerAccount)
	return args.String(0), args.Error(1)
}

// MockShuffler is a mock implementation of Shuffler
type MockShuffler struct {
	mock.Mock
}

func (m *MockShuffler) Permutation(n int) ([]int, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

// MockRateLimiter is a mock implementation of RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, identifier string) (bool, bool, error) {
	args := m.Called(ctx, identifier)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

// MockPriceSource is a mock implementation of PriceSource
type MockPriceSource struct {
	mock.Mock
}

func (m *MockPriceSource) PriceUsd(ctx context.Context) float64 {
	args := m.Called(ctx)
	return args.Get(0).(float64)
}
