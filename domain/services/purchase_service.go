package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"
	"solotto/domain/utils"

	log "github.com/sirupsen/logrus"
)

const lamportsPerSol = 1_000_000_000

// PurchaseConfig carries the tier wallets and pricing assumptions the
// verifier needs
type PurchaseConfig struct {
	// TicketPriceUsd is the nominal USD price of one ticket
	TicketPriceUsd float64

	// WorstCaseSolPriceUsd is the highest SOL/USD price the verifier will
	// assume when computing the minimum acceptable payment. A high
	// assumption yields a conservative (low) lamport bound, tolerating
	// price-feed drift while still rejecting clearly short payments.
	WorstCaseSolPriceUsd float64

	// OperatorCode is the reserved referral code owned by the operator
	OperatorCode string

	// CollectionWallets maps each tier to its designated payment wallet
	CollectionWallets map[entities.Tier]string

	// LifetimeBonusCap is the lifetime ticket count beyond which referral
	// bonuses are refused
	LifetimeBonusCap int64

	// MaxTicketsPerPurchase bounds a single purchase
	MaxTicketsPerPurchase int64
}

// purchaseService implements the purchase verification and crediting flow.
// All repositories must come from the same unit of work; the caller owns the
// transaction boundary, so every write between the processed-transaction
// insert and the pool increment commits or rolls back as one unit.
type purchaseService struct {
	cfg             PurchaseConfig
	drawRepo        interfaces.DrawRepository
	ticketRepo      interfaces.TicketRepository
	processedTxRepo interfaces.ProcessedTransactionRepository
	fundSplitRepo   interfaces.FundSplitRepository
	referralRepo    interfaces.ReferralRepository
	chain           interfaces.ChainGateway
	eventPublisher  interfaces.EventPublisher
}

// NewPurchaseService creates a purchase service bound to one unit of work
func NewPurchaseService(
	cfg PurchaseConfig,
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	processedTxRepo interfaces.ProcessedTransactionRepository,
	fundSplitRepo interfaces.FundSplitRepository,
	referralRepo interfaces.ReferralRepository,
	chain interfaces.ChainGateway,
	eventPublisher interfaces.EventPublisher,
) interfaces.PurchaseService {
	return &purchaseService{
		cfg:             cfg,
		drawRepo:        drawRepo,
		ticketRepo:      ticketRepo,
		processedTxRepo: processedTxRepo,
		fundSplitRepo:   fundSplitRepo,
		referralRepo:    referralRepo,
		chain:           chain,
		eventPublisher:  eventPublisher,
	}
}

// ProcessPurchase verifies a claimed purchase and credits tickets
func (s *purchaseService) ProcessPurchase(ctx context.Context, req *interfaces.PurchaseRequest) (*interfaces.PurchaseResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	draw, err := s.drawRepo.GetByID(ctx, req.DrawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", req.DrawID, err)
	}
	if draw == nil || draw.Tier != req.Tier || !draw.IsOpenForPurchase() {
		return nil, NewServiceError(CodeInvalidDraw, "draw %d is not open for %s purchases", req.DrawID, req.Tier)
	}

	// Cheap pre-check; the insert below is the authoritative guard
	exists, err := s.processedTxRepo.Exists(ctx, req.TransactionSignature)
	if err != nil {
		return nil, fmt.Errorf("failed to check processed transactions: %w", err)
	}
	if exists {
		return nil, NewServiceError(CodeDuplicateTransaction, "transaction %s already processed", req.TransactionSignature)
	}

	amount, err := s.verifyOnChainPayment(ctx, req)
	if err != nil {
		return nil, err
	}

	disposition, err := s.resolveReferral(ctx, req)
	if err != nil {
		return nil, err
	}

	// Commit point: the signature's unique constraint guarantees at-most-once
	// crediting under concurrent retries.
	processed := &entities.ProcessedTransaction{
		Signature:      req.TransactionSignature,
		Wallet:         req.Wallet,
		AmountLamports: amount,
		TicketCount:    req.TicketCount,
	}
	if err := s.processedTxRepo.Create(ctx, processed); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateSignature) {
			return nil, NewServiceError(CodeDuplicateTransaction, "transaction %s already processed", req.TransactionSignature)
		}
		return nil, fmt.Errorf("failed to record processed transaction: %w", err)
	}

	lottery, operator, creator, referrer := entities.ComputeFundSplit(amount, disposition.kind)
	split := &entities.FundSplit{
		TransactionSignature: req.TransactionSignature,
		DrawID:               draw.ID,
		Wallet:               req.Wallet,
		TotalLamports:        amount,
		LotteryLamports:      lottery,
		OperatorLamports:     operator,
		CreatorLamports:      creator,
		ReferrerLamports:     referrer,
		ReferralKind:         disposition.kind,
		ReferralCode:         disposition.codeRef(),
	}
	if err := s.fundSplitRepo.Create(ctx, split); err != nil {
		return nil, fmt.Errorf("failed to record fund split: %w", err)
	}

	if disposition.kind == entities.ReferralKindCreator {
		if err := s.referralRepo.CreditEarnings(ctx, disposition.ownerWallet, referrer); err != nil {
			return nil, fmt.Errorf("failed to credit referral earnings: %w", err)
		}
		if err := s.referralRepo.UpsertRelationship(ctx, disposition.ownerWallet, req.Wallet, req.TicketCount); err != nil {
			return nil, fmt.Errorf("failed to upsert referral relationship: %w", err)
		}
	}

	tickets, codes, err := s.buildTickets(draw, req, disposition.bonusTickets)
	if err != nil {
		return nil, err
	}
	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to create tickets: %w", err)
	}

	// Bonus tickets raise prize odds only; they contribute nothing to the
	// pool and are not counted as sold.
	jackpotDelta := amount * entities.PayoutNumerator / entities.PayoutDenominator
	if err := s.drawRepo.IncrementTotals(ctx, draw.ID, lottery, jackpotDelta, req.TicketCount); err != nil {
		return nil, fmt.Errorf("failed to increment draw totals: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TicketsPurchasedEvent{
		DrawID:        draw.ID,
		Tier:          draw.Tier,
		Wallet:        req.Wallet,
		TicketCount:   req.TicketCount,
		BonusTickets:  disposition.bonusTickets,
		TotalLamports: amount,
		ReferralKind:  disposition.kind,
	}); err != nil {
		log.WithError(err).Warn("failed to publish tickets purchased event")
	}

	log.WithFields(log.Fields{
		"draw_id":       draw.ID,
		"tier":          draw.Tier,
		"wallet":        req.Wallet,
		"signature":     req.TransactionSignature,
		"tickets":       req.TicketCount,
		"bonus_tickets": disposition.bonusTickets,
		"amount":        amount,
		"referral_kind": disposition.kind,
	}).Info("Purchase verified and credited")

	return &interfaces.PurchaseResult{
		TicketCount:  req.TicketCount,
		BonusTickets: disposition.bonusTickets,
		TotalTickets: req.TicketCount + disposition.bonusTickets,
		TicketCodes:  codes,
	}, nil
}

func (s *purchaseService) validateRequest(req *interfaces.PurchaseRequest) error {
	if req.TicketCount < 1 || req.TicketCount > s.cfg.MaxTicketsPerPurchase {
		return NewServiceError(CodeValidation, "ticket count must be between 1 and %d", s.cfg.MaxTicketsPerPurchase)
	}
	if !req.Tier.Valid() {
		return NewServiceError(CodeValidation, "unknown tier %q", req.Tier)
	}
	if !utils.IsValidWalletAddress(req.Wallet) {
		return NewServiceError(CodeValidation, "malformed wallet address")
	}
	if !utils.IsValidTransactionSignature(req.TransactionSignature) {
		return NewServiceError(CodeValidation, "malformed transaction signature")
	}
	return nil
}

// verifyOnChainPayment fetches the transaction and checks destination,
// amount and sender. Returns the lamports transferred to the tier's
// collection wallet.
func (s *purchaseService) verifyOnChainPayment(ctx context.Context, req *interfaces.PurchaseRequest) (int64, error) {
	info, err := s.chain.GetTransaction(ctx, req.TransactionSignature)
	if err != nil {
		if errors.Is(err, interfaces.ErrTransactionNotFound) {
			return 0, NewServiceError(CodeTransactionNotFound, "transaction %s not found on chain", req.TransactionSignature)
		}
		return 0, fmt.Errorf("failed to fetch transaction %s: %w", req.TransactionSignature, err)
	}
	if !info.Success {
		return 0, NewServiceError(CodeOnChainFailure, "transaction %s failed on chain", req.TransactionSignature)
	}

	collection, ok := s.cfg.CollectionWallets[req.Tier]
	if !ok {
		return 0, NewServiceError(CodeInvalidDraw, "no collection wallet configured for tier %s", req.Tier)
	}

	var amount int64
	for _, tr := range info.Transfers {
		if tr.Destination == collection {
			amount += tr.Lamports
		}
	}
	if amount == 0 {
		return 0, NewServiceError(CodeNoValidTransfer, "no transfer to the %s collection wallet found", req.Tier)
	}

	minLamports := minimumPaymentLamports(req.TicketCount, s.cfg.TicketPriceUsd, s.cfg.WorstCaseSolPriceUsd)
	if amount < minLamports {
		return 0, NewServiceError(CodeInsufficientPayment, "payment %d lamports below minimum %d for %d tickets", amount, minLamports, req.TicketCount)
	}

	if info.Sender != req.Wallet {
		return 0, NewServiceError(CodeSenderMismatch, "transaction sender does not match claimed wallet")
	}

	return amount, nil
}

// minimumPaymentLamports computes the conservative lower bound:
// ticketCount * unitPriceUsd / worstCaseSolPriceUsd, in lamports.
func minimumPaymentLamports(ticketCount int64, unitPriceUsd, worstCaseSolPriceUsd float64) int64 {
	sol := float64(ticketCount) * unitPriceUsd / worstCaseSolPriceUsd
	return int64(sol * lamportsPerSol)
}

// referralDisposition captures the resolved referral outcome for a purchase
type referralDisposition struct {
	kind         entities.ReferralKind
	code         string
	ownerWallet  string
	bonusTickets int64
}

func (d *referralDisposition) codeRef() *string {
	if d.code == "" {
		return nil
	}
	c := d.code
	return &c
}

func (s *purchaseService) resolveReferral(ctx context.Context, req *interfaces.PurchaseRequest) (*referralDisposition, error) {
	code := strings.TrimSpace(req.ReferralCode)
	if code == "" {
		return &referralDisposition{kind: entities.ReferralKindNone}, nil
	}

	// Any referral bonus is subject to the lifetime cap; the purchase is
	// rejected outright rather than silently processed without the bonus.
	lifetime, err := s.ticketRepo.CountByWallet(ctx, req.Wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to count lifetime tickets: %w", err)
	}
	if lifetime >= s.cfg.LifetimeBonusCap {
		return nil, NewServiceError(CodeBonusLimitReached, "wallet has reached the %d lifetime ticket bonus limit", s.cfg.LifetimeBonusCap)
	}

	if strings.EqualFold(code, s.cfg.OperatorCode) {
		return &referralDisposition{
			kind:         entities.ReferralKindOperator,
			code:         s.cfg.OperatorCode,
			bonusTickets: req.TicketCount,
		}, nil
	}

	registered, err := s.referralRepo.GetCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if registered == nil {
		return nil, NewServiceError(CodeValidation, "unknown referral code %q", code)
	}
	if registered.OwnerWallet == req.Wallet {
		return nil, NewServiceError(CodeSelfReferral, "wallet cannot use its own referral code")
	}

	return &referralDisposition{
		kind:         entities.ReferralKindCreator,
		code:         registered.Code,
		ownerWallet:  registered.OwnerWallet,
		bonusTickets: req.TicketCount,
	}, nil
}

func (s *purchaseService) buildTickets(draw *entities.Draw, req *interfaces.PurchaseRequest, bonus int64) ([]*entities.Ticket, []string, error) {
	total := req.TicketCount + bonus
	tickets := make([]*entities.Ticket, 0, total)
	codes := make([]string, 0, total)

	var refCode *string
	if c := strings.TrimSpace(req.ReferralCode); c != "" {
		refCode = &c
	}

	for i := int64(0); i < total; i++ {
		isBonus := i >= req.TicketCount
		index := int(i) + 1
		if isBonus {
			index = int(i-req.TicketCount) + 1
		}
		code, err := entities.GenerateTicketCode(draw.Tier, index, isBonus)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}
		tickets = append(tickets, &entities.Ticket{
			DrawID:               draw.ID,
			Wallet:               req.Wallet,
			Code:                 code,
			IsBonus:              isBonus,
			TransactionSignature: req.TransactionSignature,
			ReferralCode:         refCode,
		})
		codes = append(codes, code)
	}

	return tickets, codes, nil
}
