package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"solotto/application"
	"solotto/config"
	"solotto/domain/entities"
	"solotto/domain/interfaces"
	"solotto/domain/services"
	"solotto/domain/utils"
	"solotto/server/guard"

	"github.com/go-chi/chi/v5"
)

// Handlers carries the dependencies shared by all HTTP handlers
type Handlers struct {
	uowFactory     application.UnitOfWorkFactory
	chain          interfaces.ChainGateway
	priceSource    interfaces.PriceSource
	alertPublisher interfaces.EventPublisher
	purchaseCfg    services.PurchaseConfig
}

// NewHandlers creates the handler set
func NewHandlers(
	uowFactory application.UnitOfWorkFactory,
	chain interfaces.ChainGateway,
	priceSource interfaces.PriceSource,
	alertPublisher interfaces.EventPublisher,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		uowFactory:     uowFactory,
		chain:          chain,
		priceSource:    priceSource,
		alertPublisher: alertPublisher,
		purchaseCfg: services.PurchaseConfig{
			TicketPriceUsd:       cfg.TicketPriceUsd,
			WorstCaseSolPriceUsd: cfg.WorstCaseSolPriceUsd,
			OperatorCode:         cfg.OperatorReferralCode,
			CollectionWallets: map[entities.Tier]string{
				entities.TierMonthly: cfg.MonthlyCollectionWallet,
				entities.TierWeekly:  cfg.WeeklyCollectionWallet,
				entities.TierDaily:   cfg.DailyCollectionWallet,
			},
			LifetimeBonusCap:      cfg.LifetimeBonusCap,
			MaxTicketsPerPurchase: cfg.MaxTicketsPerPurchase,
		},
	}
}

// Purchase verifies a claimed ticket purchase and credits tickets
func (h *Handlers) Purchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wallet               string `json:"wallet"`
		TicketCount          int64  `json:"ticket_count"`
		ReferralCode         string `json:"referral_code"`
		TransactionSignature string `json:"transaction_signature"`
		DrawID               int64  `json:"draw_id"`
		Tier                 string `json:"tier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	purchaseService := services.NewPurchaseService(
		h.purchaseCfg,
		uow.DrawRepository(),
		uow.TicketRepository(),
		uow.ProcessedTransactionRepository(),
		uow.FundSplitRepository(),
		uow.ReferralRepository(),
		h.chain,
		uow.EventBus(),
	)

	result, err := purchaseService.ProcessPurchase(r.Context(), &interfaces.PurchaseRequest{
		Wallet:               body.Wallet,
		TicketCount:          body.TicketCount,
		ReferralCode:         body.ReferralCode,
		TransactionSignature: body.TransactionSignature,
		DrawID:               body.DrawID,
		Tier:                 entities.Tier(body.Tier),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := uow.AuditLogRepository().Append(r.Context(), &entities.AuditEntry{
		Action:      entities.AuditActionPurchaseProcessed,
		ActorWallet: body.Wallet,
		Details: map[string]any{
			"draw_id":       body.DrawID,
			"signature":     body.TransactionSignature,
			"tickets":       result.TicketCount,
			"bonus_tickets": result.BonusTickets,
		},
	}); err != nil {
		writeError(w, err)
		return
	}

	if err := uow.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket_count":  result.TicketCount,
		"bonus_tickets": result.BonusTickets,
		"total_tickets": result.TotalTickets,
		"ticket_codes":  result.TicketCodes,
	})
}

// RequestWithdrawal creates a pending withdrawal for verified referral
// earnings
func (h *Handlers) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Wallet         string `json:"wallet"`
		AmountLamports int64  `json:"amount_lamports"`
		Timestamp      int64  `json:"timestamp"`
		Message        string `json:"message"`
		Signature      string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	withdrawalService := services.NewWithdrawalService(
		uow.ReferralRepository(),
		uow.WithdrawalRepository(),
		uow.EventBus(),
	)

	req, err := withdrawalService.RequestWithdrawal(r.Context(), &interfaces.WithdrawalRequestInput{
		Wallet:         body.Wallet,
		AmountLamports: body.AmountLamports,
		Timestamp:      time.Unix(body.Timestamp, 0),
		Message:        body.Message,
		Signature:      body.Signature,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := uow.AuditLogRepository().Append(r.Context(), &entities.AuditEntry{
		Action:      entities.AuditActionWithdrawalRequested,
		ActorWallet: body.Wallet,
		Details: map[string]any{
			"withdrawal_id": req.ID,
			"lamports":      req.AmountLamports,
		},
	}); err != nil {
		writeError(w, err)
		return
	}

	if err := uow.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"withdrawal_id":   req.ID,
		"status":          req.Status,
		"amount_lamports": req.AmountLamports,
	})
}

// CurrentDraw returns the draw accepting purchases for a tier
func (h *Handlers) CurrentDraw(w http.ResponseWriter, r *http.Request) {
	tier := entities.Tier(r.URL.Query().Get("tier"))
	if !tier.Valid() {
		writeBadRequest(w, "unknown tier")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetOpenByTier(r.Context(), tier)
	if err != nil {
		writeError(w, err)
		return
	}
	if draw == nil {
		writeError(w, services.NewServiceError(services.CodeInvalidDraw, "no open draw for tier %s", tier))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"draw_id":             draw.ID,
		"tier":                draw.Tier,
		"status":              draw.Status,
		"start_time":          draw.StartTime,
		"end_time":            draw.EndTime,
		"draw_time":           draw.DrawTime,
		"total_pool_lamports": draw.TotalPoolLamports,
		"jackpot_lamports":    draw.JackpotLamports,
		"total_tickets_sold":  draw.TotalTicketsSold,
		"prize_pool":          draw.PrizePool(),
	})
}

// DrawWinners returns the winner list for a draw
func (h *Handlers) DrawWinners(w http.ResponseWriter, r *http.Request) {
	drawID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid draw id")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	winners, err := uow.WinnerRepository().GetByDraw(r.Context(), drawID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(winners))
	for _, win := range winners {
		out = append(out, map[string]any{
			"winner_id":        win.ID,
			"wallet":           win.Wallet,
			"prize_tier":       win.PrizeTier,
			"prize_lamports":   win.PrizeLamports,
			"payout_signature": win.PayoutSignature,
			"paid_at":          win.PaidAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"draw_id": drawID, "winners": out})
}

// ReferralEarnings returns the earnings balances for a wallet
func (h *Handlers) ReferralEarnings(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")
	if !utils.IsValidWalletAddress(wallet) {
		writeBadRequest(w, "malformed wallet address")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	earnings, err := uow.ReferralRepository().GetEarnings(r.Context(), wallet)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"wallet":                wallet,
		"total_earned_lamports": int64(0),
		"pending_lamports":      int64(0),
		"withdrawn_lamports":    int64(0),
		"min_withdrawal":        int64(entities.MinWithdrawalLamports),
	}
	if earnings != nil {
		resp["total_earned_lamports"] = earnings.TotalEarned
		resp["pending_lamports"] = earnings.Pending
		resp["withdrawn_lamports"] = earnings.Withdrawn
	}

	writeJSON(w, http.StatusOK, resp)
}

// Price returns the current SOL/USD price assumption
func (h *Handlers) Price(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sol_usd":          h.priceSource.PriceUsd(r.Context()),
		"ticket_price_usd": h.purchaseCfg.TicketPriceUsd,
	})
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDraw opens a new draw for a tier (admin)
func (h *Handlers) CreateDraw(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tier      string    `json:"tier"`
		Status    string    `json:"status"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
		DrawTime  time.Time `json:"draw_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	tier := entities.Tier(body.Tier)
	if !tier.Valid() {
		writeBadRequest(w, "unknown tier")
		return
	}
	status := entities.DrawStatus(body.Status)
	if status == "" {
		status = entities.DrawStatusPreOrder
	}
	if status != entities.DrawStatusPreOrder && status != entities.DrawStatusActive {
		writeBadRequest(w, "new draws must be pre_order or active")
		return
	}
	if !body.EndTime.After(body.StartTime) || body.DrawTime.Before(body.EndTime) {
		writeBadRequest(w, "draw window must satisfy start < end <= draw time")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	draw := &entities.Draw{
		Tier:      tier,
		Status:    status,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		DrawTime:  body.DrawTime,
	}
	if err := uow.DrawRepository().Create(r.Context(), draw); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auditAdmin(r, uow, map[string]any{
		"operation": "create_draw",
		"draw_id":   draw.ID,
		"tier":      tier,
	}); err != nil {
		writeError(w, err)
		return
	}

	if err := uow.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"draw_id": draw.ID})
}

// RegisterReferralCode registers a creator referral code (admin)
func (h *Handlers) RegisterReferralCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code        string `json:"code"`
		OwnerWallet string `json:"owner_wallet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if body.Code == "" {
		writeBadRequest(w, "code is required")
		return
	}
	if !utils.IsValidWalletAddress(body.OwnerWallet) {
		writeBadRequest(w, "malformed owner wallet")
		return
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	defer uow.Rollback()

	if err := uow.ReferralRepository().CreateCode(r.Context(), &entities.ReferralCode{
		Code:        body.Code,
		OwnerWallet: body.OwnerWallet,
	}); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auditAdmin(r, uow, map[string]any{
		"operation":    "register_referral_code",
		"code":         body.Code,
		"owner_wallet": body.OwnerWallet,
	}); err != nil {
		writeError(w, err)
		return
	}

	if err := uow.Commit(); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"code": body.Code})
}

// Sweeper triggers one settlement pass on demand
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// TriggerSweep runs a sweeper synchronously (admin)
func (h *Handlers) TriggerSweep(sweeper Sweeper, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uow := h.uowFactory.Create()
		if err := uow.Begin(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		if err := h.auditAdmin(r, uow, map[string]any{"operation": fmt.Sprintf("trigger_%s_sweep", name)}); err != nil {
			uow.Rollback()
			writeError(w, err)
			return
		}
		if err := uow.Commit(); err != nil {
			writeError(w, err)
			return
		}

		if err := sweeper.Sweep(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"sweep": name, "status": "completed"})
	}
}

// auditAdmin records an admin action attributed to the authenticated wallet
func (h *Handlers) auditAdmin(r *http.Request, uow application.UnitOfWork, details map[string]any) error {
	return uow.AuditLogRepository().Append(r.Context(), &entities.AuditEntry{
		Action:      entities.AuditActionAdminAction,
		ActorWallet: guard.AdminWallet(r.Context()),
		Details:     details,
	})
}
