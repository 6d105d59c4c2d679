package testutil

import (
	"fmt"
	"time"

	"solotto/domain/entities"
)

// CreateTestDraw creates an active draw accepting purchases now, drawing in
// an hour
func CreateTestDraw(tier entities.Tier) *entities.Draw {
	now := time.Now().UTC().Truncate(time.Second)
	return &entities.Draw{
		Tier:      tier,
		Status:    entities.DrawStatusActive,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
		DrawTime:  now.Add(time.Hour),
	}
}

// CreateTestDueDraw creates an active draw whose draw time has already passed
func CreateTestDueDraw(tier entities.Tier) *entities.Draw {
	draw := CreateTestDraw(tier)
	draw.StartTime = draw.StartTime.Add(-24 * time.Hour)
	draw.EndTime = draw.EndTime.Add(-2 * time.Hour)
	draw.DrawTime = draw.DrawTime.Add(-2 * time.Hour)
	return draw
}

// CreateTestTickets creates n paid tickets for a draw, one wallet each,
// attributed to distinct fake signatures
func CreateTestTickets(drawID int64, n int) []*entities.Ticket {
	tickets := make([]*entities.Ticket, 0, n)
	for i := 0; i < n; i++ {
		code, err := entities.GenerateTicketCode(entities.TierDaily, i, false)
		if err != nil {
			panic(err)
		}
		tickets = append(tickets, &entities.Ticket{
			DrawID:               drawID,
			Wallet:               fmt.Sprintf("wallet-%d", i),
			Code:                 code,
			TransactionSignature: fmt.Sprintf("sig-%d-%d", drawID, i),
		})
	}
	return tickets
}

// CreateTestWinner creates an unpaid winner row for a draw
func CreateTestWinner(drawID, ticketID int64, wallet string, lamports int64) *entities.Winner {
	return &entities.Winner{
		DrawID:        drawID,
		TicketID:      ticketID,
		Wallet:        wallet,
		PrizeTier:     entities.PrizeTierJackpot,
		PrizeLamports: lamports,
	}
}

// CreateTestProcessedTransaction creates a dedupe record for a signature
func CreateTestProcessedTransaction(signature, wallet string) *entities.ProcessedTransaction {
	return &entities.ProcessedTransaction{
		Signature:      signature,
		Wallet:         wallet,
		AmountLamports: 1_000_000_000,
		TicketCount:    10,
	}
}

// CreateTestWithdrawal creates a pending withdrawal request
func CreateTestWithdrawal(id, wallet string, lamports int64) *entities.WithdrawalRequest {
	return &entities.WithdrawalRequest{
		ID:             id,
		Wallet:         wallet,
		AmountLamports: lamports,
		Status:         entities.WithdrawalStatusPending,
	}
}
