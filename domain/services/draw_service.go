package services

import (
	"context"
	"fmt"

	"solotto/domain/entities"
	"solotto/domain/events"
	"solotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ErrEmptyDraw is returned when a due draw has no tickets. The draw is left
// untouched: paying nobody silently and fabricating filler tickets are both
// unacceptable, so the sweep surfaces the condition for an operator
// decision.
var ErrEmptyDraw = NewServiceError(CodeInvalidDraw, "draw has no tickets")

// prizeBand is one row of a tier's distribution table. Bands are applied in
// order to the shuffled ticket list; a band with count > 1 splits its
// percentage evenly across up to count distinct tickets.
type prizeBand struct {
	tier    entities.PrizeTier
	percent int64
	count   int
}

// prizeAllocation returns the distribution table for a tier
func prizeAllocation(tier entities.Tier) []prizeBand {
	switch tier {
	case entities.TierMonthly:
		return []prizeBand{
			{entities.PrizeTierJackpot, 60, 1},
			{entities.PrizeTierRunnerUp, 5, 1},
			{entities.PrizeTierRandom, 5, 100},
		}
	case entities.TierWeekly:
		return []prizeBand{
			{entities.PrizeTierJackpot, 65, 1},
			{entities.PrizeTierRunnerUp, 5, 1},
		}
	case entities.TierDaily:
		return []prizeBand{
			{entities.PrizeTierJackpot, 100, 1},
		}
	}
	return nil
}

// drawService implements winner selection for due draws
type drawService struct {
	drawRepo       interfaces.DrawRepository
	ticketRepo     interfaces.TicketRepository
	winnerRepo     interfaces.WinnerRepository
	shuffler       interfaces.Shuffler
	eventPublisher interfaces.EventPublisher
}

// NewDrawService creates a draw service bound to one unit of work
func NewDrawService(
	drawRepo interfaces.DrawRepository,
	ticketRepo interfaces.TicketRepository,
	winnerRepo interfaces.WinnerRepository,
	shuffler interfaces.Shuffler,
	eventPublisher interfaces.EventPublisher,
) interfaces.DrawService {
	return &drawService{
		drawRepo:       drawRepo,
		ticketRepo:     ticketRepo,
		winnerRepo:     winnerRepo,
		shuffler:       shuffler,
		eventPublisher: eventPublisher,
	}
}

// ConductDraw settles a single due draw
func (s *drawService) ConductDraw(ctx context.Context, drawID int64) (*interfaces.DrawResult, error) {
	draw, err := s.drawRepo.GetByIDForUpdate(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw %d: %w", drawID, err)
	}
	if draw == nil {
		return nil, NewServiceError(CodeInvalidDraw, "draw %d not found", drawID)
	}
	if draw.IsCompleted() {
		return nil, NewServiceError(CodeInvalidDraw, "draw %d already completed", drawID)
	}
	if draw.Status != entities.DrawStatusActive {
		return nil, NewServiceError(CodeInvalidDraw, "draw %d is not active", drawID)
	}

	tickets, err := s.ticketRepo.GetByDraw(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets for draw %d: %w", drawID, err)
	}
	if len(tickets) == 0 {
		return nil, ErrEmptyDraw
	}

	prizePool := draw.PrizePool()

	perm, err := s.shuffler.Permutation(len(tickets))
	if err != nil {
		return nil, fmt.Errorf("failed to shuffle ticket pool: %w", err)
	}

	winners := allocatePrizes(draw, tickets, perm, prizePool)

	var distributed int64
	for _, w := range winners {
		distributed += w.PrizeLamports
	}
	if distributed > prizePool {
		return nil, fmt.Errorf("allocated %d lamports exceeds prize pool %d for draw %d", distributed, prizePool, drawID)
	}

	// Winners and the status flip commit together; a partial winner set is
	// never visible as final.
	if err := s.winnerRepo.CreateBatch(ctx, winners); err != nil {
		return nil, fmt.Errorf("failed to create winners for draw %d: %w", drawID, err)
	}
	if err := s.drawRepo.UpdateStatus(ctx, drawID, entities.DrawStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete draw %d: %w", drawID, err)
	}

	if err := s.eventPublisher.Publish(events.DrawCompletedEvent{
		DrawID:      draw.ID,
		Tier:        draw.Tier,
		PrizePool:   prizePool,
		WinnerCount: len(winners),
	}); err != nil {
		log.WithError(err).Warn("failed to publish draw completed event")
	}

	log.WithFields(log.Fields{
		"draw_id":      draw.ID,
		"tier":         draw.Tier,
		"ticket_count": len(tickets),
		"prize_pool":   prizePool,
		"winner_count": len(winners),
		"distributed":  distributed,
		"burned":       prizePool - distributed,
	}).Info("Draw completed")

	return &interfaces.DrawResult{
		Draw:      draw,
		PrizePool: prizePool,
		Winners:   winners,
	}, nil
}

// allocatePrizes walks the tier's distribution table over the shuffled
// ticket order. Floor-division remainders are intentionally left
// unallocated rather than redistributed.
func allocatePrizes(draw *entities.Draw, tickets []*entities.Ticket, perm []int, prizePool int64) []*entities.Winner {
	bands := prizeAllocation(draw.Tier)
	winners := make([]*entities.Winner, 0, len(perm))

	next := 0
	for _, band := range bands {
		remaining := len(perm) - next
		if remaining <= 0 {
			break
		}
		n := band.count
		if n > remaining {
			n = remaining
		}

		bandPool := prizePool * band.percent / 100
		each := bandPool / int64(n)
		if each <= 0 {
			next += n
			continue
		}

		for i := 0; i < n; i++ {
			ticket := tickets[perm[next]]
			winners = append(winners, &entities.Winner{
				DrawID:        draw.ID,
				TicketID:      ticket.ID,
				Wallet:        ticket.Wallet,
				PrizeTier:     band.tier,
				PrizeLamports: each,
			})
			next++
		}
	}

	return winners
}
