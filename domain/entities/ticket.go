package entities

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ticket is a single entry in a draw's pool. Tickets are created only after
// on-chain payment verification and are immutable afterwards.
type Ticket struct {
	ID                   int64     `db:"id"`
	DrawID               int64     `db:"draw_id"`
	Wallet               string    `db:"wallet"`
	Code                 string    `db:"code"`
	IsBonus              bool      `db:"is_bonus"`
	TransactionSignature string    `db:"transaction_signature"`
	ReferralCode         *string   `db:"referral_code"`
	CreatedAt            time.Time `db:"created_at"`
}

const ticketCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateTicketCode produces a globally unique human-readable ticket code.
// Format: <tier prefix>-<base36 unix micros>-<random>-<P|B><index>.
// The time+random composition keeps codes unique under concurrent issuance
// without a coordinated counter.
func GenerateTicketCode(tier Tier, index int, bonus bool) (string, error) {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMicro(), 36))

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket code entropy: %w", err)
	}
	random := make([]byte, 4)
	for i, b := range buf {
		random[i] = ticketCodeAlphabet[int(b)%len(ticketCodeAlphabet)]
	}

	kind := "P"
	if bonus {
		kind = "B"
	}

	return fmt.Sprintf("%s-%s-%s-%s%02d", tier.CodePrefix(), ts, random, kind, index), nil
}
