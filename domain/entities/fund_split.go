package entities

import "time"

// ReferralKind classifies how a purchase was referred
type ReferralKind string

const (
	ReferralKindNone     ReferralKind = "none"
	ReferralKindOperator ReferralKind = "operator"
	ReferralKindCreator  ReferralKind = "creator"
)

// Referral share constants, in percent of the payment amount.
// A referred purchase diverts 30% away from the lottery pool; for creator
// codes 25 points of that go to the referring wallet's earnings and the
// remaining 5 to the creator account.
const (
	ReferralGrossPercent    = 30
	ReferrerEarningsPercent = 25
)

// FundSplit is the immutable audit record of how one verified payment was
// divided. LotteryLamports + OperatorLamports + CreatorLamports +
// ReferrerLamports always equals TotalLamports exactly.
type FundSplit struct {
	ID                   int64        `db:"id"`
	TransactionSignature string       `db:"transaction_signature"`
	DrawID               int64        `db:"draw_id"`
	Wallet               string       `db:"wallet"`
	TotalLamports        int64        `db:"total_lamports"`
	LotteryLamports      int64        `db:"lottery_lamports"`
	OperatorLamports     int64        `db:"operator_lamports"`
	CreatorLamports      int64        `db:"creator_lamports"`
	ReferrerLamports     int64        `db:"referrer_lamports"`
	ReferralKind         ReferralKind `db:"referral_kind"`
	ReferralCode         *string      `db:"referral_code"`
	CreatedAt            time.Time    `db:"created_at"`
}

// ComputeFundSplit divides a payment according to the referral disposition.
// All rounding is assigned to the lottery share so the parts sum to total
// exactly.
func ComputeFundSplit(total int64, kind ReferralKind) (lottery, operator, creator, referrer int64) {
	switch kind {
	case ReferralKindOperator:
		operator = total * ReferralGrossPercent / 100
		lottery = total - operator
	case ReferralKindCreator:
		gross := total * ReferralGrossPercent / 100
		referrer = total * ReferrerEarningsPercent / 100
		creator = gross - referrer
		lottery = total - gross
	default:
		lottery = total
	}
	return lottery, operator, creator, referrer
}
