package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFundSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		total        int64
		kind         ReferralKind
		wantLottery  int64
		wantOperator int64
		wantCreator  int64
		wantReferrer int64
	}{
		{
			name:        "no referral keeps everything in the lottery",
			total:       1_000_000_000,
			kind:        ReferralKindNone,
			wantLottery: 1_000_000_000,
		},
		{
			name:         "operator code diverts 30 percent to the operator",
			total:        1_000_000_000,
			kind:         ReferralKindOperator,
			wantLottery:  700_000_000,
			wantOperator: 300_000_000,
		},
		{
			name:         "creator code splits 25 points to referrer and 5 to creator",
			total:        1_000_000_000,
			kind:         ReferralKindCreator,
			wantLottery:  700_000_000,
			wantCreator:  50_000_000,
			wantReferrer: 250_000_000,
		},
		{
			name:         "rounding remainder stays with the lottery",
			total:        1_000_000_001,
			kind:         ReferralKindCreator,
			wantLottery:  700_000_001,
			wantCreator:  50_000_000,
			wantReferrer: 250_000_000,
		},
		{
			name:         "tiny amounts round shares to zero",
			total:        3,
			kind:         ReferralKindOperator,
			wantLottery:  3,
			wantOperator: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lottery, operator, creator, referrer := ComputeFundSplit(tt.total, tt.kind)

			assert.Equal(t, tt.wantLottery, lottery)
			assert.Equal(t, tt.wantOperator, operator)
			assert.Equal(t, tt.wantCreator, creator)
			assert.Equal(t, tt.wantReferrer, referrer)

			// The parts always reconstitute the payment exactly
			assert.Equal(t, tt.total, lottery+operator+creator+referrer)
		})
	}
}

func TestComputeFundSplit_SumInvariant(t *testing.T) {
	t.Parallel()

	// Awkward totals that do not divide evenly by 100
	for _, total := range []int64{1, 7, 99, 101, 12_345_679, 987_654_321} {
		for _, kind := range []ReferralKind{ReferralKindNone, ReferralKindOperator, ReferralKindCreator} {
			lottery, operator, creator, referrer := ComputeFundSplit(total, kind)
			assert.Equal(t, total, lottery+operator+creator+referrer,
				"split of %d with kind %s must sum exactly", total, kind)
			assert.GreaterOrEqual(t, lottery, int64(0))
			assert.GreaterOrEqual(t, operator, int64(0))
			assert.GreaterOrEqual(t, creator, int64(0))
			assert.GreaterOrEqual(t, referrer, int64(0))
		}
	}
}
