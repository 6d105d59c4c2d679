package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraw_PrizePool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pool int64
		want int64
	}{
		{"even pool", 1_000_000_000, 700_000_000},
		{"odd pool floors", 101, 70},
		{"tiny pool", 1, 0},
		{"zero pool", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draw := &Draw{TotalPoolLamports: tt.pool}
			assert.Equal(t, tt.want, draw.PrizePool())
		})
	}
}

func TestDraw_Lifecycle(t *testing.T) {
	t.Parallel()

	now := time.Now()

	active := &Draw{Status: DrawStatusActive, DrawTime: now.Add(-time.Minute)}
	assert.True(t, active.IsOpenForPurchase())
	assert.True(t, active.IsDue(now))
	assert.False(t, active.IsCompleted())

	notYetDue := &Draw{Status: DrawStatusActive, DrawTime: now.Add(time.Minute)}
	assert.False(t, notYetDue.IsDue(now))

	preOrder := &Draw{Status: DrawStatusPreOrder, DrawTime: now.Add(-time.Minute)}
	assert.True(t, preOrder.IsOpenForPurchase())
	// Pre-order draws are never due, regardless of draw time
	assert.False(t, preOrder.IsDue(now))

	completed := &Draw{Status: DrawStatusCompleted, DrawTime: now.Add(-time.Minute)}
	assert.True(t, completed.IsCompleted())
	assert.False(t, completed.IsOpenForPurchase())
	assert.False(t, completed.IsDue(now))
}

func TestTier_CodePrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MO", TierMonthly.CodePrefix())
	assert.Equal(t, "WK", TierWeekly.CodePrefix())
	assert.Equal(t, "DY", TierDaily.CodePrefix())

	assert.True(t, TierMonthly.Valid())
	assert.False(t, Tier("hourly").Valid())
}

func TestGenerateTicketCode(t *testing.T) {
	t.Parallel()

	paid, err := GenerateTicketCode(TierWeekly, 3, false)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paid, "WK-"))
	assert.True(t, strings.HasSuffix(paid, "P03"))

	bonus, err := GenerateTicketCode(TierDaily, 12, true)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bonus, "DY-"))
	assert.True(t, strings.HasSuffix(bonus, "B12"))
}

func TestGenerateTicketCode_Uniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := GenerateTicketCode(TierMonthly, i, false)
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate ticket code %s", code)
		seen[code] = struct{}{}
	}
}
