package entities

// Tier identifies a lottery cadence. Each tier has its own collection wallet,
// disbursing keypair and prize distribution table.
type Tier string

const (
	TierMonthly Tier = "monthly"
	TierWeekly  Tier = "weekly"
	TierDaily   Tier = "daily"
)

// Valid returns true if the tier is one of the known cadences
func (t Tier) Valid() bool {
	switch t {
	case TierMonthly, TierWeekly, TierDaily:
		return true
	}
	return false
}

// CodePrefix returns the two-letter prefix used in ticket codes
func (t Tier) CodePrefix() string {
	switch t {
	case TierMonthly:
		return "MO"
	case TierWeekly:
		return "WK"
	case TierDaily:
		return "DY"
	}
	return "XX"
}
