package engine

import (
	"errors"
	"math"
)

const (
	CentsPerDollar = int64(100)

	// Staffing economics, all per quarter unless noted.
	HoursPerStaffPerQuarter = 480.0
	StaffQuarterlyCostCents = int64(15_000) * CentsPerDollar
	HiringCostCents         = int64(5_000) * CentsPerDollar
	SeveranceCostCents      = int64(8_000) * CentsPerDollar

	// Pitch resolution.
	WinChanceCeiling = 95.0
	MaxDiscountPct   = 50

	// Client satisfaction thresholds.
	NoticeThreshold    = 30.0
	StartSatisfaction  = 70.0
	SevereBurnoutLevel = 80.0
)

var (
	ErrUnknownOpportunity = errors.New("pitch references an opportunity not in the current pool")
	ErrInvalidDiscount    = errors.New("discount must be between 0 and 50 percent")
	ErrInvalidQuality     = errors.New("quality must be budget, standard, or premium")
	ErrNegativeSpend      = errors.New("investment amounts must not be negative")
	ErrNegativeStaffing   = errors.New("staffing counts must not be negative")
	ErrInvalidGrowthFocus = errors.New("growth focus must be between 0 and 1")
	ErrTeamBankrupt       = errors.New("team is bankrupt")
	ErrBadLevelConfig     = errors.New("invalid level configuration")
)

func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * float64(CentsPerDollar)))
}

func CentsToDollars(v int64) float64 {
	return float64(v) / float64(CentsPerDollar)
}

// clamp100 bounds a percentage metric to [0, 100].
func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
