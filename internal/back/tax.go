package back

import "math"

// TierAmount returns the flat daily tax owed for a given level. Levels
// below 1 are rejected before they can reach this function.
func TierAmount(level int) float64 {
	switch {
	case level <= 4:
		return 0.0
	case level <= 9:
		return 1.0
	case level <= 15:
		return 3.0
	case level <= 20:
		return 5.5
	case level <= 25:
		return 8.0
	default:
		return 12.0
	}
}

// FactorySurcharge returns the extra tax owed for owning factories.
// The first two factories are free, from the third on _every_ factory is
// taxed 0.5, hence the jump from 0 to 1.5 between two and three factories.
// This threshold is intentional, do not smooth it out.
func FactorySurcharge(factories int) float64 {
	if factories < 3 {
		return 0.0
	}

	return 0.5 * float64(factories)
}

// TotalTax returns the daily amount due, rounded to two decimals.
func TotalTax(level, factories int) float64 {
	return math.Round((TierAmount(level)+FactorySurcharge(factories))*100) / 100
}
