package back

import "testing"

func TestTierAmountMatchesTable(t *testing.T) {
	expected := []struct {
		level  int
		amount float64
	}{
		{1, 0.0}, {4, 0.0},
		{5, 1.0}, {9, 1.0},
		{10, 3.0}, {15, 3.0},
		{16, 5.5}, {20, 5.5},
		{21, 8.0}, {25, 8.0},
		{26, 12.0}, {999, 12.0},
	}

	for _, v := range expected {
		if actual := TierAmount(v.level); actual != v.amount {
			t.Errorf("level %d: expected %f got %f", v.level, v.amount, actual)
		}
	}
}

func TestTierAmountIsNonDecreasing(t *testing.T) {
	prev := TierAmount(1)
	for level := 2; level <= 999; level++ {
		curr := TierAmount(level)
		if curr < prev {
			t.Fatalf("level %d: %f < %f", level, curr, prev)
		}
		prev = curr
	}
}

func TestFactorySurchargeThreshold(t *testing.T) {
	if actual := FactorySurcharge(0); actual != 0.0 {
		t.Errorf("expected 0.0 got %f", actual)
	}
	if actual := FactorySurcharge(2); actual != 0.0 {
		t.Errorf("expected 0.0 got %f", actual)
	}

	// The jump from 0 to 1.5 is intentional, cf. FactorySurcharge.
	if actual := FactorySurcharge(3); actual != 1.5 {
		t.Errorf("expected 1.5 got %f", actual)
	}
	if actual := FactorySurcharge(10); actual != 5.0 {
		t.Errorf("expected 5.0 got %f", actual)
	}
}

func TestTotalTax(t *testing.T) {
	expected := []struct {
		level, factories int
		amount           float64
	}{
		{1, 0, 0.0},
		{1, 2, 0.0},
		{5, 3, 2.5},
		{16, 2, 5.5},
		{30, 5, 14.5},
	}

	for _, v := range expected {
		if actual := TotalTax(v.level, v.factories); actual != v.amount {
			t.Errorf(
				"level %d, %d factories: expected %f got %f",
				v.level, v.factories, v.amount, actual,
			)
		}
	}
}
