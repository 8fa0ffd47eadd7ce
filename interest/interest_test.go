package interest

import "testing"

func TestUtilizationZeroBorrows(t *testing.T) {
	if got := Utilization(1_000, 0, 0); got != 0 {
		t.Fatalf("Utilization = %d, want 0", got)
	}
}

func TestBorrowRateAtZeroUtilizationIsBase(t *testing.T) {
	m := Model{BasePerTick: 10_000_000, MultiplierPerTick: 500_000_000, Kink: 800_000_000}
	rate := m.BorrowRatePerTick(1_000, 0, 0)
	if rate != m.BasePerTick {
		t.Fatalf("rate = %d, want base %d", rate, m.BasePerTick)
	}
}

func TestBorrowRateFlatCurve(t *testing.T) {
	// base_per_tick=1e7 with zero multipliers: rate is flat at base.
	m := Model{BasePerTick: 10_000_000, ReserveFactor: 200_000_000}
	rate := m.BorrowRatePerTick(500_000_000, 500_000_000, 0)
	if rate != 10_000_000 {
		t.Fatalf("rate = %d, want 1e7 (multiplier is zero)", rate)
	}
}

func TestBorrowRateJumpsPastKink(t *testing.T) {
	m := Model{BasePerTick: 0, MultiplierPerTick: 100_000_000, JumpMultiplierPerTick: 1_000_000_000, Kink: 800_000_000}
	below := m.BorrowRatePerTick(200, 800, 0) // util = 0.8 == kink
	above := m.BorrowRatePerTick(100, 900, 0) // util = 0.9 > kink
	if above <= below {
		t.Fatalf("rate past kink (%d) should exceed rate at kink (%d)", above, below)
	}
}
