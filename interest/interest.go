// Package interest implements the per-market jump-rate interest curve: a
// kinked utilization model expressed in per-tick, MANTISSA-scaled terms.
package interest

import "whirlpool/fixedmath"

// Model holds the per-tick jump-rate parameters for a single market. Rates
// are expressed per-tick (already divided by ticks-per-year at admission),
// matching the Accrual Engine's tick-based delta.
type Model struct {
	BasePerTick           uint64
	MultiplierPerTick     uint64
	JumpMultiplierPerTick uint64
	Kink                  uint64
	ReserveFactor         uint64
}

// NewModelFromAPY converts per-year rate parameters into per-tick rates by
// dividing by ticksPerYear, the form admission-time configuration supplies
// them in.
func NewModelFromAPY(baseAPY, multiplierAPY, jumpMultiplierAPY, kink, reserveFactor, ticksPerYear uint64) Model {
	if ticksPerYear == 0 {
		ticksPerYear = 1
	}
	return Model{
		BasePerTick:           baseAPY / ticksPerYear,
		MultiplierPerTick:     multiplierAPY / ticksPerYear,
		JumpMultiplierPerTick: jumpMultiplierAPY / ticksPerYear,
		Kink:                  kink,
		ReserveFactor:         reserveFactor,
	}
}

// Utilization returns borrows / (cash + borrows - reserves), or zero when
// there are no outstanding borrows.
func Utilization(cash, borrows, reserves uint64) uint64 {
	if borrows == 0 {
		return 0
	}
	denom := cash + borrows
	if reserves > denom {
		reserves = denom
	}
	denom -= reserves
	if denom == 0 {
		return 0
	}
	return fixedmath.Fdiv(borrows, denom)
}

// BorrowRatePerTick returns the kinked jump-rate borrow rate for the given
// pool state.
func (m Model) BorrowRatePerTick(cash, borrows, reserves uint64) uint64 {
	util := Utilization(cash, borrows, reserves)
	if util <= m.Kink {
		return fixedmath.Fmul(util, m.MultiplierPerTick) + m.BasePerTick
	}
	normal := fixedmath.Fmul(m.Kink, m.MultiplierPerTick) + m.BasePerTick
	excess := fixedmath.Fmul(util-m.Kink, m.JumpMultiplierPerTick)
	return normal + excess
}

// SupplyRatePerTick returns the supplier-facing rate: the borrow rate
// weighted by utilization and by the share of interest not routed to
// reserves.
func (m Model) SupplyRatePerTick(cash, borrows, reserves uint64) uint64 {
	util := Utilization(cash, borrows, reserves)
	borrowRate := m.BorrowRatePerTick(cash, borrows, reserves)
	oneMinusReserve := fixedmath.One() - m.ReserveFactor
	return fixedmath.Fmul(util, fixedmath.Fmul(borrowRate, oneMinusReserve))
}
