package engine

import (
	"math/big"

	"github.com/holiman/uint256"

	"whirlpool/fixedmath"
	"whirlpool/market"
)

// accrue advances data from its last accrued tick to the engine's current
// tick: interest on loans, reserve slice, and reward-per-share updates.
// Calling it twice at the same tick is a no-op, so every action can accrue
// unconditionally before reading market state.
func (e *Engine) accrue(data *market.Data) error {
	if e.currentTick <= data.AccruedTick {
		return nil
	}
	delta := e.currentTick - data.AccruedTick

	ratePerTick := e.borrowRatePerTick(data)
	interestAmount := mulRateDelta(ratePerTick, delta, data.LoanRebase.Elastic)

	reserveSlice := fixedmath.Fmul(interestAmount, data.ReserveFactor)

	data.LoanRebase.IncreaseElastic(interestAmount)
	data.CollateralRebase.IncreaseElastic(interestAmount - reserveSlice)
	data.TotalReserves += reserveSlice
	data.AccruedTick = e.currentTick

	e.emitRewards(data, delta)

	if e.metrics != nil {
		e.metrics.ObserveAccrual(string(data.Key), float64(interestAmount))
		e.metrics.SetReserves(string(data.Key), float64(data.TotalReserves))
	}
	e.logger.Debug("market accrued", "market", string(data.Key), "delta", delta, "interest", interestAmount, "reserve_slice", reserveSlice)
	return nil
}

// mulRateDelta computes fmul(rate*delta, elastic) using widened arithmetic
// throughout, since rate*delta may itself overflow a uint64 for large tick
// gaps.
func mulRateDelta(ratePerTick, delta, elastic uint64) uint64 {
	rate := new(big.Int).Mul(new(big.Int).SetUint64(ratePerTick), new(big.Int).SetUint64(delta))
	product := rate.Mul(rate, new(big.Int).SetUint64(elastic))
	product.Quo(product, new(big.Int).SetUint64(fixedmath.Mantissa))
	return product.Uint64()
}

func (e *Engine) borrowRatePerTick(data *market.Data) uint64 {
	if data.Key == market.DNR {
		return e.DNR.InterestRatePerTick()
	}
	model, ok := e.models[data.Key]
	if !ok {
		panic("engine: accrue called on market with no interest rate model configured")
	}
	cash := data.BalanceValue
	borrows := data.LoanRebase.Elastic
	reserves := data.TotalReserves
	return model.BorrowRatePerTick(cash, borrows, reserves)
}

// emitRewards distributes the market's share of the global reward emission
// over delta ticks between the collateral and loan sides. The odd remainder
// unit goes to the loan side; a side with zero base drops its half of the
// emission (no receivers exist, and the shortfall is not banked).
func (e *Engine) emitRewards(data *market.Data, delta uint64) {
	if e.totalAllocationPoints == 0 || data.AllocationPoints == 0 || delta == 0 || e.rewardsPerTick == 0 {
		return
	}
	emitted := emittedOverDelta(data.AllocationPoints, delta, e.rewardsPerTick, e.totalAllocationPoints)
	collateralEmitted := emitted / 2
	loanEmitted := emitted - collateralEmitted

	if data.CollateralRebase.Base > 0 && collateralEmitted > 0 {
		increment := wideMulDiv(collateralEmitted, data.DecimalsFactor, data.CollateralRebase.Base)
		data.AccruedCollateralRewardsPerShare.Add(data.AccruedCollateralRewardsPerShare, increment)
		if e.metrics != nil {
			e.metrics.AddRewardsEmitted(string(data.Key), "collateral", float64(collateralEmitted))
		}
	}
	if data.LoanRebase.Base > 0 && loanEmitted > 0 {
		increment := wideMulDiv(loanEmitted, data.DecimalsFactor, data.LoanRebase.Base)
		data.AccruedLoanRewardsPerShare.Add(data.AccruedLoanRewardsPerShare, increment)
		if e.metrics != nil {
			e.metrics.AddRewardsEmitted(string(data.Key), "loan", float64(loanEmitted))
		}
	}
}

// emittedOverDelta computes points*delta*rewardsPerTick/totalPoints widened,
// since delta*rewardsPerTick alone can overflow a uint64 at realistic
// emission rates.
func emittedOverDelta(points, delta, rewardsPerTick, totalPoints uint64) uint64 {
	if totalPoints == 0 {
		return 0
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(points), new(big.Int).SetUint64(delta))
	num.Mul(num, new(big.Int).SetUint64(rewardsPerTick))
	num.Quo(num, new(big.Int).SetUint64(totalPoints))
	return num.Uint64()
}

func wideMulDiv(a, b, d uint64) *uint256.Int {
	if d == 0 {
		return uint256.NewInt(0)
	}
	result := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	result.Div(result, uint256.NewInt(d))
	return result
}

// pendingReward computes units*rewardsPerShare/decimalsFactor - paid,
// clamped to zero, returning a uint64 IPX amount.
func pendingReward(units uint64, rewardsPerShare *uint256.Int, decimalsFactor uint64, paid *uint256.Int) uint64 {
	if units == 0 {
		return 0
	}
	accrued := new(uint256.Int).Mul(uint256.NewInt(units), rewardsPerShare)
	accrued.Div(accrued, uint256.NewInt(decimalsFactor))
	if accrued.Lt(paid) {
		return 0
	}
	pending := new(uint256.Int).Sub(accrued, paid)
	return pending.Uint64()
}

func watermark(units uint64, rewardsPerShare *uint256.Int, decimalsFactor uint64) *uint256.Int {
	if units == 0 || decimalsFactor == 0 {
		return uint256.NewInt(0)
	}
	out := new(uint256.Int).Mul(uint256.NewInt(units), rewardsPerShare)
	out.Div(out, uint256.NewInt(decimalsFactor))
	return out
}
