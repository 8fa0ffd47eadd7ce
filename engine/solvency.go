package engine

import (
	"whirlpool/crypto"
	"whirlpool/fixedmath"
	"whirlpool/market"
)

// isUserSolvent lazily accrues every market the user has entered, then sums
// LTV-weighted collateral value against debt value, applying the
// hypothetical withdraw/borrow delta to modifiedKey. A portfolio with no
// debt is always solvent; otherwise the comparison is strict, so collateral
// value exactly equal to debt value counts as insolvent.
func (e *Engine) isUserSolvent(modifiedKey market.Key, user crypto.Address, withdrawCoinValue, borrowCoinValue uint64) (bool, error) {
	marketsIn := e.Accounts.MarketsIn(user)
	if marketsIn == nil {
		return true, nil
	}

	var collateralUSD, borrowUSD uint64
	for _, key := range marketsIn.Keys() {
		data, err := e.Markets.Get(key)
		if err != nil {
			return false, err
		}
		if e.currentTick > data.AccruedTick {
			if err := e.accrue(data); err != nil {
				return false, err
			}
		}

		acc := e.Accounts.Get(key, user)
		var shares, principal uint64
		if acc != nil {
			shares, principal = acc.Shares, acc.Principal
		}

		colBalance := data.CollateralRebase.ToElastic(shares, false)
		borrowBalance := data.LoanRebase.ToElastic(principal, true)

		if key == modifiedKey {
			if withdrawCoinValue > colBalance {
				colBalance = 0
			} else {
				colBalance -= withdrawCoinValue
			}
			borrowBalance += borrowCoinValue
		}

		price, err := e.normalizedPrice(key)
		if err != nil {
			return false, err
		}

		collateralUSD += fixedmath.Fmul(fixedmath.Fmul(colBalance, price), data.LTV)
		borrowUSD += fixedmath.Fmul(borrowBalance, price)
	}

	if borrowUSD == 0 {
		return true, nil
	}
	return collateralUSD > borrowUSD, nil
}

// normalizedPrice resolves an oracle quote to MANTISSA scale:
// price * MANTISSA / 10^decimals. DNR is pinned to MANTISSA; its price
// never floats.
func (e *Engine) normalizedPrice(key market.Key) (uint64, error) {
	if key == market.DNR {
		return fixedmath.One(), nil
	}
	rawPrice, decimals, err := e.Oracle.GetPrice(key)
	if err != nil {
		return 0, err
	}
	price := fixedmath.Fdiv(rawPrice, pow10(decimals))
	if price == 0 {
		return 0, ErrZeroOraclePrice
	}
	return price, nil
}
