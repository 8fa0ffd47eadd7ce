package engine

import (
	"whirlpool/core/events"
	"whirlpool/crypto"
	"whirlpool/fixedmath"
	"whirlpool/market"
)

// liquidationPreconditions checks the shared requirements of both
// liquidation variants: liquidator != borrower, collateral is never DNR,
// both of the borrower's accounts exist, and the borrower is not currently
// solvent. Unlike the user-action gates (evaluated after mutation), the
// liquidation gate is a true precondition: both markets are accrued first,
// but no account, rebase share or vault is mutated before it passes.
func (e *Engine) liquidationPreconditions(liquidator, borrower crypto.Address, collateralKey, loanKey market.Key) (*market.Data, *market.Data, error) {
	if liquidator == borrower {
		return nil, nil, ErrLiquidatorIsBorrower
	}
	if collateralKey == market.DNR {
		return nil, nil, ErrCanNotUseDNR
	}
	collateralData, err := e.Markets.Get(collateralKey)
	if err != nil {
		return nil, nil, err
	}
	loanData, err := e.Markets.Get(loanKey)
	if err != nil {
		return nil, nil, err
	}
	if err := e.accrue(collateralData); err != nil {
		return nil, nil, err
	}
	if err := e.accrue(loanData); err != nil {
		return nil, nil, err
	}
	if e.Accounts.Get(collateralKey, borrower) == nil {
		return nil, nil, ErrAccountCollateralDoesNotExist
	}
	if e.Accounts.Get(loanKey, borrower) == nil {
		return nil, nil, ErrAccountLoanDoesNotExist
	}
	solvent, err := e.isUserSolvent(loanKey, borrower, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	if solvent {
		return nil, nil, ErrUserIsSolvent
	}
	return collateralData, loanData, nil
}

// Liquidate repays up to assetValue of an insolvent borrower's debt in
// loanKey and seizes collateral shares in collateralKey at oracle prices,
// plus the penalty fee split between the liquidator and protocol reserves.
// The loan side must not be DNR; use LiquidateDNR for that.
func (e *Engine) Liquidate(liquidator crypto.Address, collateralKey, loanKey market.Key, assetValue uint64, borrower crypto.Address) (repaid, excessRefund, protocolAmount uint64, err error) {
	if loanKey == market.DNR {
		return 0, 0, 0, ErrCanNotUseDNR
	}
	collateralData, loanData, err := e.liquidationPreconditions(liquidator, borrower, collateralKey, loanKey)
	if err != nil {
		return 0, 0, 0, err
	}

	borrowerLoan := e.Accounts.Get(loanKey, borrower)
	debt := loanData.LoanRebase.ToElastic(borrowerLoan.Principal, true)
	repay := assetValue
	if repay > debt {
		repay = debt
	}
	if repay == 0 {
		return 0, 0, 0, ErrZeroLiquidationAmount
	}
	if assetValue > repay {
		excessRefund = assetValue - repay
	}

	loanPrice, err := e.normalizedPrice(loanKey)
	if err != nil {
		return 0, 0, 0, err
	}
	collateralPrice, err := e.normalizedPrice(collateralKey)
	if err != nil {
		return 0, 0, 0, err
	}

	loanData.BalanceValue += repay
	e.Markets.DepositVault(loanKey, repay)
	baseRepay := loanData.LoanRebase.ToBase(repay, true)

	var pendingBorrower uint64
	if borrowerLoan.Principal > 0 {
		pendingBorrower = pendingReward(borrowerLoan.Principal, loanData.AccruedLoanRewardsPerShare, loanData.DecimalsFactor, borrowerLoan.LoanRewardsPaid)
	}
	principalDecrement := baseRepay
	if principalDecrement > borrowerLoan.Principal {
		principalDecrement = borrowerLoan.Principal
	}
	borrowerLoan.Principal -= principalDecrement
	borrowerLoan.LoanRewardsPaid = watermark(borrowerLoan.Principal, loanData.AccruedLoanRewardsPerShare, loanData.DecimalsFactor)
	loanData.LoanRebase.SubBase(baseRepay, false)

	seize := fixedmath.Fdiv(fixedmath.Fmul(loanPrice, repay), collateralPrice)
	protocolAmount = e.settleSeizure(collateralData, collateralKey, borrower, liquidator, seize, &pendingBorrower)

	if err := e.IPX.Mint(borrower, pendingBorrower); err != nil {
		return 0, 0, 0, err
	}
	if e.metrics != nil {
		e.metrics.IncLiquidation(string(collateralKey), string(loanKey))
	}
	e.emit(events.LendingLiquidated{
		CollateralKey:  events.NormalizeAsset(string(collateralKey)),
		LoanKey:        events.NormalizeAsset(string(loanKey)),
		Borrower:       borrower.Bytes(),
		Liquidator:     liquidator.Bytes(),
		Repaid:         repay,
		Seized:         seize,
		ProtocolAmount: protocolAmount,
	})
	e.logger.Info("liquidate", "collateral", string(collateralKey), "loan", string(loanKey), "repaid", repay, "seized", seize)
	return repay, excessRefund, protocolAmount, nil
}

// LiquidateDNR is the DNR-loan liquidation variant: the loan side is always
// DNR, repaid coins are burned rather than vaulted, and the seize price
// uses DNR's pinned MANTISSA price.
func (e *Engine) LiquidateDNR(liquidator crypto.Address, collateralKey market.Key, assetValue uint64, borrower crypto.Address) (repaid, excessRefund, protocolAmount uint64, err error) {
	collateralData, loanData, err := e.liquidationPreconditions(liquidator, borrower, collateralKey, market.DNR)
	if err != nil {
		return 0, 0, 0, err
	}

	borrowerLoan := e.Accounts.Get(market.DNR, borrower)
	debt := loanData.LoanRebase.ToElastic(borrowerLoan.Principal, true)
	repay := assetValue
	if repay > debt {
		repay = debt
	}
	if repay == 0 {
		return 0, 0, 0, ErrZeroLiquidationAmount
	}
	if assetValue > repay {
		excessRefund = assetValue - repay
	}

	collateralPrice, err := e.normalizedPrice(collateralKey)
	if err != nil {
		return 0, 0, 0, err
	}

	if err := e.DNR.Burn(liquidator, repay); err != nil {
		return 0, 0, 0, err
	}
	baseRepay := loanData.LoanRebase.ToBase(repay, true)

	var pendingBorrower uint64
	if borrowerLoan.Principal > 0 {
		pendingBorrower = pendingReward(borrowerLoan.Principal, loanData.AccruedLoanRewardsPerShare, loanData.DecimalsFactor, borrowerLoan.LoanRewardsPaid)
	}
	principalDecrement := baseRepay
	if principalDecrement > borrowerLoan.Principal {
		principalDecrement = borrowerLoan.Principal
	}
	borrowerLoan.Principal -= principalDecrement
	borrowerLoan.LoanRewardsPaid = watermark(borrowerLoan.Principal, loanData.AccruedLoanRewardsPerShare, loanData.DecimalsFactor)
	loanData.LoanRebase.SubBase(baseRepay, false)

	seize := fixedmath.Fdiv(repay, collateralPrice)
	protocolAmount = e.settleSeizure(collateralData, collateralKey, borrower, liquidator, seize, &pendingBorrower)

	if err := e.IPX.Mint(borrower, pendingBorrower); err != nil {
		return 0, 0, 0, err
	}
	if e.metrics != nil {
		e.metrics.IncLiquidation(string(collateralKey), string(market.DNR))
	}
	e.emit(events.LendingLiquidated{
		CollateralKey:  events.NormalizeAsset(string(collateralKey)),
		LoanKey:        events.NormalizeAsset(string(market.DNR)),
		Borrower:       borrower.Bytes(),
		Liquidator:     liquidator.Bytes(),
		Repaid:         repay,
		Seized:         seize,
		ProtocolAmount: protocolAmount,
	})
	e.logger.Info("liquidate_dnr", "collateral", string(collateralKey), "repaid", repay, "seized", seize)
	return repay, excessRefund, protocolAmount, nil
}

// settleSeizure is the shared tail of both liquidation variants:
// penalty/protocol split, transferring seized collateral shares from
// borrower to liquidator and protocol reserves, and accumulating the
// borrower's forfeited collateral-side reward pending into *pendingBorrower
// (the loan-side pending the caller already snapshotted). The collateral
// elastic never changes here; shares move between accounts.
func (e *Engine) settleSeizure(collateralData *market.Data, collateralKey market.Key, borrower, liquidator crypto.Address, seize uint64, pendingBorrower *uint64) (protocolAmount uint64) {
	liq, _ := e.Markets.Liquidation(collateralKey)
	penalty := fixedmath.Fmul(seize, liq.PenaltyFee)
	seizeTotal := seize + penalty
	protocolAmount = fixedmath.Fmul(penalty, liq.ProtocolPercentage)
	liquidatorAmount := seizeTotal - protocolAmount

	borrowerCollateral := e.Accounts.Get(collateralKey, borrower)
	if borrowerCollateral.Shares > 0 {
		*pendingBorrower += pendingReward(borrowerCollateral.Shares, collateralData.AccruedCollateralRewardsPerShare, collateralData.DecimalsFactor, borrowerCollateral.CollateralRewardsPaid)
	}

	seizeBase := collateralData.CollateralRebase.ToBase(seizeTotal, true)
	if seizeBase > borrowerCollateral.Shares {
		seizeBase = borrowerCollateral.Shares
	}
	borrowerCollateral.Shares -= seizeBase
	borrowerCollateral.CollateralRewardsPaid = watermark(borrowerCollateral.Shares, collateralData.AccruedCollateralRewardsPerShare, collateralData.DecimalsFactor)

	liquidatorAcc := e.Accounts.Init(collateralKey, liquidator)
	liquidatorShares := collateralData.CollateralRebase.ToBase(liquidatorAmount, false)
	liquidatorAcc.Shares += liquidatorShares
	liquidatorAcc.CollateralRewardsPaid = watermark(liquidatorAcc.Shares, collateralData.AccruedCollateralRewardsPerShare, collateralData.DecimalsFactor)

	collateralData.TotalReserves += protocolAmount
	return protocolAmount
}
