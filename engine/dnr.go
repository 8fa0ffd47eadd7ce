package engine

import (
	"whirlpool/crypto"
	"whirlpool/market"
)

// BorrowDNR borrows the synthetic stable against the caller's
// entered-market collateral. Unlike generic Borrow, DNR has no backing
// vault: the market's cash balance and collateral-side rebase are never
// touched; the asset is minted fresh to the caller.
func (e *Engine) BorrowDNR(user crypto.Address, amount uint64) (uint64, uint64, error) {
	if amount == 0 {
		return 0, 0, ErrInvalidAmount
	}
	dataPtr, err := e.Markets.Get(market.DNR)
	if err != nil {
		return 0, 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, err
	}

	accPtr := e.Accounts.Init(market.DNR, user)
	marketsIn := e.Accounts.InitMarketsIn(user)
	wasPresent := marketsIn.Contains(market.DNR)
	marketsIn.Add(market.DNR)
	revertMembership := func() {
		if !wasPresent {
			marketsIn.Remove(market.DNR)
		}
	}

	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Principal > 0 {
		pending = pendingReward(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor, acc.LoanRewardsPaid)
	}

	deltaPrincipal := data.LoanRebase.AddElastic(amount, true)
	acc.Principal += deltaPrincipal
	acc.LoanRewardsPaid = watermark(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor)

	if err := e.marketPaused(&data); err != nil {
		revertMembership()
		return 0, 0, err
	}
	if data.CollateralRebase.Elastic > data.BorrowCap {
		revertMembership()
		return 0, 0, ErrBorrowCapLimitReached
	}
	solvent, err := e.isUserSolvent(market.DNR, user, 0, amount)
	if err != nil {
		revertMembership()
		return 0, 0, err
	}
	if !solvent {
		revertMembership()
		if e.metrics != nil {
			e.metrics.IncInsolventRejected(string(market.DNR))
		}
		return 0, 0, ErrUserIsInsolvent
	}

	*dataPtr = data
	*accPtr = acc

	if err := e.DNR.Mint(user, amount); err != nil {
		return 0, 0, err
	}
	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, 0, err
	}
	e.logger.Info("borrow_dnr", "user", user.String(), "amount", amount)
	return amount, pending, nil
}

// RepayDNR pays down the caller's DNR debt. The repaid coins are burned
// rather than credited to a vault.
func (e *Engine) RepayDNR(user crypto.Address, coinValue, principalToRepay uint64) (consumed, excess, ipxMinted uint64, err error) {
	if coinValue == 0 {
		return 0, 0, 0, ErrInvalidAmount
	}
	dataPtr, err := e.Markets.Get(market.DNR)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, 0, err
	}

	accPtr := e.Accounts.Get(market.DNR, user)
	if accPtr == nil {
		return 0, 0, 0, ErrAccountLoanDoesNotExist
	}

	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Principal > 0 {
		pending = pendingReward(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor, acc.LoanRewardsPaid)
	}

	assetPrincipal := data.LoanRebase.ToBase(coinValue, false)
	safePrincipal := assetPrincipal
	if safePrincipal > acc.Principal {
		safePrincipal = acc.Principal
	}
	if principalToRepay < safePrincipal {
		safePrincipal = principalToRepay
	}
	repayAmount := data.LoanRebase.ToElastic(safePrincipal, true)

	if coinValue > repayAmount {
		excess = coinValue - repayAmount
	}

	data.LoanRebase.SubBase(safePrincipal, true)
	acc.Principal -= safePrincipal
	acc.LoanRewardsPaid = watermark(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor)

	if err := e.marketPaused(&data); err != nil {
		return 0, 0, 0, err
	}

	if err := e.DNR.Burn(user, repayAmount); err != nil {
		return 0, 0, 0, err
	}
	*dataPtr = data
	*accPtr = acc

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, 0, 0, err
	}
	e.logger.Info("repay_dnr", "user", user.String(), "repaid", repayAmount)
	return repayAmount, excess, pending, nil
}
