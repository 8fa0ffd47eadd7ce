package engine

import (
	"whirlpool/crypto"
	"whirlpool/market"
)

// Deposit adds amount to the caller's collateral in key and returns the IPX
// reward accrued on their prior shares. DNR is never collateral; deposits
// against the DNR key fail with ErrDNROperationNotAllowed.
func (e *Engine) Deposit(user crypto.Address, key market.Key, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if key == market.DNR {
		return 0, ErrDNROperationNotAllowed
	}
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, err
	}

	accPtr := e.Accounts.Init(key, user)
	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Shares > 0 {
		pending = pendingReward(acc.Shares, data.AccruedCollateralRewardsPerShare, data.DecimalsFactor, acc.CollateralRewardsPaid)
	}

	deltaShares := data.CollateralRebase.AddElastic(amount, false)
	data.BalanceValue += amount
	acc.Shares += deltaShares
	acc.CollateralRewardsPaid = watermark(acc.Shares, data.AccruedCollateralRewardsPerShare, data.DecimalsFactor)

	if err := e.marketPaused(&data); err != nil {
		return 0, err
	}
	if data.CollateralRebase.Elastic > data.CollateralCap {
		return 0, ErrMaxCollateralReached
	}

	e.Markets.DepositVault(key, amount)
	*dataPtr = data
	*accPtr = acc

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, err
	}
	e.logger.Info("deposit", "market", string(key), "user", user.String(), "amount", amount)
	return pending, nil
}

// Withdraw redeems sharesToRemove of the caller's collateral shares,
// returning the underlying amount released and the IPX reward accrued. If
// the caller has entered any markets the resulting portfolio must remain
// solvent.
func (e *Engine) Withdraw(user crypto.Address, key market.Key, sharesToRemove uint64) (uint64, uint64, error) {
	if sharesToRemove == 0 {
		return 0, 0, ErrInvalidAmount
	}
	if key == market.DNR {
		return 0, 0, ErrDNROperationNotAllowed
	}
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, err
	}

	accPtr := e.Accounts.Get(key, user)
	if accPtr == nil || accPtr.Shares < sharesToRemove {
		return 0, 0, ErrNotEnoughShares
	}

	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Shares > 0 {
		pending = pendingReward(acc.Shares, data.AccruedCollateralRewardsPerShare, data.DecimalsFactor, acc.CollateralRewardsPaid)
	}

	underlying := data.CollateralRebase.SubBase(sharesToRemove, false)
	if data.BalanceValue < underlying {
		return 0, 0, ErrNotEnoughCashToWithdraw
	}
	data.BalanceValue -= underlying
	acc.Shares -= sharesToRemove
	acc.CollateralRewardsPaid = watermark(acc.Shares, data.AccruedCollateralRewardsPerShare, data.DecimalsFactor)

	if err := e.marketPaused(&data); err != nil {
		return 0, 0, err
	}

	if marketsIn := e.Accounts.MarketsIn(user); marketsIn != nil && len(marketsIn.Keys()) > 0 {
		solvent, err := e.isUserSolvent(key, user, underlying, 0)
		if err != nil {
			return 0, 0, err
		}
		if !solvent {
			if e.metrics != nil {
				e.metrics.IncInsolventRejected(string(key))
			}
			return 0, 0, ErrWithdrawNotAllowed
		}
	}

	e.Markets.WithdrawVault(key, underlying)
	*dataPtr = data
	*accPtr = acc

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, 0, err
	}
	e.logger.Info("withdraw", "market", string(key), "user", user.String(), "shares", sharesToRemove, "underlying", underlying)
	return underlying, pending, nil
}

// Borrow lends borrowValue of key's underlying to the caller against their
// entered-market collateral, registering key in the caller's entered set.
// The borrow cap is compared against the collateral-side elastic value, not
// the loan side; this mirrors the historical contract behavior and is kept
// intentionally (see DESIGN.md).
func (e *Engine) Borrow(user crypto.Address, key market.Key, borrowValue uint64) (uint64, uint64, error) {
	if borrowValue == 0 {
		return 0, 0, ErrInvalidAmount
	}
	if key == market.DNR {
		return 0, 0, ErrDNROperationNotAllowed
	}
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, 0, err
	}
	if dataPtr.BalanceValue < borrowValue {
		return 0, 0, ErrNotEnoughCashToLend
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, err
	}

	accPtr := e.Accounts.Init(key, user)
	marketsIn := e.Accounts.InitMarketsIn(user)
	wasPresent := marketsIn.Contains(key)
	marketsIn.Add(key)
	revertMembership := func() {
		if !wasPresent {
			marketsIn.Remove(key)
		}
	}

	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Principal > 0 {
		pending = pendingReward(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor, acc.LoanRewardsPaid)
	}

	deltaPrincipal := data.LoanRebase.AddElastic(borrowValue, true)
	acc.Principal += deltaPrincipal
	acc.LoanRewardsPaid = watermark(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor)
	data.BalanceValue -= borrowValue

	if err := e.marketPaused(&data); err != nil {
		revertMembership()
		return 0, 0, err
	}
	if data.CollateralRebase.Elastic > data.BorrowCap {
		revertMembership()
		return 0, 0, ErrBorrowCapLimitReached
	}
	solvent, err := e.isUserSolvent(key, user, 0, borrowValue)
	if err != nil {
		revertMembership()
		return 0, 0, err
	}
	if !solvent {
		revertMembership()
		if e.metrics != nil {
			e.metrics.IncInsolventRejected(string(key))
		}
		return 0, 0, ErrUserIsInsolvent
	}

	e.Markets.WithdrawVault(key, borrowValue)
	*dataPtr = data
	*accPtr = acc

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, 0, err
	}
	e.logger.Info("borrow", "market", string(key), "user", user.String(), "amount", borrowValue)
	return borrowValue, pending, nil
}

// Repay pays down up to principalToRepay of the caller's debt principal
// using assetValue of supplied coins. Returns the portion of assetValue
// actually applied to the debt, any excess to be refunded to the caller,
// and minted IPX.
func (e *Engine) Repay(user crypto.Address, key market.Key, assetValue, principalToRepay uint64) (consumed, excess, ipxMinted uint64, err error) {
	if assetValue == 0 {
		return 0, 0, 0, ErrInvalidAmount
	}
	if key == market.DNR {
		return 0, 0, 0, ErrDNROperationNotAllowed
	}
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, 0, err
	}

	accPtr := e.Accounts.Get(key, user)
	if accPtr == nil {
		return 0, 0, 0, ErrAccountLoanDoesNotExist
	}

	data := *dataPtr
	acc := *accPtr

	var pending uint64
	if acc.Principal > 0 {
		pending = pendingReward(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor, acc.LoanRewardsPaid)
	}

	assetPrincipal := data.LoanRebase.ToBase(assetValue, false)
	safePrincipal := assetPrincipal
	if safePrincipal > acc.Principal {
		safePrincipal = acc.Principal
	}
	if principalToRepay < safePrincipal {
		safePrincipal = principalToRepay
	}
	repayAmount := data.LoanRebase.ToElastic(safePrincipal, true)

	if assetValue > repayAmount {
		excess = assetValue - repayAmount
	}

	data.LoanRebase.SubBase(safePrincipal, true)
	data.BalanceValue += repayAmount
	acc.Principal -= safePrincipal
	acc.LoanRewardsPaid = watermark(acc.Principal, data.AccruedLoanRewardsPerShare, data.DecimalsFactor)

	if err := e.marketPaused(&data); err != nil {
		return 0, 0, 0, err
	}

	e.Markets.DepositVault(key, repayAmount)
	*dataPtr = data
	*accPtr = acc

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, 0, 0, err
	}
	e.logger.Info("repay", "market", string(key), "user", user.String(), "repaid", repayAmount)
	return repayAmount, excess, pending, nil
}

// EnterMarket inserts key into the user's markets_in set if absent.
func (e *Engine) EnterMarket(user crypto.Address, key market.Key) error {
	if _, err := e.Markets.Get(key); err != nil {
		return err
	}
	e.Accounts.InitMarketsIn(user).Add(key)
	return nil
}

// ExitMarket requires a zero loan principal in key, removes it from the
// user's markets_in set, then requires the resulting portfolio remain
// solvent with zero hypothetical delta.
func (e *Engine) ExitMarket(user crypto.Address, key market.Key) error {
	marketsIn := e.Accounts.MarketsIn(user)
	if marketsIn == nil || !marketsIn.Contains(key) {
		return nil
	}
	if acc := e.Accounts.Get(key, user); acc != nil && acc.Principal != 0 {
		return ErrMarketExitLoanOpen
	}

	marketsIn.Remove(key)
	solvent, err := e.isUserSolvent(key, user, 0, 0)
	if err != nil {
		marketsIn.Add(key)
		return err
	}
	if !solvent {
		marketsIn.Add(key)
		return ErrUserIsInsolvent
	}
	return nil
}

// ClaimRewards accrues key once, mints the user's combined pending
// collateral+loan reward, and resets both watermarks.
func (e *Engine) ClaimRewards(user crypto.Address, key market.Key) (uint64, error) {
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, err
	}

	accPtr := e.Accounts.Get(key, user)
	if accPtr == nil {
		return e.IPX.Zero(), nil
	}

	var pending uint64
	if accPtr.Shares > 0 {
		pending += pendingReward(accPtr.Shares, dataPtr.AccruedCollateralRewardsPerShare, dataPtr.DecimalsFactor, accPtr.CollateralRewardsPaid)
	}
	if accPtr.Principal > 0 {
		pending += pendingReward(accPtr.Principal, dataPtr.AccruedLoanRewardsPerShare, dataPtr.DecimalsFactor, accPtr.LoanRewardsPaid)
	}

	accPtr.CollateralRewardsPaid = watermark(accPtr.Shares, dataPtr.AccruedCollateralRewardsPerShare, dataPtr.DecimalsFactor)
	accPtr.LoanRewardsPaid = watermark(accPtr.Principal, dataPtr.AccruedLoanRewardsPerShare, dataPtr.DecimalsFactor)

	if err := e.IPX.Mint(user, pending); err != nil {
		return 0, err
	}
	return pending, nil
}

// ClaimAllRewards iterates every registered market and sums ClaimRewards.
func (e *Engine) ClaimAllRewards(user crypto.Address) (uint64, error) {
	var total uint64
	for _, key := range e.Markets.Keys() {
		pending, err := e.ClaimRewards(user, key)
		if err != nil {
			return total, err
		}
		total += pending
	}
	return total, nil
}

// GetAccountBalances returns (collateral underlying, debt underlying) for
// user in key, accruing the market first so the values reflect the current
// tick.
func (e *Engine) GetAccountBalances(user crypto.Address, key market.Key) (collateral, debt uint64, err error) {
	dataPtr, err := e.Markets.Get(key)
	if err != nil {
		return 0, 0, err
	}
	if err := e.accrue(dataPtr); err != nil {
		return 0, 0, err
	}
	acc := e.Accounts.Get(key, user)
	if acc == nil {
		return 0, 0, nil
	}
	collateral = dataPtr.CollateralRebase.ToElastic(acc.Shares, false)
	debt = dataPtr.LoanRebase.ToElastic(acc.Principal, true)
	return collateral, debt, nil
}

// GetBorrowRatePerEpoch returns the current per-tick borrow rate for key
// without mutating accrual state.
func (e *Engine) GetBorrowRatePerEpoch(key market.Key) (uint64, error) {
	data, err := e.Markets.Get(key)
	if err != nil {
		return 0, err
	}
	return e.borrowRatePerTick(data), nil
}

// GetSupplyRatePerEpoch returns the current per-tick supplier-facing rate
// for key without mutating accrual state. DNR bypasses the jump-rate model
// entirely, so it has no supply rate.
func (e *Engine) GetSupplyRatePerEpoch(key market.Key) (uint64, error) {
	if key == market.DNR {
		return 0, ErrCanNotUseDNR
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return 0, err
	}
	model, ok := e.models[key]
	if !ok {
		panic("engine: GetSupplyRatePerEpoch called on market with no interest rate model configured")
	}
	return model.SupplyRatePerTick(data.BalanceValue, data.LoanRebase.Elastic, data.TotalReserves), nil
}
