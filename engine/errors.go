package engine

import "errors"

// Error taxonomy, grouped by cause. Every state-mutating operation returns
// exactly one of these (or a collaborator error) on failure, and the engine
// leaves no partial mutation behind.
var (
	// Gating.
	ErrMarketPaused        = errors.New("engine: market paused")
	ErrDepositNotAllowed   = errors.New("engine: deposit not allowed")
	ErrWithdrawNotAllowed  = errors.New("engine: withdraw not allowed")
	ErrBorrowNotAllowed    = errors.New("engine: borrow not allowed")
	ErrRepayNotAllowed     = errors.New("engine: repay not allowed")

	// Capacity / liquidity.
	ErrNotEnoughCashToWithdraw = errors.New("engine: not enough cash to withdraw")
	ErrNotEnoughCashToLend     = errors.New("engine: not enough cash to lend")
	ErrBorrowCapLimitReached   = errors.New("engine: borrow cap limit reached")
	ErrMaxCollateralReached    = errors.New("engine: max collateral reached")
	ErrNotEnoughShares         = errors.New("engine: not enough shares")
	ErrNotEnoughReserves       = errors.New("engine: not enough reserves")

	// Solvency.
	ErrUserIsInsolvent = errors.New("engine: user is insolvent")
	ErrUserIsSolvent   = errors.New("engine: user is solvent")

	// Policy.
	ErrDNROperationNotAllowed = errors.New("engine: DNR operation not allowed via generic path")
	ErrCanNotUseDNR           = errors.New("engine: DNR cannot be used here")
	ErrMarketExitLoanOpen     = errors.New("engine: cannot exit market with an open loan")
	ErrLiquidatorIsBorrower   = errors.New("engine: liquidator is borrower")
	ErrZeroLiquidationAmount  = errors.New("engine: zero liquidation amount")
	ErrValueTooHigh           = errors.New("engine: value too high")
	ErrNoAddressZero          = errors.New("engine: null address not permitted")

	// Data.
	ErrZeroOraclePrice                = errors.New("engine: zero oracle price")
	ErrAccountCollateralDoesNotExist  = errors.New("engine: collateral account does not exist")
	ErrAccountLoanDoesNotExist        = errors.New("engine: loan account does not exist")
	ErrMarketNotUpToDate              = errors.New("engine: market not up to date")

	// Configuration.
	ErrInvalidAmount     = errors.New("engine: amount must be positive")
	ErrFeeTooHigh        = errors.New("engine: fee exceeds admin parameter ceiling")
	ErrNotAdmin          = errors.New("engine: caller does not hold the admin capability")
)
