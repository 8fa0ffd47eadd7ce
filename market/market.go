// Package market holds the per-asset market table: market data records, an
// insertion-ordered key list, per-market vault balances, and per-market
// liquidation parameters.
package market

import (
	"errors"

	"github.com/holiman/uint256"

	"whirlpool/rebase"
)

// Key stably identifies an asset/market. DNR is reserved for the
// protocol-issued synthetic stable debt market.
type Key string

// DNR is the synthetic stable debt-only market key.
const DNR Key = "DNR"

var (
	// ErrMarketExists is returned by CreateMarket when the key is already
	// registered.
	ErrMarketExists = errors.New("market: already exists")
	// ErrMarketNotFound is returned when a key has no registered market.
	ErrMarketNotFound = errors.New("market: not found")
	// ErrFeeTooHigh is returned when an admin-supplied fee fraction exceeds
	// the configured ceiling.
	ErrFeeTooHigh = errors.New("market: fee fraction exceeds ceiling")
)

// AdminParamCeiling bounds the penalty fee, protocol percentage, and
// admin reserve-factor updates. Its value is 0.025*MANTISSA (2.5%); the historical
// contract constant carried this value under a name that read as 25%. The
// name here reflects the value, not the historical label (see DESIGN.md).
const AdminParamCeiling uint64 = 25_000_000

// Liquidation holds the per-market liquidation penalty split.
type Liquidation struct {
	PenaltyFee         uint64 // Fraction, <= AdminParamCeiling
	ProtocolPercentage uint64 // Fraction, <= AdminParamCeiling
}

// Data is the per-asset MarketData record.
type Data struct {
	Key Key

	TotalReserves uint64
	AccruedTick   uint64
	BorrowCap     uint64
	CollateralCap uint64
	BalanceValue  uint64
	IsPaused      bool

	LTV           uint64 // Fraction
	ReserveFactor uint64 // Fraction; admin updates are capped at AdminParamCeiling, the genesis default is not

	AllocationPoints uint64

	AccruedCollateralRewardsPerShare *uint256.Int
	AccruedLoanRewardsPerShare       *uint256.Int

	CollateralRebase rebase.Rebase
	LoanRebase       rebase.Rebase

	DecimalsFactor uint64
}

func newData(key Key, borrowCap, collateralCap, ltv, allocationPoints, decimalsFactor uint64) *Data {
	return &Data{
		Key:                              key,
		BorrowCap:                        borrowCap,
		CollateralCap:                    collateralCap,
		LTV:                              ltv,
		AllocationPoints:                 allocationPoints,
		DecimalsFactor:                   decimalsFactor,
		AccruedCollateralRewardsPerShare: uint256.NewInt(0),
		AccruedLoanRewardsPerShare:       uint256.NewInt(0),
	}
}

// Registry tracks all markets, their vault balances, and liquidation
// parameters, in insertion order.
type Registry struct {
	markets     map[Key]*Data
	keys        []Key
	liquidation map[Key]Liquidation
	vaults      map[Key]uint64

	totalAllocationPoints uint64
}

// NewRegistry constructs an empty market registry.
func NewRegistry() *Registry {
	return &Registry{
		markets:     make(map[Key]*Data),
		liquidation: make(map[Key]Liquidation),
		vaults:      make(map[Key]uint64),
	}
}

// Create registers a new market. Fails if the key already exists or the
// supplied liquidation parameters exceed AdminParamCeiling.
func (r *Registry) Create(key Key, borrowCap, collateralCap, ltv, allocationPoints uint64, liq Liquidation, decimalsFactor uint64) (*Data, error) {
	if _, ok := r.markets[key]; ok {
		return nil, ErrMarketExists
	}
	if liq.PenaltyFee > AdminParamCeiling || liq.ProtocolPercentage > AdminParamCeiling {
		return nil, ErrFeeTooHigh
	}
	data := newData(key, borrowCap, collateralCap, ltv, allocationPoints, decimalsFactor)
	r.markets[key] = data
	r.keys = append(r.keys, key)
	r.liquidation[key] = liq
	r.vaults[key] = 0
	r.totalAllocationPoints += allocationPoints
	return data, nil
}

// Restore overwrites the mutable state of an already-registered market with
// the fields decoded from a storage snapshot (see the storage package's
// EncodeMarket/DecodeMarket). The market must have been created first via
// Create, which is what fixes its liquidation parameters; Restore replaces
// the whole Data record (including caps, LTV, pause flag and allocation
// points), leaves the liquidation parameters untouched, and keeps the vault
// balance and allocation-point total consistent with the restored data.
func (r *Registry) Restore(data *Data) error {
	if data == nil {
		return ErrMarketNotFound
	}
	existing, ok := r.markets[data.Key]
	if !ok {
		return ErrMarketNotFound
	}
	r.totalAllocationPoints = r.totalAllocationPoints - existing.AllocationPoints + data.AllocationPoints
	*existing = *data
	r.vaults[data.Key] = data.BalanceValue
	return nil
}

// Get returns the market data for key, or ErrMarketNotFound.
func (r *Registry) Get(key Key) (*Data, error) {
	data, ok := r.markets[key]
	if !ok {
		return nil, ErrMarketNotFound
	}
	return data, nil
}

// Keys returns the insertion-ordered list of registered market keys. The
// returned slice must not be mutated by the caller.
func (r *Registry) Keys() []Key {
	return r.keys
}

// Liquidation returns the liquidation parameters for key.
func (r *Registry) Liquidation(key Key) (Liquidation, error) {
	liq, ok := r.liquidation[key]
	if !ok {
		return Liquidation{}, ErrMarketNotFound
	}
	return liq, nil
}

// SetLiquidation updates the liquidation parameters for key.
func (r *Registry) SetLiquidation(key Key, liq Liquidation) error {
	if _, ok := r.markets[key]; !ok {
		return ErrMarketNotFound
	}
	if liq.PenaltyFee > AdminParamCeiling || liq.ProtocolPercentage > AdminParamCeiling {
		return ErrFeeTooHigh
	}
	r.liquidation[key] = liq
	return nil
}

// Vault returns the held balance for a market's vault.
func (r *Registry) Vault(key Key) uint64 {
	return r.vaults[key]
}

// DepositVault adds amount to a market's vault balance.
func (r *Registry) DepositVault(key Key, amount uint64) {
	r.vaults[key] += amount
}

// WithdrawVault removes amount from a market's vault balance. Callers must
// check sufficiency beforehand; this never goes negative by contract.
func (r *Registry) WithdrawVault(key Key, amount uint64) {
	r.vaults[key] -= amount
}

// TotalAllocationPoints returns the sum of AllocationPoints across all
// registered markets.
func (r *Registry) TotalAllocationPoints() uint64 {
	return r.totalAllocationPoints
}

// SetAllocationPoints updates a market's allocation points and recomputes
// TotalAllocationPoints.
func (r *Registry) SetAllocationPoints(key Key, points uint64) error {
	data, ok := r.markets[key]
	if !ok {
		return ErrMarketNotFound
	}
	r.totalAllocationPoints = r.totalAllocationPoints - data.AllocationPoints + points
	data.AllocationPoints = points
	return nil
}
