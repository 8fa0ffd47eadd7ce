// Package engine implements the Whirlpool money-market state machine:
// per-market interest accrual, reward-distribution bookkeeping, the
// user-facing deposit/withdraw/borrow/repay actions, the cross-market
// solvency evaluation that gates them, and liquidation settlement. One
// Engine instance owns every market; external collaborators (price oracle,
// IPX reward token, DNR synthetic stable) are consumed through interfaces.
package engine

import (
	"errors"
	"log/slog"

	"whirlpool/account"
	"whirlpool/admincap"
	"whirlpool/core/events"
	"whirlpool/crypto"
	"whirlpool/interest"
	"whirlpool/market"
	nativecommon "whirlpool/native/common"
	"whirlpool/observability/logging"
	"whirlpool/observability/metrics"
	"whirlpool/oracle"
	"whirlpool/reward"
)

const moduleName = "lending"

// Config bundles the admin-configurable genesis parameters the engine needs
// at construction. See config.Config for the toml-loaded form.
type Config struct {
	InitialReserveFactor  uint64
	InitialRewardsPerTick uint64
}

// Engine orchestrates every state transition of the protocol.
type Engine struct {
	Markets  *market.Registry
	Accounts *account.Registry
	AdminCap *admincap.Cap

	models map[market.Key]interest.Model

	Oracle oracle.Oracle
	IPX    reward.IPXMinter
	DNR    reward.DNRToken

	rewardsPerTick        uint64
	totalAllocationPoints uint64
	defaultReserveFactor  uint64

	currentTick uint64

	pauses  nativecommon.PauseView
	logger  *slog.Logger
	metrics *metrics.LendingMetrics
	emitter events.Emitter
}

// New constructs an engine wired to its collaborators and admin capability.
// The logger routes through observability/logging's JSON handler rather
// than slog.Default(); SetLogger overrides it for callers that want a
// differently-scoped logger (e.g. a shared service-wide instance).
func New(admin crypto.Address, oracleImpl oracle.Oracle, ipx reward.IPXMinter, dnr reward.DNRToken, cfg Config) *Engine {
	return &Engine{
		Markets:              market.NewRegistry(),
		Accounts:             account.NewRegistry(),
		AdminCap:             admincap.New(admin),
		models:               make(map[market.Key]interest.Model),
		Oracle:               oracleImpl,
		IPX:                  ipx,
		DNR:                  dnr,
		rewardsPerTick:       cfg.InitialRewardsPerTick,
		defaultReserveFactor: cfg.InitialReserveFactor,
		logger:               logging.Setup(moduleName, ""),
		metrics:              metrics.Lending(),
		emitter:              events.NoopEmitter{},
	}
}

// SetPauses wires the engine to an external module-level pause-state view,
// checked alongside each market's own pause flag.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used for admin notifications and
// liquidation events. Passing nil resets it to a no-op emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

// SetLogger overrides the structured logger used for operation tracing.
func (e *Engine) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetTick advances the engine's notion of the current tick. Every
// state-mutating operation accrues against this value.
func (e *Engine) SetTick(tick uint64) { e.currentTick = tick }

// Tick returns the engine's current tick.
func (e *Engine) Tick() uint64 { return e.currentTick }

func (e *Engine) guard() error {
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return ErrMarketPaused
	}
	return nil
}

func (e *Engine) marketPaused(data *market.Data) error {
	if data.IsPaused {
		return ErrMarketPaused
	}
	return e.guard()
}

// --- Admin-gated operations ---

// CreateMarket registers a new market. Fails with market.ErrFeeTooHigh if
// penaltyFee or protocolPercentage exceed market.AdminParamCeiling.
func (e *Engine) CreateMarket(caller crypto.Address, key market.Key, borrowCap, collateralCap, ltv, allocationPoints uint64, penaltyFee, protocolPercentage uint64, decimals uint64, model interest.Model) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	liq := market.Liquidation{PenaltyFee: penaltyFee, ProtocolPercentage: protocolPercentage}
	decimalsFactor := pow10(decimals)
	data, err := e.Markets.Create(key, borrowCap, collateralCap, ltv, allocationPoints, liq, decimalsFactor)
	if err != nil {
		return err
	}
	data.ReserveFactor = e.defaultReserveFactor
	model.ReserveFactor = e.defaultReserveFactor
	e.models[key] = model
	e.totalAllocationPoints = e.Markets.TotalAllocationPoints()
	e.emit(events.LendingMarketCreated{
		Key:              events.NormalizeAsset(string(key)),
		BorrowCap:        borrowCap,
		CollateralCap:    collateralCap,
		LTV:              ltv,
		AllocationPoints: allocationPoints,
	})
	return nil
}

func pow10(n uint64) uint64 {
	out := uint64(1)
	for i := uint64(0); i < n; i++ {
		out *= 10
	}
	return out
}

// PauseMarket halts all state-mutating operations on key.
func (e *Engine) PauseMarket(caller crypto.Address, key market.Key) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	data.IsPaused = true
	return nil
}

// UnpauseMarket resumes state-mutating operations on key.
func (e *Engine) UnpauseMarket(caller crypto.Address, key market.Key) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	data.IsPaused = false
	return nil
}

// SetBorrowCap updates a market's borrow cap.
func (e *Engine) SetBorrowCap(caller crypto.Address, key market.Key, cap uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	data.BorrowCap = cap
	return nil
}

// UpdateLiquidation updates a market's penalty/protocol split.
func (e *Engine) UpdateLiquidation(caller crypto.Address, key market.Key, penaltyFee, protocolPercentage uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	return e.Markets.SetLiquidation(key, market.Liquidation{PenaltyFee: penaltyFee, ProtocolPercentage: protocolPercentage})
}

// UpdateReserveFactor updates a market's reserve factor. f must be <=
// market.AdminParamCeiling.
func (e *Engine) UpdateReserveFactor(caller crypto.Address, key market.Key, f uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	if f > market.AdminParamCeiling {
		return ErrFeeTooHigh
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	data.ReserveFactor = f
	model := e.models[key]
	model.ReserveFactor = f
	e.models[key] = model
	return nil
}

// UpdateLTV updates a market's collateral factor.
func (e *Engine) UpdateLTV(caller crypto.Address, key market.Key, ltv uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	data.LTV = ltv
	return nil
}

// UpdateAllocationPoints updates a market's reward-emission weight and
// recomputes total_allocation_points.
func (e *Engine) UpdateAllocationPoints(caller crypto.Address, key market.Key, points uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	if err := e.Markets.SetAllocationPoints(key, points); err != nil {
		return err
	}
	e.totalAllocationPoints = e.Markets.TotalAllocationPoints()
	return nil
}

// UpdateIPXPerEpoch applies a new global reward-emission rate. Every market
// is accrued first so past ticks are settled at the old rate.
func (e *Engine) UpdateIPXPerEpoch(caller crypto.Address, newRewardsPerTick uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	for _, key := range e.Markets.Keys() {
		data, err := e.Markets.Get(key)
		if err != nil {
			return err
		}
		if err := e.accrue(data); err != nil {
			return err
		}
	}
	e.rewardsPerTick = newRewardsPerTick
	return nil
}

// UpdateDNRInterestRatePerEpoch updates the constant DNR borrow rate.
func (e *Engine) UpdateDNRInterestRatePerEpoch(caller crypto.Address, ratePerTick uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	e.DNR.SetInterestRatePerTick(ratePerTick)
	return nil
}

// SetInterestRateData replaces a non-DNR market's jump-rate model and emits
// the interest-rate-data-updated event. The DNR rate is a stored constant
// (see UpdateDNRInterestRatePerEpoch), not a model.
func (e *Engine) SetInterestRateData(caller crypto.Address, key market.Key, model interest.Model) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	if key == market.DNR {
		return ErrCanNotUseDNR
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	model.ReserveFactor = data.ReserveFactor
	e.models[key] = model
	e.emit(events.LendingInterestRateDataUpdated{
		Key:                   events.NormalizeAsset(string(key)),
		BasePerTick:           model.BasePerTick,
		MultiplierPerTick:     model.MultiplierPerTick,
		JumpMultiplierPerTick: model.JumpMultiplierPerTick,
		Kink:                  model.Kink,
		ReserveFactor:         model.ReserveFactor,
	})
	return nil
}

// WithdrawReserves pays out from a market's reserves. Both the cash on hand
// and the accumulated reserves must cover the requested amount.
func (e *Engine) WithdrawReserves(caller crypto.Address, key market.Key, recipient crypto.Address, amount uint64) error {
	if err := e.AdminCap.Authorize(caller); err != nil {
		return ErrNotAdmin
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	data, err := e.Markets.Get(key)
	if err != nil {
		return err
	}
	if data.BalanceValue < amount || data.TotalReserves < amount {
		return ErrNotEnoughReserves
	}
	data.BalanceValue -= amount
	data.TotalReserves -= amount
	e.Markets.WithdrawVault(key, amount)
	e.logger.Info("reserves withdrawn", "market", string(key), "recipient", recipient.String(), "amount", amount)
	return nil
}

// TransferAdminCap hands the admin capability to newAdmin, which must not be
// the null address.
func (e *Engine) TransferAdminCap(caller, newAdmin crypto.Address) error {
	if err := e.AdminCap.Transfer(caller, newAdmin); err != nil {
		if errors.Is(err, admincap.ErrNullRecipient) {
			return ErrNoAddressZero
		}
		return ErrNotAdmin
	}
	return nil
}
