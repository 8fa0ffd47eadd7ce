package events

const (
	// TypeLendingMarketCreated is emitted when a new market is registered.
	TypeLendingMarketCreated = "lending.market.created"
	// TypeLendingInterestRateDataUpdated is emitted when a market's
	// jump-rate model is replaced.
	TypeLendingInterestRateDataUpdated = "lending.interest_rate_data.updated"
	// TypeLendingLiquidated is emitted at the end of a successful
	// liquidation, generic or DNR.
	TypeLendingLiquidated = "lending.liquidated"
)

// LendingMarketCreated captures the admin parameters of a newly registered
// market.
type LendingMarketCreated struct {
	Key              string
	BorrowCap        uint64
	CollateralCap    uint64
	LTV              uint64
	AllocationPoints uint64
}

// EventType implements the Event interface.
func (LendingMarketCreated) EventType() string { return TypeLendingMarketCreated }

// LendingInterestRateDataUpdated captures a market's new jump-rate model.
type LendingInterestRateDataUpdated struct {
	Key                   string
	BasePerTick           uint64
	MultiplierPerTick     uint64
	JumpMultiplierPerTick uint64
	Kink                  uint64
	ReserveFactor         uint64
}

// EventType implements the Event interface.
func (LendingInterestRateDataUpdated) EventType() string {
	return TypeLendingInterestRateDataUpdated
}

// LendingLiquidated captures the outcome of a liquidation call.
type LendingLiquidated struct {
	CollateralKey  string
	LoanKey        string
	Borrower       []byte
	Liquidator     []byte
	Repaid         uint64
	Seized         uint64
	ProtocolAmount uint64
}

// EventType implements the Event interface.
func (LendingLiquidated) EventType() string { return TypeLendingLiquidated }
