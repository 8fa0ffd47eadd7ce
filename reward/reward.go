// Package reward defines the two token collaborators the engine consumes
// without owning: the IPX reward token (mint-only) and the DNR synthetic
// stable (mint/burn, plus its constant interest rate knob). Both are
// expressed as interfaces so the engine never assumes a concrete token
// ledger.
package reward

import (
	"errors"
	"sync"

	"whirlpool/crypto"
)

// ErrInsufficientSupply is returned by an in-memory Burn when the requested
// amount exceeds the recipient's minted balance.
var ErrInsufficientSupply = errors.New("reward: insufficient minted balance to burn")

// IPXMinter is the reward-token collaborator. Mint always succeeds (IPX has
// no cap in this engine's scope); Zero exists so callers can return an
// explicit no-reward result without a special case.
type IPXMinter interface {
	Mint(to crypto.Address, amount uint64) error
	Zero() uint64
}

// DNRToken is the synthetic stable collaborator: mint/burn plus the
// admin-settable constant interest rate used in place of the jump-rate
// model for the DNR market.
type DNRToken interface {
	Mint(to crypto.Address, amount uint64) error
	Burn(from crypto.Address, amount uint64) error
	InterestRatePerTick() uint64
	SetInterestRatePerTick(ratePerTick uint64)
}

// InMemoryIPX is a reference IPXMinter that tracks minted balances in
// memory, suitable for tests and local development.
type InMemoryIPX struct {
	mu       sync.Mutex
	balances map[crypto.Address]uint64
}

// NewInMemoryIPX constructs an empty in-memory IPX minter.
func NewInMemoryIPX() *InMemoryIPX {
	return &InMemoryIPX{balances: make(map[crypto.Address]uint64)}
}

func (m *InMemoryIPX) Mint(to crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[to] += amount
	return nil
}

func (m *InMemoryIPX) Zero() uint64 { return 0 }

// BalanceOf returns the minted balance held by addr, for test assertions.
func (m *InMemoryIPX) BalanceOf(addr crypto.Address) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[addr]
}

// InMemoryDNR is a reference DNRToken that tracks minted balances in memory
// and holds the admin-configurable constant per-tick interest rate.
type InMemoryDNR struct {
	mu                  sync.Mutex
	balances            map[crypto.Address]uint64
	interestRatePerTick uint64
}

// NewInMemoryDNR constructs an in-memory DNR token with the given initial
// per-tick interest rate.
func NewInMemoryDNR(initialRatePerTick uint64) *InMemoryDNR {
	return &InMemoryDNR{
		balances:            make(map[crypto.Address]uint64),
		interestRatePerTick: initialRatePerTick,
	}
}

func (d *InMemoryDNR) Mint(to crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.balances[to] += amount
	return nil
}

func (d *InMemoryDNR) Burn(from crypto.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.balances[from] < amount {
		return ErrInsufficientSupply
	}
	d.balances[from] -= amount
	return nil
}

func (d *InMemoryDNR) InterestRatePerTick() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interestRatePerTick
}

func (d *InMemoryDNR) SetInterestRatePerTick(ratePerTick uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interestRatePerTick = ratePerTick
}

// BalanceOf returns the minted balance held by addr, for test assertions.
func (d *InMemoryDNR) BalanceOf(addr crypto.Address) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.balances[addr]
}
