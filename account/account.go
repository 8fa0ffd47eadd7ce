// Package account tracks per-(market, user) positions and each user's set
// of entered markets.
package account

import (
	"github.com/holiman/uint256"

	"whirlpool/crypto"
	"whirlpool/market"
)

// Account is the per-(market, user) position: base-side collateral shares,
// base-side debt principal, and reward-debt watermarks.
type Account struct {
	Principal uint64
	Shares    uint64

	CollateralRewardsPaid *uint256.Int
	LoanRewardsPaid       *uint256.Int
}

func newAccount() *Account {
	return &Account{
		CollateralRewardsPaid: uint256.NewInt(0),
		LoanRewardsPaid:       uint256.NewInt(0),
	}
}

type key struct {
	market market.Key
	user   crypto.Address
}

// MarketsIn is a deterministically-ordered set of market keys a user has
// opted into. Insertion order is preserved so repeated iteration (solvency
// evaluation) is stable.
type MarketsIn struct {
	keys  []market.Key
	index map[market.Key]int
}

func newMarketsIn() *MarketsIn {
	return &MarketsIn{index: make(map[market.Key]int)}
}

// Add inserts key if absent. Reports whether it was newly added.
func (m *MarketsIn) Add(k market.Key) bool {
	if _, ok := m.index[k]; ok {
		return false
	}
	m.index[k] = len(m.keys)
	m.keys = append(m.keys, k)
	return true
}

// Remove deletes key if present. Reports whether it was removed.
func (m *MarketsIn) Remove(k market.Key) bool {
	idx, ok := m.index[k]
	if !ok {
		return false
	}
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	delete(m.index, k)
	for i := idx; i < len(m.keys); i++ {
		m.index[m.keys[i]] = i
	}
	return true
}

// Contains reports whether key is present.
func (m *MarketsIn) Contains(k market.Key) bool {
	_, ok := m.index[k]
	return ok
}

// Keys returns the insertion-ordered list of market keys. The returned slice
// must not be mutated by the caller.
func (m *MarketsIn) Keys() []market.Key {
	return m.keys
}

// Registry tracks per-(market, user) accounts and each user's markets_in
// set.
type Registry struct {
	accounts  map[key]*Account
	marketsIn map[crypto.Address]*MarketsIn
}

// NewRegistry constructs an empty account registry.
func NewRegistry() *Registry {
	return &Registry{
		accounts:  make(map[key]*Account),
		marketsIn: make(map[crypto.Address]*MarketsIn),
	}
}

// Init lazily creates (and returns) the account for (marketKey, user).
func (r *Registry) Init(marketKey market.Key, user crypto.Address) *Account {
	k := key{market: marketKey, user: user}
	acc, ok := r.accounts[k]
	if !ok {
		acc = newAccount()
		r.accounts[k] = acc
	}
	return acc
}

// Get returns the account for (marketKey, user) if it exists, else nil.
func (r *Registry) Get(marketKey market.Key, user crypto.Address) *Account {
	return r.accounts[key{market: marketKey, user: user}]
}

// InitMarketsIn lazily creates (and returns) the markets_in set for user.
func (r *Registry) InitMarketsIn(user crypto.Address) *MarketsIn {
	set, ok := r.marketsIn[user]
	if !ok {
		set = newMarketsIn()
		r.marketsIn[user] = set
	}
	return set
}

// MarketsIn returns the markets_in set for user if it exists, else nil.
func (r *Registry) MarketsIn(user crypto.Address) *MarketsIn {
	return r.marketsIn[user]
}
