// Package storage provides the market snapshot codec: RLP-encoded records
// addressed by deterministic Keccak256 storage keys. It lets operators dump
// a market's numeric state out of process and reload it later, without the
// engine owning a database.
package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"whirlpool/market"
)

func bytesToUint256(b []byte) *uint256.Int {
	out := new(uint256.Int)
	out.SetBytes(b)
	return out
}

// marketSnapshot is the RLP-friendly wire form of market.Data. uint256 reward
// accumulators are carried as big-endian byte slices since RLP cannot encode
// *uint256.Int directly.
type marketSnapshot struct {
	Key                               string
	TotalReserves                     uint64
	AccruedTick                       uint64
	BorrowCap                         uint64
	CollateralCap                     uint64
	BalanceValue                      uint64
	IsPaused                          bool
	LTV                               uint64
	ReserveFactor                     uint64
	AllocationPoints                  uint64
	AccruedCollateralRewardsPerShare  []byte
	AccruedLoanRewardsPerShare        []byte
	CollateralBase                    uint64
	CollateralElastic                 uint64
	LoanBase                          uint64
	LoanElastic                       uint64
	DecimalsFactor                    uint64
}

// StorageKey derives the deterministic Keccak256 storage key for a market
// record from a namespace prefix and the market key.
func StorageKey(prefix string, key market.Key) []byte {
	return crypto.Keccak256([]byte(prefix), []byte(key))
}

// EncodeMarket RLP-encodes a market.Data snapshot.
func EncodeMarket(data *market.Data) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("storage: nil market data")
	}
	snap := marketSnapshot{
		Key:                              string(data.Key),
		TotalReserves:                    data.TotalReserves,
		AccruedTick:                      data.AccruedTick,
		BorrowCap:                        data.BorrowCap,
		CollateralCap:                    data.CollateralCap,
		BalanceValue:                     data.BalanceValue,
		IsPaused:                         data.IsPaused,
		LTV:                              data.LTV,
		ReserveFactor:                    data.ReserveFactor,
		AllocationPoints:                 data.AllocationPoints,
		AccruedCollateralRewardsPerShare: data.AccruedCollateralRewardsPerShare.Bytes(),
		AccruedLoanRewardsPerShare:       data.AccruedLoanRewardsPerShare.Bytes(),
		CollateralBase:                   data.CollateralRebase.Base,
		CollateralElastic:                data.CollateralRebase.Elastic,
		LoanBase:                         data.LoanRebase.Base,
		LoanElastic:                      data.LoanRebase.Elastic,
		DecimalsFactor:                   data.DecimalsFactor,
	}
	return rlp.EncodeToBytes(&snap)
}

// DecodeMarket reverses EncodeMarket.
func DecodeMarket(b []byte) (*market.Data, error) {
	var snap marketSnapshot
	if err := rlp.DecodeBytes(b, &snap); err != nil {
		return nil, err
	}
	data := &market.Data{
		Key:              market.Key(snap.Key),
		TotalReserves:    snap.TotalReserves,
		AccruedTick:      snap.AccruedTick,
		BorrowCap:        snap.BorrowCap,
		CollateralCap:    snap.CollateralCap,
		BalanceValue:     snap.BalanceValue,
		IsPaused:         snap.IsPaused,
		LTV:              snap.LTV,
		ReserveFactor:    snap.ReserveFactor,
		AllocationPoints: snap.AllocationPoints,
		DecimalsFactor:   snap.DecimalsFactor,
	}
	data.AccruedCollateralRewardsPerShare = bytesToUint256(snap.AccruedCollateralRewardsPerShare)
	data.AccruedLoanRewardsPerShare = bytesToUint256(snap.AccruedLoanRewardsPerShare)
	data.CollateralRebase.Base = snap.CollateralBase
	data.CollateralRebase.Elastic = snap.CollateralElastic
	data.LoanRebase.Base = snap.LoanBase
	data.LoanRebase.Elastic = snap.LoanElastic
	return data, nil
}

// Per-user account state (account.Registry) deliberately has no RLP
// snapshot form here: the registry's in-memory layout is not a persisted
// ledger.
