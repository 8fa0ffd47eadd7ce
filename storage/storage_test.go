package storage

import (
	"testing"

	"github.com/holiman/uint256"

	"whirlpool/market"
	"whirlpool/rebase"
)

func TestMarketSnapshotRoundTrip(t *testing.T) {
	data := &market.Data{
		Key:                              "USDC",
		TotalReserves:                    1_000_000,
		AccruedTick:                      42,
		BorrowCap:                        1_000_000_000_000,
		CollateralCap:                    1_000_000_000_000,
		BalanceValue:                     500_000_000,
		IsPaused:                         true,
		LTV:                              750_000_000,
		ReserveFactor:                    200_000_000,
		AllocationPoints:                 100,
		AccruedCollateralRewardsPerShare: uint256.NewInt(123_456),
		AccruedLoanRewardsPerShare:       uint256.NewInt(789),
		CollateralRebase:                 rebase.Rebase{Base: 1_000_000_000, Elastic: 1_004_000_000},
		LoanRebase:                       rebase.Rebase{Base: 500_000_000, Elastic: 505_000_000},
		DecimalsFactor:                   1_000_000_000,
	}

	encoded, err := EncodeMarket(data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeMarket(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Key != data.Key {
		t.Fatalf("key mismatch: got %s want %s", decoded.Key, data.Key)
	}
	if decoded.TotalReserves != data.TotalReserves {
		t.Fatalf("total reserves mismatch: got %d want %d", decoded.TotalReserves, data.TotalReserves)
	}
	if decoded.CollateralRebase != data.CollateralRebase {
		t.Fatalf("collateral rebase mismatch: got %+v want %+v", decoded.CollateralRebase, data.CollateralRebase)
	}
	if decoded.LoanRebase != data.LoanRebase {
		t.Fatalf("loan rebase mismatch: got %+v want %+v", decoded.LoanRebase, data.LoanRebase)
	}
	if !decoded.AccruedCollateralRewardsPerShare.Eq(data.AccruedCollateralRewardsPerShare) {
		t.Fatalf("collateral rewards per share mismatch: got %s want %s", decoded.AccruedCollateralRewardsPerShare, data.AccruedCollateralRewardsPerShare)
	}
	if !decoded.AccruedLoanRewardsPerShare.Eq(data.AccruedLoanRewardsPerShare) {
		t.Fatalf("loan rewards per share mismatch: got %s want %s", decoded.AccruedLoanRewardsPerShare, data.AccruedLoanRewardsPerShare)
	}
	if decoded.IsPaused != data.IsPaused {
		t.Fatalf("is_paused mismatch: got %v want %v", decoded.IsPaused, data.IsPaused)
	}
}

func TestStorageKeyDeterministic(t *testing.T) {
	a := StorageKey("market", market.Key("USDC"))
	b := StorageKey("market", market.Key("USDC"))
	if string(a) != string(b) {
		t.Fatalf("expected StorageKey to be deterministic")
	}
	other := StorageKey("market", market.Key("DNR"))
	if string(a) == string(other) {
		t.Fatalf("expected different keys to hash differently")
	}
}
