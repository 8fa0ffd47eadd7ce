package reward

import (
	"testing"

	"whirlpool/crypto"
)

func testAddress(suffix byte) crypto.Address {
	b := make([]byte, 20)
	b[19] = suffix
	return crypto.MustNewAddress(crypto.UserPrefix, b)
}

func TestInMemoryIPXMintAccumulates(t *testing.T) {
	ipx := NewInMemoryIPX()
	to := testAddress(1)

	if err := ipx.Mint(to, 100); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := ipx.Mint(to, 50); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := ipx.BalanceOf(to); got != 150 {
		t.Fatalf("expected balance 150, got %d", got)
	}
	if ipx.Zero() != 0 {
		t.Fatalf("expected Zero() to be 0")
	}
}

func TestInMemoryIPXMintZeroIsNoop(t *testing.T) {
	ipx := NewInMemoryIPX()
	to := testAddress(1)
	if err := ipx.Mint(to, 0); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := ipx.BalanceOf(to); got != 0 {
		t.Fatalf("expected balance 0, got %d", got)
	}
}

func TestInMemoryDNRMintBurn(t *testing.T) {
	dnr := NewInMemoryDNR(1_000_000)
	to := testAddress(1)

	if err := dnr.Mint(to, 500); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := dnr.BalanceOf(to); got != 500 {
		t.Fatalf("expected balance 500, got %d", got)
	}

	if err := dnr.Burn(to, 200); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := dnr.BalanceOf(to); got != 300 {
		t.Fatalf("expected balance 300 after burn, got %d", got)
	}
}

func TestInMemoryDNRBurnInsufficientBalance(t *testing.T) {
	dnr := NewInMemoryDNR(0)
	to := testAddress(1)
	if err := dnr.Mint(to, 100); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := dnr.Burn(to, 200); err != ErrInsufficientSupply {
		t.Fatalf("expected ErrInsufficientSupply, got %v", err)
	}
}

func TestInMemoryDNRInterestRateGetSet(t *testing.T) {
	dnr := NewInMemoryDNR(1_000_000)
	if got := dnr.InterestRatePerTick(); got != 1_000_000 {
		t.Fatalf("expected initial rate 1_000_000, got %d", got)
	}

	dnr.SetInterestRatePerTick(2_500_000)
	if got := dnr.InterestRatePerTick(); got != 2_500_000 {
		t.Fatalf("expected updated rate 2_500_000, got %d", got)
	}
}
