package market

import "testing"

func TestCreateRejectsDuplicateKey(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 100, Liquidation{}, 1_000_000_000); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 100, Liquidation{}, 1_000_000_000); err != ErrMarketExists {
		t.Fatalf("expected ErrMarketExists, got %v", err)
	}
}

func TestCreateRejectsFeeAboveCeiling(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 100, Liquidation{PenaltyFee: AdminParamCeiling + 1}, 1_000_000_000)
	if err != ErrFeeTooHigh {
		t.Fatalf("expected ErrFeeTooHigh for penalty fee over ceiling, got %v", err)
	}

	_, err = r.Create("DAI", 1_000, 1_000, 750_000_000, 100, Liquidation{ProtocolPercentage: AdminParamCeiling + 1}, 1_000_000_000)
	if err != ErrFeeTooHigh {
		t.Fatalf("expected ErrFeeTooHigh for protocol percentage over ceiling, got %v", err)
	}
}

func TestGetUnknownMarket(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("USDC"); err != ErrMarketNotFound {
		t.Fatalf("expected ErrMarketNotFound, got %v", err)
	}
}

func TestKeysPreserveInsertionOrder(t *testing.T) {
	r := NewRegistry()
	order := []Key{"USDC", "DAI", "DNR", "WETH"}
	for _, key := range order {
		if _, err := r.Create(key, 1_000, 1_000, 750_000_000, 10, Liquidation{}, 1_000_000_000); err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
	}
	keys := r.Keys()
	if len(keys) != len(order) {
		t.Fatalf("expected %d keys, got %d", len(order), len(keys))
	}
	for i, key := range order {
		if keys[i] != key {
			t.Fatalf("expected key %d to be %s, got %s", i, key, keys[i])
		}
	}
}

func TestVaultDepositWithdraw(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 10, Liquidation{}, 1_000_000_000); err != nil {
		t.Fatalf("create: %v", err)
	}
	r.DepositVault("USDC", 500)
	if got := r.Vault("USDC"); got != 500 {
		t.Fatalf("expected vault balance 500, got %d", got)
	}
	r.WithdrawVault("USDC", 200)
	if got := r.Vault("USDC"); got != 300 {
		t.Fatalf("expected vault balance 300, got %d", got)
	}
}

func TestSetAllocationPointsRecomputesTotal(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 100, Liquidation{}, 1_000_000_000); err != nil {
		t.Fatalf("create USDC: %v", err)
	}
	if _, err := r.Create("DAI", 1_000, 1_000, 750_000_000, 50, Liquidation{}, 1_000_000_000); err != nil {
		t.Fatalf("create DAI: %v", err)
	}
	if got := r.TotalAllocationPoints(); got != 150 {
		t.Fatalf("expected total allocation points 150, got %d", got)
	}

	if err := r.SetAllocationPoints("USDC", 300); err != nil {
		t.Fatalf("set allocation points: %v", err)
	}
	if got := r.TotalAllocationPoints(); got != 350 {
		t.Fatalf("expected total allocation points 350 after update, got %d", got)
	}

	if err := r.SetAllocationPoints("WBTC", 10); err != ErrMarketNotFound {
		t.Fatalf("expected ErrMarketNotFound for unknown market, got %v", err)
	}
}

func TestSetLiquidationRejectsFeeAboveCeiling(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("USDC", 1_000, 1_000, 750_000_000, 100, Liquidation{}, 1_000_000_000); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := r.SetLiquidation("USDC", Liquidation{PenaltyFee: AdminParamCeiling + 1}); err != ErrFeeTooHigh {
		t.Fatalf("expected ErrFeeTooHigh, got %v", err)
	}

	if err := r.SetLiquidation("USDC", Liquidation{PenaltyFee: 10_000_000, ProtocolPercentage: 5_000_000}); err != nil {
		t.Fatalf("set liquidation: %v", err)
	}
	liq, err := r.Liquidation("USDC")
	if err != nil {
		t.Fatalf("liquidation: %v", err)
	}
	if liq.PenaltyFee != 10_000_000 || liq.ProtocolPercentage != 5_000_000 {
		t.Fatalf("unexpected liquidation params: %+v", liq)
	}
}
