package oracle

import "testing"

func TestStaticGetPriceUnpublished(t *testing.T) {
	s := NewStatic()
	if _, _, err := s.GetPrice("USDC"); err != ErrNoPrice {
		t.Fatalf("expected ErrNoPrice, got %v", err)
	}
}

func TestStaticSetThenGetPrice(t *testing.T) {
	s := NewStatic()
	s.Set("USDC", 1_000_000_000, 9)

	price, decimals, err := s.GetPrice("USDC")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if price != 1_000_000_000 || decimals != 9 {
		t.Fatalf("unexpected quote: price=%d decimals=%d", price, decimals)
	}
}

func TestStaticSetOverwritesPreviousQuote(t *testing.T) {
	s := NewStatic()
	s.Set("USDC", 1_000_000_000, 9)
	s.Set("USDC", 2_000_000_000, 9)

	price, _, err := s.GetPrice("USDC")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if price != 2_000_000_000 {
		t.Fatalf("expected the latest published price 2_000_000_000, got %d", price)
	}
}
