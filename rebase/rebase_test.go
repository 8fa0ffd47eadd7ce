package rebase

import "testing"

func TestAddElasticFromEmpty(t *testing.T) {
	var r Rebase
	delta := r.AddElastic(1_000_000_000, false)
	if delta != 1_000_000_000 {
		t.Fatalf("delta = %d, want 1e9", delta)
	}
	if r.Base != 1_000_000_000 || r.Elastic != 1_000_000_000 {
		t.Fatalf("rebase = %+v, want (1e9,1e9)", r)
	}
}

func TestSubBaseFullWithdrawal(t *testing.T) {
	r := Rebase{Base: 1_000_000_000, Elastic: 1_000_000_000}
	out := r.SubBase(1_000_000_000, false)
	if out != 1_000_000_000 {
		t.Fatalf("out = %d, want 1e9", out)
	}
	if !r.Valid() || r.Base != 0 || r.Elastic != 0 {
		t.Fatalf("rebase = %+v, want zeroed", r)
	}
}

func TestAccrualGrowsElasticOnly(t *testing.T) {
	r := Rebase{Base: 1_000_000_000, Elastic: 1_000_000_000}
	r.IncreaseElastic(5_000_000)
	if r.Base != 1_000_000_000 {
		t.Fatalf("base mutated by IncreaseElastic: %d", r.Base)
	}
	if r.Elastic != 1_005_000_000 {
		t.Fatalf("elastic = %d, want 1.005e9", r.Elastic)
	}
	// shares now worth more underlying than 1:1
	out := r.ToElastic(1_000_000_000, false)
	if out != 1_005_000_000 {
		t.Fatalf("ToElastic = %d, want 1.005e9", out)
	}
}

func TestRoundingDirection(t *testing.T) {
	r := Rebase{Base: 3, Elastic: 10}
	down := r.ToBase(7, false)
	up := r.ToBase(7, true)
	if down >= up {
		t.Fatalf("round-down %d should be < round-up %d", down, up)
	}
}

func TestValidInvariant(t *testing.T) {
	cases := []Rebase{{0, 0}, {1, 1}, {100, 200}}
	for _, c := range cases {
		if !c.Valid() {
			t.Fatalf("%+v should be valid", c)
		}
	}
	invalid := Rebase{Base: 0, Elastic: 5}
	if invalid.Valid() {
		t.Fatalf("%+v should be invalid", invalid)
	}
}
