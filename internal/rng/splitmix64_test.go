package rng

import "testing"

func TestSeedZeroIsValid(t *testing.T) {
	g := New(0)
	_ = g.NextU64()
}

func TestDeterministicForSameSeed(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 64; i++ {
		if a.NextU64() != b.NextU64() {
			t.Fatalf("generators diverged at step %d", i)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 8; i++ {
		if a.NextU64() != b.NextU64() {
			same = false
		}
	}
	if same {
		t.Fatalf("expected diverging streams for different seeds")
	}
}
