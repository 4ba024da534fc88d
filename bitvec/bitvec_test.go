package bitvec

import (
	"math/big"
	"testing"
)

func TestSetGetRoundTrip(t *testing.T) {
	cases := []struct {
		width, from, nbits int
		value               int64
	}{
		{64, 0, 20, 12345},
		{64, 20, 30, 987654321},
		{128, 7, 64, 1<<40 + 17},
		{8, 0, 8, 255},
	}
	for _, c := range cases {
		v := New(c.width)
		want := big.NewInt(c.value)
		v.Set(c.from, c.nbits, want)
		got := v.Get(c.from, c.nbits)
		if got.Cmp(want) != 0 {
			t.Fatalf("Get(Set(%d)) = %v, want %v", c.value, got, want)
		}
	}
}

func TestCmpOrdering(t *testing.T) {
	v := New(32)
	v.Set(0, 16, big.NewInt(100))
	if v.Cmp(0, 16, big.NewInt(100)) != 0 {
		t.Fatalf("Cmp equal value should be 0")
	}
	if v.Cmp(0, 16, big.NewInt(200)) >= 0 {
		t.Fatalf("Cmp(100 vs 200) should be < 0")
	}
	if v.Cmp(0, 16, big.NewInt(50)) <= 0 {
		t.Fatalf("Cmp(100 vs 50) should be > 0")
	}
}

func TestIsEmpty(t *testing.T) {
	v := New(40)
	if !v.IsEmpty() {
		t.Fatalf("fresh vector should be empty")
	}
	v.Set(0, 8, big.NewInt(1))
	if v.IsEmpty() {
		t.Fatalf("vector with a set bit should not be empty")
	}
	v.Reset()
	if !v.IsEmpty() {
		t.Fatalf("Reset should restore emptiness")
	}
}

func TestCloneAndCopyFrom(t *testing.T) {
	v := New(32)
	v.Set(0, 32, big.NewInt(424242))
	clone := v.Clone()
	if clone.Get(0, 32).Cmp(big.NewInt(424242)) != 0 {
		t.Fatalf("clone did not preserve contents")
	}
	dst := New(32)
	dst.CopyFrom(v)
	if dst.Get(0, 32).Cmp(big.NewInt(424242)) != 0 {
		t.Fatalf("CopyFrom did not preserve contents")
	}
	// mutating the clone must not affect the original
	clone.Set(0, 32, big.NewInt(1))
	if v.Get(0, 32).Cmp(big.NewInt(424242)) != 0 {
		t.Fatalf("clone is not independent of source")
	}
}

func TestTwoFieldsPacked(t *testing.T) {
	// Mirrors the PRTL packed layout: remainder then scalar, back to back.
	suffixLen, nbBits := 10, 20
	v := New(suffixLen + nbBits)
	suffix := big.NewInt(777)
	a := big.NewInt(123456)
	v.Set(0, suffixLen, suffix)
	v.Set(suffixLen, nbBits, a)

	if got := v.Get(0, suffixLen); got.Cmp(suffix) != 0 {
		t.Fatalf("suffix field corrupted: got %v want %v", got, suffix)
	}
	if got := v.Get(suffixLen, nbBits); got.Cmp(a) != 0 {
		t.Fatalf("scalar field corrupted: got %v want %v", got, a)
	}
}
