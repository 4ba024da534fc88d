package field

import (
	"math/big"
	"testing"
)

func TestModAlwaysNonNegative(t *testing.T) {
	f := New(big.NewInt(17))
	got := f.Mod(big.NewInt(-5))
	if got.Sign() < 0 || got.Cmp(big.NewInt(17)) >= 0 {
		t.Fatalf("Mod(-5) = %v, want value in [0,17)", got)
	}
	if want := big.NewInt(12); got.Cmp(want) != 0 {
		t.Fatalf("Mod(-5) = %v, want %v", got, want)
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	f := New(big.NewInt(97))
	a := big.NewInt(55)
	b := big.NewInt(70)
	sum := f.Add(a, b)
	back := f.Sub(sum, b)
	if back.Cmp(f.Mod(a)) != 0 {
		t.Fatalf("Sub(Add(a,b),b) = %v, want %v", back, f.Mod(a))
	}
}

func TestInverse(t *testing.T) {
	f := New(big.NewInt(17))
	a := big.NewInt(5)
	inv := f.Inverse(a)
	prod := f.Mul(a, inv)
	if prod.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("a*inv(a) = %v, want 1", prod)
	}
}

func TestNeg(t *testing.T) {
	f := New(big.NewInt(23))
	a := big.NewInt(9)
	if got := f.Add(a, f.Neg(a)); got.Sign() != 0 {
		t.Fatalf("a + (-a) = %v, want 0", got)
	}
}
