// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package walk implements the adding walk that drives the collision search:
// the 20-way partition function, the precomputed step table, the
// distinguished-point predicate, and the scalar reconstruction that turns a
// pair of colliding walks into a discrete-log candidate.
package walk

import (
	"math/big"

	"github.com/xtaci/ecpcs/curve"
)

// Partitions is the fixed fan-out of the adding walk; the source hashes a
// point's y-coordinate mod 20 to pick one of 20 precomputed step points.
const Partitions = 20

// Table holds the 20 precomputed step points M_i = A_i*P + B_i*Q and the
// coefficients that produced them. It is built once per run and is
// read-only thereafter, so it may be shared across all worker goroutines
// without locking.
type Table struct {
	A [Partitions]*big.Int
	B [Partitions]*big.Int
	M [Partitions]curve.Point
}

// NewTable builds the adding-walk table from curve c, base point P and
// target Q, given 20 already-generated coefficient pairs (A, B).
// Coefficient generation itself is a bookkeeping concern (random, uniformly
// in [0,n)) and lives in the results package alongside the other
// once-per-run random draws.
func NewTable(c *curve.Curve, p, q curve.Point, a, b [Partitions]*big.Int) *Table {
	t := &Table{A: a, B: b}
	for i := 0; i < Partitions; i++ {
		t.A[i] = a[i]
		t.B[i] = b[i]
		ap := c.ScalarMul(p, a[i])
		bq := c.ScalarMul(q, b[i])
		t.M[i] = c.Add(ap, bq)
	}
	return t
}

// Hash is the partition function h(y) = y mod 20. It is a pure function of
// the point's y-coordinate, deterministic across walks.
func Hash(y *big.Int) int {
	m := new(big.Int).Mod(y, big.NewInt(Partitions))
	return int(m.Int64())
}

// State is one worker's live walk: the current point R, accumulated
// coefficients a and b, and the trail length since the last restart or
// distinguished point. It belongs exclusively to one goroutine.
type State struct {
	R     curve.Point
	A     *big.Int
	B     *big.Int
	Trail int64
}

// Step advances the walk by one adding-walk transition: r = h(R.y);
// a += A_r mod n; b += B_r mod n; R += M_r.
func Step(c *curve.Curve, t *Table, n *big.Int, s *State) {
	r := Hash(s.R.Y)
	s.A = new(big.Int).Add(s.A, t.A[r])
	s.A.Mod(s.A, n)
	s.B = new(big.Int).Add(s.B, t.B[r])
	s.B.Mod(s.B, n)
	s.R = c.Add(s.R, t.M[r])
	s.Trail++
}

// IsDistinguished reports whether R's x-coordinate has trailingBits low
// zero bits, and if so returns the suffix R.x >> trailingBits.
func IsDistinguished(r curve.Point, trailingBits uint) (bool, *big.Int) {
	if trailingBits == 0 {
		return true, new(big.Int).Set(r.X)
	}
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), trailingBits), big.NewInt(1))
	low := new(big.Int).And(r.X, mask)
	if low.Sign() != 0 {
		return false, nil
	}
	return true, new(big.Int).Rsh(r.X, trailingBits)
}

// Reconstruct derives the discrete log candidate from two walks' final
// (a,b) coefficients at the same distinguished point. It returns ok=false
// when b1 == b2 (the two walks carry no information, per §4.2).
func Reconstruct(a1, b1, a2, b2, n *big.Int) (k *big.Int, ok bool) {
	if b1.Cmp(b2) == 0 {
		return nil, false
	}
	up := new(big.Int).Sub(a1, a2)
	up.Mod(up, n)
	down := new(big.Int).Sub(b2, b1)
	down.Mod(down, n)
	down.ModInverse(down, n)
	k = up.Mul(up, down)
	k.Mod(k, n)
	return k, true
}

// Replay re-walks a starting scalar aStart from R0 = aStart*P, b = 0, until
// a distinguished point is reached, returning the final (a, b, R). It is
// used both to recover a losing walk's (a,b) on a store hit and by the
// collision-verification step.
func Replay(c *curve.Curve, t *Table, p curve.Point, n *big.Int, aStart *big.Int, trailingBits uint) (a, b *big.Int, r curve.Point) {
	s := &State{
		R: c.ScalarMul(p, aStart),
		A: new(big.Int).Set(aStart),
		B: big.NewInt(0),
	}
	for {
		if dist, _ := IsDistinguished(s.R, trailingBits); dist {
			return s.A, s.B, s.R
		}
		Step(c, t, n, s)
	}
}

// Verify implements §4.5 in full: given the two starting scalars whose
// walks met at a common distinguished point, it re-walks both, applies the
// sign correction for a meeting on the negated point, and returns the
// discrete-log candidate.
func Verify(c *curve.Curve, t *Table, p, q curve.Point, n *big.Int, trailingBits uint, a1Start, a2Start *big.Int) (k *big.Int, ok bool) {
	a1, b1, _ := Replay(c, t, p, n, a1Start, trailingBits)
	a2, b2, _ := Replay(c, t, p, n, a2Start, trailingBits)
	return reconcile(c, p, q, n, a1, b1, a2, b2)
}

// reconcile applies the y-coordinate sign check and, if needed, the
// negate-and-retry correction from §4.5 steps 3-5, then reconstructs k. It
// is separated from Verify so the sign-correction arithmetic can be
// exercised directly against hand-picked (a,b) pairs without depending on
// a walk actually reaching a distinguished point.
func reconcile(c *curve.Curve, p, q curve.Point, n, a1, b1, a2, b2 *big.Int) (k *big.Int, ok bool) {
	if b1.Cmp(b2) == 0 {
		return nil, false
	}

	lhs := c.Add(c.ScalarMul(p, a1), c.ScalarMul(q, b1))
	rhs := c.Add(c.ScalarMul(p, a2), c.ScalarMul(q, b2))
	if lhs.Y.Cmp(rhs.Y) != 0 {
		// The identity shares x = 0 with the affine points (0, ±y), so a
		// suffix match between them is not a meeting of the two walks.
		if lhs.IsIdentity() != rhs.IsIdentity() {
			return nil, false
		}
		// The walks met on opposite points (R and -R); negate the second
		// walk's coefficients mod n before reconstructing.
		a2 = new(big.Int).Neg(a2)
		a2.Mod(a2, n)
		b2 = new(big.Int).Neg(b2)
		b2.Mod(b2, n)
		if b1.Cmp(b2) == 0 {
			return nil, false
		}
	}
	return Reconstruct(a1, b1, a2, b2, n)
}

// ClassicRho is the degenerate, store-free form of the search: two walks
// (tortoise and hare) advance at rates 1 and 2 from P until they coincide,
// and the meeting point yields the discrete log directly via Reconstruct.
// It needs no distinguished-point store and is a useful standalone check of
// the adding-walk primitives, but does not parallelize the way the
// distinguished-point engine does.
func ClassicRho(c *curve.Curve, t *Table, p, q curve.Point, n *big.Int) (k *big.Int, ok bool) {
	tortoise := &State{R: p, A: big.NewInt(1), B: big.NewInt(0)}
	hare := &State{R: p, A: big.NewInt(1), B: big.NewInt(0)}

	Step(c, t, n, hare)
	for !tortoise.R.Equal(hare.R) {
		Step(c, t, n, tortoise)
		Step(c, t, n, hare)
		Step(c, t, n, hare)
	}
	return Reconstruct(tortoise.A, tortoise.B, hare.A, hare.B, n)
}
