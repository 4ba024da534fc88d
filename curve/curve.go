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

// Package curve implements short-Weierstrass elliptic-curve arithmetic
// (y² = x³ + Ax + B mod p) over an arbitrary, runtime-supplied prime field:
// point addition, doubling, and scalar multiplication, plus the identity and
// membership checks the reference implementation runs before reaching for a
// modular inverse.
package curve

import (
	"math/big"

	"github.com/xtaci/ecpcs/field"
)

// Curve holds the (A, B, p) parameters of y² = x³ + Ax + B mod p. It is
// immutable after construction and safe for concurrent use by multiple
// workers.
type Curve struct {
	A, B *big.Int
	F    *field.Field
}

// New builds a Curve over the given parameters.
func New(a, b, p *big.Int) *Curve {
	return &Curve{A: a, B: b, F: field.New(p)}
}

// Point is an affine point, or the identity when Z == 0. The canonical
// identity is (0, 1, 0); every non-identity point has Z == 1.
type Point struct {
	X, Y, Z *big.Int
}

// Identity returns the canonical point at infinity (0, 1, 0).
func Identity() Point {
	return Point{X: big.NewInt(0), Y: big.NewInt(1), Z: big.NewInt(0)}
}

// IsIdentity reports whether p is the identity element.
func (p Point) IsIdentity() bool {
	return p.Z.Sign() == 0
}

// Equal reports whether p and q denote the same point (coordinate-wise,
// assuming both are already reduced mod p).
func (p Point) Equal(q Point) bool {
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0 && p.Z.Cmp(q.Z) == 0
}

// Validate checks that the curve is non-singular: 4A³ + 27B² ≠ 0 (mod p).
// Off the hot path by design (§4.1: "optional, off by default in
// performance mode") — call it once at startup, not per-operation.
func (c *Curve) Validate() bool {
	a3 := new(big.Int).Mul(c.A, c.A)
	a3.Mul(a3, c.A)
	a3.Mul(a3, big.NewInt(4))
	b2 := new(big.Int).Mul(c.B, c.B)
	b2.Mul(b2, big.NewInt(27))
	disc := c.F.Add(a3, b2)
	return disc.Sign() != 0
}

// IsOn reports whether p lies on c, per §3's invariant. An identity point
// (Z == 0) is on-curve only in its canonical form (0, 1, 0).
func (c *Curve) IsOn(p Point) bool {
	if p.IsIdentity() {
		return p.X.Sign() == 0 && p.Y.Cmp(big.NewInt(1)) == 0
	}
	left := c.F.Mul(p.Y, p.Y)
	right := c.F.Mul(p.X, p.X)
	right = c.F.Mul(right, p.X)
	right = c.F.Add(right, c.F.Mul(c.A, p.X))
	right = c.F.Add(right, c.B)
	return left.Cmp(right) == 0
}

// Add returns P1+P2 on c, handling the identity and same-x branches before
// any modular inverse is attempted (an inverse of zero is undefined
// behavior, so those checks must come first — see §4.1).
func (c *Curve) Add(p1, p2 Point) Point {
	if p1.IsIdentity() {
		return Point{X: new(big.Int).Set(p2.X), Y: new(big.Int).Set(p2.Y), Z: new(big.Int).Set(p2.Z)}
	}
	if p2.IsIdentity() {
		return Point{X: new(big.Int).Set(p1.X), Y: new(big.Int).Set(p1.Y), Z: new(big.Int).Set(p1.Z)}
	}

	var l, v *big.Int
	if p1.Equal(p2) {
		if p1.Y.Sign() == 0 {
			return Identity()
		}
		// l = (3x^2 + A) / 2y
		up := c.F.Mul(p1.X, p1.X)
		up = c.F.Mul(up, big.NewInt(3))
		up = c.F.Add(up, c.A)
		down := c.F.Mul(p1.Y, big.NewInt(2))
		down = c.F.Inverse(down)
		l = c.F.Mul(up, down)

		// v = (-x^3 + Ax + 2B) / 2y — the source's formulation (§9 open
		// question), algebraically equal to the textbook y - l*x on-curve.
		up2 := c.F.Mul(p1.X, p1.X)
		up2 = c.F.Mul(up2, p1.X)
		up2 = c.F.Neg(up2)
		up2 = c.F.Add(up2, c.F.Mul(p1.X, c.A))
		up2 = c.F.Add(up2, c.F.Mul(c.B, big.NewInt(2)))
		v = c.F.Mul(up2, down)
	} else {
		if p1.X.Cmp(p2.X) == 0 {
			return Identity()
		}
		up := c.F.Sub(p2.Y, p1.Y)
		down := c.F.Sub(p2.X, p1.X)
		down = c.F.Inverse(down)
		l = c.F.Mul(up, down)

		up2 := c.F.Sub(c.F.Mul(p2.X, p1.Y), c.F.Mul(p1.X, p2.Y))
		v = c.F.Mul(up2, down)
	}

	x3 := c.F.Sub(c.F.Sub(c.F.Mul(l, l), p1.X), p2.X)
	y3 := c.F.Sub(c.F.Neg(c.F.Mul(l, x3)), v)
	return Point{X: x3, Y: y3, Z: big.NewInt(1)}
}

// Double returns 2P; it is Add(P, P).
func (c *Curve) Double(p Point) Point {
	return c.Add(p, p)
}

// ScalarMul computes s·P using the right-to-left double-and-add method of
// §4.1: R starts at the identity, T starts at P; while s > 0, if the low bit
// of s is set, R += T; T is doubled; s is shifted right.
func (c *Curve) ScalarMul(p Point, s *big.Int) Point {
	r := Identity()
	t := Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y), Z: new(big.Int).Set(p.Z)}
	s = new(big.Int).Set(s)
	for s.Sign() > 0 {
		if s.Bit(0) == 1 {
			r = c.Add(t, r)
		}
		t = c.Double(t)
		s.Rsh(s, 1)
	}
	return r
}
