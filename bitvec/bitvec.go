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

// Package bitvec implements a fixed-width packed bit buffer: a single
// []byte big enough to hold two fields back-to-back (a suffix remainder and
// a scalar), addressed bit-by-bit. Bit 0 is the least significant bit of the
// buffer; byte index grows toward the low end (byte index = len-1-bit/8),
// matching the big-endian-by-byte, little-endian-by-bit layout of the PRTL
// packed vector (§4.3.1).
package bitvec

import "math/big"

// Vector is a packed bit buffer of a fixed bit width, sized at construction
// to exactly the number of bits the caller needs. An all-zero Vector is the
// PRTL "empty slot" sentinel (see IsEmpty).
type Vector struct {
	bits  []byte
	width int // total addressable bits
}

// New allocates a Vector able to address widthBits bits, all initially 0.
func New(widthBits int) *Vector {
	nbytes := (widthBits + 7) / 8
	return &Vector{bits: make([]byte, nbytes), width: widthBits}
}

func (v *Vector) byteIndex(bit int) int {
	return len(v.bits) - 1 - bit/8
}

func (v *Vector) getBit(bit int) bool {
	return v.bits[v.byteIndex(bit)]&(1<<uint(bit%8)) != 0
}

func (v *Vector) setBit1(bit int) {
	v.bits[v.byteIndex(bit)] |= 1 << uint(bit%8)
}

func (v *Vector) setBit0(bit int) {
	v.bits[v.byteIndex(bit)] &^= 1 << uint(bit%8)
}

// Set writes the low nbits bits of value into the buffer starting at bit
// offset from. It mirrors vect_bin_set_mpz from the reference source.
func (v *Vector) Set(from, nbits int, value *big.Int) {
	for i := 0; i < nbits; i++ {
		if value.Bit(i) != 0 {
			v.setBit1(from + i)
		} else {
			v.setBit0(from + i)
		}
	}
}

// Get reads nbits bits starting at bit offset from and returns them as a
// non-negative integer, LSB-first.
func (v *Vector) Get(from, nbits int) *big.Int {
	out := new(big.Int)
	for i := 0; i < nbits; i++ {
		if v.getBit(from + i) {
			out.SetBit(out, i, 1)
		}
	}
	return out
}

// Cmp compares the nbits-bit field stored at bit offset from against value,
// MSB-first (lexicographic bit order), returning <0, 0, >0 the way
// bytes.Compare does. This is the ordering PRTL uses to keep its bucket
// chains sorted.
func (v *Vector) Cmp(from, nbits int, value *big.Int) int {
	for i := nbits - 1; i >= 0; i-- {
		vb := v.getBit(from + i)
		cb := value.Bit(i) != 0
		if vb && !cb {
			return 1
		}
		if !vb && cb {
			return -1
		}
	}
	return 0
}

// IsEmpty reports whether every byte in the buffer is zero. An all-zero
// vector is the PRTL empty-slot sentinel (§4.3.1): an entry whose remainder
// and scalar are both zero is indistinguishable from empty and is never
// recorded. The engine reaches that case only when a worker draws the
// starting scalar 0, which puts it on the identity (x = 0).
func (v *Vector) IsEmpty() bool {
	for _, b := range v.bits {
		if b != 0 {
			return false
		}
	}
	return true
}

// Reset zeroes the buffer in place.
func (v *Vector) Reset() {
	for i := range v.bits {
		v.bits[i] = 0
	}
}

// Clone returns a deep copy of v.
func (v *Vector) Clone() *Vector {
	out := &Vector{bits: make([]byte, len(v.bits)), width: v.width}
	copy(out.bits, v.bits)
	return out
}

// CopyFrom overwrites v's contents with other's. Both must have the same
// byte length; this is used by the PRTL head-swap-on-insert algorithm which
// only ever swaps same-shaped vectors.
func (v *Vector) CopyFrom(other *Vector) {
	copy(v.bits, other.bits)
}

// ByteLen returns the number of bytes backing the vector, used for memory
// accounting.
func (v *Vector) ByteLen() int {
	return len(v.bits)
}
