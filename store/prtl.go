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

package store

import (
	"math/big"
	"sync"

	"github.com/xtaci/ecpcs/bitvec"
)

// prtlNode is one slot of a bucket's chain: a packed vector holding
// suffix-remainder and scalar back to back, plus the next link. Buckets own
// their head node by value; everything past it is heap-allocated.
type prtlNode struct {
	v   *bitvec.Vector
	nxt *prtlNode
}

// PRTL is the packed radix-tree-list distinguished-point store: the first
// `level` (low-order) bits of a suffix select a bucket, and the remaining
// suffix_len bits are packed together with the scalar into a per-node bit
// vector, factoring the shared prefix out of every stored entry.
type PRTL struct {
	nbBits    int
	level     int
	suffixLen int
	mask      uint64
	vecWidth  int

	buckets []prtlNode
	locks   []sync.Mutex

	limits  Limits
	memMu   sync.Mutex
	memUsed uint64
}

// NewPRTL builds a PRTL store. nbBits is the scalar width, trailingBits the
// distinguished-point trailing-zero count, and level selects 2^level
// buckets; suffix_len = nbBits - trailingBits - level must be non-negative.
func NewPRTL(nbBits, trailingBits, level int, limits Limits) *PRTL {
	suffixLen := nbBits - trailingBits - level
	if suffixLen < 0 {
		suffixLen = 0
	}
	size := 1 << uint(level)
	p := &PRTL{
		nbBits:    nbBits,
		level:     level,
		suffixLen: suffixLen,
		mask:      uint64(size - 1),
		vecWidth:  suffixLen + nbBits,
		buckets:   make([]prtlNode, size),
		locks:     make([]sync.Mutex, size),
		limits:    limits,
	}
	for i := range p.buckets {
		p.buckets[i].v = bitvec.New(p.vecWidth)
	}
	p.memUsed = uint64(size) * uint64(p.buckets[0].v.ByteLen())
	return p
}

// SearchAndInsert implements the common store contract using the bucket =
// suffix & ((1<<level)-1) / remainder = suffix>>level split and the
// head-swap insertion algorithm: the head slot always holds the smallest
// key in its bucket, or is empty.
func (p *PRTL) SearchAndInsert(suffix, aIn *big.Int) (bool, *big.Int) {
	key := new(big.Int).And(suffix, big.NewInt(int64(p.mask))).Int64()
	remainder := new(big.Int).Rsh(suffix, uint(p.level))

	p.locks[key].Lock()
	defer p.locks[key].Unlock()

	head := &p.buckets[key]
	if head.v.IsEmpty() {
		head.v.Set(0, p.suffixLen, remainder)
		head.v.Set(p.suffixLen, p.nbBits, aIn)
		head.nxt = nil
		p.accountInsert()
		return false, nil
	}

	var last *prtlNode
	next := head
	for next != nil && next.v.Cmp(0, p.suffixLen, remainder) < 0 {
		last = next
		next = next.nxt
	}
	if next != nil && next.v.Cmp(0, p.suffixLen, remainder) == 0 {
		return true, next.v.Get(p.suffixLen, p.nbBits)
	}

	p.memMu.Lock()
	over := p.limits.exceeded(p.memUsed)
	p.memMu.Unlock()
	if over {
		return false, nil
	}

	fresh := &prtlNode{v: bitvec.New(p.vecWidth)}
	if next == head {
		// Incoming key is smaller than the current head: swap the head's
		// contents into the new node and overwrite the head in place, so
		// the head always holds the smallest key or is empty.
		fresh.v.CopyFrom(head.v)
		fresh.nxt = head.nxt
		head.v.Reset()
		head.v.Set(0, p.suffixLen, remainder)
		head.v.Set(p.suffixLen, p.nbBits, aIn)
		head.nxt = fresh
	} else {
		fresh.v.Set(0, p.suffixLen, remainder)
		fresh.v.Set(p.suffixLen, p.nbBits, aIn)
		fresh.nxt = next
		last.nxt = fresh
	}
	p.accountInsert()
	return false, nil
}

func (p *PRTL) accountInsert() {
	p.memMu.Lock()
	p.memUsed += uint64(p.vecWidth+7) / 8
	p.memMu.Unlock()
}

// Stats reports the store's point count, empty-bucket count and memory use.
func (p *PRTL) Stats() Stats {
	var points, empty uint64
	for i := range p.buckets {
		p.locks[i].Lock()
		if p.buckets[i].v.IsEmpty() {
			empty++
		} else {
			points++
			for n := p.buckets[i].nxt; n != nil; n = n.nxt {
				points++
			}
		}
		p.locks[i].Unlock()
	}
	return Stats{Points: points, EmptySlots: empty, BytesUsed: p.memUsed}
}
