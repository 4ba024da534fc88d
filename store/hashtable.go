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
	"strings"
	"sync"
)

// piNumerator and piDenominator are the 355/113 rational approximation of
// pi used to auto-size the hash table when no explicit level is given,
// correct to six decimal places — the same constant the reference store uses.
const (
	piNumerator   = 355
	piDenominator = 113
)

// AutoHashTableSize computes the recommended hash-table size when the
// caller did not pin one with an explicit level: the expected number of
// distinguished points seen before a birthday collision,
// ceil(sqrt(pi*n/2) / 2^trailingBits).
func AutoHashTableSize(n *big.Int, trailingBits uint) uint64 {
	// ceil(sqrt(x)) == ceil(sqrt(ceil(x))) and ceil(s/d) == ceil(ceil(s)/d),
	// so rounding up at each integer step yields the exact ceiling.
	den := big.NewInt(2 * piDenominator)
	inter := new(big.Int).Mul(n, big.NewInt(piNumerator))
	inter.Add(inter, new(big.Int).Sub(den, big.NewInt(1)))
	inter.Quo(inter, den)
	root := new(big.Int).Sqrt(inter)
	if new(big.Int).Mul(root, root).Cmp(inter) < 0 {
		root.Add(root, big.NewInt(1))
	}
	distinguished := new(big.Int).Lsh(big.NewInt(1), trailingBits)
	inter = root.Add(root, new(big.Int).Sub(distinguished, big.NewInt(1)))
	inter.Quo(inter, distinguished)
	if inter.Sign() == 0 {
		return 1
	}
	return inter.Uint64()
}

type hashNode struct {
	key string // hex-ascii suffix
	a   string // scalar, base-62 ascii
	nxt *hashNode
}

// HashTable is the chained distinguished-point store keyed by the
// hex-ascii suffix string, bucketed with the ELF hash. Scalars are kept as
// base-62 ascii strings, matching the reference store's memory-compression
// choice over packing raw bits.
type HashTable struct {
	tableSize uint64
	table     []*hashNode
	locks     []sync.Mutex

	limits  Limits
	memMu   sync.Mutex
	memUsed uint64
}

// NewHashTable builds a chained hash table. If level > 0, the table has
// 2^level buckets; otherwise it is auto-sized from n and trailingBits via
// AutoHashTableSize.
func NewHashTable(n *big.Int, trailingBits uint, level int, limits Limits) *HashTable {
	var size uint64
	if level > 0 {
		size = 1 << uint(level)
	} else {
		size = AutoHashTableSize(n, trailingBits)
	}
	return &HashTable{
		tableSize: size,
		table:     make([]*hashNode, size),
		locks:     make([]sync.Mutex, size),
		limits:    limits,
		memUsed:   size * 8, // one pointer slot per bucket
	}
}

func (h *HashTable) bucket(key string) uint64 {
	return uint64(elfHash(key)) % h.tableSize
}

// SearchAndInsert keys on the hex representation of suffix and stores aIn
// as a base-62 string, per §4.3.2.
func (h *HashTable) SearchAndInsert(suffix, aIn *big.Int) (bool, *big.Int) {
	key := suffix.Text(16)
	b := h.bucket(key)

	h.locks[b].Lock()
	defer h.locks[b].Unlock()

	var last *hashNode
	next := h.table[b]
	for next != nil && strings.Compare(key, next.key) > 0 {
		last = next
		next = next.nxt
	}
	if next != nil && next.key == key {
		stored, ok := new(big.Int).SetString(next.a, 62)
		if !ok {
			return true, big.NewInt(0)
		}
		return true, stored
	}

	h.memMu.Lock()
	over := h.limits.exceeded(h.memUsed)
	h.memMu.Unlock()
	if over {
		return false, nil
	}

	fresh := &hashNode{key: key, a: aIn.Text(62), nxt: next}
	if last == nil {
		h.table[b] = fresh
	} else {
		last.nxt = fresh
	}
	h.accountInsert(fresh)
	return false, nil
}

func (h *HashTable) accountInsert(n *hashNode) {
	h.memMu.Lock()
	h.memUsed += uint64(len(n.key)+len(n.a)) + 16
	h.memMu.Unlock()
}

// Stats reports the store's point count, empty-bucket count and memory use.
func (h *HashTable) Stats() Stats {
	var points, empty uint64
	for i := range h.table {
		h.locks[i].Lock()
		if h.table[i] == nil {
			empty++
		} else {
			for n := h.table[i]; n != nil; n = n.nxt {
				points++
			}
		}
		h.locks[i].Unlock()
	}
	return Stats{Points: points, EmptySlots: empty, BytesUsed: h.memUsed}
}
