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

// Package store implements the concurrent distinguished-point store: a
// "first writer wins" associative structure mapping a distinguished point's
// x-coordinate suffix to the scalar that first reached it. Two backends are
// provided, a packed radix-tree-list (PRTL) and a chained hash table using
// the ELF hash, both striped-locked at bucket granularity.
package store

import "math/big"

// Store maps a distinguished-point suffix to the scalar that first reached
// it. SearchAndInsert is the sole mutating entry point: if suffix is
// unknown it is inserted with aIn and (false, nil) is returned; if it is
// already present the call is a no-op and (true, storedA) is returned.
// Implementations must guarantee first-writer-wins under concurrent
// duplicate inserts of the same suffix.
type Store interface {
	SearchAndInsert(suffix, aIn *big.Int) (hit bool, aOut *big.Int)
	Stats() Stats
}

// Stats reports a store's current memory occupation, for the results
// bookkeeping harness.
type Stats struct {
	Points     uint64
	EmptySlots uint64
	BytesUsed  uint64
}

// Limits caps a store's memory footprint. When MaxBytes is reached, further
// inserts are silently skipped (the walk that triggered them simply
// restarts) rather than treated as an error — §7's StoreCapacityPressure.
// A zero value means unlimited.
type Limits struct {
	MaxBytes uint64
}

func (l Limits) exceeded(used uint64) bool {
	return l.MaxBytes != 0 && used >= l.MaxBytes
}
