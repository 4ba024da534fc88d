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

// Package pcs implements the parallel collision search engine: it wires
// the curve, the adding-walk table and a distinguished-point store into a
// pool of worker goroutines that race to recover the discrete log of Q
// with respect to P.
package pcs

import (
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/xtaci/ecpcs/curve"
	"github.com/xtaci/ecpcs/store"
	"github.com/xtaci/ecpcs/walk"
)

// Context bundles everything a worker needs to run: the curve and its
// points, the group order, the precomputed adding-walk table, the
// distinguished-point store and the trailing-bits/nb_bits parameters.
// There are no package-level globals — every run gets its own Context, so
// nothing here is implicitly shared across unrelated experiments.
type Context struct {
	Curve        *curve.Curve
	P, Q         curve.Point
	N            *big.Int
	Table        *walk.Table
	Store        store.Store
	NbBits       uint
	TrailingBits uint
}

// Result is the outcome of a run: the number of collisions actually verified
// (at least the number requested; it can be higher when several workers
// verify a collision at about the same time) and the most recently
// published scalar, per §4.4's "most recent writer wins" termination rule.
type Result struct {
	Collisions int
	K          *big.Int
}

// Run spawns nWorkers goroutines that search in parallel until kCollisions
// distinct collisions have been verified, then returns. It is not
// cancellable; a worker whose trail exceeds trail_max self-restarts with a
// fresh random starting scalar instead of hanging on an absorbing cycle.
func Run(ctx *Context, nWorkers, kCollisions int) Result {
	var mu sync.Mutex
	collisions := 0
	var lastK *big.Int

	var wg sync.WaitGroup
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func(threadID int) {
			defer wg.Done()
			runWorker(ctx, threadID, kCollisions, &mu, &collisions, &lastK)
		}(i)
	}
	wg.Wait()

	return Result{Collisions: collisions, K: lastK}
}

// runWorker implements §4.4's per-worker loop. Its RNG is seeded from wall
// clock XOR (threadID+1), matching the reference engine's seeding
// discipline; this is explicitly not cryptographic-quality randomness
// (non-goal).
func runWorker(ctx *Context, threadID, kCollisions int, mu *sync.Mutex, collisions *int, lastK **big.Int) {
	seed := time.Now().UnixNano() ^ int64(threadID+1)
	rng := rand.New(rand.NewSource(seed))

	trailMax := int64(20) << ctx.TrailingBits

	restart := func() (a *big.Int, r curve.Point) {
		a = randScalar(rng, ctx.NbBits)
		r = ctx.Curve.ScalarMul(ctx.P, a)
		return a, r
	}

	aStart, r := restart()
	a := aStart
	var trail int64

	for {
		mu.Lock()
		done := *collisions >= kCollisions
		mu.Unlock()
		if done {
			return
		}

		if dist, suffix := walk.IsDistinguished(r, ctx.TrailingBits); dist {
			hit, aOut := ctx.Store.SearchAndInsert(suffix, aStart)
			if hit {
				if k, ok := walk.Verify(ctx.Curve, ctx.Table, ctx.P, ctx.Q, ctx.N, ctx.TrailingBits, aOut, aStart); ok {
					mu.Lock()
					*collisions++
					*lastK = k
					mu.Unlock()
				}
			}
			aStart, r = restart()
			a = aStart
			trail = 0
			continue
		}

		s := &walk.State{R: r, A: a, B: big.NewInt(0), Trail: trail}
		walk.Step(ctx.Curve, ctx.Table, ctx.N, s)
		a, r, trail = s.A, s.R, s.Trail
		if trail > trailMax {
			aStart, r = restart()
			a = aStart
			trail = 0
		}
	}
}

// randScalar draws a uniform scalar in [0, 2^nbBits), mirroring the
// reference engine's per-restart draw inside pcs_run's worker loop
// (mpz_urandomb(a, r_state, nb_bits)) rather than generate_random_key's
// clamped [2^(nbBits-1), 2^nbBits) range, which the original reserves for
// the experiment's planted secret key alone (see results.GenerateRandomKey).
func randScalar(rng *rand.Rand, nbBits uint) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), nbBits)

	buf := make([]byte, (nbBits+7)/8)
	rng.Read(buf)
	s := new(big.Int).SetBytes(buf)
	s.Mod(s, max)
	return s
}
