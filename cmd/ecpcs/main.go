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

package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/ecpcs/corpus"
	"github.com/xtaci/ecpcs/curve"
	"github.com/xtaci/ecpcs/pcs"
	"github.com/xtaci/ecpcs/results"
	"github.com/xtaci/ecpcs/store"
	"github.com/xtaci/ecpcs/walk"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

// experiment holds everything main needs once the flags are parsed and
// validated, so the per-test-run loop below reads like a straight line.
type experiment struct {
	nbBits       uint
	threads      int
	tests        int
	structs      []string
	level        int
	trailingBits uint
	collisions   int

	curvesPath string
	pointsPath string
	resultsDir string
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "ecpcs"
	app.Usage = "parallel collision search for the elliptic curve discrete log problem"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "f",
			Value: 35,
			Usage: "field size in bits of the example curve to use (35..115, step 5)",
		},
		cli.IntFlag{
			Name:  "t",
			Value: runtime.NumCPU(),
			Usage: "number of worker threads",
		},
		cli.IntFlag{
			Name:  "n",
			Value: 10,
			Usage: "number of runs with different random secret keys",
		},
		cli.StringSliceFlag{
			Name:  "s",
			Usage: "distinguished-point store: PRTL (default) or hash_unix, may be repeated",
		},
		cli.IntFlag{
			Name:  "l",
			Value: 7,
			Usage: "store level (2^level buckets); for hash_unix, 7 means auto-size",
		},
		cli.IntFlag{
			Name:  "d",
			Value: -1,
			Usage: "number of trailing zero bits in a distinguished point (default floor(f/4))",
		},
		cli.IntFlag{
			Name:  "c",
			Value: 1,
			Usage: "number of collisions that need to be found",
		},
		cli.StringFlag{
			Name:  "curves",
			Value: "curves",
			Usage: "path to the fixed-width example-curves file",
		},
		cli.StringFlag{
			Name:  "points",
			Value: "points",
			Usage: "path to the fixed-width example-points file",
		},
		cli.StringFlag{
			Name:  "results",
			Value: results.Dir,
			Usage: "results directory (must already contain a conf_avg subdirectory)",
		},
	}
	app.Action = runExperiments
	if err := app.Run(os.Args); err != nil {
		checkError(err)
	}
}

func runExperiments(c *cli.Context) error {
	exp, err := parseAndValidate(c)
	if err != nil {
		return err
	}

	curveRecord, err := corpus.LoadCurve(exp.curvesPath, exp.nbBits)
	if err != nil {
		return errors.Wrap(err, "load curve")
	}
	ec := curve.New(curveRecord.A, curveRecord.B, curveRecord.P)

	a, b := results.GenerateAddingSets(curveRecord.N)

	rec := results.NewRecorder(exp.resultsDir)
	curveIndex := corpus.CurveIndex(exp.nbBits)

	for testIdx := 0; testIdx < exp.tests; testIdx++ {
		x, y, err := corpus.LoadPoint(exp.pointsPath, curveIndex, testIdx)
		if err != nil {
			return errors.Wrap(err, "load point")
		}
		p := curve.Point{X: x, Y: y, Z: big.NewInt(1)}

		key := results.GenerateRandomKey(exp.nbBits - 1)
		q := ec.ScalarMul(p, key)

		table := walk.NewTable(ec, p, q, a, b)

		for _, structName := range exp.structs {
			backend, err := newBackend(structName, exp, curveRecord.N)
			if err != nil {
				return err
			}

			ctx := &pcs.Context{
				Curve:        ec,
				P:            p,
				Q:            q,
				N:            curveRecord.N,
				Table:        table,
				Store:        backend,
				NbBits:       exp.nbBits,
				TrailingBits: exp.trailingBits,
			}

			start := time.Now()
			res := pcs.Run(ctx, exp.threads, exp.collisions)
			elapsed := time.Since(start)

			if res.K == nil || res.K.Cmp(key) != 0 {
				log.Printf("warning: recovered scalar does not match the planted key (got %v, want %v)", res.K, key)
			}

			stats := backend.Stats()
			m := results.Measurement{
				NbBits: exp.nbBits, StructName: structName, Threads: exp.threads,
				TrailingBits: exp.trailingBits, Level: exp.level,
			}
			m.Value = fmt.Sprintf("%d", elapsed.Microseconds())
			if err := rec.RecordTime(m); err != nil {
				return err
			}
			m.Value = fmt.Sprintf("%d", stats.BytesUsed)
			if err := rec.RecordMemory(m); err != nil {
				return err
			}
			m.Value = fmt.Sprintf("%d", stats.Points)
			if err := rec.RecordPoints(m); err != nil {
				return err
			}
			var rate float64
			if stats.Points+stats.EmptySlots > 0 {
				rate = float64(stats.Points) / float64(stats.Points+stats.EmptySlots)
			}
			m.Value = fmt.Sprintf("%.2f", rate)
			if err := rec.RecordRate(m); err != nil {
				return err
			}

			if err := rec.NoteNbBits(exp.nbBits); err != nil {
				return err
			}
			if err := rec.NoteStruct(structName); err != nil {
				return err
			}
			if err := rec.NoteThreads(exp.threads); err != nil {
				return err
			}
			if err := rec.NoteTrailingBits(exp.trailingBits); err != nil {
				return err
			}
			if err := rec.NoteLevel(exp.level); err != nil {
				return err
			}
		}
	}
	return nil
}

func newBackend(name string, exp *experiment, n *big.Int) (store.Store, error) {
	switch name {
	case "PRTL":
		return store.NewPRTL(int(exp.nbBits), int(exp.trailingBits), exp.level, store.Limits{}), nil
	case "hash_unix":
		level := exp.level
		if level == 7 {
			level = 0 // 0 tells the hash table to auto-size, per the reference default
		}
		return store.NewHashTable(n, exp.trailingBits, level, store.Limits{}), nil
	default:
		return nil, errors.Errorf("unknown store structure %q", name)
	}
}

// parseAndValidate mirrors the reference tool's boundary-condition checks
// on the CLI flags (§7 InputError kinds).
func parseAndValidate(c *cli.Context) (*experiment, error) {
	nbBits := c.Int("f")
	if nbBits < 35 || nbBits > 115 || nbBits%5 != 0 {
		log.Printf("warning: no example curve of %d bits; available choices are 35,40,...,115", nbBits)
		nbBits = (nbBits / 5) * 5
		if nbBits < 35 {
			nbBits = 35
		}
		if nbBits > 115 {
			nbBits = 115
		}
	}

	threads := c.Int("t")
	if threads < 1 || threads > 2000 {
		return nil, errors.Errorf("can not use %d threads, choose a value in [1,2000]", threads)
	}

	tests := c.Int("n")
	if tests < 1 {
		return nil, errors.Errorf("invalid number of tests: %d", tests)
	}

	trailingBits := c.Int("d")
	if trailingBits < 0 {
		trailingBits = nbBits / 4
	}
	if trailingBits > nbBits {
		return nil, errors.New("the number of trailing zero bits can not exceed the number of bits of the x-coordinate")
	}

	structs := c.StringSlice("s")
	if len(structs) == 0 {
		log.Printf("warning: no chosen storage structures, adding PRTL by default")
		structs = []string{"PRTL"}
	}

	level := c.Int("l")
	for _, s := range structs {
		if s == "PRTL" {
			if level < 0 {
				return nil, errors.Errorf("invalid level: %d", level)
			}
			if level > nbBits-trailingBits {
				return nil, errors.Errorf("the level (prefix) can not exceed the length of a stored word: %d", nbBits-trailingBits)
			}
		}
	}

	collisions := c.Int("c")
	if collisions < 1 {
		return nil, errors.Errorf("invalid number of collisions: %d", collisions)
	}

	return &experiment{
		nbBits:       uint(nbBits),
		threads:      threads,
		tests:        tests,
		structs:      structs,
		level:        level,
		trailingBits: uint(trailingBits),
		collisions:   collisions,
		curvesPath:   c.String("curves"),
		pointsPath:   c.String("points"),
		resultsDir:   c.String("results"),
	}, nil
}

func checkError(err error) {
	if err != nil {
		log.Printf("%+v\n", err)
		os.Exit(1)
	}
}
