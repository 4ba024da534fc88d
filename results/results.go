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

// Package results manages the experiment bookkeeping: append-only .all logs
// of per-run timing/memory/point-count/rate measurements, an idempotent
// conf_avg directory recording which argument values have been exercised,
// and the once-per-run random draws (starting key, adding-walk
// coefficients) that seed an experiment.
package results

import (
	"bufio"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xtaci/ecpcs/walk"
)

// Dir is the root results directory the reference tool hard-codes as
// "./results/"; callers may point Recorder elsewhere for tests.
const Dir = "results"

// Measurement is one row appended to a .all log: `<f> <struct> <threads>
// <trailing_bits> <level> <value>`, matching the reference format exactly.
type Measurement struct {
	NbBits       uint
	StructName   string
	Threads      int
	TrailingBits uint
	Level        int
	Value        string
}

// Recorder appends measurements and maintains the conf_avg value lists
// under a results directory.
type Recorder struct {
	dir string
}

// NewRecorder returns a Recorder rooted at dir. The directory and its
// conf_avg subdirectory must already exist; Recorder does not create them,
// mirroring the reference tool's "exit on missing results dir" behaviour.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

func (r *Recorder) appendAll(name string, m Measurement) error {
	f, err := os.OpenFile(filepath.Join(r.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "results: open %s", name)
	}
	defer f.Close()
	line := fmt.Sprintf("%d %s %d %d %d %s\n", m.NbBits, m.StructName, m.Threads, m.TrailingBits, m.Level, m.Value)
	_, err = f.WriteString(line)
	return errors.Wrapf(err, "results: append %s", name)
}

// RecordTime appends to time.all.
func (r *Recorder) RecordTime(m Measurement) error { return r.appendAll("time.all", m) }

// RecordMemory appends to memory.all.
func (r *Recorder) RecordMemory(m Measurement) error { return r.appendAll("memory.all", m) }

// RecordPoints appends to points.all.
func (r *Recorder) RecordPoints(m Measurement) error { return r.appendAll("points.all", m) }

// RecordRate appends to rate.all.
func (r *Recorder) RecordRate(m Measurement) error { return r.appendAll("rate.all", m) }

// confPath returns the path to a conf_avg list file for argument name.
func (r *Recorder) confPath(arg string) string {
	return filepath.Join(r.dir, "conf_avg", arg+".conf")
}

// NoteArgValue idempotently appends value to the named conf_avg list
// (space-separated on a single line) if it is not already present. This is
// the Go equivalent of the reference tool's read-tokenize-compare-append
// dance for f.conf, s.conf, t.conf, theta.conf and l.conf.
func (r *Recorder) NoteArgValue(arg, value string) error {
	path := r.confPath(arg)
	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "results: read %s.conf", arg)
		}
		existing = nil
	}

	for _, tok := range strings.Fields(string(existing)) {
		if tok == value {
			return nil
		}
	}

	updated := strings.TrimRight(string(existing), "\n")
	if updated != "" {
		updated += " "
	}
	updated += value

	return errors.Wrapf(os.WriteFile(path, []byte(updated), 0o644), "results: write %s.conf", arg)
}

// NoteNbBits, NoteStruct, NoteThreads, NoteTrailingBits and NoteLevel record
// one experiment's argument values into their respective conf_avg lists.
func (r *Recorder) NoteNbBits(f uint) error       { return r.NoteArgValue("f", strconv.Itoa(int(f))) }
func (r *Recorder) NoteStruct(name string) error  { return r.NoteArgValue("s", name) }
func (r *Recorder) NoteThreads(n int) error       { return r.NoteArgValue("t", strconv.Itoa(n)) }
func (r *Recorder) NoteTrailingBits(d uint) error { return r.NoteArgValue("theta", strconv.Itoa(int(d))) }
func (r *Recorder) NoteLevel(l int) error         { return r.NoteArgValue("l", strconv.Itoa(l)) }

// scanForLines counts the .conf file's entries, used by tests to assert
// idempotency without depending on formatting whitespace.
func scanForLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		count += len(strings.Fields(scanner.Text()))
	}
	return count, scanner.Err()
}

// GenerateRandomKey draws a uniform scalar of exactly nbBits bits, the Go
// equivalent of the reference tool's generate_random_key: the result lies
// in [2^(nbBits-1), 2^nbBits).
func GenerateRandomKey(nbBits uint) *big.Int {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	max := new(big.Int).Lsh(big.NewInt(1), nbBits)
	min := new(big.Int).Lsh(big.NewInt(1), nbBits-1)
	interval := new(big.Int).Sub(max, min)

	buf := make([]byte, (nbBits+7)/8)
	rng.Read(buf)
	s := new(big.Int).SetBytes(buf)
	s.Mod(s, max)
	if s.Cmp(min) < 0 {
		s.Add(s, interval)
	}
	return s
}

// GenerateAddingSets draws the 20 (A,B) coefficient pairs for the adding
// walk, each uniform in [0, max).
func GenerateAddingSets(max *big.Int) (a, b [walk.Partitions]*big.Int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < walk.Partitions; i++ {
		a[i] = new(big.Int).Rand(rng, max)
		b[i] = new(big.Int).Rand(rng, max)
	}
	return a, b
}
