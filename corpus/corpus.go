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

// Package corpus loads the fixed-width example-curve and example-point
// corpus the engine draws its (E, P, n) inputs from. Both files are laid
// out as fixed-byte-width records so a given curve's data can be located
// by multiplying an index by a record width rather than scanning the file.
package corpus

import (
	"bufio"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// CurveRecordBytes is the fixed width of one record in the curves
	// file: "f A B p n" packed into 84 bytes.
	CurveRecordBytes = 84
	// PointRecordBytes is the fixed width of one record in the points
	// file: "X Y" packed into 80 bytes.
	PointRecordBytes = 80
	// PointsPerCurve is the number of usable point records following each
	// curve's header record in the points file.
	PointsPerCurve = 10
)

// Curve is one example-curve record: field size in bits, curve
// coefficients, field prime, and the large prime group order n.
type Curve struct {
	NbBits uint
	A, B   *big.Int
	P      *big.Int
	N      *big.Int
}

// CurveIndex maps a field size (35..115, step 5) to its 0-based row in the
// curves file: the 35-bit curve is row 0, so the row is f/5 - 7.
func CurveIndex(nbBits uint) int {
	return int(nbBits)/5 - 7
}

// LoadCurve seeks to the record for nbBits and parses it.
func LoadCurve(path string, nbBits uint) (*Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "corpus: open curves file")
	}
	defer f.Close()

	offset := int64(CurveIndex(nbBits)) * CurveRecordBytes
	if _, err := f.Seek(offset, os.SEEK_SET); err != nil {
		return nil, errors.Wrap(err, "corpus: seek curves file")
	}

	buf := make([]byte, CurveRecordBytes)
	if _, err := f.Read(buf); err != nil {
		return nil, errors.Wrap(err, "corpus: read curves record")
	}

	fields := strings.Fields(string(buf))
	if len(fields) < 5 {
		return nil, errors.Errorf("corpus: malformed curves record at offset %d: %q", offset, buf)
	}

	// The on-disk bit-size prefix and the A coefficient that follows it
	// are written back to back with no separator, so the split point is
	// taken from the already-known requested width rather than guessed
	// from the digit run (which would be ambiguous once A also starts
	// with digits).
	digits := len(strconv.Itoa(int(nbBits)))
	if digits > len(fields[0]) {
		return nil, errors.Errorf("corpus: curves record too short for a %d-bit prefix: %q", nbBits, fields[0])
	}
	f0, err := strconv.Atoi(fields[0][:digits])
	if err != nil {
		return nil, errors.Wrap(err, "corpus: parse curve bit size")
	}

	a, ok := new(big.Int).SetString(fields[0][digits:], 10)
	if !ok {
		return nil, errors.New("corpus: parse curve A")
	}
	b, ok := new(big.Int).SetString(fields[1], 10)
	if !ok {
		return nil, errors.New("corpus: parse curve B")
	}
	p, ok := new(big.Int).SetString(fields[2], 10)
	if !ok {
		return nil, errors.New("corpus: parse curve field prime")
	}
	n, ok := new(big.Int).SetString(fields[3], 10)
	if !ok {
		return nil, errors.New("corpus: parse curve group order")
	}

	return &Curve{NbBits: uint(f0), A: a, B: b, P: p, N: n}, nil
}

// LoadPoint reads the example point P at 0-based position testIndex
// (wrapping every 10) for the curve at curveIndex, skipping that curve
// group's header record.
func LoadPoint(path string, curveIndex int, testIndex int) (x, y *big.Int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "corpus: open points file")
	}
	defer f.Close()

	pointInGroup := testIndex%PointsPerCurve + 1
	offset := int64(curveIndex)*(PointsPerCurve+1)*PointRecordBytes + int64(pointInGroup)*PointRecordBytes
	if _, err := f.Seek(offset, os.SEEK_SET); err != nil {
		return nil, nil, errors.Wrap(err, "corpus: seek points file")
	}

	buf := make([]byte, PointRecordBytes)
	if _, err := f.Read(buf); err != nil {
		return nil, nil, errors.Wrap(err, "corpus: read points record")
	}

	fields := strings.Fields(string(buf))
	if len(fields) < 2 {
		return nil, nil, errors.Errorf("corpus: malformed points record at offset %d: %q", offset, buf)
	}

	x, ok := new(big.Int).SetString(fields[0], 10)
	if !ok {
		return nil, nil, errors.New("corpus: parse point X")
	}
	y, ok = new(big.Int).SetString(fields[1], 10)
	if !ok {
		return nil, nil, errors.New("corpus: parse point Y")
	}
	return x, y, nil
}

// CountLines is a small helper used by the corpus-fixture tests to sanity
// check a generated file's record count without depending on the on-disk
// layout of a real corpus.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n, scanner.Err()
}

// FormatCurveRecord renders a Curve as an 84-byte, space-padded record in
// the on-disk layout LoadCurve expects, for fixture generation in tests.
func FormatCurveRecord(nbBits uint, a, b, p, n *big.Int) string {
	s := fmt.Sprintf("%d%s %s %s %s", nbBits, a.String(), b.String(), p.String(), n.String())
	return padTo(s, CurveRecordBytes)
}

// FormatPointRecord renders an (X,Y) pair as an 80-byte, space-padded
// record in the on-disk layout LoadPoint expects.
func FormatPointRecord(x, y *big.Int) string {
	s := fmt.Sprintf("%s %s", x.String(), y.String())
	return padTo(s, PointRecordBytes)
}

func padTo(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
