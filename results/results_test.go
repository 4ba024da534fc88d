package results

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "conf_avg"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return NewRecorder(dir)
}

func TestRecordTimeAppendsFormattedLine(t *testing.T) {
	r := newTestRecorder(t)
	m := Measurement{NbBits: 45, StructName: "PRTL", Threads: 4, TrailingBits: 10, Level: 7, Value: "12345"}
	if err := r.RecordTime(m); err != nil {
		t.Fatalf("RecordTime: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(r.dir, "time.all"))
	if err != nil {
		t.Fatalf("read time.all: %v", err)
	}
	want := "45 PRTL 4 10 7 12345\n"
	if string(data) != want {
		t.Fatalf("time.all = %q, want %q", data, want)
	}
}

func TestRecordAppendsAcrossMultipleCalls(t *testing.T) {
	r := newTestRecorder(t)
	for i := 0; i < 3; i++ {
		m := Measurement{NbBits: 35, StructName: "hash_unix", Threads: 1, TrailingBits: 8, Level: 7, Value: "x"}
		if err := r.RecordMemory(m); err != nil {
			t.Fatalf("RecordMemory: %v", err)
		}
	}
	data, err := os.ReadFile(filepath.Join(r.dir, "memory.all"))
	if err != nil {
		t.Fatalf("read memory.all: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 appended lines, got %d: %q", len(lines), data)
	}
}

func TestNoteArgValueIsIdempotent(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.NoteNbBits(35); err != nil {
		t.Fatalf("NoteNbBits: %v", err)
	}
	if err := r.NoteNbBits(35); err != nil {
		t.Fatalf("NoteNbBits (repeat): %v", err)
	}
	if err := r.NoteNbBits(40); err != nil {
		t.Fatalf("NoteNbBits(40): %v", err)
	}

	count, err := scanForLines(r.confPath("f"))
	if err != nil {
		t.Fatalf("scanForLines: %v", err)
	}
	if count != 2 {
		t.Fatalf("f.conf should contain exactly 2 distinct values, got %d", count)
	}

	data, err := os.ReadFile(r.confPath("f"))
	if err != nil {
		t.Fatalf("read f.conf: %v", err)
	}
	fields := strings.Fields(string(data))
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f] {
			t.Fatalf("f.conf has a duplicate entry %q: %q", f, data)
		}
		seen[f] = true
	}
}

func TestNoteArgValueFailsWhenConfAvgDirMissing(t *testing.T) {
	r := NewRecorder(t.TempDir())
	if err := r.NoteNbBits(35); err == nil {
		t.Fatalf("expected an error when conf_avg/ does not exist")
	}
}

func TestNoteArgValueAcrossDifferentArgs(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.NoteStruct("PRTL"); err != nil {
		t.Fatalf("NoteStruct: %v", err)
	}
	if err := r.NoteStruct("hash_unix"); err != nil {
		t.Fatalf("NoteStruct: %v", err)
	}
	if err := r.NoteThreads(8); err != nil {
		t.Fatalf("NoteThreads: %v", err)
	}
	if err := r.NoteTrailingBits(10); err != nil {
		t.Fatalf("NoteTrailingBits: %v", err)
	}
	if err := r.NoteLevel(7); err != nil {
		t.Fatalf("NoteLevel: %v", err)
	}

	for _, arg := range []string{"s", "t", "theta", "l"} {
		if _, err := os.Stat(r.confPath(arg)); err != nil {
			t.Fatalf("expected %s.conf to exist: %v", arg, err)
		}
	}
}

func TestGenerateRandomKeyStaysInRange(t *testing.T) {
	for i := 0; i < 20; i++ {
		k := GenerateRandomKey(35)
		min := new(big.Int).Lsh(big.NewInt(1), 34)
		max := new(big.Int).Lsh(big.NewInt(1), 35)
		if k.Cmp(min) < 0 || k.Cmp(max) >= 0 {
			t.Fatalf("GenerateRandomKey(35) = %v, out of [%v,%v)", k, min, max)
		}
	}
}

func TestGenerateAddingSetsStayBelowMax(t *testing.T) {
	max := big.NewInt(1000003)
	a, b := GenerateAddingSets(max)
	for i := range a {
		if a[i].Sign() < 0 || a[i].Cmp(max) >= 0 {
			t.Fatalf("A[%d] = %v, out of [0,%v)", i, a[i], max)
		}
		if b[i].Sign() < 0 || b[i].Cmp(max) >= 0 {
			t.Fatalf("B[%d] = %v, out of [0,%v)", i, b[i], max)
		}
	}
}
