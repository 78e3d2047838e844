package dump

import (
	"fmt"
	"sort"

	"github.com/paf-go/paf/nparray"
)

// NPYRegBankDumper accumulates register-bank snapshots into rows (one
// row per snapshot, one column per register name in sorted order) and
// writes them as a rectangular NPArray[uint64] .npy file on PostDump.
// Traces are not distinguished in the matrix; NextTrace is a no-op
// marker for callers that want to record trace boundaries separately.
type NPYRegBankDumper struct {
	path  string
	names []string
	rows  [][]uint64
}

// NewNPYRegBankDumper returns a dumper that will write to path on
// PostDump, using names as the fixed column order.
func NewNPYRegBankDumper(path string, names []string) *NPYRegBankDumper {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &NPYRegBankDumper{path: path, names: sorted}
}

func (d *NPYRegBankDumper) PreDump() error {
	d.rows = nil
	return nil
}

func (d *NPYRegBankDumper) Dump(s RegisterBankSnapshot) error {
	row := make([]uint64, len(d.names))
	for i, n := range d.names {
		row[i] = s.Values[n]
	}
	d.rows = append(d.rows, row)
	return nil
}

func (d *NPYRegBankDumper) PostDump() error {
	a, err := nparray.New[uint64](len(d.rows), len(d.names))
	if err != nil {
		return fmt.Errorf("dump: npy regbank: %w", err)
	}
	for i, row := range d.rows {
		for j, v := range row {
			if err := a.Set(i, j, v); err != nil {
				return fmt.Errorf("dump: npy regbank: %w", err)
			}
		}
	}
	return a.WriteNPY(d.path)
}

func (d *NPYRegBankDumper) NextTrace() error { return nil }
