package dump

import (
	"fmt"

	"github.com/paf-go/paf/nparray"
)

// NPYPowerDumper accumulates the Total channel of each cycle into a
// ragged row per trace, then on PostDump zero-pads every row to the
// longest trace's length and writes the result as a rectangular
// NPArray[float64] .npy file.
type NPYPowerDumper struct {
	path string
	rows [][]float64
	cur  []float64
}

// NewNPYPowerDumper returns a dumper that will write to path on
// PostDump.
func NewNPYPowerDumper(path string) *NPYPowerDumper {
	return &NPYPowerDumper{path: path}
}

func (d *NPYPowerDumper) PreDump() error {
	d.rows = nil
	d.cur = nil
	return nil
}

func (d *NPYPowerDumper) Dump(s PowerSample) error {
	d.cur = append(d.cur, s.Total)
	return nil
}

func (d *NPYPowerDumper) NextTrace() error {
	d.rows = append(d.rows, d.cur)
	d.cur = nil
	return nil
}

func (d *NPYPowerDumper) PostDump() error {
	if len(d.cur) > 0 {
		d.rows = append(d.rows, d.cur)
		d.cur = nil
	}
	width := 0
	for _, r := range d.rows {
		if len(r) > width {
			width = len(r)
		}
	}
	a, err := nparray.New[float64](len(d.rows), width)
	if err != nil {
		return fmt.Errorf("dump: npy power: %w", err)
	}
	for i, r := range d.rows {
		for j, v := range r {
			if err := a.Set(i, j, v); err != nil {
				return fmt.Errorf("dump: npy power: %w", err)
			}
		}
	}
	return a.WriteNPY(d.path)
}
