package dump

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paf-go/paf/refinst"
)

// CSVPowerDumper writes one CSV line per power-engine cycle: a header
// row naming the seven channels plus the aggregate total, then one
// data row per Dump call. In detailed mode each row additionally
// carries time, PC, opcode, the executed flag, the disassembly, and
// space-separated memory/register access strings. A blank line
// separates traces.
type CSVPowerDumper struct {
	w        io.Writer
	c        *csv.Writer
	detailed bool
	closer   io.Closer
}

// NewCSVPowerDumper opens path for writing. detailed toggles the extra
// per-instruction columns.
func NewCSVPowerDumper(path string, detailed bool) (*CSVPowerDumper, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dump: create %s: %w", path, err)
	}
	return &CSVPowerDumper{w: f, c: csv.NewWriter(f), detailed: detailed, closer: f}, nil
}

// NewCSVPowerDumperTo wraps an already-open writer (tests, pipes).
func NewCSVPowerDumperTo(w io.Writer, detailed bool) *CSVPowerDumper {
	return &CSVPowerDumper{w: w, c: csv.NewWriter(w), detailed: detailed}
}

func (d *CSVPowerDumper) header() []string {
	h := []string{"pc", "opcode", "mem_address", "mem_data", "instr_inputs", "instr_outputs", "psr", "total"}
	if d.detailed {
		h = append(h, "time", "pc_hex", "opcode_hex", "executed", "disassembly", "mem_accesses", "reg_accesses")
	}
	return h
}

func (d *CSVPowerDumper) PreDump() error {
	if err := d.c.Write(d.header()); err != nil {
		return fmt.Errorf("dump: csv header: %w", err)
	}
	d.c.Flush()
	return d.c.Error()
}

func (d *CSVPowerDumper) Dump(s PowerSample) error {
	row := []string{
		strconv.FormatFloat(s.PC, 'g', -1, 64),
		strconv.FormatFloat(s.Opcode, 'g', -1, 64),
		strconv.FormatFloat(s.MemAddress, 'g', -1, 64),
		strconv.FormatFloat(s.MemData, 'g', -1, 64),
		strconv.FormatFloat(s.InstrInputs, 'g', -1, 64),
		strconv.FormatFloat(s.InstrOutputs, 'g', -1, 64),
		strconv.FormatFloat(s.PSR, 'g', -1, 64),
		strconv.FormatFloat(s.Total, 'g', -1, 64),
	}
	if d.detailed {
		executed := "false"
		mem, reg := "", ""
		if s.Instr != nil {
			executed = strconv.FormatBool(s.Executed)
			mem = accessSummary(s.Instr)
			reg = regAccessSummary(s.Instr)
		}
		row = append(row,
			strconv.FormatInt(s.Time, 10),
			fmt.Sprintf("%#x", s.PC_),
			fmt.Sprintf("%#x", s.Opcode_),
			executed,
			s.Disassembly,
			mem,
			reg,
		)
	}
	if err := d.c.Write(row); err != nil {
		return fmt.Errorf("dump: csv row: %w", err)
	}
	d.c.Flush()
	return d.c.Error()
}

func (d *CSVPowerDumper) PostDump() error {
	d.c.Flush()
	if err := d.c.Error(); err != nil {
		return err
	}
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

func (d *CSVPowerDumper) NextTrace() error {
	d.c.Flush()
	if _, err := io.WriteString(d.w, "\n"); err != nil {
		return fmt.Errorf("dump: csv trace separator: %w", err)
	}
	return nil
}

func accessSummary(ri *refinst.ReferenceInstruction) string {
	accesses := ri.MemoryAccesses()
	parts := make([]string, len(accesses))
	for i, m := range accesses {
		parts[i] = fmt.Sprintf("%s:%#x:%d", m.Direction, m.Addr, m.Size)
	}
	return strings.Join(parts, " ")
}

func regAccessSummary(ri *refinst.ReferenceInstruction) string {
	accesses := ri.RegisterAccesses()
	parts := make([]string, len(accesses))
	for i, r := range accesses {
		parts[i] = fmt.Sprintf("%s:%s", r.Direction, r.Name)
	}
	return strings.Join(parts, " ")
}
