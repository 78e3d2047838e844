package dump

import (
	"fmt"
	"io"
	"os"

	"github.com/paf-go/paf/refinst"
	"gopkg.in/yaml.v3"
)

// Each YAML sink below emits the fixed key names of its document struct
// tags: hex values carry a "0x" prefix, all numerics fit in u64.

// YAMLMemoryAccessesDumper streams one YAML sequence item per memory
// access, tagged with the owning instruction's time and PC.
type YAMLMemoryAccessesDumper struct {
	w   io.Writer
	enc *yaml.Encoder
	c   io.Closer
}

type memAccessDoc struct {
	Time      int64  `yaml:"time"`
	PC        string `yaml:"pc"`
	Direction string `yaml:"direction"`
	Addr      string `yaml:"addr"`
	Size      int    `yaml:"size"`
	Value     uint64 `yaml:"value"`
}

// NewYAMLMemoryAccessesDumper opens path for writing.
func NewYAMLMemoryAccessesDumper(path string) (*YAMLMemoryAccessesDumper, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dump: create %s: %w", path, err)
	}
	return &YAMLMemoryAccessesDumper{w: f, enc: yaml.NewEncoder(f), c: f}, nil
}

func (d *YAMLMemoryAccessesDumper) PreDump() error {
	_, err := io.WriteString(d.w, "memory_accesses:\n")
	return err
}

func (d *YAMLMemoryAccessesDumper) Dump(time int64, pc uint64, m refinst.MemoryAccess) error {
	return d.enc.Encode([]memAccessDoc{{
		Time: time, PC: fmt.Sprintf("%#x", pc),
		Direction: m.Direction.String(), Addr: fmt.Sprintf("%#x", m.Addr),
		Size: m.Size, Value: m.Value,
	}})
}

func (d *YAMLMemoryAccessesDumper) PostDump() error {
	if err := d.enc.Close(); err != nil {
		return err
	}
	return d.c.Close()
}

func (d *YAMLMemoryAccessesDumper) NextTrace() error {
	_, err := io.WriteString(d.w, "---\n")
	return err
}

// YAMLInstrDumper streams one YAML document per decoded instruction.
type YAMLInstrDumper struct {
	w   io.Writer
	enc *yaml.Encoder
	c   io.Closer
}

type instrDoc struct {
	Time        int64  `yaml:"time"`
	PC          string `yaml:"pc"`
	Opcode      string `yaml:"opcode"`
	Width       int    `yaml:"width"`
	Disassembly string `yaml:"disassembly"`
	Executed    bool   `yaml:"executed"`
}

// NewYAMLInstrDumper opens path for writing.
func NewYAMLInstrDumper(path string) (*YAMLInstrDumper, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dump: create %s: %w", path, err)
	}
	return &YAMLInstrDumper{w: f, enc: yaml.NewEncoder(f), c: f}, nil
}

func (d *YAMLInstrDumper) PreDump() error {
	_, err := io.WriteString(d.w, "instructions:\n")
	return err
}

func (d *YAMLInstrDumper) Dump(ri *refinst.ReferenceInstruction) error {
	return d.enc.Encode([]instrDoc{{
		Time: ri.Time, PC: fmt.Sprintf("%#x", ri.PC), Opcode: fmt.Sprintf("%#x", ri.Opcode),
		Width: ri.Width, Disassembly: ri.Disassembly, Executed: ri.Effect == refinst.Executed,
	}})
}

func (d *YAMLInstrDumper) PostDump() error {
	if err := d.enc.Close(); err != nil {
		return err
	}
	return d.c.Close()
}

func (d *YAMLInstrDumper) NextTrace() error {
	_, err := io.WriteString(d.w, "---\n")
	return err
}

// YAMLTimingInfo accumulates per-PC cycle counts across a trace and
// writes one aggregated YAML object (min, max, and the full list) per
// trace, at NextTrace and at PostDump, rather than streaming a document
// per sample.
type YAMLTimingInfo struct {
	w   io.Writer
	enc *yaml.Encoder
	c   io.Closer

	entries  []timingEntryDoc
	haveMin  bool
	min, max int
}

type timingEntryDoc struct {
	PC     string `yaml:"pc"`
	Cycles int    `yaml:"cycles"`
}

type timingDoc struct {
	Min  int              `yaml:"min"`
	Max  int              `yaml:"max"`
	List []timingEntryDoc `yaml:"list"`
}

// NewYAMLTimingInfo opens path for writing.
func NewYAMLTimingInfo(path string) (*YAMLTimingInfo, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dump: create %s: %w", path, err)
	}
	return &YAMLTimingInfo{w: f, enc: yaml.NewEncoder(f), c: f}, nil
}

func (d *YAMLTimingInfo) PreDump() error {
	return nil
}

// Dump buffers one (pc, cycle) sample, updating the running min/max;
// nothing is written to w until NextTrace or PostDump.
func (d *YAMLTimingInfo) Dump(s TimingSample) error {
	d.entries = append(d.entries, timingEntryDoc{PC: fmt.Sprintf("%#x", s.PC), Cycles: s.Cycles})
	if !d.haveMin || s.Cycles < d.min {
		d.min = s.Cycles
		d.haveMin = true
	}
	if s.Cycles > d.max {
		d.max = s.Cycles
	}
	return nil
}

// flush writes the current trace's accumulated {min, max, list} object
// as a single document.
func (d *YAMLTimingInfo) flush() error {
	return d.enc.Encode(timingDoc{Min: d.min, Max: d.max, List: d.entries})
}

// PostDump flushes the final trace's accumulated object and closes the
// underlying file.
func (d *YAMLTimingInfo) PostDump() error {
	if err := d.flush(); err != nil {
		return err
	}
	if err := d.enc.Close(); err != nil {
		return err
	}
	return d.c.Close()
}

// NextTrace flushes the just-finished trace's accumulated object, then
// resets the running state: each trace's timing summary is independent,
// not cumulative across traces.
func (d *YAMLTimingInfo) NextTrace() error {
	if err := d.flush(); err != nil {
		return err
	}
	d.entries = nil
	d.haveMin = false
	d.min, d.max = 0, 0
	return nil
}
