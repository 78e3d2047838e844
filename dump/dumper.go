// Package dump implements the power engine's pluggable output sinks:
// per-cycle power samples, register-bank snapshots, memory accesses,
// decoded instructions, and timing information, each in CSV, YAML, or
// NumPy .npy form depending on the sink.
//
// Every sink follows the same small lifecycle: PreDump once at the
// start of an analysis, Dump once per emitted value, PostDump once at
// the end, and NextTrace between traces to reset any per-trace state.
// Sinks must tolerate a PowerSample with no backing instruction (a
// noise-only cycle).
package dump

import "github.com/paf-go/paf/refinst"

// PowerSample is one cycle's worth of channel contributions plus their
// fixed-weight aggregate.
type PowerSample struct {
	PC           float64
	Opcode       float64
	MemAddress   float64
	MemData      float64
	InstrInputs  float64
	InstrOutputs float64
	PSR          float64
	Total        float64

	// Detail fields, populated only when an instruction backs this
	// cycle (nil Instr marks a noise-only or branch-padding cycle).
	Time        int64
	PC_         uint64
	Opcode_     uint32
	Executed    bool
	Disassembly string
	Instr       *refinst.ReferenceInstruction
}

// PowerDumper is the sink for per-cycle power samples.
type PowerDumper interface {
	PreDump() error
	Dump(s PowerSample) error
	PostDump() error
	NextTrace() error
}

// RegisterBankSnapshot is one oracle register-bank read, keyed by
// register name.
type RegisterBankSnapshot struct {
	Time   int64
	Values map[string]uint64
}

// RegisterBankDumper is the sink for register-bank snapshots.
type RegisterBankDumper interface {
	PreDump() error
	Dump(s RegisterBankSnapshot) error
	PostDump() error
	NextTrace() error
}

// MemoryAccessDumper is the sink for individual memory accesses, tied
// to the instruction that performed them.
type MemoryAccessDumper interface {
	PreDump() error
	Dump(time int64, pc uint64, m refinst.MemoryAccess) error
	PostDump() error
	NextTrace() error
}

// InstrDumper is the sink for fully decoded/annotated instructions.
type InstrDumper interface {
	PreDump() error
	Dump(ri *refinst.ReferenceInstruction) error
	PostDump() error
	NextTrace() error
}

// TimingSample is one PC's accumulated cycle count.
type TimingSample struct {
	PC     uint64
	Cycles int
}

// TimingInfoDumper is the sink for per-PC cycle counts.
type TimingInfoDumper interface {
	PreDump() error
	Dump(s TimingSample) error
	PostDump() error
	NextTrace() error
}
