package power

import (
	"fmt"
	"log"
	"math/bits"

	"github.com/paf-go/paf/armv7m"
	"github.com/paf-go/paf/dump"
	"github.com/paf-go/paf/noise"
	"github.com/paf-go/paf/refinst"
)

// ArchInfo is the architecture-description surface the engine needs:
// cycle accounting, the register table, status-register identification,
// and the decoder entry point. armv7m.V7MInfo satisfies this directly.
type ArchInfo interface {
	NOP(instrSizeBytes int) uint32
	IsBranch(ri *refinst.ReferenceInstruction) (bool, error)
	Cycles(ri, next *refinst.ReferenceInstruction) (int, error)
	NumRegisters() int
	RegisterName(id int) (armv7m.Register, error)
	RegisterID(name armv7m.Register) (int, error)
	IsStatusRegister(name armv7m.Register) bool
	InstrInfo(ri *refinst.ReferenceInstruction) (armv7m.InstrInfo, error)
	Description() string
}

// aggregation weights, fixed per the power model.
const (
	weightPC      = 1.0
	weightOpcode  = 1.0
	weightPSR     = 0.5
	weightOutputs = 2.0
	weightInputs  = 2.0
	weightData    = 2.0
	weightAddr    = 1.2
)

// Sinks bundles the engine's optional output dumpers. A nil field is a
// disabled sink: the engine skips both the call and any oracle query
// that sink alone would have required.
type Sinks struct {
	Power        dump.PowerDumper
	RegisterBank dump.RegisterBankDumper
	MemoryAccess dump.MemoryAccessDumper
	Instr        dump.InstrDumper
	Timing       dump.TimingInfoDumper
}

func (s Sinks) preDump() error {
	for _, d := range s.all() {
		if err := d.PreDump(); err != nil {
			return err
		}
	}
	return nil
}

func (s Sinks) postDump() error {
	for _, d := range s.all() {
		if err := d.PostDump(); err != nil {
			return err
		}
	}
	return nil
}

func (s Sinks) nextTrace() error {
	for _, d := range s.all() {
		if err := d.NextTrace(); err != nil {
			return err
		}
	}
	return nil
}

// lifecycle is the PreDump/PostDump/NextTrace subset every sink shares,
// used to drive all non-nil sinks uniformly regardless of their Dump
// signature.
type lifecycle interface {
	PreDump() error
	PostDump() error
	NextTrace() error
}

func (s Sinks) all() []lifecycle {
	var out []lifecycle
	if s.Power != nil {
		out = append(out, s.Power)
	}
	if s.RegisterBank != nil {
		out = append(out, s.RegisterBank)
	}
	if s.MemoryAccess != nil {
		out = append(out, s.MemoryAccess)
	}
	if s.Instr != nil {
		out = append(out, s.Instr)
	}
	if s.Timing != nil {
		out = append(out, s.Timing)
	}
	return out
}

// Engine synthesises power samples from a sequence of decoded
// instructions. It owns the Hamming-distance register-file shadow and
// the last-load/last-store/last-access memory shadows exclusively; no
// external code mutates them. The shadows hold owned copies of the
// accesses that produced them, not pointers into an instruction's
// access list, so they remain valid after that instruction is
// discarded.
type Engine struct {
	Arch   ArchInfo
	Oracle Oracle
	Config AnalysisConfig
	Noise  noise.Source
	Logger *log.Logger

	regShadow  map[armv7m.Register]uint64
	lastLoad   refinst.MemoryAccess
	lastStore  refinst.MemoryAccess
	lastAccess refinst.MemoryAccess
	haveLoad   bool
	haveStore  bool
	haveAccess bool
	lastPC     uint64
	lastOpcode uint32
}

// NewEngine builds an Engine. noiseSrc is typically built from cfg via
// AnalysisConfig.NewNoiseSource.
func NewEngine(arch ArchInfo, oracle Oracle, cfg AnalysisConfig, noiseSrc noise.Source) *Engine {
	return &Engine{
		Arch: arch, Oracle: oracle, Config: cfg, Noise: noiseSrc,
		regShadow: make(map[armv7m.Register]uint64),
	}
}

// resetShadow clears all Hamming-distance state, called between traces:
// a new trace starts from an unknown machine state, not the previous
// trace's final register/memory values.
func (e *Engine) resetShadow() {
	e.regShadow = make(map[armv7m.Register]uint64)
	e.haveLoad, e.haveStore, e.haveAccess = false, false, false
	e.lastPC, e.lastOpcode = 0, 0
}

// Run drives the full analysis lifecycle over one or more traces:
// PreDump once, one cycle sample per Dump call per instruction across
// every trace, NextTrace between traces (and a shadow reset alongside
// it), PostDump once at the end.
func (e *Engine) Run(traces [][]*refinst.ReferenceInstruction, sinks Sinks) error {
	if err := sinks.preDump(); err != nil {
		return fmt.Errorf("power: preDump: %w", err)
	}
	for i, trace := range traces {
		if i > 0 {
			e.resetShadow()
			if err := sinks.nextTrace(); err != nil {
				return fmt.Errorf("power: nextTrace: %w", err)
			}
		}
		if err := e.runTrace(trace, sinks); err != nil {
			return err
		}
	}
	return sinks.postDump()
}

func (e *Engine) runTrace(trace []*refinst.ReferenceInstruction, sinks Sinks) error {
	for i, ri := range trace {
		var next *refinst.ReferenceInstruction
		if i+1 < len(trace) {
			next = trace[i+1]
		}
		samples, err := e.cycleSamples(ri, next)
		if err != nil {
			return err
		}
		if sinks.Power != nil {
			for _, s := range samples {
				if err := sinks.Power.Dump(s); err != nil {
					return fmt.Errorf("power: power dump: %w", err)
				}
			}
		}
		if sinks.Instr != nil {
			if err := sinks.Instr.Dump(ri); err != nil {
				return fmt.Errorf("power: instr dump: %w", err)
			}
		}
		if sinks.MemoryAccess != nil {
			for _, m := range ri.MemoryAccesses() {
				if err := sinks.MemoryAccess.Dump(ri.Time, ri.PC, m); err != nil {
					return fmt.Errorf("power: memory access dump: %w", err)
				}
			}
		}
		if sinks.RegisterBank != nil {
			bank, err := e.Oracle.RegBank(ri.Time)
			if err != nil {
				return fmt.Errorf("power: register bank oracle: %w", err)
			}
			if err := sinks.RegisterBank.Dump(dump.RegisterBankSnapshot{Time: ri.Time, Values: bank}); err != nil {
				return fmt.Errorf("power: register bank dump: %w", err)
			}
		}
		if sinks.Timing != nil {
			if err := sinks.Timing.Dump(dump.TimingSample{PC: ri.PC, Cycles: len(samples)}); err != nil {
				return fmt.Errorf("power: timing dump: %w", err)
			}
		}
	}
	return nil
}

// cycleSamples expands one instruction into its per-cycle power
// samples: one cycle per memory-access slot or output-register slot
// (whichever is larger, minimum one), with a branch/call additionally
// padded with null cycles so the total matches the architecture's
// cycle count for that instruction.
func (e *Engine) cycleSamples(ri, next *refinst.ReferenceInstruction) ([]dump.PowerSample, error) {
	info, err := e.Arch.InstrInfo(ri)
	if err != nil {
		return nil, err
	}

	mem := ri.MemoryAccesses()
	var inputs, outputs []refinst.RegisterAccess
	var psr *refinst.RegisterAccess
	for _, r := range ri.RegisterAccesses() {
		if e.Arch.IsStatusRegister(armv7m.Register(r.Name)) {
			access := r
			psr = &access
			continue
		}
		if r.Direction == refinst.Read {
			inputs = append(inputs, r)
		} else {
			outputs = append(outputs, r)
		}
	}

	n := 1
	if len(mem) > n {
		n = len(mem)
	}
	if len(outputs) > n {
		n = len(outputs)
	}

	samples := make([]dump.PowerSample, 0, n)
	for i := 0; i < n; i++ {
		s := dump.PowerSample{
			Time: ri.Time, PC_: ri.PC, Opcode_: ri.Opcode,
			Executed: ri.Effect == refinst.Executed, Disassembly: ri.Disassembly, Instr: ri,
		}

		if e.Config.Flags.Has(WithPC) {
			s.PC = e.pcChannel(ri.PC)
		}
		if e.Config.Flags.Has(WithOpcode) {
			s.Opcode = e.opcodeChannel(ri.Opcode)
		}
		if i == 0 {
			if e.Config.Model == HammingWeight && e.Config.Flags.Has(WithInstructionsInputs) {
				var sum float64
				for _, r := range inputs {
					sum += float64(bits.OnesCount64(r.Value))
				}
				s.InstrInputs = sum + e.Noise.Get()
			}
			if psr != nil {
				s.PSR = e.psrChannel(*psr)
			}
		}
		if i < len(mem) {
			m := mem[i]
			if e.Config.Flags.Has(WithMemAddress) {
				s.MemAddress = e.addrChannel(m)
			}
			if e.Config.Flags.Has(WithMemData) {
				data, err := e.dataChannel(m, ri.Time)
				if err != nil {
					return nil, err
				}
				s.MemData = data
			}
			e.updateMemShadow(m)
		}
		if i < len(outputs) && e.Config.Flags.Has(WithInstructionsOutputs) {
			s.InstrOutputs = e.outputChannel(outputs[i])
		}

		s.Total = s.PC*weightPC + s.Opcode*weightOpcode + s.PSR*weightPSR +
			s.InstrOutputs*weightOutputs + s.InstrInputs*weightInputs +
			s.MemData*weightData + s.MemAddress*weightAddr

		samples = append(samples, s)
	}

	if info.Kind == armv7m.Branch || info.Kind == armv7m.Call {
		want, err := e.Arch.Cycles(ri, next)
		if err != nil {
			return nil, err
		}
		for len(samples) < want {
			samples = append(samples, dump.PowerSample{Time: ri.Time, PC_: ri.PC, Opcode_: ri.Opcode})
		}
	}

	return samples, nil
}

func (e *Engine) pcChannel(pc uint64) float64 {
	var v int
	if e.Config.Model == HammingDistance {
		v = bits.OnesCount64(pc ^ e.lastPC)
	} else {
		v = bits.OnesCount64(pc)
	}
	e.lastPC = pc
	return float64(v) + e.Noise.Get()
}

func (e *Engine) opcodeChannel(opcode uint32) float64 {
	var v int
	if e.Config.Model == HammingDistance {
		v = bits.OnesCount32(opcode ^ e.lastOpcode)
	} else {
		v = bits.OnesCount32(opcode)
	}
	e.lastOpcode = opcode
	return float64(v) + e.Noise.Get()
}

func (e *Engine) psrChannel(r refinst.RegisterAccess) float64 {
	name := armv7m.Register(r.Name)
	var v int
	if e.Config.Model == HammingDistance {
		v = bits.OnesCount64(r.Value ^ e.regShadow[name])
	} else {
		v = bits.OnesCount64(r.Value)
	}
	e.regShadow[name] = r.Value
	return float64(v) + e.Noise.Get()
}

func (e *Engine) outputChannel(r refinst.RegisterAccess) float64 {
	name := armv7m.Register(r.Name)
	var v int
	if e.Config.Model == HammingDistance {
		v = bits.OnesCount64(r.Value ^ e.regShadow[name])
	} else {
		v = bits.OnesCount64(r.Value)
	}
	e.regShadow[name] = r.Value
	return float64(v) + e.Noise.Get()
}

// addrChannel computes the address channel. Under Hamming distance,
// each enabled transition basis contributes independently against its
// own shadow and the contributions add.
func (e *Engine) addrChannel(m refinst.MemoryAccess) float64 {
	if e.Config.Model == HammingWeight {
		return float64(bits.OnesCount64(m.Addr)) + e.Noise.Get()
	}
	var total float64
	if e.Config.Flags.Has(WithLoadToLoadTransitions) && m.Direction == refinst.Read && e.haveLoad {
		total += float64(bits.OnesCount64(m.Addr ^ e.lastLoad.Addr))
	}
	if e.Config.Flags.Has(WithStoreToStoreTransitions) && m.Direction == refinst.Write && e.haveStore {
		total += float64(bits.OnesCount64(m.Addr ^ e.lastStore.Addr))
	}
	if e.Config.Flags.Has(WithLastMemoryAccessesTransitions) && e.haveAccess {
		total += float64(bits.OnesCount64(m.Addr ^ e.lastAccess.Addr))
	}
	return total + e.Noise.Get()
}

// dataChannel computes the data channel, additionally consulting the
// oracle for the MemoryUpdate transition basis (the value previously
// held at this exact memory cell, as opposed to the previous value
// seen on a shared bus).
func (e *Engine) dataChannel(m refinst.MemoryAccess, t int64) (float64, error) {
	if e.Config.Model == HammingWeight {
		return float64(bits.OnesCount64(m.Value)) + e.Noise.Get(), nil
	}
	var total float64
	if e.Config.Flags.Has(WithLoadToLoadTransitions) && m.Direction == refinst.Read && e.haveLoad {
		total += float64(bits.OnesCount64(m.Value ^ e.lastLoad.Value))
	}
	if e.Config.Flags.Has(WithStoreToStoreTransitions) && m.Direction == refinst.Write && e.haveStore {
		total += float64(bits.OnesCount64(m.Value ^ e.lastStore.Value))
	}
	if e.Config.Flags.Has(WithLastMemoryAccessesTransitions) && e.haveAccess {
		total += float64(bits.OnesCount64(m.Value ^ e.lastAccess.Value))
	}
	if e.Config.Flags.Has(WithMemoryUpdateTransitions) {
		old, err := e.Oracle.Memory(m.Addr, m.Size, t)
		if err != nil {
			return 0, fmt.Errorf("power: memory-update oracle: %w", err)
		}
		total += float64(bits.OnesCount64(m.Value ^ old))
	}
	return total + e.Noise.Get(), nil
}

// updateMemShadow records m as the most recent access on every bus it
// participates in, copying the access by value so the shadow never
// aliases an instruction's own (eventually discarded) access list.
func (e *Engine) updateMemShadow(m refinst.MemoryAccess) {
	if m.Direction == refinst.Read {
		e.lastLoad, e.haveLoad = m, true
	} else {
		e.lastStore, e.haveStore = m, true
	}
	e.lastAccess, e.haveAccess = m, true
}
