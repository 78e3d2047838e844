package refinst

import "sort"

// Effect distinguishes a normally-executed instruction from one that was
// predicated out (its encoding occupied a trace slot but had no
// architectural effect).
type Effect int

const (
	Executed Effect = iota
	PredicatedOut
)

// TraceSite identifies a point in a trace: a monotone time plus the PC
// executing there.
type TraceSite struct {
	Time int64
	PC   uint64
}

// ReferenceInstruction is one executed instruction folded from a trace:
// its identity (time, pc, encoding), its trimmed disassembly, whether it
// actually took effect, its sorted memory-access list, and its sorted,
// deduplicated register-access list.
type ReferenceInstruction struct {
	Time          int64
	PC            uint64
	InstructionSet string
	Width         int // 16 or 32
	Opcode        uint32
	Disassembly   string
	Effect        Effect

	mem []MemoryAccess
	reg []RegisterAccess
}

// New starts a fresh ReferenceInstruction for one instruction event.
func New(time int64, pc uint64, instructionSet string, width int, opcode uint32, disasm string, effect Effect) *ReferenceInstruction {
	return &ReferenceInstruction{
		Time: time, PC: pc, InstructionSet: instructionSet,
		Width: width, Opcode: opcode, Disassembly: disasm, Effect: effect,
	}
}

// MemoryAccesses returns the instruction's memory accesses in ascending
// order.
func (r *ReferenceInstruction) MemoryAccesses() []MemoryAccess { return r.mem }

// RegisterAccesses returns the instruction's register accesses in
// ascending, deduplicated order.
func (r *ReferenceInstruction) RegisterAccesses() []RegisterAccess { return r.reg }

// AddMemoryAccess inserts m in sorted position. Unlike register accesses,
// memory accesses are not deduplicated: two accesses to the same
// (addr,size,direction) within one instruction are both real events
// (e.g. a multiple-access STM).
func (r *ReferenceInstruction) AddMemoryAccess(m MemoryAccess) error {
	if err := validSize(m.Size); err != nil {
		return err
	}
	i := sort.Search(len(r.mem), func(i int) bool { return !r.mem[i].Less(m) })
	r.mem = append(r.mem, MemoryAccess{})
	copy(r.mem[i+1:], r.mem[i:])
	r.mem[i] = m
	return nil
}

// AddRegisterAccess inserts r2 in sorted position, dropping it if an
// equal access (same name, same direction) is already present: this
// models aliased register names appearing twice for the same physical
// read/write in the source trace.
func (r *ReferenceInstruction) AddRegisterAccess(r2 RegisterAccess) {
	i := sort.Search(len(r.reg), func(i int) bool { return !r.reg[i].Less(r2) })
	if i < len(r.reg) && r.reg[i].Equal(r2) {
		return
	}
	r.reg = append(r.reg, RegisterAccess{})
	copy(r.reg[i+1:], r.reg[i:])
	r.reg[i] = r2
}
