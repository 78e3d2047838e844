package armv7m

import (
	"fmt"

	"github.com/paf-go/paf/refinst"
)

// ArchInfo is the architecture-description surface a power synthesis
// engine needs: a NOP encoding, a cycle-count estimate, the register
// set (by id and by name), and the decoder entry point itself. One
// concrete implementation exists per supported ISA; this package
// provides V7MInfo for ARMv7-M.
type ArchInfo interface {
	NOP(instrSizeBytes int) uint32
	IsBranch(ri *refinst.ReferenceInstruction) (bool, error)
	Cycles(ri, next *refinst.ReferenceInstruction) (int, error)
	NumRegisters() int
	RegisterName(id int) (Register, error)
	RegisterID(name Register) (int, error)
	IsStatusRegister(name Register) bool
	InstrInfo(ri *refinst.ReferenceInstruction) (InstrInfo, error)
	Description() string
}

// v7mRegisterOrder fixes a stable register-id table: index position is
// the id, matching the order the original architecture description
// enumerates its register enum.
var v7mRegisterOrder = []Register{
	R0, R1, R2, R3, R4, R5, R6, R7, R8, R9, R10, R11, R12, SP, LR, PC, CPSR,
}

// V7MInfo is the ArchInfo implementation for ARMv7-M (Thumb16/Thumb32).
type V7MInfo struct{}

// NOP returns the canonical ARMv7-M NOP encoding for the given
// instruction width in bytes: 0xBF00 for a 16-bit NOP, 0xF3AF8000 for
// the 32-bit wide NOP.W form.
func (V7MInfo) NOP(instrSizeBytes int) uint32 {
	if instrSizeBytes == 4 {
		return 0xF3AF8000
	}
	return 0xBF00
}

// IsBranch reports whether ri decodes to a Branch or Call.
func (v V7MInfo) IsBranch(ri *refinst.ReferenceInstruction) (bool, error) {
	info, err := v.InstrInfo(ri)
	if err != nil {
		return false, err
	}
	return info.Kind == Branch || info.Kind == Call, nil
}

// Cycles estimates the cycle cost of ri, optionally accounting for a
// following instruction. This is a simplified, single-issue
// Cortex-M-class model: 1 cycle for a register-only instruction, 2 for
// a memory access, and for a branch/call 2 when next is given or 3
// when next is nil. The kind of next is not inspected.
func (v V7MInfo) Cycles(ri, next *refinst.ReferenceInstruction) (int, error) {
	info, err := v.InstrInfo(ri)
	if err != nil {
		return 0, err
	}
	switch info.Kind {
	case Load, Store:
		return 2, nil
	case Branch, Call:
		if next != nil {
			return 2, nil
		}
		return 3, nil
	default:
		return 1, nil
	}
}

// NumRegisters returns the size of the ARMv7-M register-id table
// (r0-r12, SP, LR, PC, CPSR).
func (V7MInfo) NumRegisters() int { return len(v7mRegisterOrder) }

// RegisterName maps an id back to its Register.
func (V7MInfo) RegisterName(id int) (Register, error) {
	if id < 0 || id >= len(v7mRegisterOrder) {
		return "", fmt.Errorf("armv7m: register id %d out of range [0,%d)", id, len(v7mRegisterOrder))
	}
	return v7mRegisterOrder[id], nil
}

// RegisterID maps a Register to its stable id.
func (V7MInfo) RegisterID(name Register) (int, error) {
	for i, r := range v7mRegisterOrder {
		if r == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("armv7m: unknown register %q", name)
}

// IsStatusRegister reports whether name is the flag/status register.
func (V7MInfo) IsStatusRegister(name Register) bool {
	return name == CPSR
}

// InstrInfo decodes ri's architectural attributes.
func (V7MInfo) InstrInfo(ri *refinst.ReferenceInstruction) (InstrInfo, error) {
	return Decode(ri)
}

// Description names this ArchInfo implementation.
func (V7MInfo) Description() string { return "Arm V7M ISA" }
