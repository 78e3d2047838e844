package armv7m

import "github.com/paf-go/paf/refinst"

// Decode decodes one reference instruction's architectural attributes:
// kind, addressing mode, and read-register set. Width selects between
// the T16 and T32 tables; any other width, or an encoding that maps to
// UNPREDICTABLE/UNDEFINED, yields a *DecodeError pinpointing the
// failing instruction.
func Decode(ri *refinst.ReferenceInstruction) (InstrInfo, error) {
	var info InstrInfo
	var err error
	switch ri.Width {
	case 16:
		info, err = decodeT16(uint16(ri.Opcode))
	case 32:
		info, err = decodeT32(ri.Opcode)
	default:
		err = ErrBadWidth
	}
	if err != nil {
		return InstrInfo{}, &DecodeError{Time: ri.Time, PC: uint32(ri.PC), Encoding: ri.Opcode, Disasm: ri.Disassembly, Err: err}
	}
	return info, nil
}
