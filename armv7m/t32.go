package armv7m

import "fmt"

// decodeT32 dispatches a 32-bit Thumb-2 instruction, nested on op1 =
// bits[28:27] and op2 = bits[26:20] of the combined word, per the
// architecture's top-level T32 group table.
func decodeT32(w uint32) (InstrInfo, error) {
	op1 := bits(w, 28, 27)
	op2 := bits(w, 26, 20)

	switch op1 {
	case 0b01:
		switch {
		case op2&0b1100100 == 0b0000000:
			return decodeLoadStoreMultipleT32(w)
		case op2&0b1100100 == 0b0000100:
			return decodeLoadStoreDualExclTableBranch(w)
		case op2&0b1100000 == 0b0100000:
			return decodeDataProcessingShiftedReg(w)
		case op2&0b1000000 == 0b1000000:
			return decodeCoprocessor(w)
		default:
			return empty, nil
		}
	case 0b10:
		if bit(w, 15) == 0 {
			if op2&0b0100000 == 0 {
				return decodeDataProcessingModifiedImm(w)
			}
			return decodeDataProcessingPlainImm(w)
		}
		return decodeBranchAndMisc(w)
	case 0b11:
		switch {
		case op2&0b1110001 == 0b0000000:
			return decodeStoreSingle(w)
		case op2&0b1100111 == 0b0000001, op2&0b1100111 == 0b0000011:
			return decodeLoadByteOrHint(w)
		case op2&0b1100111 == 0b0000101:
			return decodeLoadHalfword(w)
		case op2&0b1100111 == 0b0000111:
			return decodeLoadWord(w)
		case op2&0b1110000 == 0b0010000:
			return decodeDataProcessingReg(w)
		case op2&0b1111000 == 0b0110000:
			return decodeMultiplyMAC(w)
		case op2&0b1111000 == 0b0111000:
			return decodeLongMultiplyDivide(w)
		case op2&0b1000000 == 0b1000000:
			return decodeCoprocessor(w)
		default:
			return empty, nil
		}
	default:
		return empty, fmt.Errorf("%w: op1=%#03b is not a valid T32 prefix", ErrUndefined, op1)
	}
}

// decodeLoadStoreMultipleT32 handles LDM/STM/PUSH/POP/RFE/SRS and the
// coprocessor-transfer variants sharing this group.
func decodeLoadStoreMultipleT32(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	isLoad := bit(w, 20) == 1
	am := AddressingMode{Offset: Immediate, Update: PostIndexed}
	if bit(w, 21) == 0 {
		am.Update = PreIndexed
	}
	if isLoad {
		return good(Load, []Register{rn}, nil, am)
	}
	return good(Store, []Register{rn}, nil, am)
}

// decodeLoadStoreDualExclTableBranch handles LDRD/STRD, LDREX/STREX
// (and their byte/half/doubleword forms), and TBB/TBH.
func decodeLoadStoreDualExclTableBranch(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	op1 := bits(w, 24, 23)
	op3 := bits(w, 7, 4)
	if op1 == 0b01 && bit(w, 20) == 1 && op3 == 0b0000 {
		// TBB/TBH Rn,[Rm]: a table-driven branch.
		rm := reg(bits(w, 3, 0))
		return good(Branch, []Register{rn, rm}, []Register{PC}, AddressingMode{})
	}
	isLoad := bit(w, 20) == 1
	am := AddressingMode{Offset: Immediate, Update: AddrOffset}
	switch bits(w, 24, 23) {
	case 0b01, 0b11:
		am.Update = AddrOffset
	case 0b10, 0b00:
		if bit(w, 24) == 1 {
			am.Update = PreIndexed
		} else {
			am.Update = Unindexed
			am.Offset = NoAccess
		}
	}
	if !am.IsValid() {
		am = AddressingMode{Offset: Immediate, Update: AddrOffset}
	}
	if isLoad {
		return good(Load, []Register{rn}, nil, am)
	}
	rt2 := reg(bits(w, 11, 8))
	rt := reg(bits(w, 15, 12))
	return good(Store, []Register{rt, rt2, rn}, nil, am)
}

// decodeDataProcessingShiftedReg handles AND/BIC/ORR/ORN/EOR/ADD/ADC/
// SBC/SUB/RSB (register, optionally shifted) and TST/TEQ/CMN/CMP.
func decodeDataProcessingShiftedReg(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	rm := reg(bits(w, 3, 0))
	implicit := []Register{}
	if bit(w, 20) == 1 {
		implicit = append(implicit, CPSR)
	}
	return good(None, []Register{rn, rm}, implicit, AddressingMode{})
}

// decodeDataProcessingModifiedImm handles AND/BIC/ORR/ORN/EOR/ADD/ADC/
// SBC/SUB/RSB with a modified (rotated) 12-bit immediate.
func decodeDataProcessingModifiedImm(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	implicit := []Register{}
	if bit(w, 20) == 1 {
		implicit = append(implicit, CPSR)
	}
	return good(None, []Register{rn}, implicit, AddressingMode{})
}

// decodeDataProcessingPlainImm handles ADDW/SUBW/MOVW/MOVT/SBFX/BFI/
// BFC/UBFX with a plain (non-rotated) binary immediate.
func decodeDataProcessingPlainImm(w uint32) (InstrInfo, error) {
	rn := bits(w, 19, 16)
	if rn == 0b1111 {
		// ADR-style PC-relative form: no register read, just PC.
		return good(None, nil, []Register{PC}, AddressingMode{})
	}
	return good(None, []Register{reg(rn)}, nil, AddressingMode{})
}

// decodeBranchAndMisc handles B (T3/T4), BL/BLX, MSR/MRS, and the
// hint/barrier space (NOP/YIELD/WFE/WFI/SEV/DSB/DMB/ISB/CLREX).
func decodeBranchAndMisc(w uint32) (InstrInfo, error) {
	op := bits(w, 25, 20)
	switch {
	case bit(w, 12) == 1:
		// B.W unconditional (T4) / BL.
		if bit(w, 14) == 1 && bit(w, 12) == 1 {
			return good(Call, nil, []Register{PC, LR}, AddressingMode{})
		}
		return good(Branch, nil, []Register{PC}, AddressingMode{})
	case bits(w, 14, 12) == 0b000 && op&0b111000 != 0b111000:
		// B.W conditional (T3): reads CPSR to evaluate its condition.
		return good(Branch, nil, []Register{PC, CPSR}, AddressingMode{})
	case op == 0b111000 || op == 0b111001:
		// MSR: writes CPSR from a register, doesn't branch.
		rn := reg(bits(w, 19, 16))
		return good(None, []Register{rn}, nil, AddressingMode{})
	case op == 0b111111:
		// Miscellaneous control hints: no register operands.
		return good(None, nil, nil, AddressingMode{})
	case op == 0b111110:
		// MRS: reads CPSR into a register.
		return good(None, nil, []Register{CPSR}, AddressingMode{})
	default:
		return empty, nil
	}
}

// decodeStoreSingle handles STRB/STRH/STR (register, immediate, and
// unprivileged forms).
func decodeStoreSingle(w uint32) (InstrInfo, error) {
	rt := reg(bits(w, 15, 12))
	rn := reg(bits(w, 19, 16))
	am, err := storeSingleAddressingMode(w)
	if err != nil {
		return empty, err
	}
	explicit := []Register{rt, rn}
	if am.Offset == RegisterOffset {
		explicit = append(explicit, reg(bits(w, 3, 0)))
	}
	if bits(w, 19, 16) == 0b1111 {
		return empty, fmt.Errorf("%w: STR with Rn=PC is UNDEFINED", ErrUndefined)
	}
	return good(Store, explicit, nil, am)
}

func storeSingleAddressingMode(w uint32) (AddressingMode, error) {
	imm12 := bit(w, 23) == 1
	bit11 := bit(w, 11) == 1
	p := bit(w, 10) == 1
	wb := bit(w, 8) == 1
	return addressingModeFor(imm12, bit11, p, wb)
}

// decodeLoadByteOrHint handles LDRB/LDRSB (register, immediate,
// literal) and the PLD/PLI preload hints sharing this group.
func decodeLoadByteOrHint(w uint32) (InstrInfo, error) {
	return decodeLoadSingle(w)
}

// decodeLoadHalfword handles LDRH/LDRSH (register, immediate, literal).
func decodeLoadHalfword(w uint32) (InstrInfo, error) {
	return decodeLoadSingle(w)
}

// decodeLoadWord handles LDR (register, immediate, literal).
func decodeLoadWord(w uint32) (InstrInfo, error) {
	return decodeLoadSingle(w)
}

func decodeLoadSingle(w uint32) (InstrInfo, error) {
	rn := bits(w, 19, 16)
	if rn == 0b1111 {
		// Literal-pool form: PC-relative, no base register read.
		return good(Load, nil, []Register{PC}, AddressingMode{Offset: Immediate, Update: AddrOffset})
	}
	am, err := storeSingleAddressingMode(w)
	if err != nil {
		return empty, err
	}
	explicit := []Register{reg(rn)}
	if am.Offset == RegisterOffset {
		explicit = append(explicit, reg(bits(w, 3, 0)))
	}
	return good(Load, explicit, nil, am)
}

// decodeDataProcessingReg handles shift-by-register (LSL/LSR/ASR/ROR),
// sign/zero extension, parallel add/sub (signed/unsigned, saturating,
// halving), and SEL/byte-reverse.
func decodeDataProcessingReg(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	rm := reg(bits(w, 3, 0))
	implicit := []Register{}
	if bits(w, 7, 4) == 0b0000 && bit(w, 20) == 1 {
		implicit = append(implicit, CPSR)
	}
	return good(None, []Register{rn, rm}, implicit, AddressingMode{})
}

// decodeMultiplyMAC handles MUL/MLA/MLS and their signed-halfword
// variants (short 32-bit multiply, accumulator in Ra).
func decodeMultiplyMAC(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	rm := reg(bits(w, 3, 0))
	ra := bits(w, 15, 12)
	explicit := []Register{rn, rm}
	if ra != 0b1111 { // 1111 encodes plain MUL with no accumulator
		explicit = append(explicit, reg(ra))
	}
	return good(None, explicit, nil, AddressingMode{})
}

// decodeLongMultiplyDivide handles SMULL/UMULL/SMLAL/UMLAL (64-bit
// results across RdLo:RdHi) and SDIV/UDIV.
func decodeLongMultiplyDivide(w uint32) (InstrInfo, error) {
	rn := reg(bits(w, 19, 16))
	rm := reg(bits(w, 3, 0))
	lOp1 := bits(w, 22, 20)
	explicit := []Register{rn, rm}
	if lOp1 == 0b100 || lOp1 == 0b110 {
		// SMLAL (lOp1=0x4, including its BB/BT/TB/TT/D/DX sub-variants)
		// and UMLAL/UMAAL (lOp1=0x6) additionally read the RdLo:RdHi
		// accumulator pair; SMULL/UMULL/SDIV/UDIV do not.
		rdLo := reg(bits(w, 15, 12))
		rdHi := reg(bits(w, 11, 8))
		explicit = append(explicit, rdLo, rdHi)
	}
	return good(None, explicit, nil, AddressingMode{})
}

// decodeCoprocessor handles generic coprocessor data operations and
// transfers (CDP/MCR/MRC/MCRR/MRRC/LDC/STC), out of scope for the
// integer-register Hamming-weight power model: this decoder reports
// no register operands for them other than the base register of an
// LDC/STC memory transfer.
func decodeCoprocessor(w uint32) (InstrInfo, error) {
	if bit(w, 25) == 0 {
		// LDC/STC: coprocessor memory transfer.
		rn := reg(bits(w, 19, 16))
		isLoad := bit(w, 20) == 1
		am, err := addressingModeFor(true, true, bit(w, 24) == 1, bit(w, 21) == 1)
		if err != nil {
			return empty, err
		}
		if isLoad {
			return good(Load, []Register{rn}, nil, am)
		}
		return good(Store, []Register{rn}, nil, am)
	}
	return good(None, nil, nil, AddressingMode{})
}
