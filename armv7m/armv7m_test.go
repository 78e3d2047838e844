package armv7m

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/paf-go/paf/refinst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeHalfword(t *testing.T, op uint16) InstrInfo {
	t.Helper()
	info, err := decodeT16(op)
	require.NoError(t, err)
	return info
}

func TestShiftImmediateReadsRm(t *testing.T) {
	// LSLS r0, r1, #0
	info := decodeHalfword(t, 0x0008)
	assert.Equal(t, None, info.Kind)
	assert.Contains(t, info.ExplicitReads, R1)
}

func TestAddRegisterReadsBothOperands(t *testing.T) {
	// ADDS r0, r1, r2
	info := decodeHalfword(t, 0x1888)
	assert.Equal(t, None, info.Kind)
	assert.Contains(t, info.ExplicitReads, R1)
	assert.Contains(t, info.ExplicitReads, R2)
}

func TestMovImmediateHasNoExplicitReads(t *testing.T) {
	// MOVS r3, #5
	info := decodeHalfword(t, 0x2305)
	assert.Equal(t, None, info.Kind)
	assert.Empty(t, info.ExplicitReads)
}

func TestBXLinkRegisterIsABranch(t *testing.T) {
	// BX LR, the well-known function-return encoding.
	info := decodeHalfword(t, 0x4770)
	assert.Equal(t, Branch, info.Kind)
	assert.Contains(t, info.ExplicitReads, LR)
	assert.Contains(t, info.ImplicitReads, PC)
	assert.False(t, info.AddressingMode.IsValid())
}

func TestBLXSetsCallAndLR(t *testing.T) {
	// BLX r0: opc=11, H1=1.
	info := decodeHalfword(t, 0x4780)
	assert.Equal(t, Call, info.Kind)
	assert.Contains(t, info.ImplicitReads, PC)
	assert.Contains(t, info.ImplicitReads, LR)
}

func TestBkptHasNoneKind(t *testing.T) {
	info := decodeHalfword(t, 0xBE00)
	assert.Equal(t, None, info.Kind)
	assert.False(t, info.AddressingMode.IsValid())
}

func TestUnconditionalBranchReadsCPSR(t *testing.T) {
	// B #0, the unconditional branch form: implicit PC plus the
	// over-approximated CPSR read (see DESIGN.md).
	info := decodeHalfword(t, 0xE000)
	assert.Equal(t, Branch, info.Kind)
	assert.Contains(t, info.ImplicitReads, PC)
	assert.Contains(t, info.ImplicitReads, CPSR)
}

func TestMovImmediateInstrInfoShape(t *testing.T) {
	got := decodeHalfword(t, 0x2305)
	want := InstrInfo{Kind: None}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("unexpected InstrInfo shape: %v\nstate: %s", diff, spew.Sdump(got))
	}
}

func TestT32PrefixRejectedAsT16(t *testing.T) {
	_, err := decodeT16(0xF000) // bits15:11 = 11110, a BL/BLX T32 prefix
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestAddressingModeForTable(t *testing.T) {
	am, err := addressingModeFor(true, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, AddressingMode{Offset: Immediate, Update: AddrOffset}, am)

	am, err = addressingModeFor(false, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, AddressingMode{Offset: RegisterOffset, Update: AddrOffset}, am)

	am, err = addressingModeFor(false, true, true, false)
	require.NoError(t, err)
	assert.Equal(t, Immediate, am.Offset)
	assert.Equal(t, AddrOffset, am.Update)

	am, err = addressingModeFor(false, true, true, true)
	require.NoError(t, err)
	assert.Equal(t, PreIndexed, am.Update)

	am, err = addressingModeFor(false, true, false, true)
	require.NoError(t, err)
	assert.Equal(t, PostIndexed, am.Update)

	_, err = addressingModeFor(false, true, false, false)
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestGoodRejectsInvalidCombinations(t *testing.T) {
	_, err := good(Load, nil, nil, AddressingMode{})
	assert.Error(t, err)

	_, err = good(None, nil, nil, AddressingMode{Offset: Immediate, Update: AddrOffset})
	assert.Error(t, err)

	_, err = good(Branch, nil, nil, AddressingMode{})
	assert.Error(t, err)
}

func TestDecodeDispatchesOnWidth(t *testing.T) {
	ri16 := refinst.New(0, 0x100, "T16", 16, 0x4770, "BX LR", refinst.Executed)
	info, err := Decode(ri16)
	require.NoError(t, err)
	assert.Equal(t, Branch, info.Kind)

	riBad := refinst.New(0, 0x100, "T16", 24, 0, "???", refinst.Executed)
	_, err = Decode(riBad)
	assert.ErrorIs(t, err, ErrBadWidth)
}

func TestV7MInfoRegisterTable(t *testing.T) {
	v := V7MInfo{}
	assert.Equal(t, 17, v.NumRegisters())

	id, err := v.RegisterID(PC)
	require.NoError(t, err)
	name, err := v.RegisterName(id)
	require.NoError(t, err)
	assert.Equal(t, PC, name)

	assert.True(t, v.IsStatusRegister(CPSR))
	assert.False(t, v.IsStatusRegister(R0))
}

func TestV7MInfoCyclesAndBranch(t *testing.T) {
	v := V7MInfo{}
	ri := refinst.New(0, 0x100, "T16", 16, 0x4770, "BX LR", refinst.Executed)

	isBranch, err := v.IsBranch(ri)
	require.NoError(t, err)
	assert.True(t, isBranch)

	cycles, err := v.Cycles(ri, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cycles)
}

func TestT32SMLALReadsRdLoRdHiAccumulatorPair(t *testing.T) {
	// SMLAL r0, r1, r2, r3: Rdlo=r0, Rdhi=r1, Rn=r2, Rm=r3.
	// hw1 = 1111 1011 1100 0010 (lOp1=0x4 selects the SMLAL group),
	// hw2 = 0000 0001 0000 0011 (lOp2=0x0, the plain SMLAL form).
	var w uint32 = 0xFBC20103
	info, err := decodeT32(w)
	require.NoError(t, err)
	assert.Contains(t, info.ExplicitReads, R0)
	assert.Contains(t, info.ExplicitReads, R1)
	assert.Contains(t, info.ExplicitReads, R2)
	assert.Contains(t, info.ExplicitReads, R3)
}

func TestT32SMULLDoesNotReadAccumulatorPair(t *testing.T) {
	// SMULL r0, r1, r2, r3: same operand layout as the SMLAL test above,
	// but lOp1=0x0 (hw1 = 1111 1011 1000 0010) selects the plain
	// non-accumulating form, which reads only Rn and Rm.
	var w uint32 = 0xFB820103
	info, err := decodeT32(w)
	require.NoError(t, err)
	assert.Contains(t, info.ExplicitReads, R2)
	assert.Contains(t, info.ExplicitReads, R3)
	assert.NotContains(t, info.ExplicitReads, R0)
	assert.NotContains(t, info.ExplicitReads, R1)
}

func TestT32DataProcessingShiftedRegReadsOperands(t *testing.T) {
	// ADD.W r0, r1, r2: op1=01 and op2=0110000 (bits28:27 and 26:20 of
	// 0xEB01), the data-processing (shifted register) group; Rn=r1, Rm=r2.
	var w uint32 = 0xEB010002
	info, err := decodeT32(w)
	require.NoError(t, err)
	assert.Equal(t, None, info.Kind)
	assert.Contains(t, info.ExplicitReads, R1)
	assert.Contains(t, info.ExplicitReads, R2)
}
