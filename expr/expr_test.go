package expr

import (
	"testing"

	"github.com/paf-go/paf/nparray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantMasksToType(t *testing.T) {
	c := NewConstant(0x1FF, U8)
	assert.Equal(t, uint64(0xFF), c.Eval().Uint64())
	assert.Equal(t, U8, c.Type())
}

func TestNotInvolution(t *testing.T) {
	c := NewConstant(0x5A, U8)
	n1 := NewNot(c)
	n2 := NewNot(n1)
	assert.Equal(t, c.Eval().Uint64(), n2.Eval().Uint64())
}

func TestTruncateRequiresNarrower(t *testing.T) {
	c := NewConstant(0x1234, U16)
	_, err := NewTruncate(U8, c)
	require.NoError(t, err)

	_, err = NewTruncate(U32, c)
	assert.Error(t, err)
}

func TestTruncateChain(t *testing.T) {
	c := NewConstant(0x1234ABCD, U32)
	t16, err := NewTruncate(U16, c)
	require.NoError(t, err)
	t8a, err := NewTruncate(U8, t16)
	require.NoError(t, err)
	t8b, err := NewTruncate(U8, c)
	require.NoError(t, err)
	assert.Equal(t, t8b.Eval().Uint64(), t8a.Eval().Uint64())
}

func TestAESSBoxRoundTrip(t *testing.T) {
	for x := 0; x < 256; x++ {
		c := NewConstant(uint64(x), U8)
		fwd, err := NewAESSBox(c)
		require.NoError(t, err)
		inv, err := NewAESISBox(fwd)
		require.NoError(t, err)
		assert.Equal(t, uint64(x), inv.Eval().Uint64())
	}
}

func TestAESSBoxRequiresU8(t *testing.T) {
	c := NewConstant(5, U16)
	_, err := NewAESSBox(c)
	assert.Error(t, err)
}

func TestAESSBoxKnownValue(t *testing.T) {
	c := NewConstant(0x53, U8)
	s, err := NewAESSBox(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xED), s.Eval().Uint64())
}

func TestBinaryOpTypeMismatch(t *testing.T) {
	a := NewConstant(1, U8)
	b := NewConstant(1, U16)
	_, err := NewXor(a, b)
	assert.Error(t, err)
}

func TestShiftRotateIdentity(t *testing.T) {
	x := NewConstant(0x3C, U8)
	n := NewConstant(3, U8)
	wMinusN := NewConstant(5, U8)

	lsl, err := NewLsl(x, n)
	require.NoError(t, err)
	lsr, err := NewLsr(x, wMinusN)
	require.NoError(t, err)
	or, err := NewOr(lsl, lsr)
	require.NoError(t, err)

	want := ((0x3C << 3) | (0x3C >> 5)) & 0xFF
	assert.Equal(t, uint64(want), or.Eval().Uint64())
}

func TestAsrSignFill(t *testing.T) {
	x := NewConstant(0x80, U8) // -128 as signed 8-bit
	n := NewConstant(4, U8)
	asr, err := NewAsr(x, n)
	require.NoError(t, err)
	// -128 >> 4 (arithmetic) == -8 == 0xF8 masked to u8.
	assert.Equal(t, uint64(0xF8), asr.Eval().Uint64())
}

func TestParseLiteralAndOps(t *testing.T) {
	ctx := NewContext[uint8](U8)
	e, err := Parse[uint8](ctx, "aes_sbox(83_u8)")
	require.NoError(t, err)
	assert.Equal(t, uint64(237), e.Eval().Uint64())
}

func TestParseVariable(t *testing.T) {
	arr, err := nparray.FromSlice(2, 2, []uint8{10, 20, 30, 40})
	require.NoError(t, err)
	ctx := NewContext[uint8](U8)
	ctx.Bind("x", arr)

	e, err := Parse[uint8](ctx, "$x[1]")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), e.Eval().Uint64())

	ctx.Advance()
	assert.Equal(t, uint64(40), e.Eval().Uint64())

	ctx.Reset()
	assert.Equal(t, uint64(20), e.Eval().Uint64())
}

func TestParseUnknownVariable(t *testing.T) {
	ctx := NewContext[uint8](U8)
	_, err := Parse[uint8](ctx, "$missing[0]")
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestParseNestedAndWhitespace(t *testing.T) {
	ctx := NewContext[uint8](U8)
	e, err := Parse[uint8](ctx, "  xor( not(1_u8) , and(3_u8, 12_u8) ) ")
	require.NoError(t, err)
	want := (^uint8(1)) ^ (uint8(3) & uint8(12))
	assert.Equal(t, uint64(want), e.Eval().Uint64())
}

func TestParseSyntaxErrors(t *testing.T) {
	ctx := NewContext[uint8](U8)
	cases := []string{"", "1_u9", "not(1_u8", "bogus(1_u8)", "not(1_u8, 2_u8)"}
	for _, c := range cases {
		_, err := Parse[uint8](ctx, c)
		assert.Error(t, err, c)
	}
}
