package nparray

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerosOnesIdentity(t *testing.T) {
	z, err := Zeros[uint32](2, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 0, 0, 0, 0}, z.Raw())

	o, err := Ones[int16](2, 2)
	require.NoError(t, err)
	assert.Equal(t, []int16{1, 1, 1, 1}, o.Raw())

	id, err := Identity[float64](3)
	require.NoError(t, err)
	want := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	if diff := deep.Equal(want, id.Raw()); diff != nil {
		t.Errorf("identity mismatch: %v", diff)
	}
}

func TestGetSetOutOfRange(t *testing.T) {
	a, err := New[uint8](2, 2)
	require.NoError(t, err)
	require.NoError(t, a.Set(1, 1, 7))
	v, err := a.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), v)

	_, err = a.Get(5, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestInsertRowColumn(t *testing.T) {
	a, err := FromSlice(2, 2, []uint8{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, a.InsertRow(1))
	assert.Equal(t, 3, a.Rows())
	v, _ := a.Get(0, 0)
	assert.Equal(t, uint8(1), v)
	v, _ = a.Get(2, 1)
	assert.Equal(t, uint8(4), v)

	require.NoError(t, a.InsertColumn(0))
	assert.Equal(t, 3, a.Cols())
}

func TestExtend(t *testing.T) {
	a, _ := FromSlice(1, 2, []int32{1, 2})
	b, _ := FromSlice(1, 2, []int32{3, 4})
	require.NoError(t, a.Extend(b, Row))
	assert.Equal(t, 2, a.Rows())

	c, _ := FromSlice(2, 1, []int32{5, 6})
	require.NoError(t, a.Extend(c, Column))
	assert.Equal(t, 3, a.Cols())

	d, _ := FromSlice(5, 1, []int32{0, 0, 0, 0, 0})
	assert.ErrorIs(t, a.Extend(d, Column), ErrShapeMismatch)
}

func TestViewAs(t *testing.T) {
	a, _ := FromSlice(1, 1, []uint32{0x04030201})
	v, err := ViewAs[uint32, uint8](a)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Rows())
	assert.Equal(t, 4, v.Cols())
	assert.Equal(t, []uint8{0x01, 0x02, 0x03, 0x04}, v.Raw())
}

func TestPredicates(t *testing.T) {
	a, _ := FromSlice(2, 3, []int32{1, 2, 3, 4, 5, 6})
	assert.True(t, a.All(func(v int32) bool { return v > 0 }))
	assert.False(t, a.All(func(v int32) bool { return v > 3 }))
	assert.True(t, a.Any(func(v int32) bool { return v == 6 }))
	assert.True(t, a.None(func(v int32) bool { return v > 100 }))
	assert.Equal(t, 3, a.Count(func(v int32) bool { return v > 3 }))

	ok, err := a.AllInRow(0, func(v int32) bool { return v < 4 })
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMinMax(t *testing.T) {
	a, _ := FromSlice(2, 2, []int32{-5, 3, 2, -9})
	mn, err := a.Min()
	require.NoError(t, err)
	assert.Equal(t, int32(-9), mn)

	mx, loc, err := a.MaxLoc()
	require.NoError(t, err)
	assert.Equal(t, int32(3), mx)
	assert.Equal(t, Location{0, 1}, loc)

	mxAbs, err := a.MaxAbs()
	require.NoError(t, err)
	assert.Equal(t, int32(-9), mxAbs)
}

func TestMaxTieBreaksFirstCell(t *testing.T) {
	a, _ := FromSlice(1, 3, []int32{5, 5, 1})
	_, loc, err := a.MaxLoc()
	require.NoError(t, err)
	assert.Equal(t, Location{0, 0}, loc)
}

// TestMeanAxis checks that mean(ROW) returns one value per row and
// mean(COLUMN) returns one value per column.
func TestMeanAxis(t *testing.T) {
	a, _ := FromSlice(2, 3, []int32{1, 2, 3, 4, 5, 6})

	rowMeans, err := a.MeanAxis(Row)
	require.NoError(t, err)
	assert.Equal(t, 2, rowMeans.Rows())
	assert.Equal(t, 1, rowMeans.Cols())
	assert.InDelta(t, 2.0, rowMeans.MustGet(0, 0), 1e-12)
	assert.InDelta(t, 5.0, rowMeans.MustGet(1, 0), 1e-12)

	colMeans, err := a.MeanAxis(Column)
	require.NoError(t, err)
	assert.Equal(t, 1, colMeans.Rows())
	assert.Equal(t, 3, colMeans.Cols())
	assert.InDelta(t, 2.5, colMeans.MustGet(0, 0), 1e-12)
	assert.InDelta(t, 3.5, colMeans.MustGet(0, 1), 1e-12)
	assert.InDelta(t, 4.5, colMeans.MustGet(0, 2), 1e-12)
}

func TestMeanWithVarWelford(t *testing.T) {
	a, _ := FromSlice(1, 4, []float64{2, 4, 4, 4})
	mean, variance, err := a.MeanWithVarOf(Row, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, mean, 1e-12)
	assert.InDelta(t, 0.75, variance, 1e-12) // ddof=0 population variance
}

func TestApplyUnary(t *testing.T) {
	a, _ := FromSlice(1, 3, []int32{-1, -2, 3})
	a.Abs()
	assert.Equal(t, []int32{1, 2, 3}, a.Raw())
}

func TestApplyScalar(t *testing.T) {
	a, _ := FromSlice(1, 3, []int32{1, 2, 3})
	a.AddScalar(10).MulScalar(2)
	assert.Equal(t, []int32{22, 24, 26}, a.Raw())
}

func TestBroadcastMatrixCol(t *testing.T) {
	m, _ := FromSlice(2, 3, []int32{1, 2, 3, 4, 5, 6})
	col, _ := FromSlice(2, 1, []int32{10, 20})
	require.NoError(t, m.Add(col))
	assert.Equal(t, []int32{11, 12, 13, 24, 25, 26}, m.Raw())
}

func TestBroadcastRowColIllegal(t *testing.T) {
	row, _ := FromSlice(1, 3, []int32{1, 2, 3})
	col, _ := FromSlice(2, 1, []int32{1, 2})
	assert.ErrorIs(t, row.Add(col), ErrShapeMismatch)
}

func TestBroadcastScalarRHS(t *testing.T) {
	m, _ := FromSlice(2, 2, []int32{1, 2, 3, 4})
	scalar, _ := FromSlice(1, 1, []int32{5})
	require.NoError(t, m.Add(scalar))
	assert.Equal(t, []int32{6, 7, 8, 9}, m.Raw())
}

func TestNPYRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vec.npy")

	a, _ := FromSlice(1, 4, []float64{1.0, 2.0, 3.0, 4.0})
	require.NoError(t, a.WriteNPY(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(raw) >= 10)
	assert.Equal(t, "\x93NUMPY\x01\x00", string(raw[:8]))

	back := ReadNPY[float64](path)
	require.True(t, back.Good(), back.Error())
	if diff := deep.Equal(a.Raw(), back.Raw()); diff != nil {
		t.Errorf("round-trip mismatch: %v", diff)
	}
}

func TestNPYRoundTripUint16Shapes(t *testing.T) {
	dir := t.TempDir()
	shapes := [][2]int{{1, 1}, {1, 5}, {3, 1}, {4, 7}}
	for _, shp := range shapes {
		r, c := shp[0], shp[1]
		buf := make([]uint16, r*c)
		for i := range buf {
			buf[i] = uint16(i * 3)
		}
		a, _ := FromSlice(r, c, buf)
		path := filepath.Join(dir, "u16.npy")
		require.NoError(t, a.WriteNPY(path))
		back := ReadNPY[uint16](path)
		require.True(t, back.Good(), back.Error())
		assert.Equal(t, r, back.Rows())
		assert.Equal(t, c, back.Cols())
		assert.Equal(t, a.Raw(), back.Raw())
	}
}

func TestNPYBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.npy")
	require.NoError(t, os.WriteFile(path, []byte("not an npy file at all"), 0o644))
	a := ReadNPY[float64](path)
	assert.False(t, a.Good())
	assert.Contains(t, a.Error(), "bad .npy magic")
}

func TestNPYTypeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.npy")
	a, _ := FromSlice(1, 2, []float32{1, 2})
	require.NoError(t, a.WriteNPY(path))
	back := ReadNPY[uint8](path)
	assert.False(t, back.Good())
}

func TestFromFiles(t *testing.T) {
	dir := t.TempDir()
	a, _ := FromSlice(1, 2, []int32{1, 2})
	b, _ := FromSlice(1, 2, []int32{3, 4})
	pa, pb := filepath.Join(dir, "a.npy"), filepath.Join(dir, "b.npy")
	require.NoError(t, a.WriteNPY(pa))
	require.NoError(t, b.WriteNPY(pb))

	cat, err := FromFiles[int32]([]string{pa, pb}, Row)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Rows())
	assert.Equal(t, []int32{1, 2, 3, 4}, cat.Raw())
}
