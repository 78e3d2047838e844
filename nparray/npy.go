package nparray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// headerRE parses the fixed-form NumPy v1 header dictionary:
//
//	{'descr': '<TY', 'fortran_order': False, 'shape': (R, C,), }
//
// accepting a 1-D shape (R,) or (R) and an optional trailing comma.
var headerRE = regexp.MustCompile(`^\{\s*'descr'\s*:\s*'([^']*)'\s*,\s*'fortran_order'\s*:\s*(True|False)\s*,\s*'shape'\s*:\s*\(([^)]*)\)\s*,?\s*\}`)

// WriteNPY writes a to path in the canonical NumPy v1 format described in
// the external-interfaces section: magic, version 1.0, a little-endian u16
// header length, an ASCII header dictionary padded with spaces and
// terminated by '\n' such that 10+L is a multiple of 16, followed by the
// raw little-endian row-major payload.
func (a *NPArray[T]) WriteNPY(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nparray: create %s: %w", path, err)
	}
	defer f.Close()
	return a.WriteNPYTo(f)
}

// WriteNPYTo writes the canonical .npy encoding of a to w.
func (a *NPArray[T]) WriteNPYTo(w io.Writer) error {
	if !a.Good() {
		return fmt.Errorf("nparray: cannot write array in error state: %s", a.err)
	}
	ty, err := descr[T]()
	if err != nil {
		return err
	}
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%d, %d,), }", ty, a.rows, a.cols)
	// Pad with spaces and a trailing newline so that 10+len(header) % 16 == 0.
	total := 10 + len(dict) + 1
	pad := 0
	if rem := total % 16; rem != 0 {
		pad = 16 - rem
	}
	dict = dict + strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.WriteByte(1) // major version
	buf.WriteByte(0) // minor version
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(dict)))
	buf.Write(lenBuf[:])
	buf.WriteString(dict)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("nparray: write .npy header: %w", err)
	}
	payload := make([]byte, len(a.data)*a.ElemSize())
	encodeLE(payload, a.data)
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("nparray: write .npy payload: %w", err)
	}
	return nil
}

// ReadNPY reads a .npy file of element type T. On any I/O or format error
// the returned *NPArray is in the error state (Good()==false) with a short
// diagnostic from Error(); it never returns a nil *NPArray so callers can
// always ask Good()/Error() without a prior nil check.
func ReadNPY[T Numeric](path string) *NPArray[T] {
	f, err := os.Open(path)
	if err != nil {
		a := &NPArray[T]{}
		a.setErr("nparray: open %s: %v", path, err)
		return a
	}
	defer f.Close()
	return ReadNPYFrom[T](f)
}

// ReadNPYFrom reads a .npy stream of element type T from r.
func ReadNPYFrom[T Numeric](r io.Reader) *NPArray[T] {
	a := &NPArray[T]{}
	rows, cols, ty, payload, err := parseNPY(r)
	if err != nil {
		a.setErr("%v", err)
		return a
	}
	wantTy, _ := descr[T]()
	wantTy = strings.TrimPrefix(wantTy, "<")
	if ty != wantTy {
		a.setErr("%v: file has %q, requested %q", ErrTypeMismatch, ty, wantTy)
		return a
	}
	sz, err := descrSize(ty)
	if err != nil {
		a.setErr("%v", err)
		return a
	}
	want := rows * cols * sz
	if len(payload) != want {
		a.setErr("%v: payload is %d bytes, shape (%d,%d) of %q needs %d", ErrBadHeader, len(payload), rows, cols, ty, want)
		return a
	}
	data := make([]T, rows*cols)
	decodeLE(payload, data)
	a.rows, a.cols, a.data = rows, cols, data
	return a
}

// ReadAs reads a .npy file of any supported numeric element type U and
// element-wise casts it into T, returning an NPArray in the error state on
// any I/O or format failure.
func ReadAs[T, U Numeric](path string) *NPArray[T] {
	src := ReadNPY[U](path)
	if !src.Good() {
		a := &NPArray[T]{}
		a.setErr("%s", src.Error())
		return a
	}
	return Convert[U, T](src)
}

// Convert performs an element-wise static-cast of src into a new NPArray of
// element type U.
func Convert[T, U Numeric](src *NPArray[T]) *NPArray[U] {
	out := make([]U, len(src.data))
	for i, v := range src.data {
		out[i] = U(v)
	}
	a := &NPArray[U]{rows: src.rows, cols: src.cols, data: out}
	return a
}

// FromFiles reads and concatenates a list of .npy files of element type T
// along axis. Every file must share element type T and the size of the
// perpendicular dimension.
func FromFiles[T Numeric](paths []string, axis Axis) (*NPArray[T], error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("nparray: FromFiles needs at least one path")
	}
	out := ReadNPY[T](paths[0])
	if !out.Good() {
		return nil, fmt.Errorf("nparray: %s: %s", paths[0], out.Error())
	}
	for _, p := range paths[1:] {
		next := ReadNPY[T](p)
		if !next.Good() {
			return nil, fmt.Errorf("nparray: %s: %s", p, next.Error())
		}
		if err := out.Extend(next, axis); err != nil {
			return nil, fmt.Errorf("nparray: %s: %w", p, err)
		}
	}
	return out, nil
}

// parseNPY parses the .npy framing and returns (rows, cols, dtype-without-
// byteorder-prefix, raw payload, error).
func parseNPY(r io.Reader) (rows, cols int, ty string, payload []byte, err error) {
	magic := make([]byte, 6)
	if _, err = io.ReadFull(r, magic); err != nil {
		return 0, 0, "", nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if !bytes.Equal(magic, npyMagic) {
		return 0, 0, "", nil, fmt.Errorf("%w: got %q", ErrBadMagic, magic)
	}
	ver := make([]byte, 2)
	if _, err = io.ReadFull(r, ver); err != nil {
		return 0, 0, "", nil, fmt.Errorf("%w: reading version: %v", ErrBadHeader, err)
	}
	if ver[0] != 1 || ver[1] != 0 {
		return 0, 0, "", nil, fmt.Errorf("%w: unsupported version %d.%d", ErrBadHeader, ver[0], ver[1])
	}
	lenBuf := make([]byte, 2)
	if _, err = io.ReadFull(r, lenBuf); err != nil {
		return 0, 0, "", nil, fmt.Errorf("%w: reading header length: %v", ErrBadHeader, err)
	}
	hlen := binary.LittleEndian.Uint16(lenBuf)
	header := make([]byte, hlen)
	if _, err = io.ReadFull(r, header); err != nil {
		return 0, 0, "", nil, fmt.Errorf("%w: reading header: %v", ErrBadHeader, err)
	}
	if (10+int(hlen))%16 != 0 {
		return 0, 0, "", nil, fmt.Errorf("%w: header length %d breaks 16-byte alignment", ErrBadHeader, hlen)
	}
	m := headerRE.FindSubmatch(header)
	if m == nil {
		return 0, 0, "", nil, fmt.Errorf("%w: cannot parse dict %q", ErrBadHeader, string(header))
	}
	descrStr := string(m[1])
	ty = strings.TrimPrefix(descrStr, "<")
	ty = strings.TrimPrefix(ty, "=")
	if string(m[2]) == "True" {
		return 0, 0, "", nil, ErrFortranOrder
	}
	shape := strings.TrimSpace(string(m[3]))
	shape = strings.TrimSuffix(shape, ",")
	parts := []string{}
	for _, p := range strings.Split(shape, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 1:
		n, perr := strconv.Atoi(parts[0])
		if perr != nil {
			return 0, 0, "", nil, fmt.Errorf("%w: bad shape %q", ErrBadHeader, shape)
		}
		rows, cols = 1, n
	case 2:
		var perr error
		rows, perr = strconv.Atoi(parts[0])
		if perr != nil {
			return 0, 0, "", nil, fmt.Errorf("%w: bad shape %q", ErrBadHeader, shape)
		}
		cols, perr = strconv.Atoi(parts[1])
		if perr != nil {
			return 0, 0, "", nil, fmt.Errorf("%w: bad shape %q", ErrBadHeader, shape)
		}
	default:
		return 0, 0, "", nil, fmt.Errorf("%w: unsupported shape rank in %q", ErrBadHeader, shape)
	}
	payload, err = io.ReadAll(r)
	if err != nil {
		return 0, 0, "", nil, fmt.Errorf("nparray: reading payload: %w", err)
	}
	return rows, cols, ty, payload, nil
}
