package nparray

import (
	"encoding/binary"
	"fmt"
	"math"
)

// descr returns the NumPy dtype descriptor string ("<u1", "<f8", ...) for T.
func descr[T Numeric]() (string, error) {
	var v T
	switch any(v).(type) {
	case uint8:
		return "<u1", nil
	case uint16:
		return "<u2", nil
	case uint32:
		return "<u4", nil
	case uint64:
		return "<u8", nil
	case int8:
		return "<i1", nil
	case int16:
		return "<i2", nil
	case int32:
		return "<i4", nil
	case int64:
		return "<i8", nil
	case float32:
		return "<f4", nil
	case float64:
		return "<f8", nil
	default:
		return "", fmt.Errorf("nparray: unsupported element type %T", v)
	}
}

// descrSize maps a dtype descriptor's type-code letter+width to a byte size.
func descrSize(ty string) (int, error) {
	switch ty {
	case "u1", "i1":
		return 1, nil
	case "u2", "i2":
		return 2, nil
	case "u4", "i4", "f4":
		return 4, nil
	case "u8", "i8", "f8":
		return 8, nil
	default:
		return 0, fmt.Errorf("%w: unrecognised dtype %q", ErrTypeMismatch, ty)
	}
}

// encodeLE appends the little-endian byte representation of each element of
// src into dst, which must be preallocated to len(src)*sizeof(T).
func encodeLE[T Numeric](dst []byte, src []T) {
	var v T
	sz := elemSize(v)
	for i, x := range src {
		off := i * sz
		switch val := any(x).(type) {
		case uint8:
			dst[off] = val
		case int8:
			dst[off] = uint8(val)
		case uint16:
			binary.LittleEndian.PutUint16(dst[off:], val)
		case int16:
			binary.LittleEndian.PutUint16(dst[off:], uint16(val))
		case uint32:
			binary.LittleEndian.PutUint32(dst[off:], val)
		case int32:
			binary.LittleEndian.PutUint32(dst[off:], uint32(val))
		case float32:
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(val))
		case uint64:
			binary.LittleEndian.PutUint64(dst[off:], val)
		case int64:
			binary.LittleEndian.PutUint64(dst[off:], uint64(val))
		case float64:
			binary.LittleEndian.PutUint64(dst[off:], math.Float64bits(val))
		}
	}
}

// decodeLE reads len(dst) little-endian elements of type T from src into
// dst; src must hold at least len(dst)*sizeof(T) bytes.
func decodeLE[T Numeric](src []byte, dst []T) {
	var zero T
	sz := elemSize(zero)
	for i := range dst {
		off := i * sz
		dst[i] = decodeOne[T](src[off : off+sz])
	}
}

func decodeOne[T Numeric](b []byte) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return any(b[0]).(T)
	case int8:
		return any(int8(b[0])).(T)
	case uint16:
		return any(binary.LittleEndian.Uint16(b)).(T)
	case int16:
		return any(int16(binary.LittleEndian.Uint16(b))).(T)
	case uint32:
		return any(binary.LittleEndian.Uint32(b)).(T)
	case int32:
		return any(int32(binary.LittleEndian.Uint32(b))).(T)
	case float32:
		return any(math.Float32frombits(binary.LittleEndian.Uint32(b))).(T)
	case uint64:
		return any(binary.LittleEndian.Uint64(b)).(T)
	case int64:
		return any(int64(binary.LittleEndian.Uint64(b))).(T)
	case float64:
		return any(math.Float64frombits(binary.LittleEndian.Uint64(b))).(T)
	default:
		panic(fmt.Sprintf("nparray: unsupported element type %T", zero))
	}
}
