package power

import "fmt"

// bank is a byte-addressable memory image: a flat backing array
// indexed modulo its length, the same aliasing behaviour a real
// embedded memory map exhibits when queried outside its populated
// range.
type bank struct {
	data []byte
}

// newBank allocates a zero-filled memory image of the given size,
// which must be a power of two so address masking stays exact.
func newBank(size int) (*bank, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, fmt.Errorf("power: invalid bank size %d: must be a power of 2", size)
	}
	return &bank{data: make([]byte, size)}, nil
}

func (b *bank) mask(addr uint64) uint64 {
	return addr & uint64(len(b.data)-1)
}

func (b *bank) readByte(addr uint64) byte {
	return b.data[b.mask(addr)]
}

func (b *bank) writeByte(addr uint64, v byte) {
	b.data[b.mask(addr)] = v
}

// BankOracle answers Oracle.Memory queries from a single live memory
// image rather than per-timestamp snapshots: useful when a trace's
// memory side is reconstructed from one captured dump and replayed
// forward, with writes applied as the trace's stores are walked in
// order. RegBank is served from a fixed register map, since a flat
// memory image carries no register file of its own.
type BankOracle struct {
	mem  *bank
	regs map[string]uint64
}

// NewBankOracle builds a BankOracle over a zero-filled memory image of
// sizeBytes bytes (a power of two) and an empty register map.
func NewBankOracle(sizeBytes int) (*BankOracle, error) {
	b, err := newBank(sizeBytes)
	if err != nil {
		return nil, err
	}
	return &BankOracle{mem: b, regs: make(map[string]uint64)}, nil
}

// LoadBytes seeds the memory image starting at addr, little-endian
// byte order, overwriting whatever was previously stored there.
func (o *BankOracle) LoadBytes(addr uint64, data []byte) {
	for i, v := range data {
		o.mem.writeByte(addr+uint64(i), v)
	}
}

// Store applies one write to the memory image, little-endian, so a
// BankOracle can track a trace's running memory state as it replays
// forward instruction by instruction.
func (o *BankOracle) Store(addr uint64, size int, value uint64) error {
	if size <= 0 || size > 8 {
		return fmt.Errorf("power: invalid store size %d", size)
	}
	for i := 0; i < size; i++ {
		o.mem.writeByte(addr+uint64(i), byte(value>>(8*uint(i))))
	}
	return nil
}

// SetRegister fixes the value RegBank reports for name, regardless of
// t: a BankOracle has no per-timestamp register history.
func (o *BankOracle) SetRegister(name string, value uint64) {
	o.regs[name] = value
}

// RegBank implements Oracle by returning the fixed register map set
// via SetRegister, ignoring t.
func (o *BankOracle) RegBank(int64) (map[string]uint64, error) {
	out := make(map[string]uint64, len(o.regs))
	for k, v := range o.regs {
		out[k] = v
	}
	return out, nil
}

// Memory implements Oracle by reading size little-endian bytes from
// the live memory image at addr, ignoring t: the image reflects
// whatever state LoadBytes/Store last left it in.
func (o *BankOracle) Memory(addr uint64, size int, _ int64) (uint64, error) {
	if size <= 0 || size > 8 {
		return 0, fmt.Errorf("power: invalid read size %d", size)
	}
	var v uint64
	for i := 0; i < size; i++ {
		v |= uint64(o.mem.readByte(addr+uint64(i))) << (8 * uint(i))
	}
	return v, nil
}
