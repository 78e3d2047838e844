package power

import "fmt"

// Oracle is the query interface over simulated architectural state at a
// given trace time: the full register bank, and the contents of a
// memory cell. The trace-backed implementation (reading a Tarmac-derived
// snapshot index) lives outside this package; MapOracle below is the
// pre-recorded-snapshot test double the Hamming-distance model's
// MemoryUpdate transition and any RegisterBankDumper need to exercise
// without a real trace.
type Oracle interface {
	RegBank(t int64) (map[string]uint64, error)
	Memory(addr uint64, size int, t int64) (uint64, error)
}

// MapOracle replays a fixed, pre-recorded set of snapshots keyed by
// trace time. It never changes once built and is safe for concurrent
// reads.
type MapOracle struct {
	regBanks map[int64]map[string]uint64
	memory   map[int64]map[uint64]uint64
}

// NewMapOracle returns an empty MapOracle; populate it with
// SetRegBank/SetMemory before use.
func NewMapOracle() *MapOracle {
	return &MapOracle{
		regBanks: make(map[int64]map[string]uint64),
		memory:   make(map[int64]map[uint64]uint64),
	}
}

// SetRegBank records the full register bank at time t.
func (o *MapOracle) SetRegBank(t int64, values map[string]uint64) {
	o.regBanks[t] = values
}

// SetMemory records the value at addr, at time t.
func (o *MapOracle) SetMemory(t int64, addr, value uint64) {
	bank, ok := o.memory[t]
	if !ok {
		bank = make(map[uint64]uint64)
		o.memory[t] = bank
	}
	bank[addr] = value
}

// RegBank returns the snapshot recorded at exactly t.
func (o *MapOracle) RegBank(t int64) (map[string]uint64, error) {
	bank, ok := o.regBanks[t]
	if !ok {
		return nil, fmt.Errorf("power: no register-bank snapshot recorded at t=%d", t)
	}
	return bank, nil
}

// Memory returns the size-byte value at addr recorded at exactly t. size
// is accepted for interface parity with a real memory oracle but is not
// otherwise validated by this test double.
func (o *MapOracle) Memory(addr uint64, size int, t int64) (uint64, error) {
	bank, ok := o.memory[t]
	if !ok {
		return 0, fmt.Errorf("power: no memory snapshot recorded at t=%d", t)
	}
	v, ok := bank[addr]
	if !ok {
		return 0, fmt.Errorf("power: no value recorded for address %#x at t=%d", addr, t)
	}
	return v, nil
}
