package power

import "testing"

func TestNewBankOracleRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := NewBankOracle(100); err == nil {
		t.Fatal("expected error for non-power-of-2 size")
	}
}

func TestBankOracleLoadAndReadRoundTrips(t *testing.T) {
	o, err := NewBankOracle(256)
	if err != nil {
		t.Fatalf("NewBankOracle: %v", err)
	}
	o.LoadBytes(0x10, []byte{0x78, 0x56, 0x34, 0x12})

	v, err := o.Memory(0x10, 4, 0)
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if v != 0x12345678 {
		t.Fatalf("Memory(0x10,4) = %#x, want 0x12345678", v)
	}
}

func TestBankOracleStoreUpdatesLiveImage(t *testing.T) {
	o, err := NewBankOracle(256)
	if err != nil {
		t.Fatalf("NewBankOracle: %v", err)
	}
	if err := o.Store(0x20, 2, 0xBEEF); err != nil {
		t.Fatalf("Store: %v", err)
	}
	v, err := o.Memory(0x20, 2, 42) // t is ignored
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if v != 0xBEEF {
		t.Fatalf("Memory(0x20,2) = %#x, want 0xBEEF", v)
	}
}

func TestBankOracleAddressWrapsLikeARealMemoryMap(t *testing.T) {
	o, err := NewBankOracle(16)
	if err != nil {
		t.Fatalf("NewBankOracle: %v", err)
	}
	o.LoadBytes(0, []byte{0xAA})
	v, err := o.Memory(16, 1, 0) // aliases back to address 0
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if v != 0xAA {
		t.Fatalf("Memory(16,1) = %#x, want 0xAA (aliased from addr 0)", v)
	}
}

func TestBankOracleRegBankReturnsFixedSnapshot(t *testing.T) {
	o, err := NewBankOracle(16)
	if err != nil {
		t.Fatalf("NewBankOracle: %v", err)
	}
	o.SetRegister("r0", 5)
	regs, err := o.RegBank(0)
	if err != nil {
		t.Fatalf("RegBank: %v", err)
	}
	if regs["r0"] != 5 {
		t.Fatalf("RegBank()[r0] = %d, want 5", regs["r0"])
	}
	regs["r0"] = 99 // mutating the returned map must not alter internal state
	regs2, _ := o.RegBank(1)
	if regs2["r0"] != 5 {
		t.Fatalf("RegBank must return a defensive copy, got %d", regs2["r0"])
	}
}
