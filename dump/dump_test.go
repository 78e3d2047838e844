package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paf-go/paf/nparray"
	"github.com/paf-go/paf/refinst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCSVPowerDumperHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	d := NewCSVPowerDumperTo(&buf, false)
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(PowerSample{PC: 1, Opcode: 2, Total: 3}))
	require.NoError(t, d.NextTrace())
	require.NoError(t, d.Dump(PowerSample{PC: 4, Opcode: 5, Total: 6}))
	require.NoError(t, d.PostDump())

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, "pc,opcode,mem_address,mem_data,instr_inputs,instr_outputs,psr,total", lines[0])
	assert.Contains(t, out, "\n\n")
}

func TestCSVPowerDumperDetailedColumns(t *testing.T) {
	var buf bytes.Buffer
	d := NewCSVPowerDumperTo(&buf, true)
	ri := refinst.New(0, 0x100, "T16", 16, 0x4770, "BX LR", refinst.Executed)
	ri.AddRegisterAccess(refinst.RegisterAccess{Access: refinst.Access{Direction: refinst.Read}, Name: "lr"})
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(PowerSample{Total: 1, Instr: ri, Executed: true, Disassembly: "BX LR", Time: 0, PC_: 0x100, Opcode_: 0x4770}))
	require.NoError(t, d.PostDump())

	out := buf.String()
	assert.Contains(t, out, "BX LR")
	assert.Contains(t, out, "read:lr")
}

func TestNPYPowerDumperWritesRectangularMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "power.npy")
	d := NewNPYPowerDumper(path)
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(PowerSample{Total: 1}))
	require.NoError(t, d.Dump(PowerSample{Total: 2}))
	require.NoError(t, d.NextTrace())
	require.NoError(t, d.Dump(PowerSample{Total: 3}))
	require.NoError(t, d.PostDump())

	a := nparray.ReadNPY[float64](path)
	require.True(t, a.Good())
	v00, err := a.Get(0, 0)
	require.NoError(t, err)
	v01, err := a.Get(0, 1)
	require.NoError(t, err)
	v10, err := a.Get(1, 0)
	require.NoError(t, err)
	v11, err := a.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v00)
	assert.Equal(t, 2.0, v01)
	assert.Equal(t, 3.0, v10)
	assert.Equal(t, 0.0, v11) // zero-padded short row
}

func TestNPYRegBankDumperSortsColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regbank.npy")
	d := NewNPYRegBankDumper(path, []string{"r1", "r0"})
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(RegisterBankSnapshot{Values: map[string]uint64{"r0": 10, "r1": 20}}))
	require.NoError(t, d.PostDump())

	a := nparray.ReadNPY[uint64](path)
	require.True(t, a.Good())
	v0, err := a.Get(0, 0)
	require.NoError(t, err)
	v1, err := a.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v0) // r0 sorts before r1
	assert.Equal(t, uint64(20), v1)
}

func TestYAMLInstrDumperWritesInstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instrs.yaml")
	d, err := NewYAMLInstrDumper(path)
	require.NoError(t, err)
	require.NoError(t, d.PreDump())
	ri := refinst.New(0, 0x100, "T16", 16, 0x4770, "BX LR", refinst.Executed)
	require.NoError(t, d.Dump(ri))
	require.NoError(t, d.PostDump())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "instructions:")
	assert.Contains(t, string(out), "BX LR")
}

func TestYAMLMemoryAccessesDumperStreamsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.yaml")
	d, err := NewYAMLMemoryAccessesDumper(path)
	require.NoError(t, err)
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(0, 0x100, refinst.MemoryAccess{Access: refinst.Access{Direction: refinst.Read, Value: 7}, Addr: 0x20, Size: 4}))
	require.NoError(t, d.PostDump())

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "memory_accesses:")
	assert.Contains(t, string(out), "0x20")
}

func TestYAMLTimingInfoAccumulatesThenWritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing.yaml")
	d, err := NewYAMLTimingInfo(path)
	require.NoError(t, err)
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(TimingSample{PC: 0x100, Cycles: 3}))
	require.NoError(t, d.Dump(TimingSample{PC: 0x102, Cycles: 1}))
	require.NoError(t, d.Dump(TimingSample{PC: 0x104, Cycles: 5}))
	require.NoError(t, d.PostDump())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got timingDoc
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, 1, got.Min)
	assert.Equal(t, 5, got.Max)
	require.Len(t, got.List, 3)
	assert.Equal(t, 3, got.List[0].Cycles)
}

func TestYAMLTimingInfoWritesOneDocumentPerTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing2.yaml")
	d, err := NewYAMLTimingInfo(path)
	require.NoError(t, err)
	require.NoError(t, d.PreDump())
	require.NoError(t, d.Dump(TimingSample{PC: 0x100, Cycles: 2}))
	require.NoError(t, d.NextTrace())
	require.NoError(t, d.Dump(TimingSample{PC: 0x200, Cycles: 9}))
	require.NoError(t, d.PostDump())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	var docs []timingDoc
	for {
		var doc timingDoc
		if err := dec.Decode(&doc); err != nil {
			break
		}
		docs = append(docs, doc)
	}
	require.Len(t, docs, 2)
	assert.Equal(t, 2, docs[0].Max)
	assert.Equal(t, 9, docs[1].Max)
}
