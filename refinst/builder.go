package refinst

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ExecutionRange is an inclusive [Begin, End] pair of trace sites,
// scoping a builder run to a sub-sequence of a trace.
type ExecutionRange struct {
	Begin, End TraceSite
}

// EventKind tags the variant a parsed trace line folds into.
type EventKind int

const (
	InstrEvent EventKind = iota
	MemEvent
	RegEvent
	TextEvent
)

// Event is one parsed trace line. Only the fields matching Kind are
// meaningful; the rest are zero.
type Event struct {
	Kind EventKind

	// InstrEvent fields: starts a fresh ReferenceInstruction.
	Time           int64
	PC             uint64
	InstructionSet string
	Width          int
	Opcode         uint32
	Disassembly    string
	Effect         Effect

	// MemEvent field.
	Mem MemoryAccess

	// RegEvent field.
	Reg RegisterAccess

	// TextEvent field: ignored by the builder, available to subclasses.
	Text string
}

// TraceEventSource is the opaque, seekable event stream a builder walks
// forward over: navigate to a time, then pull events one at a time.
type TraceEventSource interface {
	// NavigateToTime seeks the source so the next Next() call returns the
	// first event at or after t.
	NavigateToTime(t int64) error
	// Next returns the next event, or ok=false at end of stream.
	Next() (ev Event, ok bool, err error)
}

// fold applies one event to the in-progress instruction cur, starting a
// new one on InstrEvent (emitting the prior one first) and appending
// accesses otherwise. It returns the (possibly new) in-progress
// instruction.
func fold(cur *ReferenceInstruction, ev Event, emit func(*ReferenceInstruction) error) (*ReferenceInstruction, error) {
	switch ev.Kind {
	case InstrEvent:
		if cur != nil {
			if err := emit(cur); err != nil {
				return nil, err
			}
		}
		return New(ev.Time, ev.PC, ev.InstructionSet, ev.Width, ev.Opcode, ev.Disassembly, ev.Effect), nil
	case MemEvent:
		if cur == nil {
			return nil, fmt.Errorf("refinst: memory event before any instruction event")
		}
		if err := cur.AddMemoryAccess(ev.Mem); err != nil {
			return nil, fmt.Errorf("refinst: instruction at t=%d pc=%#x: %w", cur.Time, cur.PC, err)
		}
		return cur, nil
	case RegEvent:
		if cur == nil {
			return nil, fmt.Errorf("refinst: register event before any instruction event")
		}
		cur.AddRegisterAccess(ev.Reg)
		return cur, nil
	case TextEvent:
		return cur, nil
	default:
		return nil, fmt.Errorf("refinst: unknown event kind %d", ev.Kind)
	}
}

// BuildFromIndex walks a seekable TraceEventSource over rng, folding
// events into ReferenceInstructions and handing each completed one to
// emit, in increasing time order. A parse or fold failure aborts with a
// diagnostic naming the offending time/pc.
func BuildFromIndex(src TraceEventSource, rng ExecutionRange, emit func(*ReferenceInstruction) error) error {
	if err := src.NavigateToTime(rng.Begin.Time); err != nil {
		return fmt.Errorf("refinst: seek to t=%d: %w", rng.Begin.Time, err)
	}

	var cur *ReferenceInstruction
	for {
		ev, ok, err := src.Next()
		if err != nil {
			return fmt.Errorf("refinst: reading trace: %w", err)
		}
		if !ok {
			break
		}
		if ev.Kind == InstrEvent && ev.Time > rng.End.Time {
			break
		}
		cur, err = fold(cur, ev, emit)
		if err != nil {
			return err
		}
	}
	if cur != nil {
		return emit(cur)
	}
	return nil
}

// BuildFromStream folds an in-memory line-oriented stream: blank lines
// and '#'-prefixed comments are skipped, every other line is handed to
// parseLine. A parse failure aborts with a diagnostic naming the
// offending line number and text.
func BuildFromStream(r io.Reader, parseLine func(line string) (Event, bool, error), emit func(*ReferenceInstruction) error) error {
	scanner := bufio.NewScanner(r)
	var cur *ReferenceInstruction
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, ok, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("refinst: line %d: %q: %w", lineNo, line, err)
		}
		if !ok {
			continue
		}
		cur, err = fold(cur, ev, emit)
		if err != nil {
			return fmt.Errorf("refinst: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("refinst: reading stream: %w", err)
	}
	if cur != nil {
		return emit(cur)
	}
	return nil
}
