package expr

import (
	"fmt"
)

// Expr is a node of the expression tree. Trees are immutable once built
// and own their children exclusively: no node is ever shared between two
// trees. Evaluation is a plain post-order recursion.
type Expr interface {
	// Eval computes this node's value, re-reading any bound variables at
	// their current row.
	Eval() Value
	// Type returns the node's value type.
	Type() ValueType
	// String renders the node in the same surface syntax the parser
	// accepts, so parse(e.String()) round-trips.
	String() string
}

// Constant is a fixed, typed literal.
type Constant struct {
	val Value
}

// NewConstant builds a Constant from a raw value, masked to ty.
func NewConstant(raw uint64, ty ValueType) *Constant {
	return &Constant{val: NewValue(raw, ty)}
}

func (c *Constant) Eval() Value    { return c.val }
func (c *Constant) Type() ValueType { return c.val.ty }
func (c *Constant) String() string {
	return fmt.Sprintf("%d_%s", c.val.v, c.val.ty)
}

// Variable reads column Index of the row currently bound to Name in a
// Context, at evaluation time. It does not itself hold the data: a
// Context owns the row cursor, so advancing the context changes what
// every Variable referring to it reads next.
type Variable struct {
	name  string
	index int
	ty    ValueType
	src   *boundSource
}

func (v *Variable) Eval() Value {
	raw, err := v.src.at(v.index)
	if err != nil {
		panic(fmt.Errorf("expr: %s[%d]: %w", v.name, v.index, err))
	}
	return NewValue(raw, v.ty)
}
func (v *Variable) Type() ValueType { return v.ty }
func (v *Variable) String() string {
	return fmt.Sprintf("$%s[%d]", v.name, v.index)
}

// unaryOp is the common shape of every one-operand node.
type unaryOp struct {
	op   Expr
	name string
}

func (u unaryOp) String() string { return fmt.Sprintf("%s(%s)", u.name, u.op.String()) }

// Not is bitwise complement; type is preserved.
type Not struct{ unaryOp }

// NewNot wraps op in a bitwise-NOT node.
func NewNot(op Expr) *Not { return &Not{unaryOp{op: op, name: "NOT"}} }

func (n *Not) Type() ValueType { return n.op.Type() }
func (n *Not) Eval() Value {
	v := n.op.Eval()
	return NewValue(^v.v, v.ty)
}

// Truncate bitwise-truncates its operand to a strictly narrower type.
type Truncate struct {
	unaryOp
	to ValueType
}

// NewTruncate truncates op to ty, which must be narrower than op's type.
func NewTruncate(ty ValueType, op Expr) (*Truncate, error) {
	if ty == Undef {
		return nil, fmt.Errorf("expr: cannot truncate to Undef")
	}
	if ty.NumBits() >= op.Type().NumBits() {
		return nil, fmt.Errorf("expr: truncation to %s is not narrower than operand type %s", ty, op.Type())
	}
	return &Truncate{unaryOp: unaryOp{op: op, name: fmt.Sprintf("TRUNC%d", ty.NumBits())}, to: ty}, nil
}

func (t *Truncate) Type() ValueType { return t.to }
func (t *Truncate) Eval() Value     { return NewValue(t.op.Eval().v, t.to) }

// aesOp is the common shape of the two AES S-box lookup nodes: both
// require a u8 operand and produce a u8 result.
type aesOp struct {
	unaryOp
	table *[256]byte
}

func newAESOp(op Expr, name string, table *[256]byte) (aesOp, error) {
	if op.Type() != U8 {
		return aesOp{}, fmt.Errorf("expr: %s operand must be u8, got %s", name, op.Type())
	}
	return aesOp{unaryOp: unaryOp{op: op, name: name}, table: table}, nil
}

func (a aesOp) Type() ValueType { return U8 }
func (a aesOp) Eval() Value {
	x := byte(a.op.Eval().v)
	return NewValue(uint64(a.table[x]), U8)
}

// AESSBox looks up its u8 operand in the forward AES S-box.
type AESSBox struct{ aesOp }

// NewAESSBox builds a forward-S-box lookup over op, which must be u8.
func NewAESSBox(op Expr) (*AESSBox, error) {
	a, err := newAESOp(op, "AES_SBOX", &sbox)
	if err != nil {
		return nil, err
	}
	return &AESSBox{a}, nil
}

// AESISBox looks up its u8 operand in the inverse AES S-box.
type AESISBox struct{ aesOp }

// NewAESISBox builds an inverse-S-box lookup over op, which must be u8.
func NewAESISBox(op Expr) (*AESISBox, error) {
	a, err := newAESOp(op, "AES_ISBOX", &isbox)
	if err != nil {
		return nil, err
	}
	return &AESISBox{a}, nil
}

// binaryOp is the common shape of every two-operand node. Both operands
// must share a type, which becomes the node's own type.
type binaryOp struct {
	lhs, rhs Expr
	name     string
}

func newBinaryOp(lhs, rhs Expr, name string) (binaryOp, error) {
	if lhs.Type() != rhs.Type() {
		return binaryOp{}, fmt.Errorf("expr: %s operands must share a type, got %s and %s", name, lhs.Type(), rhs.Type())
	}
	return binaryOp{lhs: lhs, rhs: rhs, name: name}, nil
}

func (b binaryOp) Type() ValueType { return b.lhs.Type() }
func (b binaryOp) String() string {
	return fmt.Sprintf("%s(%s,%s)", b.name, b.lhs.String(), b.rhs.String())
}

// And is bitwise AND.
type And struct{ binaryOp }

// NewAnd builds a bitwise-AND node; lhs and rhs must share a type.
func NewAnd(lhs, rhs Expr) (*And, error) {
	b, err := newBinaryOp(lhs, rhs, "AND")
	if err != nil {
		return nil, err
	}
	return &And{b}, nil
}
func (a *And) Eval() Value { return NewValue(a.lhs.Eval().v&a.rhs.Eval().v, a.Type()) }

// Or is bitwise OR.
type Or struct{ binaryOp }

// NewOr builds a bitwise-OR node; lhs and rhs must share a type.
func NewOr(lhs, rhs Expr) (*Or, error) {
	b, err := newBinaryOp(lhs, rhs, "OR")
	if err != nil {
		return nil, err
	}
	return &Or{b}, nil
}
func (o *Or) Eval() Value { return NewValue(o.lhs.Eval().v|o.rhs.Eval().v, o.Type()) }

// Xor is bitwise XOR.
type Xor struct{ binaryOp }

// NewXor builds a bitwise-XOR node; lhs and rhs must share a type.
func NewXor(lhs, rhs Expr) (*Xor, error) {
	b, err := newBinaryOp(lhs, rhs, "XOR")
	if err != nil {
		return nil, err
	}
	return &Xor{b}, nil
}
func (x *Xor) Eval() Value { return NewValue(x.lhs.Eval().v^x.rhs.Eval().v, x.Type()) }

// Lsl is logical shift left; bits shifted out are lost, vacated bits are
// zero.
type Lsl struct{ binaryOp }

// NewLsl builds a logical-shift-left node; lhs and rhs must share a type.
func NewLsl(lhs, rhs Expr) (*Lsl, error) {
	b, err := newBinaryOp(lhs, rhs, "LSL")
	if err != nil {
		return nil, err
	}
	return &Lsl{b}, nil
}
func (l *Lsl) Eval() Value {
	return NewValue(l.lhs.Eval().v<<l.rhs.Eval().v, l.Type())
}

// Lsr is logical shift right: vacated bits are zero-filled.
type Lsr struct{ binaryOp }

// NewLsr builds a logical-shift-right node; lhs and rhs must share a type.
func NewLsr(lhs, rhs Expr) (*Lsr, error) {
	b, err := newBinaryOp(lhs, rhs, "LSR")
	if err != nil {
		return nil, err
	}
	return &Lsr{b}, nil
}
func (l *Lsr) Eval() Value {
	return NewValue(l.lhs.Eval().v>>l.rhs.Eval().v, l.Type())
}

// Asr is arithmetic shift right: the operand is interpreted as signed of
// its own width, so vacated bits are sign-filled.
type Asr struct{ binaryOp }

// NewAsr builds an arithmetic-shift-right node; lhs and rhs must share a
// type.
func NewAsr(lhs, rhs Expr) (*Asr, error) {
	b, err := newBinaryOp(lhs, rhs, "ASR")
	if err != nil {
		return nil, err
	}
	return &Asr{b}, nil
}
func (a *Asr) Eval() Value {
	lv := a.lhs.Eval()
	shift := a.rhs.Eval().v
	width := uint(lv.ty.NumBits())
	signBit := uint64(1) << (width - 1)
	x := lv.v
	if x&signBit != 0 {
		// Sign-extend to 64 bits before shifting, then re-mask to width.
		x |= ^uint64(0) << width
		result := int64(x) >> shift
		return NewValue(uint64(result), lv.ty)
	}
	return NewValue(x>>shift, lv.ty)
}
