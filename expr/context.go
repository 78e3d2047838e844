package expr

import (
	"fmt"

	"github.com/paf-go/paf/nparray"
)

// boundSource is the row cursor behind a bound variable: Advance/Reset on
// the owning Context mutate it in place, and every Variable referring to
// the same name shares this one cursor.
type boundSource struct {
	row func() int
	at  func(col int) (uint64, error)
}

// typedSource adapts an *nparray.NPArray[T] into the uint64-valued,
// type-erased interface Variable and Context operate over.
type typedSource[T nparray.Numeric] struct {
	arr *nparray.NPArray[T]
	row int
}

func (s *typedSource[T]) at(col int) (uint64, error) {
	v, err := s.arr.Get(s.row, col)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// Context binds named variables to NPArray rows and steps them together
// as a single logical trace index advances. One Context is shared by
// every Variable it produces, so Advance/Reset affect all of them.
type Context[T nparray.Numeric] struct {
	sources map[string]*typedSource[T]
	ty      ValueType
}

// NewContext builds an empty Context whose variables evaluate at value
// type ty (the element width of the bound NPArrays).
func NewContext[T nparray.Numeric](ty ValueType) *Context[T] {
	return &Context[T]{sources: make(map[string]*typedSource[T]), ty: ty}
}

// Bind associates name with column accesses into arr's current row. It
// must be called before the name is referenced by a parsed expression.
func (c *Context[T]) Bind(name string, arr *nparray.NPArray[T]) {
	c.sources[name] = &typedSource[T]{arr: arr}
}

// HasVariable reports whether name has been bound.
func (c *Context[T]) HasVariable(name string) bool {
	_, ok := c.sources[name]
	return ok
}

// Advance steps every bound row forward by one.
func (c *Context[T]) Advance() {
	for _, s := range c.sources {
		s.row++
	}
}

// Reset rewinds every bound row back to zero.
func (c *Context[T]) Reset() {
	for _, s := range c.sources {
		s.row = 0
	}
}

// variable builds a Variable node reading column index of name's
// currently-bound row. Returns an error if name was never bound.
func (c *Context[T]) variable(name string, index int) (*Variable, error) {
	s, ok := c.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	src := s
	return &Variable{
		name:  name,
		index: index,
		ty:    c.ty,
		src: &boundSource{
			row: func() int { return src.row },
			at:  src.at,
		},
	}, nil
}
