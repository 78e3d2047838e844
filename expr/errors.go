package expr

import "errors"

// ErrUnknownVariable is returned when an expression references a variable
// that was never bound into the parsing Context.
var ErrUnknownVariable = errors.New("expr: unknown variable")

// ErrSyntax covers every other parse failure: malformed literal,
// unbalanced parentheses, unrecognized operator keyword, wrong arity.
var ErrSyntax = errors.New("expr: syntax error")
