// Copyright 2025 The OpenChoreo Authors
// SPDX-License-Identifier: Apache-2.0

// Package numexpr evaluates small arithmetic expressions such as
// "(a + b) * 2" over named numeric variables.
//
// Expressions are parsed with the CEL parser, which supplies the usual
// precedence for + - * /, unary minus and parentheses. Evaluation is done
// here rather than by the CEL runtime because CEL forbids mixing ints and
// doubles, while expressions in workloads routinely do.
package numexpr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/cel-go/common"
	"github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/operators"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/parser"
)

var (
	// ErrSyntax is returned for expressions that do not parse.
	ErrSyntax = errors.New("invalid expression")
	// ErrUnknownVariable is returned when an identifier has no value.
	ErrUnknownVariable = errors.New("unknown variable")
	// ErrUnsupported is returned for valid CEL that is not plain arithmetic.
	ErrUnsupported = errors.New("unsupported expression")
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Number is an int or a float.
type Number struct {
	i       int64
	f       float64
	isFloat bool
}

// Int returns an integral number.
func Int(i int64) Number { return Number{i: i} }

// Float returns a floating point number.
func Float(f float64) Number { return Number{f: f, isFloat: true} }

// IsInt reports whether the number is integral.
func (n Number) IsInt() bool { return !n.isFloat }

// Int64 returns the value truncated to an integer.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the value as a float.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// String returns the decimal text of the number.
func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// Evaluator parses and evaluates expressions. It is safe for concurrent use;
// parsed expressions are cached.
type Evaluator struct {
	parser *parser.Parser
	cache  *lruCache[*ast.AST]
}

// New creates an Evaluator with a default-sized parse cache.
func New(opts ...Option) (*Evaluator, error) {
	p, err := parser.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create expression parser: %w", err)
	}
	e := &Evaluator{
		parser: p,
		cache:  newLRUCache[*ast.AST](defaultCacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate computes expression with the given variables. The result is an
// int when every operand is an int and every division is exact; otherwise it
// is a float.
func (e *Evaluator) Evaluate(expression string, vars map[string]Number) (Number, error) {
	parsed, err := e.parse(expression)
	if err != nil {
		return Number{}, err
	}
	return eval(parsed.Expr(), vars)
}

func (e *Evaluator) parse(expression string) (*ast.AST, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			return cached, nil
		}
	}

	parsed, issues := e.parser.Parse(common.NewTextSource(expression))
	if issues != nil && len(issues.GetErrors()) > 0 {
		return nil, fmt.Errorf("%w %q: %s", ErrSyntax, expression, issues.ToDisplayString())
	}

	if e.cache != nil {
		e.cache.Set(expression, parsed)
	}
	return parsed, nil
}

func eval(expr ast.Expr, vars map[string]Number) (Number, error) {
	switch expr.Kind() {
	case ast.LiteralKind:
		switch v := expr.AsLiteral().(type) {
		case types.Int:
			return Int(int64(v)), nil
		case types.Uint:
			return Int(int64(v)), nil
		case types.Double:
			return Float(float64(v)), nil
		default:
			return Number{}, fmt.Errorf("%w: literal %v is not a number", ErrUnsupported, v)
		}

	case ast.IdentKind:
		name := expr.AsIdent()
		v, ok := vars[name]
		if !ok {
			return Number{}, fmt.Errorf("%w %q", ErrUnknownVariable, name)
		}
		return v, nil

	case ast.CallKind:
		return evalCall(expr.AsCall(), vars)

	default:
		return Number{}, fmt.Errorf("%w: only arithmetic over numbers and variables is allowed", ErrUnsupported)
	}
}

func evalCall(call ast.CallExpr, vars map[string]Number) (Number, error) {
	if call.IsMemberFunction() {
		return Number{}, fmt.Errorf("%w: method call %s", ErrUnsupported, call.FunctionName())
	}

	args := make([]Number, len(call.Args()))
	for i, a := range call.Args() {
		v, err := eval(a, vars)
		if err != nil {
			return Number{}, err
		}
		args[i] = v
	}

	switch call.FunctionName() {
	case operators.Negate:
		if len(args) != 1 {
			break
		}
		if args[0].IsInt() {
			return Int(-args[0].i), nil
		}
		return Float(-args[0].f), nil
	case operators.Add, operators.Subtract, operators.Multiply, operators.Divide:
		if len(args) != 2 {
			break
		}
		return binary(call.FunctionName(), args[0], args[1])
	}
	return Number{}, fmt.Errorf("%w: operator %s", ErrUnsupported, displayOperator(call.FunctionName()))
}

func binary(op string, a, b Number) (Number, error) {
	if a.IsInt() && b.IsInt() {
		switch op {
		case operators.Add:
			return Int(a.i + b.i), nil
		case operators.Subtract:
			return Int(a.i - b.i), nil
		case operators.Multiply:
			return Int(a.i * b.i), nil
		default:
			if b.i == 0 {
				return Number{}, ErrDivisionByZero
			}
			if a.i%b.i == 0 {
				return Int(a.i / b.i), nil
			}
			return Float(float64(a.i) / float64(b.i)), nil
		}
	}

	x, y := a.Float64(), b.Float64()
	switch op {
	case operators.Add:
		return Float(x + y), nil
	case operators.Subtract:
		return Float(x - y), nil
	case operators.Multiply:
		return Float(x * y), nil
	default:
		if y == 0 {
			return Number{}, ErrDivisionByZero
		}
		return Float(x / y), nil
	}
}

func displayOperator(fn string) string {
	if op, ok := operators.FindReverse(fn); ok {
		return op
	}
	return fn
}
