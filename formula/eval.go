package formula

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Expr is a compiled formula. It is immutable and safe for concurrent use.
type Expr struct {
	src  string
	root node
}

// Compile parses src into a reusable expression.
func Compile(src string) (*Expr, error) {
	root, err := parse(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// String returns the source the expression was compiled from.
func (e *Expr) String() string { return e.src }

// Eval evaluates the expression against vars. Any failure is reported as an
// error wrapping ErrEvaluation; Eval never panics on user input.
func (e *Expr) Eval(vars map[string]any) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = 0, fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()
	v, err := e.root.eval(vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not a finite number", ErrEvaluation)
	}
	return v, nil
}

// Variables lists the identifiers the expression reads, sorted.
func (e *Expr) Variables() []string {
	seen := map[string]bool{}
	collectIdents(e.root, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate compiles and evaluates src in one step.
func Evaluate(src string, vars map[string]any) (float64, error) {
	expr, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return expr.Eval(vars)
}

type numberNode float64

func (n numberNode) eval(map[string]any) (float64, error) { return float64(n), nil }

type identNode string

func (n identNode) eval(vars map[string]any) (float64, error) {
	v, ok := vars[string(n)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown variable %q", ErrEvaluation, string(n))
	}
	f, err := ToNumber(v)
	if err != nil {
		return 0, fmt.Errorf("%w: variable %q: %v", ErrEvaluation, string(n), err)
	}
	return f, nil
}

type unaryNode struct {
	op      string
	operand node
}

func (n *unaryNode) eval(vars map[string]any) (float64, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "-":
		return -v, nil
	case "!":
		return boolToFloat(v == 0), nil
	default:
		return v, nil
	}
}

type binaryNode struct {
	op          string
	left, right node
}

func (n *binaryNode) eval(vars map[string]any) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}

	// short-circuit logical operators
	switch n.op {
	case "&&":
		if l == 0 {
			return 0, nil
		}
		r, err := n.right.eval(vars)
		if err != nil {
			return 0, err
		}
		return boolToFloat(r != 0), nil
	case "||":
		if l != 0 {
			return 1, nil
		}
		r, err := n.right.eval(vars)
		if err != nil {
			return 0, err
		}
		return boolToFloat(r != 0), nil
	}

	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", ErrEvaluation)
		}
		return math.Mod(l, r), nil
	case "==":
		return boolToFloat(l == r), nil
	case "!=":
		return boolToFloat(l != r), nil
	case "<":
		return boolToFloat(l < r), nil
	case "<=":
		return boolToFloat(l <= r), nil
	case ">":
		return boolToFloat(l > r), nil
	case ">=":
		return boolToFloat(l >= r), nil
	}
	return 0, fmt.Errorf("%w: unsupported operator %q", ErrEvaluation, n.op)
}

type ternaryNode struct {
	cond, then, otherwise node
}

func (n *ternaryNode) eval(vars map[string]any) (float64, error) {
	c, err := n.cond.eval(vars)
	if err != nil {
		return 0, err
	}
	if c != 0 {
		return n.then.eval(vars)
	}
	return n.otherwise.eval(vars)
}

type function struct {
	minArgs, maxArgs int // maxArgs < 0 means variadic
	apply            func(args []float64) float64
}

var functions = map[string]function{
	"abs":   {1, 1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"floor": {1, 1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, 1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"round": {1, 2, roundArgs},
	"min":   {1, -1, func(a []float64) float64 { return reduce(a, math.Min) }},
	"max":   {1, -1, func(a []float64) float64 { return reduce(a, math.Max) }},
}

func roundArgs(a []float64) float64 {
	if len(a) == 1 {
		return math.Round(a[0])
	}
	p := math.Pow(10, math.Trunc(a[1]))
	return math.Round(a[0]*p) / p
}

func reduce(a []float64, f func(x, y float64) float64) float64 {
	acc := a[0]
	for _, v := range a[1:] {
		acc = f(acc, v)
	}
	return acc
}

type callNode struct {
	name string
	fn   function
	args []node
}

func (n *callNode) eval(vars map[string]any) (float64, error) {
	vals := make([]float64, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(vars)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	return n.fn.apply(vals), nil
}

func collectIdents(n node, seen map[string]bool) {
	switch v := n.(type) {
	case identNode:
		seen[string(v)] = true
	case *unaryNode:
		collectIdents(v.operand, seen)
	case *binaryNode:
		collectIdents(v.left, seen)
		collectIdents(v.right, seen)
	case *ternaryNode:
		collectIdents(v.cond, seen)
		collectIdents(v.then, seen)
		collectIdents(v.otherwise, seen)
	case *callNode:
		for _, a := range v.args {
			collectIdents(a, seen)
		}
	}
}

// ToNumber coerces a row value to float64. Empty strings and nil count as
// zero, booleans as 1/0; any other non-numeric value is an error.
func ToNumber(v any) (float64, error) {
	f, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", v)
	}
	return f, nil
}

func toNumber(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		return boolToFloat(x), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value of type %T", v)
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
