package formula

import (
	"errors"
	"fmt"
)

// ErrEvaluation is returned (wrapped) for every parse or evaluation failure.
var ErrEvaluation = errors.New("formula evaluation failed")

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 64

type node interface {
	eval(vars map[string]any) (float64, error)
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

// Expression grammar, lowest precedence first:
//
//	expr    = or [ "?" expr ":" expr ]
//	or      = and { "||" and }
//	and     = cmp { "&&" cmp }
//	cmp     = sum [ ("=="|"!="|"<"|"<="|">"|">=") sum ]
//	sum     = product { ("+"|"-") product }
//	product = unary { ("*"|"/"|"%") unary }
//	unary   = ("-"|"+"|"!") unary | primary
//	primary = number | ident | ident "(" [ expr { "," expr } ] ")" | "(" expr ")"
func parse(src string) (node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, fmt.Errorf("%w: empty formula", ErrEvaluation)
	}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrEvaluation, t.text, t.pos)
	}
	return n, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fmt.Errorf("%w: expression nested too deeply", ErrEvaluation)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) expr() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokQuestion {
		return cond, nil
	}
	p.next()
	then, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.kind != tokColon {
		return nil, fmt.Errorf("%w: expected ':' at %d", ErrEvaluation, t.pos)
	}
	otherwise, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ternaryNode{cond: cond, then: then, otherwise: otherwise}, nil
}

func (p *parser) or() (node, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.isOp("||"); !ok {
			return left, nil
		}
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "||", left: left, right: right}
	}
}

func (p *parser) and() (node, error) {
	left, err := p.cmp()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.isOp("&&"); !ok {
			return left, nil
		}
		p.next()
		right, err := p.cmp()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: "&&", left: left, right: right}
	}
}

func (p *parser) cmp() (node, error) {
	left, err := p.sum()
	if err != nil {
		return nil, err
	}
	op, ok := p.isOp("==", "!=", "<", "<=", ">", ">=")
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.sum()
	if err != nil {
		return nil, err
	}
	return &binaryNode{op: op, left: left, right: right}, nil
}

func (p *parser) sum() (node, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("+", "-")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) product() (node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) unary() (node, error) {
	if op, ok := p.isOp("-", "+", "!"); ok {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode(t.num), nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.call(t)
		}
		return identNode(t.text), nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: expected ')' at %d", ErrEvaluation, closing.pos)
		}
		return n, nil
	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of formula", ErrEvaluation)
	default:
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrEvaluation, t.text, t.pos)
	}
}

func (p *parser) call(name token) (node, error) {
	fn, ok := functions[name.text]
	if !ok {
		return nil, fmt.Errorf("%w: unknown function %q", ErrEvaluation, name.text)
	}
	p.next() // (

	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, fmt.Errorf("%w: expected ')' at %d", ErrEvaluation, closing.pos)
	}
	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, fmt.Errorf("%w: wrong number of arguments to %s", ErrEvaluation, name.text)
	}
	return &callNode{name: name.text, fn: fn, args: args}, nil
}
