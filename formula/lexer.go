// Package formula evaluates user-authored column formulas.
//
// Formulas are plain arithmetic/comparison expressions over named variables.
// Only the variables supplied by the caller are visible; there is no
// statement execution, assignment or access to anything outside the bindings.
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokQuestion
	tokColon
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// twoCharOps must be checked before single-char operators.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const singleCharOps = "+-*/%<>!"

func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := rune(src[i])

		if unicode.IsSpace(c) {
			i++
			continue
		}

		if unicode.IsDigit(c) || (c == '.' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))) {
			start := i
			for i < len(src) && (unicode.IsDigit(rune(src[i])) || src[i] == '.') {
				i++
			}
			// exponent: 1e3, 2.5E-2
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && unicode.IsDigit(rune(src[j])) {
					i = j
					for i < len(src) && unicode.IsDigit(rune(src[i])) {
						i++
					}
				}
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number %q at %d", ErrEvaluation, text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: n, pos: start})
			continue
		}

		if c == '_' || unicode.IsLetter(c) {
			start := i
			for i < len(src) && (src[i] == '_' || unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i]))) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: src[start:i], pos: start})
			continue
		}

		if op, ok := matchTwoCharOp(src[i:]); ok {
			tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
			i += 2
			continue
		}

		switch {
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
		case c == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
		case c == '?':
			tokens = append(tokens, token{kind: tokQuestion, text: "?", pos: i})
		case c == ':':
			tokens = append(tokens, token{kind: tokColon, text: ":", pos: i})
		case strings.ContainsRune(singleCharOps, c):
			tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrEvaluation, c, i)
		}
		i++
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(src)})
	return tokens, nil
}

func matchTwoCharOp(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	for _, op := range twoCharOps {
		if s[:2] == op {
			return op, true
		}
	}
	return "", false
}
