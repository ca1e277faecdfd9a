package pdf

import (
	"bytes"
	"math"
	"strconv"

	"github.com/ironsheep/rathaus-crops/internal/geometry"
)

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m × n, i.e. m applied first, then n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// unitSquare returns the bounding box of the unit square under m, which is
// where an image XObject lands in user space.
func (m matrix) unitSquare() geometry.Rect {
	r := geometry.Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, c := range [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(c[0], c[1])
		r.X0 = math.Min(r.X0, x)
		r.Y0 = math.Min(r.Y0, y)
		r.X1 = math.Max(r.X1, x)
		r.Y1 = math.Max(r.Y1, y)
	}
	return r
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokOperator
	tokOther // strings, arrays, dictionaries delimiters
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

// lexer splits a content stream into operands and operators. Strings, hex
// strings and array or dictionary delimiters are reported as tokOther since
// the walker never needs their values. Inline image data is skipped.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) next() (token, bool) {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case isWhitespace(b):
			l.pos++
		case b == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case b == '(':
			l.skipString()
			return token{kind: tokOther, text: "()"}, true
		case b == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOther, text: "<<"}, true
			}
			end := bytes.IndexByte(l.data[l.pos:], '>')
			if end < 0 {
				l.pos = len(l.data)
			} else {
				l.pos += end + 1
			}
			return token{kind: tokOther, text: "<>"}, true
		case b == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokOther, text: ">>"}, true
		case b == '[' || b == ']' || b == '{' || b == '}' || b == ')':
			l.pos++
			return token{kind: tokOther, text: string(b)}, true
		case b == '/':
			l.pos++
			return token{kind: tokName, text: l.regular()}, true
		default:
			word := l.regular()
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, text: word, num: n}, true
			}
			if word == "BI" {
				l.skipInlineImage()
				return token{kind: tokOther, text: "BI"}, true
			}
			return token{kind: tokOperator, text: word}, true
		}
	}
	return token{}, false
}

func (l *lexer) regular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) skipString() {
	depth := 0
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				l.pos++
				return
			}
		}
		l.pos++
	}
}

// skipInlineImage advances past BI ... ID <data> EI.
func (l *lexer) skipInlineImage() {
	for {
		tok, ok := l.next()
		if !ok {
			return
		}
		if tok.kind == tokOperator && tok.text == "ID" {
			break
		}
	}
	l.pos++ // single whitespace after ID
	for l.pos+2 <= len(l.data) {
		if l.data[l.pos] == 'E' && l.data[l.pos+1] == 'I' &&
			isWhitespace(l.data[l.pos-1]) &&
			(l.pos+2 == len(l.data) || isWhitespace(l.data[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.data)
}

// painter receives the XObjects a content stream paints.
type painter interface {
	// paintXObject handles "/name Do" under the given matrix.
	paintXObject(name string, ctm matrix) error
}

// interpret runs the graphics-state operators of a content stream and calls
// p for every Do. It returns the first painter error.
func interpret(content []byte, ctm matrix, p painter) error {
	lx := newLexer(content)
	var stack []matrix
	var operands []token

	for {
		tok, ok := lx.next()
		if !ok {
			return nil
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "q":
			stack = append(stack, ctm)
		case "Q":
			if n := len(stack); n > 0 {
				ctm = stack[n-1]
				stack = stack[:n-1]
			}
		case "cm":
			if m, ok := matrixOperands(operands); ok {
				ctm = m.mul(ctm)
			}
		case "Do":
			if n := len(operands); n > 0 && operands[n-1].kind == tokName {
				if err := p.paintXObject(operands[n-1].text, ctm); err != nil {
					return err
				}
			}
		}
		operands = operands[:0]
	}
}

func matrixOperands(ops []token) (matrix, bool) {
	if len(ops) < 6 {
		return matrix{}, false
	}
	ops = ops[len(ops)-6:]
	var m matrix
	for i, op := range ops {
		if op.kind != tokNumber {
			return matrix{}, false
		}
		m[i] = op.num
	}
	return m, true
}
