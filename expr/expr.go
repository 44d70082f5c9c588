// Package expr parses the textual tree form the driver accepts, e.g.
// "add(sub(0, 6), 2)". Numbers become constants, identifiers applied
// to parenthesized arguments become operations.
package expr

import (
	"github.com/pkg/errors"

	"github.com/vegaluisjose/backend-playground/ir"
)

// Parse reads a whole expression and returns its IR tree.
func Parse(src string) (ir.Node, error) {
	p := &parser{src: src}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.pos != len(p.src) {
		return nil, errors.Errorf("trailing input at offset %d: %q", p.pos, p.src[p.pos:])
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) ws() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *parser) node() (ir.Node, error) {
	p.ws()
	if p.pos >= len(p.src) {
		return nil, errors.Errorf("unexpected end of input at offset %d", p.pos)
	}

	switch c := p.src[p.pos]; {
	case c == '-' || isDigit(c):
		return p.number()
	case isAlpha(c):
		return p.operation()
	default:
		return nil, errors.Errorf("unexpected %q at offset %d", c, p.pos)
	}
}

func (p *parser) number() (ir.Node, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
		digits++
	}
	if digits == 0 {
		return nil, errors.Errorf("malformed number at offset %d", start)
	}

	v := 0
	neg := p.src[start] == '-'
	for _, c := range p.src[start:p.pos] {
		if c == '-' {
			continue
		}
		v = v*10 + int(c-'0')
	}
	if neg {
		v = -v
	}
	return ir.NewConst(v), nil
}

func (p *parser) operation() (ir.Node, error) {
	start := p.pos
	for p.pos < len(p.src) && (isAlpha(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	name := p.src[start:p.pos]

	p.ws()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return nil, errors.Errorf("expected '(' after %q at offset %d", name, p.pos)
	}
	p.pos++

	var operands []ir.Node
	p.ws()
	for p.pos < len(p.src) && p.src[p.pos] != ')' {
		if len(operands) > 0 {
			if p.src[p.pos] != ',' {
				return nil, errors.Errorf("expected ',' at offset %d", p.pos)
			}
			p.pos++
		}
		operand, err := p.node()
		if err != nil {
			return nil, errors.Wrapf(err, "in operand %d of %q", len(operands), name)
		}
		operands = append(operands, operand)
		p.ws()
	}
	if p.pos >= len(p.src) {
		return nil, errors.Errorf("missing ')' for %q", name)
	}
	p.pos++

	return ir.NewOp(name, operands...), nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}
