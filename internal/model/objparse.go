package model

import (
	"strconv"
	"strings"

	"github.com/mechiko/cupsfilters/internal/types"
	"github.com/pkg/errors"
)

// parseObjectBody parses one "N G obj ... endobj" body (everything after
// the "obj" keyword, up to but not including the next object header) into
// a types.Object, plus the raw stream bytes if the object is a stream.
func parseObjectBody(body []byte) (types.Object, []byte, error) {
	p := &objParser{s: body}
	p.skipWS()
	obj, err := p.parseValue()
	if err != nil {
		return nil, nil, err
	}
	p.skipWS()
	if !p.hasKeyword("stream") {
		return obj, nil, nil
	}
	dict, ok := obj.(types.Dict)
	if !ok {
		return nil, nil, errors.New("model: stream keyword after non-dict object")
	}
	p.pos += len("stream")
	// Per PDF spec, "stream" is followed by CRLF or LF (never bare CR).
	if p.pos < len(p.s) && p.s[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.s) && p.s[p.pos] == '\n' {
		p.pos++
	}
	length := 0
	if n, ok := dict["Length"].(types.Integer); ok {
		length = int(n)
	}
	start := p.pos
	end := start + length
	if length == 0 || end > len(p.s) {
		// Length missing/wrong (common for brute-force scans of damaged
		// or regenerated files) - fall back to scanning for "endstream".
		idx := strings.Index(string(p.s[start:]), "endstream")
		if idx < 0 {
			return nil, nil, errors.New("model: endstream not found")
		}
		end = start + idx
	}
	raw := append([]byte(nil), p.s[start:end]...)
	return dict, raw, nil
}

type objParser struct {
	s   []byte
	pos int
}

func (p *objParser) skipWS() {
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '%':
			for p.pos < len(p.s) && p.s[p.pos] != '\n' {
				p.pos++
			}
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0:
			p.pos++
		default:
			return
		}
	}
}

func (p *objParser) hasKeyword(kw string) bool {
	return strings.HasPrefix(string(p.s[p.pos:]), kw)
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isWS(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (p *objParser) parseValue() (types.Object, error) {
	p.skipWS()
	if p.pos >= len(p.s) {
		return nil, errors.New("model: unexpected end of object")
	}
	switch c := p.s[p.pos]; {
	case c == '/':
		return p.parseName(), nil
	case c == '(':
		return p.parseLiteralString(), nil
	case c == '<' && p.pos+1 < len(p.s) && p.s[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString(), nil
	case c == '[':
		return p.parseArray()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumberOrRef()
	default:
		if p.hasKeyword("true") {
			p.pos += 4
			return types.Boolean(true), nil
		}
		if p.hasKeyword("false") {
			p.pos += 5
			return types.Boolean(false), nil
		}
		if p.hasKeyword("null") {
			p.pos += 4
			return types.Name(""), nil
		}
		return nil, errors.Errorf("model: unexpected byte %q at offset %d", c, p.pos)
	}
}

func (p *objParser) parseName() types.Object {
	p.pos++ // '/'
	start := p.pos
	for p.pos < len(p.s) && !isWS(p.s[p.pos]) && !isDelim(p.s[p.pos]) {
		p.pos++
	}
	name := string(p.s[start:p.pos])
	if strings.Contains(name, "#") {
		name = unescapeNameHex(name)
	}
	return types.Name(name)
}

func unescapeNameHex(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && i+2 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (p *objParser) parseLiteralString() types.Object {
	p.pos++ // '('
	var b strings.Builder
	depth := 1
	for p.pos < len(p.s) && depth > 0 {
		c := p.s[p.pos]
		switch c {
		case '\\':
			p.pos++
			if p.pos < len(p.s) {
				b.WriteByte(p.s[p.pos])
				p.pos++
			}
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				p.pos++
				return types.StringLiteral(b.String())
			}
		}
		b.WriteByte(c)
		p.pos++
	}
	return types.StringLiteral(b.String())
}

func (p *objParser) parseHexString() types.Object {
	p.pos++ // '<'
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != '>' {
		p.pos++
	}
	hex := string(p.s[start:p.pos])
	if p.pos < len(p.s) {
		p.pos++ // '>'
	}
	hex = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, hex)
	if len(hex)%2 == 1 {
		hex += "0"
	}
	out := make([]byte, 0, len(hex)/2)
	for i := 0; i+1 < len(hex); i += 2 {
		if v, err := strconv.ParseUint(hex[i:i+2], 16, 8); err == nil {
			out = append(out, byte(v))
		}
	}
	return types.StringLiteral(string(out))
}

func (p *objParser) parseDict() (types.Object, error) {
	p.pos += 2 // '<<'
	dict := types.Dict{}
	for {
		p.skipWS()
		if p.pos+1 < len(p.s) && p.s[p.pos] == '>' && p.s[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.pos >= len(p.s) {
			return nil, errors.New("model: unterminated dict")
		}
		if p.s[p.pos] != '/' {
			return nil, errors.Errorf("model: expected name key at offset %d", p.pos)
		}
		key := p.parseName().(types.Name)
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = val
	}
}

func (p *objParser) parseArray() (types.Object, error) {
	p.pos++ // '['
	var arr types.Array
	for {
		p.skipWS()
		if p.pos < len(p.s) && p.s[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		if p.pos >= len(p.s) {
			return nil, errors.New("model: unterminated array")
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
}

// parseNumberOrRef parses a number, or - when it's followed by two more
// integers and the keyword "R" - an indirect reference.
func (p *objParser) parseNumberOrRef() (types.Object, error) {
	numStart := p.pos
	isFloat := false
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '.' {
			isFloat = true
			p.pos++
			continue
		}
		if c == '+' || c == '-' || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	numTok := string(p.s[numStart:p.pos])
	if isFloat {
		f, _ := strconv.ParseFloat(numTok, 64)
		return types.Float(f), nil
	}
	n, _ := strconv.ParseInt(numTok, 10, 64)

	// Look ahead for "<gen> R" to detect an indirect reference.
	save := p.pos
	p.skipWS()
	genStart := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos > genStart {
		gen := string(p.s[genStart:p.pos])
		afterGen := p.pos
		p.skipWS()
		if p.pos < len(p.s) && p.s[p.pos] == 'R' && (p.pos+1 >= len(p.s) || isWS(p.s[p.pos+1]) || isDelim(p.s[p.pos+1])) {
			p.pos++
			g, _ := strconv.Atoi(gen)
			return types.IndirectRef{ObjectNumber: int(n), GenerationNumber: g}, nil
		}
		p.pos = afterGen
	}
	p.pos = save
	return types.Integer(n), nil
}
