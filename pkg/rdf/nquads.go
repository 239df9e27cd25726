package rdf

import (
	"fmt"
	"strings"
)

// NQuadsParser is a minimal N-Quads reader: one quad per line,
// `<subject> <predicate> <object> [<graph>] .`. It exists to feed the
// dictionary's bulk-ingestion tool (see cmd/valuedict) with terms —
// it does not attempt full Turtle/TriG grammar (prefixes, collections,
// nested blank node property lists), since ingestion here only cares
// about extracting distinct terms, not triple structure.
type NQuadsParser struct {
	input  string
	pos    int
	length int
}

func NewNQuadsParser(input string) *NQuadsParser {
	return &NQuadsParser{input: input, length: len(input)}
}

// Parse reads every non-blank, non-comment line as a quad.
func (p *NQuadsParser) Parse() ([]*Quad, error) {
	var quads []*Quad
	for p.pos < p.length {
		p.skipWhitespace()
		if p.pos >= p.length {
			break
		}
		if p.input[p.pos] == '#' {
			p.skipToEOL()
			continue
		}

		start := p.pos
		quad, err := p.parseQuad()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", strings.Count(p.input[:start], "\n")+1, err)
		}
		quads = append(quads, quad)
	}
	return quads, nil
}

func (p *NQuadsParser) parseQuad() (*Quad, error) {
	subject, err := p.parseSubjectOrObject()
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	p.skipWhitespace()

	predicate, err := p.parseIRI()
	if err != nil {
		return nil, fmt.Errorf("predicate: %w", err)
	}
	p.skipWhitespace()

	object, err := p.parseSubjectOrObject()
	if err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	p.skipWhitespace()

	graph := Term(NewDefaultGraph())
	if p.pos < p.length && p.input[p.pos] != '.' {
		graph, err = p.parseSubjectOrObject()
		if err != nil {
			return nil, fmt.Errorf("graph: %w", err)
		}
		p.skipWhitespace()
	}

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' terminator")
	}
	p.pos++

	return NewQuad(subject, predicate, object, graph), nil
}

func (p *NQuadsParser) parseSubjectOrObject() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch p.input[p.pos] {
	case '<':
		return p.parseIRI()
	case '_':
		return p.parseBNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, fmt.Errorf("unexpected character %q", p.input[p.pos])
	}
}

func (p *NQuadsParser) parseIRI() (*IRI, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return nil, fmt.Errorf("expected '<'")
	}
	start := p.pos + 1
	end := strings.IndexByte(p.input[start:], '>')
	if end < 0 {
		return nil, fmt.Errorf("unterminated IRI")
	}
	iri := p.input[start : start+end]
	p.pos = start + end + 1
	return NewIRI(iri), nil
}

func (p *NQuadsParser) parseBNode() (*BNode, error) {
	if !strings.HasPrefix(p.input[p.pos:], "_:") {
		return nil, fmt.Errorf("expected '_:'")
	}
	start := p.pos + 2
	end := start
	for end < p.length && !isTermBoundary(p.input[end]) {
		end++
	}
	id := p.input[start:end]
	p.pos = end
	return NewBNode(id), nil
}

func (p *NQuadsParser) parseLiteral() (*Literal, error) {
	if p.pos >= p.length || p.input[p.pos] != '"' {
		return nil, fmt.Errorf("expected '\"'")
	}
	p.pos++
	var b strings.Builder
	for p.pos < p.length && p.input[p.pos] != '"' {
		if p.input[p.pos] == '\\' && p.pos+1 < p.length {
			b.WriteByte(unescape(p.input[p.pos+1]))
			p.pos += 2
			continue
		}
		b.WriteByte(p.input[p.pos])
		p.pos++
	}
	if p.pos >= p.length {
		return nil, fmt.Errorf("unterminated literal")
	}
	p.pos++ // closing quote
	label := b.String()

	switch {
	case p.pos < p.length && p.input[p.pos] == '@':
		p.pos++
		start := p.pos
		for p.pos < p.length && !isTermBoundary(p.input[p.pos]) {
			p.pos++
		}
		return NewLiteralWithLanguage(label, p.input[start:p.pos]), nil
	case strings.HasPrefix(p.input[p.pos:], "^^"):
		p.pos += 2
		dt, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("datatype: %w", err)
		}
		return NewLiteralWithDatatype(label, dt), nil
	default:
		return NewLiteral(label), nil
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '"':
		return '"'
	case '\\':
		return '\\'
	default:
		return c
	}
}

func isTermBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '.' || c == '@' || c == '"'
}

func (p *NQuadsParser) skipWhitespace() {
	for p.pos < p.length {
		switch p.input[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *NQuadsParser) skipToEOL() {
	for p.pos < p.length && p.input[p.pos] != '\n' {
		p.pos++
	}
}
