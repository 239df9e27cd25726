package rdf

import "testing"

func TestNQuadsParserTriple(t *testing.T) {
	input := `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .`
	quads, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	q := quads[0]
	if q.Subject.(*IRI).Value() != "http://example.org/alice" {
		t.Errorf("unexpected subject: %s", q.Subject)
	}
	if _, ok := q.Graph.(*DefaultGraph); !ok {
		t.Errorf("expected default graph, got %T", q.Graph)
	}
}

func TestNQuadsParserQuadWithLanguageAndDatatype(t *testing.T) {
	input := `_:b0 <http://example.org/label> "bonjour"@fr <http://example.org/g1> .
<http://example.org/s> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .`
	quads, err := NewNQuadsParser(input).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}

	lit := quads[0].Object.(*Literal)
	if lit.Language != "fr" || lit.Label != "bonjour" {
		t.Errorf("unexpected literal: %+v", lit)
	}
	if g, ok := quads[0].Graph.(*IRI); !ok || g.Value() != "http://example.org/g1" {
		t.Errorf("unexpected graph: %v", quads[0].Graph)
	}

	typed := quads[1].Object.(*Literal)
	if typed.Label != "30" || typed.Datatype == nil || typed.Datatype.Value() != XSDInteger.Value() {
		t.Errorf("unexpected typed literal: %+v", typed)
	}
}

func TestNQuadsParserRejectsMalformed(t *testing.T) {
	if _, err := NewNQuadsParser(`<http://example.org/s> <http://example.org/p> "unterminated`).Parse(); err == nil {
		t.Error("expected error for unterminated literal")
	}
}
