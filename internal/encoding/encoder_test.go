package encoding

import (
	"math"
	"testing"
)

func TestIRIRoundTrip(t *testing.T) {
	data, err := EncodeIRI(42, "localName")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	ns, local, err := DecodeIRI(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ns != 42 || local != "localName" {
		t.Errorf("got (%d, %q), want (42, %q)", ns, local, "localName")
	}
}

func TestEncodeIRIRejectsNamespaceIDBeyond32Bits(t *testing.T) {
	if _, err := EncodeIRI(uint64(math.MaxUint32)+1, "x"); err == nil {
		t.Error("expected an error encoding a namespace id that no longer fits 32 bits")
	}
}

func TestBNodeRoundTrip(t *testing.T) {
	data := EncodeBNode("b17")
	id, err := DecodeBNode(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if id != "b17" {
		t.Errorf("got %q, want %q", id, "b17")
	}
}

func TestLiteralRoundTripTyped(t *testing.T) {
	data, err := EncodeLiteral(7, "", "30")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	dl, err := DecodeLiteral(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dl.DatatypeID != 7 || dl.Language != "" || dl.Label != "30" {
		t.Errorf("unexpected decode: %+v", dl)
	}
}

func TestLiteralRoundTripLanguageTagged(t *testing.T) {
	data, err := EncodeLiteral(legacyDatatypeID, "en", "hello")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	dl, err := DecodeLiteral(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !IsLegacyDatatype(dl.DatatypeID) || dl.Language != "en" || dl.Label != "hello" {
		t.Errorf("unexpected decode: %+v", dl)
	}
}

func TestEncodeLiteralRejectsDatatypeIDBeyond32Bits(t *testing.T) {
	if _, err := EncodeLiteral(uint64(math.MaxUint32)+1, "", "x"); err == nil {
		t.Error("expected an error encoding a datatype id that no longer fits 32 bits")
	}
}

// TestBoundaryPlainLanguageTaggedLiteralLayout pins the exact byte
// layout a plain-string, language-tagged literal must have: a u32
// datatype-id field (all zero for the legacy sentinel) followed by a
// one-byte language length.
func TestBoundaryPlainLanguageTaggedLiteralLayout(t *testing.T) {
	data, err := EncodeLiteral(legacyDatatypeID, "en", "hello")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got, want := data[1:5], []byte{0, 0, 0, 0}; string(got) != string(want) {
		t.Errorf("datatypeID bytes = %x, want %x", got, want)
	}
	if data[5] != 2 {
		t.Errorf("langLen byte = %d, want 2", data[5])
	}
}

func TestNamespaceRoundTrip(t *testing.T) {
	data := EncodeNamespace("http://example.org/")
	if got := DecodeNamespace(data); got != "http://example.org/" {
		t.Errorf("got %q, want %q", got, "http://example.org/")
	}
}

func TestDecodeIRIRejectsWrongKind(t *testing.T) {
	if _, _, err := DecodeIRI(EncodeBNode("x")); err == nil {
		t.Error("expected error decoding a BNode payload as an IRI")
	}
}
