// Package encoding implements the canonical byte layouts the value
// dictionary uses to turn an RDF term into the payload stored (and
// content-addressed) under a value ID, and back.
//
// Every encoded value starts with a one-byte kind tag so a payload can
// be decoded without external context beyond resolving the namespace
// or datatype IDs it embeds. IDs are encoded big-endian, the same byte
// order the index uses for its forward (ID) keys; there the key order
// is therefore ID order, which the index relies on to recover the
// highest assigned ID at startup and to walk IDs in ascending order.
package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the one-byte discriminator prefixing every encoded value.
type Kind byte

const (
	KindIRI       Kind = 0x01
	KindBNode     Kind = 0x02
	KindLiteral   Kind = 0x03
	KindNamespace Kind = 0x04
)

// legacyDatatypeID marks a literal encoded before datatype IDs existed:
// plain literals and language-tagged literals (rdf:langString) were
// stored with no datatype reference at all. Decoders must special-case
// it rather than resolve it through the namespace/datatype table.
const legacyDatatypeID uint64 = 0

// namespaceID and datatypeID are embedded in IRI/literal payloads as a
// 4-byte field, distinct from the 8-byte ID_KEY ID field the allocator
// hands out. A value ID that has grown past 32 bits can still be
// addressed directly by ID_KEY, but can no longer be referenced from
// inside another value's payload — EncodeIRI/EncodeLiteral fail loudly
// in that case rather than truncate silently.
func fitsEmbeddedID(id uint64) error {
	if id > math.MaxUint32 {
		return fmt.Errorf("valuedict/encoding: id %d no longer fits the 4-byte embedded reference field", id)
	}
	return nil
}

// EncodeIRI returns the canonical payload for an IRI whose namespace
// has already been assigned namespaceID.
func EncodeIRI(namespaceID uint64, localName string) ([]byte, error) {
	if err := fitsEmbeddedID(namespaceID); err != nil {
		return nil, err
	}
	buf := make([]byte, 1+4+len(localName))
	buf[0] = byte(KindIRI)
	binary.BigEndian.PutUint32(buf[1:5], uint32(namespaceID))
	copy(buf[5:], localName)
	return buf, nil
}

// DecodeIRI splits an IRI payload back into its namespace ID and local name.
func DecodeIRI(data []byte) (namespaceID uint64, localName string, err error) {
	if len(data) < 5 || Kind(data[0]) != KindIRI {
		return 0, "", fmt.Errorf("valuedict/encoding: malformed IRI payload")
	}
	namespaceID = uint64(binary.BigEndian.Uint32(data[1:5]))
	localName = string(data[5:])
	return namespaceID, localName, nil
}

// EncodeBNode returns the canonical payload for a blank node.
func EncodeBNode(id string) []byte {
	buf := make([]byte, 1+len(id))
	buf[0] = byte(KindBNode)
	copy(buf[1:], id)
	return buf
}

// DecodeBNode extracts the blank node identifier from its payload.
func DecodeBNode(data []byte) (id string, err error) {
	if len(data) < 1 || Kind(data[0]) != KindBNode {
		return "", fmt.Errorf("valuedict/encoding: malformed blank node payload")
	}
	return string(data[1:]), nil
}

// EncodeLiteral returns the payload for a literal with the given
// datatype ID, language tag and label. The canonical form passes the
// ID of the literal's effective datatype (xsd:string for a plain
// literal, rdf:langString for a language-tagged one); passing
// legacyDatatypeID instead produces the legacy layout of plain and
// language-tagged literals written before datatype IDs existed.
func EncodeLiteral(datatypeID uint64, language, label string) ([]byte, error) {
	if len(language) > 255 {
		panic("valuedict/encoding: language tag longer than 255 bytes")
	}
	if err := fitsEmbeddedID(datatypeID); err != nil {
		return nil, err
	}
	buf := make([]byte, 1+4+1+len(language)+len(label))
	buf[0] = byte(KindLiteral)
	binary.BigEndian.PutUint32(buf[1:5], uint32(datatypeID))
	buf[5] = byte(len(language))
	offset := 6
	copy(buf[offset:], language)
	offset += len(language)
	copy(buf[offset:], label)
	return buf, nil
}

// DecodedLiteral is the result of decoding a literal payload. DatatypeID
// is legacyDatatypeID when the literal predates datatype ID tracking;
// callers must treat that as "no explicit datatype" rather than look it up.
type DecodedLiteral struct {
	DatatypeID uint64
	Language   string
	Label      string
}

// DecodeLiteral splits a literal payload into its constituent parts.
func DecodeLiteral(data []byte) (DecodedLiteral, error) {
	if len(data) < 6 || Kind(data[0]) != KindLiteral {
		return DecodedLiteral{}, fmt.Errorf("valuedict/encoding: malformed literal payload")
	}
	datatypeID := uint64(binary.BigEndian.Uint32(data[1:5]))
	langLen := int(data[5])
	if len(data) < 6+langLen {
		return DecodedLiteral{}, fmt.Errorf("valuedict/encoding: truncated literal payload")
	}
	language := string(data[6 : 6+langLen])
	label := string(data[6+langLen:])
	return DecodedLiteral{DatatypeID: datatypeID, Language: language, Label: label}, nil
}

// IsLegacyDatatype reports whether id is the sentinel used by literals
// encoded without a resolvable datatype ID.
func IsLegacyDatatype(id uint64) bool { return id == legacyDatatypeID }

// EncodeNamespace returns the canonical payload for a namespace string.
// Namespaces carry no kind tag of their own; callers distinguish a
// namespace entry from a term entry by inspecting the leading byte
// against the known term kind tags, so the payload here is the raw
// namespace bytes.
func EncodeNamespace(namespace string) []byte {
	return []byte(namespace)
}

// DecodeNamespace is the identity inverse of EncodeNamespace.
func DecodeNamespace(data []byte) string {
	return string(data)
}

// KindOf inspects the first byte of a term payload (not a namespace
// payload, which carries no tag) without fully decoding it.
func KindOf(data []byte) (Kind, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("valuedict/encoding: empty payload")
	}
	return Kind(data[0]), nil
}
