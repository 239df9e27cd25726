package valuedict

import (
	"fmt"

	"github.com/ontolabs/valuedict/internal/encoding"
	"github.com/ontolabs/valuedict/internal/kv"
	"github.com/ontolabs/valuedict/pkg/rdf"
)

// resolveID looks up the ID already assigned to term, trying the
// canonical encoding first and, for plain-string/language-tagged
// literals, the legacy encoding second. It never allocates.
func (s *Store) resolveID(txn kv.Txn, term rdf.Term) (uint64, bool, error) {
	payload, err := s.encode(txn, term, false)
	if err != nil {
		return 0, false, err
	}
	if payload != nil {
		if id, ok := s.caches.GetValueID(payload); ok {
			s.hit("value_id")
			return id, true, nil
		}
		s.miss("value_id")
		id, found, err := s.idx.FindID(txn, payload)
		if err != nil {
			return 0, false, ioError("find id", err)
		}
		if found {
			s.caches.PutValueID(payload, id)
			return id, true, nil
		}
	}

	lit, ok := term.(*rdf.Literal)
	if !ok {
		return 0, false, nil
	}
	legacy := legacyPayload(lit)
	if legacy == nil {
		return 0, false, nil
	}
	if id, ok := s.caches.GetValueID(legacy); ok {
		return id, true, nil
	}
	id, found, err := s.idx.FindID(txn, legacy)
	if err != nil {
		return 0, false, ioError("find id (legacy)", err)
	}
	if !found {
		return 0, false, nil
	}
	s.caches.PutValueID(legacy, id)
	return id, true, nil
}

// idFor resolves term's ID, allocating one when create is true and none
// was found.
func (s *Store) idFor(txn kv.Txn, term rdf.Term, create bool) (uint64, bool, error) {
	id, found, err := s.resolveID(txn, term)
	if err != nil || found || !create {
		return id, found, err
	}
	id, err = s.assignID(txn, term)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// assignID allocates a fresh ID for term, encoding it in create mode
// (which recursively stores its namespace or datatype), and records it
// in both the index and the caches.
func (s *Store) assignID(txn kv.Txn, term rdf.Term) (uint64, error) {
	payload, err := s.encode(txn, term, true)
	if err != nil {
		return 0, err
	}
	if payload == nil {
		return 0, invalidArgumentError("value could not be encoded")
	}
	id := s.alloc.Next()
	if err := s.idx.Put(txn, id, payload); err != nil {
		return 0, ioError("write index entry", err)
	}
	s.caches.PutValue(id, payload)
	s.caches.PutValueID(payload, id)
	if s.metrics != nil {
		s.metrics.StoresTotal.Inc()
		s.metrics.NextValueID.Set(float64(s.alloc.Snapshot()))
		if s.idx.IsOverflowPayload(payload) {
			s.metrics.OverflowEntries.Inc()
		}
	}
	return id, nil
}

// encode produces the canonical byte payload for term. A nil, nil
// result means term references a namespace or datatype that does not
// exist yet and create is false — "unknown", not an error.
func (s *Store) encode(txn kv.Txn, term rdf.Term, create bool) ([]byte, error) {
	switch t := term.(type) {
	case *rdf.IRI:
		nsID, found, err := s.resolveNamespaceID(txn, t.Namespace, create)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return encoding.EncodeIRI(nsID, t.LocalName)
	case *rdf.BNode:
		return encoding.EncodeBNode(t.ID), nil
	case *rdf.Literal:
		return s.encodeLiteral(txn, t, create)
	default:
		return nil, invalidArgumentError(fmt.Sprintf("value of type %T is neither IRI, BNode, nor Literal", term))
	}
}

func (s *Store) encodeLiteral(txn kv.Txn, lit *rdf.Literal, create bool) ([]byte, error) {
	if len(lit.Language) > 255 {
		return nil, invalidArgumentError("language tag longer than 255 bytes")
	}
	dtID, found, err := s.idFor(txn, effectiveDatatype(lit), create)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return encoding.EncodeLiteral(dtID, lit.Language, lit.Label)
}

// resolveNamespaceID looks up (and optionally creates) the ID for a
// namespace string. Namespaces share the same ID space and the same
// index as values.
func (s *Store) resolveNamespaceID(txn kv.Txn, ns string, create bool) (uint64, bool, error) {
	if id, ok := s.caches.GetNamespaceID(ns); ok {
		return id, true, nil
	}
	payload := encoding.EncodeNamespace(ns)
	id, found, err := s.idx.FindID(txn, payload)
	if err != nil {
		return 0, false, ioError("find namespace id", err)
	}
	if found {
		s.caches.PutNamespaceID(ns, id)
		s.caches.PutNamespace(id, ns)
		return id, true, nil
	}
	if !create {
		return 0, false, nil
	}

	id = s.alloc.Next()
	if err := s.idx.Put(txn, id, payload); err != nil {
		return 0, false, ioError("write namespace entry", err)
	}
	s.caches.PutNamespaceID(ns, id)
	s.caches.PutNamespace(id, ns)
	if s.metrics != nil {
		s.metrics.NextValueID.Set(float64(s.alloc.Snapshot()))
		if s.idx.IsOverflowPayload(payload) {
			s.metrics.OverflowEntries.Inc()
		}
	}
	return id, true, nil
}

// namespaceByID resolves the namespace string stored under id.
func (s *Store) namespaceByID(txn kv.Txn, id uint64) (string, bool, error) {
	if ns, ok := s.caches.GetNamespace(id); ok {
		return ns, true, nil
	}
	payload, found, err := s.idx.Get(txn, id)
	if err != nil {
		return "", false, ioError("get namespace", err)
	}
	if !found {
		return "", false, nil
	}
	ns := encoding.DecodeNamespace(payload)
	s.caches.PutNamespace(id, ns)
	return ns, true, nil
}

// valueByID resolves the term stored under id.
func (s *Store) valueByID(txn kv.Txn, id uint64) (rdf.Term, bool, error) {
	if payload, ok := s.caches.GetValue(id); ok {
		term, err := s.decodeTerm(txn, payload)
		return term, true, err
	}
	payload, found, err := s.idx.Get(txn, id)
	if err != nil {
		return nil, false, ioError("get value", err)
	}
	if !found {
		return nil, false, nil
	}
	s.caches.PutValue(id, payload)
	term, err := s.decodeTerm(txn, payload)
	if err != nil {
		return nil, false, err
	}
	return term, true, nil
}

// decodeTerm is the exact inverse of encode, discriminated by the
// payload's leading kind byte.
func (s *Store) decodeTerm(txn kv.Txn, payload []byte) (rdf.Term, error) {
	kind, err := encoding.KindOf(payload)
	if err != nil {
		return nil, corruptionError("empty payload", err)
	}

	switch kind {
	case encoding.KindIRI:
		nsID, local, err := encoding.DecodeIRI(payload)
		if err != nil {
			return nil, corruptionError("decode iri", err)
		}
		ns, found, err := s.namespaceByID(txn, nsID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, corruptionError("iri references unknown namespace id", nil)
		}
		return rdf.NewIRIFromParts(ns, local), nil

	case encoding.KindBNode:
		id, err := encoding.DecodeBNode(payload)
		if err != nil {
			return nil, corruptionError("decode bnode", err)
		}
		return rdf.NewBNode(id), nil

	case encoding.KindLiteral:
		dl, err := encoding.DecodeLiteral(payload)
		if err != nil {
			return nil, corruptionError("decode literal", err)
		}
		if encoding.IsLegacyDatatype(dl.DatatypeID) {
			if dl.Language != "" {
				return rdf.NewLiteralWithLanguage(dl.Label, dl.Language), nil
			}
			return rdf.NewLiteral(dl.Label), nil
		}
		dtTerm, found, err := s.valueByID(txn, dl.DatatypeID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, corruptionError("literal references unknown datatype id", nil)
		}
		dtIRI, ok := dtTerm.(*rdf.IRI)
		if !ok {
			return nil, corruptionError("literal datatype id does not resolve to an iri", nil)
		}
		switch {
		case dl.Language != "":
			return rdf.NewLiteralWithLanguage(dl.Label, dl.Language), nil
		case dtIRI.Equals(rdf.XSDString):
			return rdf.NewLiteral(dl.Label), nil
		default:
			return rdf.NewLiteralWithDatatype(dl.Label, dtIRI), nil
		}

	default:
		return nil, corruptionError(fmt.Sprintf("payload has unrecognized kind tag %#x", byte(kind)), nil)
	}
}

// effectiveDatatype is the datatype every literal canonically encodes
// against: its explicit datatype, or rdf:langString for a language-
// tagged literal, or xsd:string for a plain one.
func effectiveDatatype(lit *rdf.Literal) rdf.Term {
	switch {
	case lit.Datatype != nil:
		return lit.Datatype
	case lit.Language != "":
		return rdf.RDFLangString
	default:
		return rdf.XSDString
	}
}

// legacyPayload returns the pre-datatype-ID encoding of lit, for
// literals whose effective datatype is xsd:string or rdf:langString.
// It returns nil for any other literal, since the legacy format never
// existed for genuinely typed literals.
func legacyPayload(lit *rdf.Literal) []byte {
	dt := effectiveDatatype(lit)
	iri, ok := dt.(*rdf.IRI)
	if !ok {
		return nil
	}
	if !iri.Equals(rdf.XSDString) && !iri.Equals(rdf.RDFLangString) {
		return nil
	}
	payload, _ := encoding.EncodeLiteral(0, lit.Language, lit.Label)
	return payload
}

func (s *Store) hit(cacheName string) {
	if s.metrics != nil {
		s.metrics.CacheHitsTotal.WithLabelValues(cacheName).Inc()
	}
}

func (s *Store) miss(cacheName string) {
	if s.metrics != nil {
		s.metrics.CacheMissesTotal.WithLabelValues(cacheName).Inc()
	}
}
