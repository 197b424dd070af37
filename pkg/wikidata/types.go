package wikidata

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/adityahase/search/pkg/store"
)

// Datatypes as named by the wbgetentities API.
// The interesting set is the fixed allow-list everything else is filtered
// against; datatypes outside it are silently ignored.
const (
	DatatypeItem     = "wikibase-item"
	DatatypeQuantity = "quantity"
	DatatypeTime     = "time"
	DatatypeString   = "string"
)

// Snak types.
const (
	SnaktypeValue     = "value"
	SnaktypeNoValue   = "novalue"
	SnaktypeSomeValue = "somevalue"
)

func interestingDatatype(dt string) bool {
	switch dt {
	case DatatypeItem, DatatypeQuantity, DatatypeTime, DatatypeString:
		return true
	}
	return false
}

// Term is one language-tagged text value.
type Term struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Entity is a decoded Wikidata entity document (item or property).
type Entity struct {
	ID           string                 `json:"id"`
	Labels       map[string]Term        `json:"labels"`
	Descriptions map[string]Term        `json:"descriptions"`
	Aliases      map[string][]Term      `json:"aliases"`
	Claims       map[string][]Statement `json:"claims"`

	raw []byte
}

// ParseEntity decodes a stored document. The raw bytes are retained; they are
// the authoritative form and are never mutated.
func ParseEntity(doc store.Document) (*Entity, error) {
	var e Entity
	if err := json.Unmarshal(doc.JSON, &e); err != nil {
		return nil, fmt.Errorf("%w: entity %s: %v", ErrProtocol, doc.ID, err)
	}
	if e.ID == "" {
		e.ID = doc.ID
	}
	e.raw = doc.JSON
	return &e, nil
}

// Raw returns the document bytes the entity was decoded from.
func (e *Entity) Raw() []byte {
	return e.raw
}

// LabelIn returns the label for the given language.
func (e *Entity) LabelIn(lang string) (string, bool) {
	t, ok := e.Labels[lang]
	return t.Value, ok
}

// DescriptionIn returns the description for the given language.
func (e *Entity) DescriptionIn(lang string) (string, bool) {
	t, ok := e.Descriptions[lang]
	return t.Value, ok
}

// AliasesIn returns the aliases for the given language, empty if none.
func (e *Entity) AliasesIn(lang string) []string {
	terms := e.Aliases[lang]
	aliases := make([]string, 0, len(terms))
	for _, t := range terms {
		aliases = append(aliases, t.Value)
	}
	return aliases
}

// ClaimProperties returns the entity's claim property identifiers in sorted
// order. JSON object order is not retained by decoding, so sorted property
// order is the canonical claim iteration order.
func (e *Entity) ClaimProperties() []string {
	props := make([]string, 0, len(e.Claims))
	for p := range e.Claims {
		props = append(props, p)
	}
	sort.Strings(props)
	return props
}

// Statement is one property-value assertion, optionally qualified.
type Statement struct {
	Mainsnak        Snak              `json:"mainsnak"`
	Qualifiers      map[string][]Snak `json:"qualifiers"`
	QualifiersOrder []string          `json:"qualifiers-order"`
}

// OrderedQualifiers returns all qualifier snaks in declaration order.
// The qualifiers-order field drives the ordering when present; otherwise the
// qualifier property identifiers are iterated in sorted order.
func (s *Statement) OrderedQualifiers() []Snak {
	if len(s.Qualifiers) == 0 {
		return nil
	}

	order := s.QualifiersOrder
	if len(order) == 0 {
		order = make([]string, 0, len(s.Qualifiers))
		for p := range s.Qualifiers {
			order = append(order, p)
		}
		sort.Strings(order)
	}

	var snaks []Snak
	for _, prop := range order {
		snaks = append(snaks, s.Qualifiers[prop]...)
	}
	return snaks
}

// Snak is the atomic (property, datatype, snaktype, value?) unit underlying a
// statement's main value or a qualifier.
type Snak struct {
	Property  string     `json:"property"`
	Datatype  string     `json:"datatype"`
	Snaktype  string     `json:"snaktype"`
	Datavalue *Datavalue `json:"datavalue"`
}

// Datavalue carries the value payload of a snak. The shape of Value depends
// on the snak's datatype, so it is decoded on demand.
type Datavalue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ItemID returns the referenced entity id of a wikibase-item value.
func (d *Datavalue) ItemID() (string, error) {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(d.Value, &v); err != nil {
		return "", fmt.Errorf("%w: malformed item reference: %v", ErrProtocol, err)
	}
	if v.ID == "" {
		return "", fmt.Errorf("%w: item reference without id", ErrProtocol)
	}
	return v.ID, nil
}

// Amount returns the numeric-string amount of a quantity value.
func (d *Datavalue) Amount() (string, error) {
	var v struct {
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(d.Value, &v); err != nil {
		return "", fmt.Errorf("%w: malformed quantity: %v", ErrProtocol, err)
	}
	return v.Amount, nil
}

// Time returns the ISO-8601 timestamp of a time value.
func (d *Datavalue) Time() (string, error) {
	var v struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(d.Value, &v); err != nil {
		return "", fmt.Errorf("%w: malformed time: %v", ErrProtocol, err)
	}
	return v.Time, nil
}

// Text returns a plain string value.
func (d *Datavalue) Text() (string, error) {
	var s string
	if err := json.Unmarshal(d.Value, &s); err != nil {
		return "", fmt.Errorf("%w: malformed string value: %v", ErrProtocol, err)
	}
	return s, nil
}
