package wikidata

import (
	"context"
	"fmt"
)

// Pair is a displayable (property-label, value) tuple.
type Pair struct {
	Property string
	Value    string
}

// Claim is a normalized statement: the mainsnak pair plus any qualifier pairs
// that survived normalization, in declaration order.
type Claim struct {
	Property   string
	Value      string
	Qualifiers []Pair
}

// Normalizer turns raw snaks into displayable pairs, resolving property and
// referenced-entity labels through the Resolver. Label lookups are memoized
// for the lifetime of the normalizer, and an in-flight set bounds recursion
// over cyclic references.
type Normalizer struct {
	resolver *Resolver
	language string
	labels   map[string]string
	inFlight map[string]bool
}

// NewNormalizer creates a Normalizer for the configured language.
func NewNormalizer(r *Resolver, language string) *Normalizer {
	return &Normalizer{
		resolver: r,
		language: language,
		labels:   make(map[string]string),
		inFlight: make(map[string]bool),
	}
}

// NormalizeSnak produces the (property-label, value) pair for a snak, or nil
// when the snak's datatype is not interesting or it carries no value.
func (n *Normalizer) NormalizeSnak(ctx context.Context, snak Snak) (*Pair, error) {
	if !interestingDatatype(snak.Datatype) {
		return nil, nil
	}
	if snak.Snaktype != SnaktypeValue {
		return nil, nil
	}
	if snak.Datavalue == nil {
		return nil, fmt.Errorf("%w: value snak %s has no datavalue", ErrProtocol, snak.Property)
	}

	property, err := n.labelFor(ctx, snak.Property)
	if err != nil {
		return nil, err
	}

	var value string
	switch snak.Datatype {
	case DatatypeItem:
		id, err := snak.Datavalue.ItemID()
		if err != nil {
			return nil, err
		}
		value, err = n.labelFor(ctx, id)
		if err != nil {
			return nil, err
		}
	case DatatypeQuantity:
		value, err = snak.Datavalue.Amount()
	case DatatypeTime:
		value, err = snak.Datavalue.Time()
	default:
		value, err = snak.Datavalue.Text()
	}
	if err != nil {
		return nil, err
	}

	return &Pair{Property: property, Value: value}, nil
}

// NormalizeStatement normalizes a statement's mainsnak and its qualifiers.
// It returns nil when the mainsnak does not survive normalization. The
// Qualifiers field stays empty when no qualifier survives.
func (n *Normalizer) NormalizeStatement(ctx context.Context, st Statement) (*Claim, error) {
	main, err := n.NormalizeSnak(ctx, st.Mainsnak)
	if err != nil || main == nil {
		return nil, err
	}

	claim := &Claim{Property: main.Property, Value: main.Value}

	for _, q := range st.OrderedQualifiers() {
		pair, err := n.NormalizeSnak(ctx, q)
		if err != nil {
			return nil, err
		}
		if pair != nil {
			claim.Qualifiers = append(claim.Qualifiers, *pair)
		}
	}

	return claim, nil
}

// labelFor resolves an identifier and returns its label in the configured
// language, falling back to the bare identifier when the entity has no label
// for it. The in-flight set guards against cycles in the raw data: a lookup
// re-entered for an identifier already being resolved returns the identifier
// itself instead of recursing.
func (n *Normalizer) labelFor(ctx context.Context, id string) (string, error) {
	if label, ok := n.labels[id]; ok {
		return label, nil
	}
	if n.inFlight[id] {
		return id, nil
	}

	n.inFlight[id] = true
	defer delete(n.inFlight, id)

	entity, err := n.resolver.ResolveOne(ctx, id)
	if err != nil {
		return "", err
	}

	label, ok := entity.LabelIn(n.language)
	if !ok {
		label = id
	}
	n.labels[id] = label
	return label, nil
}
