package wikidata

// Dependencies computes the set of other identifiers an entity references
// through its claims, restricted to the interesting datatypes: each surviving
// mainsnak contributes its property id (plus the referenced item id for
// wikibase-item values), and each value-typed qualifier snak contributes the
// same. The result is deduplicated, in first-seen order over the canonical
// claim iteration order. A malformed item reference fails the whole walk with
// ErrProtocol, so bad data surfaces during closure extraction rather than at
// render time.
func Dependencies(e *Entity) ([]string, error) {
	seen := make(map[string]bool)
	var deps []string

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		deps = append(deps, id)
	}

	addRef := func(snak Snak) error {
		if snak.Datatype != DatatypeItem || snak.Datavalue == nil {
			return nil
		}
		id, err := snak.Datavalue.ItemID()
		if err != nil {
			return err
		}
		add(id)
		return nil
	}

	for _, prop := range e.ClaimProperties() {
		for _, st := range e.Claims[prop] {
			main := st.Mainsnak
			if !interestingDatatype(main.Datatype) {
				continue
			}

			add(main.Property)
			if err := addRef(main); err != nil {
				return nil, err
			}

			for _, q := range st.OrderedQualifiers() {
				if q.Snaktype != SnaktypeValue {
					continue
				}
				add(q.Property)
				if err := addRef(q); err != nil {
					return nil, err
				}
			}
		}
	}

	return deps, nil
}
