package wikidata

import "context"

// View is the public-facing wrapper around one resolved entity. Accessors are
// cheap reads over the decoded document; Claims re-runs normalization on each
// call, so the claim sequence is restartable.
type View struct {
	entity   *Entity
	norm     *Normalizer
	language string
}

// NewView resolves id and wraps it. With deep set, the entity's dependency
// closure is resolved eagerly in a single batched call, pre-warming the cache
// for everything claim rendering will need.
func NewView(ctx context.Context, r *Resolver, language, id string, deep bool) (*View, error) {
	entity, err := r.ResolveOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if deep {
		deps, err := Dependencies(entity)
		if err != nil {
			return nil, err
		}
		if len(deps) > 0 {
			if _, err := r.Resolve(ctx, deps); err != nil {
				return nil, err
			}
		}
	}

	return &View{
		entity:   entity,
		norm:     NewNormalizer(r, language),
		language: language,
	}, nil
}

// ID returns the entity identifier.
func (v *View) ID() string {
	return v.entity.ID
}

// Entity returns the underlying decoded document.
func (v *View) Entity() *Entity {
	return v.entity
}

// Label returns the label for the configured language.
func (v *View) Label() (string, bool) {
	return v.entity.LabelIn(v.language)
}

// Description returns the description for the configured language.
func (v *View) Description() (string, bool) {
	return v.entity.DescriptionIn(v.language)
}

// Aliases returns the aliases for the configured language, empty if none.
func (v *View) Aliases() []string {
	return v.entity.AliasesIn(v.language)
}

// Claims returns the normalized claims, one per statement whose mainsnak
// survives normalization, in the canonical claim iteration order.
func (v *View) Claims(ctx context.Context) ([]Claim, error) {
	var claims []Claim
	for _, prop := range v.entity.ClaimProperties() {
		for _, st := range v.entity.Claims[prop] {
			claim, err := v.norm.NormalizeStatement(ctx, st)
			if err != nil {
				return nil, err
			}
			if claim != nil {
				claims = append(claims, *claim)
			}
		}
	}
	return claims, nil
}
