package wikidata

import (
	"testing"

	"github.com/adityahase/search/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestEntity(t *testing.T, id, doc string) *Entity {
	t.Helper()
	e, err := ParseEntity(store.Document{ID: id, JSON: []byte(doc)})
	require.NoError(t, err)
	return e
}

func TestDependencies(t *testing.T) {
	doc := `{
		"id": "Q1047",
		"claims": {
			"P31": [
				{"mainsnak": {"property": "P31", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q5"}}}}
			],
			"P39": [
				{"mainsnak": {"property": "P39", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q1113"}}},
				 "qualifiers": {
					"P580": [{"property": "P580", "datatype": "time", "snaktype": "value",
						"datavalue": {"type": "time", "value": {"time": "+1947-08-15T00:00:00Z"}}}],
					"P1365": [{"property": "P1365", "datatype": "wikibase-item", "snaktype": "value",
						"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q9439"}}}]
				 },
				 "qualifiers-order": ["P580", "P1365"]}
			],
			"P213": [
				{"mainsnak": {"property": "P213", "datatype": "external-id", "snaktype": "value",
					"datavalue": {"type": "string", "value": "0000 0001 2124 5161"}}}
			]
		}
	}`

	e := parseTestEntity(t, "Q1047", doc)
	deps, err := Dependencies(e)
	require.NoError(t, err)

	// P213 (external-id) contributes nothing; everything else does
	assert.ElementsMatch(t, []string{"P31", "Q5", "P39", "Q1113", "P580", "P1365", "Q9439"}, deps)
}

func TestDependenciesDeduplicates(t *testing.T) {
	doc := `{
		"id": "Q1",
		"claims": {
			"P31": [
				{"mainsnak": {"property": "P31", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q5"}}}},
				{"mainsnak": {"property": "P31", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q5"}}}}
			]
		}
	}`

	deps, err := Dependencies(parseTestEntity(t, "Q1", doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"P31", "Q5"}, deps)
}

func TestDependenciesSkipsValuelessQualifiers(t *testing.T) {
	doc := `{
		"id": "Q1",
		"claims": {
			"P26": [
				{"mainsnak": {"property": "P26", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {"id": "Q40900"}}},
				 "qualifiers": {
					"P582": [{"property": "P582", "datatype": "time", "snaktype": "somevalue"}]
				 },
				 "qualifiers-order": ["P582"]}
			]
		}
	}`

	deps, err := Dependencies(parseTestEntity(t, "Q1", doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"P26", "Q40900"}, deps)
}

func TestDependenciesNoValueMainsnak(t *testing.T) {
	// A novalue mainsnak of an interesting datatype still contributes its
	// property id, but has no datavalue to follow.
	doc := `{
		"id": "Q1",
		"claims": {
			"P40": [
				{"mainsnak": {"property": "P40", "datatype": "wikibase-item", "snaktype": "novalue"}}
			]
		}
	}`

	deps, err := Dependencies(parseTestEntity(t, "Q1", doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"P40"}, deps)
}

func TestDependenciesMalformedItemReference(t *testing.T) {
	// An item-valued snak whose datavalue carries no referenced id must fail
	// the walk, not vanish silently.
	doc := `{
		"id": "Q1",
		"claims": {
			"P31": [
				{"mainsnak": {"property": "P31", "datatype": "wikibase-item", "snaktype": "value",
					"datavalue": {"type": "wikibase-entityid", "value": {}}}}
			]
		}
	}`

	_, err := Dependencies(parseTestEntity(t, "Q1", doc))
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDependenciesEmptyClaims(t *testing.T) {
	deps, err := Dependencies(parseTestEntity(t, "Q1", `{"id":"Q1","claims":{}}`))
	require.NoError(t, err)
	assert.Empty(t, deps)
}
