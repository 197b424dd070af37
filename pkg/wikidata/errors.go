package wikidata

import "errors"

var (
	// ErrFetch indicates a failure to retrieve entities from the API.
	ErrFetch = errors.New("wikidata fetch error")
	// ErrProtocol indicates a malformed or unexpected API response.
	ErrProtocol = errors.New("wikidata protocol error")
	// ErrNotFound indicates the requested entity does not exist in the graph.
	ErrNotFound = errors.New("wikidata entity not found")
)
