package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/adityahase/search/pkg/request"
	"github.com/adityahase/search/pkg/store"
)

// DefaultAPIEndpoint is the production wbgetentities endpoint.
const DefaultAPIEndpoint = "https://www.wikidata.org/w/api.php"

// maxBatchSize is the hard API limit on ids per wbgetentities request.
const maxBatchSize = 50

// Options configure the API client.
type Options struct {
	Language    string // languages parameter
	Site        string // sites and sitefilter parameters
	BatchSize   int    // ids per request, capped at 50
	APIEndpoint string // override, mostly for tests
}

// Client fetches entity documents in batches and persists them.
type Client struct {
	request *request.Client
	store   store.CacheStore
	opts    Options
	logger  *slog.Logger
}

// NewClient creates a new Wikidata client.
func NewClient(r *request.Client, st store.CacheStore, opts Options, logger *slog.Logger) *Client {
	if opts.APIEndpoint == "" {
		opts.APIEndpoint = DefaultAPIEndpoint
	}
	if opts.BatchSize < 1 || opts.BatchSize > maxBatchSize {
		opts.BatchSize = maxBatchSize
	}
	return &Client{
		request: r,
		store:   st,
		opts:    opts,
		logger:  logger,
	}
}

// Fetch retrieves the given entity ids and persists each document via the
// store. Ids are partitioned into consecutive chunks of at most the batch
// size, one request per chunk, processed in order; a chunk failure aborts the
// whole call.
func (c *Client) Fetch(ctx context.Context, ids []string) error {
	for i := 0; i < len(ids); i += c.opts.BatchSize {
		end := i + c.opts.BatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := c.fetchBatch(ctx, ids[i:end]); err != nil {
			return err
		}
	}
	return nil
}

type apiResponse struct {
	Entities map[string]json.RawMessage `json:"entities"`
	Error    *apiError                  `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// entityProbe decodes just enough of a document to detect the API's
// missing-entity marker.
type entityProbe struct {
	Missing *string `json:"missing"`
}

func (c *Client) fetchBatch(ctx context.Context, chunk []string) error {
	u, err := url.Parse(c.opts.APIEndpoint)
	if err != nil {
		return fmt.Errorf("invalid api endpoint: %w", err)
	}

	q := u.Query()
	q.Add("action", "wbgetentities")
	q.Add("format", "json")
	q.Add("ids", strings.Join(chunk, "|"))
	q.Add("sites", c.opts.Site)
	q.Add("languages", c.opts.Language)
	q.Add("sitefilter", c.opts.Site)
	u.RawQuery = q.Encode()

	c.logger.Debug("Fetching entity batch", "count", len(chunk), "first", chunk[0])

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}

	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrProtocol, err)
	}

	if result.Error != nil {
		if strings.HasPrefix(result.Error.Code, "no-such-entity") {
			return fmt.Errorf("%w: %s", ErrNotFound, result.Error.Info)
		}
		return fmt.Errorf("%w: api error %s: %s", ErrProtocol, result.Error.Code, result.Error.Info)
	}

	if result.Entities == nil {
		return fmt.Errorf("%w: response has no entities field", ErrProtocol)
	}

	// The response must map 1:1 onto the requested chunk.
	docs := make([]store.Document, 0, len(chunk))
	for _, id := range chunk {
		raw, ok := result.Entities[id]
		if !ok {
			return fmt.Errorf("%w: entity %s absent from response", ErrProtocol, id)
		}

		var probe entityProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("%w: entity %s: %v", ErrProtocol, id, err)
		}
		if probe.Missing != nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		docs = append(docs, store.Document{ID: id, JSON: raw})
	}

	return c.store.Put(ctx, docs)
}
