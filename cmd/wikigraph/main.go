// Command wikigraph fetches the dependency closure of one or more Wikidata
// entities into a local cache and prints each root entity's labels, aliases
// and normalized claims.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/adityahase/search/pkg/config"
	"github.com/adityahase/search/pkg/db"
	"github.com/adityahase/search/pkg/logging"
	"github.com/adityahase/search/pkg/request"
	"github.com/adityahase/search/pkg/store"
	"github.com/adityahase/search/pkg/tracker"
	"github.com/adityahase/search/pkg/version"
	"github.com/adityahase/search/pkg/wikidata"
)

func main() {
	cfgPath := flag.String("config", "configs/wikigraph.yaml", "Path to config file")
	roots := flag.String("roots", "", "Comma-separated root entity ids (overrides config)")
	deep := flag.Bool("deep", true, "Eagerly fetch each root's dependency closure")
	stats := flag.Bool("stats", false, "Print cache and API statistics on exit")
	flag.Parse()

	// .env is optional; it feeds the WIKIGRAPH_* overrides in config.Load
	_ = godotenv.Load()

	if err := run(context.Background(), *cfgPath, *roots, *deep, *stats); err != nil {
		fmt.Fprintf(os.Stderr, "wikigraph: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, rootsFlag string, deep, stats bool) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Wikigraph Started", "version", version.Version)

	roots := cfg.Roots
	if rootsFlag != "" {
		roots = splitRoots(rootsFlag)
	}
	if len(roots) == 0 {
		return fmt.Errorf("no root entities configured")
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tr := tracker.New()
	reqClient := request.New(tr, request.ClientConfig{
		Retries:   cfg.Request.Retries,
		Timeout:   time.Duration(cfg.Request.Timeout),
		BaseDelay: time.Duration(cfg.Request.Backoff.BaseDelay),
		MaxDelay:  time.Duration(cfg.Request.Backoff.MaxDelay),
	})

	client := wikidata.NewClient(reqClient, st, wikidata.Options{
		Language:    cfg.Wikidata.Language,
		Site:        cfg.Wikidata.Site,
		BatchSize:   cfg.Wikidata.BatchSize,
		APIEndpoint: cfg.Wikidata.APIEndpoint,
	}, slog.Default())

	resolver := wikidata.NewResolver(st, client, tr)

	for _, root := range roots {
		slog.Info("Loading entity", "id", root, "deep", deep)

		view, err := wikidata.NewView(ctx, resolver, cfg.Wikidata.Language, root, deep)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", root, err)
		}

		if err := printEntity(ctx, os.Stdout, view); err != nil {
			return fmt.Errorf("failed to render %s: %w", root, err)
		}
	}

	if stats {
		printStats(os.Stdout, tr)
	}

	return nil
}

func splitRoots(s string) []string {
	var roots []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roots = append(roots, part)
		}
	}
	return roots
}

func openStore(cfg *config.Config) (store.CacheStore, func(), error) {
	if cfg.Cache.Backend == "sqlite" {
		database, err := db.Init(cfg.Cache.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store.NewSQLiteStore(database), func() { database.Close() }, nil
	}
	return store.NewFileStore(cfg.Cache.Dir), func() {}, nil
}

func printEntity(ctx context.Context, w io.Writer, view *wikidata.View) error {
	label, _ := view.Label()
	description, _ := view.Description()

	fmt.Fprintf(w, "Label: %s\n", label)
	fmt.Fprintf(w, "Description: %s\n", description)
	fmt.Fprintf(w, "Aliases: %s\n", strings.Join(view.Aliases(), ", "))
	fmt.Fprintln(w, "Claims:")

	claims, err := view.Claims(ctx)
	if err != nil {
		return err
	}
	for _, claim := range claims {
		fmt.Fprintln(w, formatClaim(claim))
	}
	fmt.Fprintln(w)

	return nil
}

// formatClaim renders one claim line, with qualifiers in brackets:
//
//	position held: Prime Minister of India [start time: +1947-08-15T00:00:00Z]
func formatClaim(claim wikidata.Claim) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(claim.Property)
	b.WriteString(": ")
	b.WriteString(claim.Value)

	if len(claim.Qualifiers) > 0 {
		b.WriteString(" [")
		for i, q := range claim.Qualifiers {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(q.Property)
			b.WriteString(": ")
			b.WriteString(q.Value)
		}
		b.WriteString("]")
	}

	return b.String()
}

func printStats(w io.Writer, tr *tracker.Tracker) {
	snapshot := tr.Snapshot()

	providers := make([]string, 0, len(snapshot))
	for provider := range snapshot {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	fmt.Fprintln(w, "Statistics:")
	for _, provider := range providers {
		s := snapshot[provider]
		fmt.Fprintf(w, "  %s: %d requests, %d failed, %d cache hits, %d misses\n",
			provider, s.APISuccess, s.APIFailures, s.CacheHits, s.CacheMisses)
	}
}
