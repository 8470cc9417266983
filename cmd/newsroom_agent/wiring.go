package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/config"
	"github.com/jonathan/newsroom-agent/internal/db"
	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/orchestrator"
	"github.com/jonathan/newsroom-agent/internal/protocol"
	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/research"
	"github.com/jonathan/newsroom-agent/internal/telemetry"
	"github.com/jonathan/newsroom-agent/internal/workers"
)

// newsroom bundles the wired pipeline components.
type newsroom struct {
	registry *registry.Registry
	orch     *orchestrator.Orchestrator
	gen      generation.Client
	database *db.DB
	emitter  *telemetry.Emitter
}

// buildNewsroom wires the full worker set from configuration. The archive
// database and web search are optional; the archivist endpoint and the
// generation API key are not.
func buildNewsroom(ctx context.Context, cfg *config.Config) (*newsroom, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.ArchivistURL == "" {
		return nil, fmt.Errorf("archivist URL is required (flag, config, or ARCHIVIST_URL)")
	}

	gen, err := generation.NewClient(ctx, nil, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	var searcher *research.Searcher
	if cfg.SearchCX != "" {
		searcher, err = research.NewSearcher(ctx, cfg.APIKey, cfg.SearchCX)
		if err != nil {
			return nil, fmt.Errorf("failed to create searcher: %w", err)
		}
		searcher = searcher.WithBrowser(cfg.UseBrowser).WithVerbose(cfg.Verbose)
	} else {
		log.Println("[newsroom] no search engine configured, researcher runs without web grounding")
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to publication archive: %w", err)
		}
	} else {
		log.Println("[newsroom] no database configured, publications are not archived")
	}

	var sink telemetry.Sink
	if cfg.TelemetryURL != "" {
		sink = &telemetry.HTTPSink{URL: cfg.TelemetryURL}
	}
	emitter := telemetry.NewEmitter(sink, 0)

	// The external archive agent is network-flaky; its caller is the only
	// one wrapped with retries.
	archiveCaller := capability.NewRetryer(
		protocol.NewA2ACaller("archivist", cfg.ArchivistURL),
		capability.DefaultRetryPolicy(),
	)

	var store workers.PublicationStore
	if database != nil {
		store = database
	}

	reg := registry.New()
	orch := orchestrator.New(reg, gen, workers.Set{
		Researcher: workers.NewResearcher(gen, searcher),
		Archivist:  workers.NewArchivist(archiveCaller),
		Editor:     workers.NewEditor(gen),
		Publisher:  workers.NewPublisher(store),
	}, emitter, orchestrator.Config{
		MaxRevisions: cfg.MaxRevisions,
		Verbose:      cfg.Verbose,
	})

	return &newsroom{
		registry: reg,
		orch:     orch,
		gen:      gen,
		database: database,
		emitter:  emitter,
	}, nil
}

// close releases the newsroom's external resources.
func (n *newsroom) close() {
	n.emitter.Close()
	if n.database != nil {
		n.database.Close()
	}
	if err := n.gen.Close(); err != nil {
		log.Printf("[newsroom] error closing generation client: %v", err)
	}
}

// loadConfig merges the optional config file with the environment.
func loadConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
