package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Oustad/kortly-pokemon-api-sub001/internal/config"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/fetch"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/gemini"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/metrics"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/pipeline"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/tcg"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config     *config.Config
	assessor   *quality.Assessor
	identifier *gemini.Identifier
	pipeline   *pipeline.Pipeline
	tcgClient  *tcg.Client
	searcher   *tcg.Searcher
	fetcher    *fetch.Fetcher
	recorder   *metrics.Recorder
	handler    http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// Build dependency graph
	assessor := quality.NewAssessor()

	policy := quality.DefaultTierPolicy()
	policy.MinAcceptable = cfg.MinAcceptableQuality

	identifier, err := gemini.NewIdentifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini identifier: %w", err)
	}

	p := pipeline.New(assessor, policy, identifier)

	tcgClient := tcg.NewClient(tcg.ClientConfig{
		BaseURL:    cfg.TCGAPIBaseURL,
		APIKey:     cfg.TCGAPIKey,
		RateLimit:  cfg.TCGRequestsPerHr,
		CacheTTL:   cfg.TCGCacheTTL,
		CacheSize:  cfg.TCGCacheSize,
		Timeout:    cfg.TCGHTTPTimeout,
		MaxRetries: cfg.TCGMaxRetries,
	})
	searcher := tcg.NewSearcher(tcgClient)

	fetcher := fetch.NewFetcher(cfg.MaxRequestBodySize)

	recorder := metrics.NewRecorder()
	handler := transport.NewHandler(p, searcher, fetcher, tcgClient, recorder, cfg)

	return &Container{
		config:     cfg,
		assessor:   assessor,
		identifier: identifier,
		pipeline:   p,
		tcgClient:  tcgClient,
		searcher:   searcher,
		fetcher:    fetcher,
		recorder:   recorder,
		handler:    handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases resources held by the container, currently the
// Gemini client connection.
func (c *Container) Close() error {
	if c.identifier != nil {
		return c.identifier.Close()
	}
	return nil
}
