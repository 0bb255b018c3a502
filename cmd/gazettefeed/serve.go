package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/guarzo/gazettefeed/common"
	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/analytics"
	"github.com/guarzo/gazettefeed/modules/companieshouse"
	"github.com/guarzo/gazettefeed/modules/gazette"
	"github.com/guarzo/gazettefeed/modules/linker"
	"github.com/guarzo/gazettefeed/modules/research"
	"github.com/guarzo/gazettefeed/modules/server"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
}

// caches owns every named cache so they can be started, stopped and
// reported together.
type caches struct {
	notices    *common.Cache[model.NoticeListing]
	dashboards *common.Cache[model.Dashboard]
	financials *common.Cache[model.FinancialsLookup]
	responses  *common.Cache[[]byte]
	drafts     *common.Cache[[]byte]
	links      *common.Cache[[]linker.Link]
}

func newCaches(cfg common.Config, logger *zap.Logger) *caches {
	opts := []common.CacheOption{
		common.WithCleanupInterval(cfg.CacheCleanupInterval),
		common.WithCacheLogger(logger),
	}
	return &caches{
		notices:    common.NewCache[model.NoticeListing]("notices", 10, opts...),
		dashboards: common.NewCache[model.Dashboard]("analytics", 50, opts...),
		financials: common.NewCache[model.FinancialsLookup]("financials", 500, opts...),
		responses:  common.NewCache[[]byte]("companies-house", 1000, opts...),
		drafts:     common.NewCache[[]byte]("drafts", 100, opts...),
		links:      common.NewCache[[]linker.Link]("links", 10, opts...),
	}
}

func (c *caches) all() []server.StatsReporter {
	return []server.StatsReporter{c.notices, c.dashboards, c.financials, c.responses, c.drafts, c.links}
}

func (c *caches) start(ctx context.Context) {
	c.notices.Start(ctx)
	c.dashboards.Start(ctx)
	c.financials.Start(ctx)
	c.responses.Start(ctx)
	c.drafts.Start(ctx)
	c.links.Start(ctx)
}

func (c *caches) stop() {
	c.notices.Stop()
	c.dashboards.Stop()
	c.financials.Stop()
	c.responses.Stop()
	c.drafts.Stop()
	c.links.Stop()
}

func buildServices(ctx context.Context, cfg common.Config, c *caches, logger *zap.Logger) server.Services {
	httpClient := common.NewHttpClient(cfg.UserAgent, nil, logger)

	notices := gazette.NewGazetteService(
		gazette.NewGazetteClient(cfg.GazetteBaseURL, httpClient),
		c.notices, logger.Named("gazette"))

	registry := companieshouse.NewCompaniesHouseService(
		companieshouse.NewCompaniesHouseClient(cfg.CompaniesHouseBaseURL, cfg.CompaniesHouseDocumentURL,
			cfg.CompaniesHouseAPIKey, httpClient, c.responses),
		c.financials, logger.Named("companieshouse"))
	if !registry.Configured() {
		logger.Warn("COMPANIES_HOUSE_API_KEY not set, registry lookups disabled")
	}

	services := server.Services{Notices: notices, Registry: registry}

	auth, err := common.NewServiceAccountAuth(ctx, []byte(cfg.GoogleServiceAccountJSON), nil, analytics.Scope)
	switch {
	case errors.Is(err, common.ErrNoCredentials):
		logger.Warn("GOOGLE_SERVICE_ACCOUNT_JSON not set, analytics disabled")
	case err != nil:
		logger.Error("invalid service account, analytics disabled", zap.Error(err))
	default:
		ga4, err := analytics.NewGA4Client(ctx, cfg.GA4BaseURL, cfg.GA4PropertyID, cfg.UserAgent, auth, logger)
		if err != nil {
			logger.Error("analytics client", zap.Error(err))
			break
		}
		services.Analytics = analytics.NewAnalyticsService(ga4, c.dashboards, cfg.ShowRevenue, logger.Named("analytics"))
	}

	generator, err := research.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, logger.Named("gemini"))
	if err != nil {
		// drafts then fail per request with ErrNoGenerator
		logger.Warn("content generation disabled", zap.Error(err))
	}
	links := linker.NewLinkerService(linker.NewLoader(cfg.LinkDatabasePath, c.links, logger.Named("links")), logger)
	services.Research = research.NewResearchService(registry, generator, links, c.drafts,
		research.Models{Drafting: cfg.GeminiModel, Research: cfg.GeminiResearchModel}, logger.Named("research"))

	return services
}

func serve(ctx context.Context, cfg common.Config, logger *zap.Logger) error {
	shutdownTracing, err := common.SetupTracing(ctx, cfg.OTLPEndpoint, "gazettefeed")
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", zap.Error(err))
		}
	}()

	c := newCaches(cfg, logger)
	c.start(ctx)
	defer c.stop()

	api := server.New(buildServices(ctx, cfg, c, logger), c.all(), logger.Named("http"))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
