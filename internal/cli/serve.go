package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raine/balla/config"
	"github.com/raine/balla/internal/comparables"
	"github.com/raine/balla/internal/gateway"
	"github.com/raine/balla/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		port     string
		cacheTTL time.Duration
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analyze-item endpoint backed by Gemini",
		Long: `Serves POST /functions/v1/analyze-item so the analysis client can be
pointed at a local gateway (BALLA_ANALYZE_URL=http://localhost:8080/functions/v1/analyze-item).
Requires GEMINI_API_KEY.`,
		Example: `  balla serve
  balla serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateGateway(); err != nil {
				return err
			}
			if port == "" {
				port = cfg.Port
			}
			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}

			appraiser, err := gateway.NewGeminiAppraiser(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return err
			}
			model := cfg.GeminiModel
			if model == "" {
				model = gateway.DefaultModel
			}

			var inner gateway.Appraiser = appraiser
			if !noCache {
				if flags.dbPath != "" {
					cfg.DBPath = flags.dbPath
				}
				store, err := storage.NewSQLiteStore(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("failed to open appraisal cache: %w", err)
				}
				defer store.Close()
				if removed, err := store.PruneAppraisalCache(time.Now().Add(-cacheTTL)); err != nil {
					log.Warn().Err(err).Msg("failed to prune appraisal cache")
				} else if removed > 0 {
					log.Info().Int64("removed", removed).Msg("pruned expired appraisals")
				}
				inner = gateway.NewCachedAppraiser(appraiser, store, cacheTTL)
				log.Info().Dur("ttl", cacheTTL).Str("dbPath", cfg.DBPath).Msg("appraisal caching enabled")
			}
			handler := gateway.NewHandler(inner, comparables.SyntheticProvider{}, model)

			server := &http.Server{
				Addr:              ":" + port,
				Handler:           gateway.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return runServer(cmd.Context(), server)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default $PORT or 8080)")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", gateway.DefaultCacheTTL, "How long identical photos reuse a previous appraisal")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Always ask the model")

	return cmd
}

// runServer serves until ctx is canceled, then shuts down gracefully.
func runServer(ctx context.Context, server *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("gateway stopped with error")
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}
