package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/stackit/backend/internal/assistant"
	"github.com/emilythestrangee/stackit/backend/internal/auth"
	"github.com/emilythestrangee/stackit/backend/internal/metrics"
	"github.com/emilythestrangee/stackit/backend/internal/server"
	"github.com/emilythestrangee/stackit/backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Migrate the database and serve the API until SIGINT or SIGTERM,
then drain in-flight requests before exiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.db.Store().Migrate(ctx); err != nil {
		return err
	}
	metrics.MustRegister(serviceName)

	svc := service.New(a.db.Store(), service.Options{
		Hasher: auth.NewBcryptHasher(),
		Tokens: auth.NewTokenIssuer(auth.TokenConfig{
			TTL:        a.cfg.AccessTokenTTL,
			SigningKey: a.cfg.SigningKey(),
		}),
		Logger: a.log,
	})

	ai, closeAI, err := newAssistant(a)
	if err != nil {
		return err
	}
	defer closeAI()

	srv := server.NewServer(server.Deps{
		Config:    a.cfg,
		DB:        a.db,
		Services:  svc,
		Assistant: ai,
		Logger:    a.log,
	})

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("server exiting")
	return nil
}

func newAssistant(a *app) (*assistant.Assistant, func(), error) {
	opts := assistant.Options{
		Model:         a.cfg.AIModel,
		Timeout:       a.cfg.AITimeout,
		RatePerMinute: a.cfg.AIRatePerMinute,
		Logger:        a.log,
	}
	if a.cfg.AIAPIKey != "" {
		completer := assistant.NewOpenAICompleter(a.cfg.AIAPIKey, a.cfg.AIBaseURL, a.cfg.AIModel)
		a.log.Info("ai answers enabled", "model", completer.Model())
		opts.Completer = completer
	} else {
		a.log.Warn("AI_API_KEY not set, AI answers will use the fallback")
	}

	cache, err := assistant.OpenCache(assistant.CacheConfig{
		Path:     a.cfg.AICachePath,
		InMemory: a.cfg.AICachePath == "",
		TTL:      a.cfg.AICacheTTL,
		Logger:   a.log,
	})
	if err != nil {
		return nil, nil, err
	}
	opts.Cache = cache

	return assistant.New(opts), func() {
		if err := cache.Close(); err != nil {
			a.log.Error("close ai cache", "error", err)
		}
	}, nil
}
