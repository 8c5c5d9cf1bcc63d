package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"SymptomCheck_V0.1/internal/config"
	"SymptomCheck_V0.1/internal/geminiservice"
	"SymptomCheck_V0.1/internal/llm"
	"SymptomCheck_V0.1/internal/openaiservice"
	"SymptomCheck_V0.1/internal/server"
	"SymptomCheck_V0.1/internal/symptom"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// newProvider builds the configured LLM client. A failure is returned, not
// fatal: the service keeps running and answers with the setup-error payload.
func newProvider(cfg config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := geminiservice.NewClient(geminiservice.Config{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openaiservice.NewClient(openaiservice.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

func main() {
	cfg := config.Load()
	config.SetupLogger(cfg)

	var provider llm.Provider
	if p, err := newProvider(cfg); err != nil {
		log.Error().Err(err).Str("provider", cfg.Provider).Msg("Error initializing LLM client")
		log.Warn().Msg("!!! WARNING: Ensure the provider API key is set in your environment. Serving setup-error responses.")
	} else {
		provider = p
		log.Info().Str("provider", p.Name()).Str("model", cfg.Model()).Msg("LLM client initialized successfully")
	}

	adapter := symptom.NewAdapter(provider, cfg.Model())
	apiServer := server.NewServer(cfg, adapter)

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("HTTP server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
		stop() // Allow Ctrl+C to force shutdown

		// The server has 5 seconds to finish the requests it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
