// Command server runs the chat streaming service.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, CHAT_CONFIG env, ./config.yaml), and CHAT_* environment
// variable overrides. See pkg/config for the full surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/auth"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/auth/jwt"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/config"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger/memory"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/ledger/postgres"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/observability"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/orchestrator"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/pipeline"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/provider/openai"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/search"
	"github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/stream"
	transporthttp "github.com/JushrafRahman/ai-chatbot-with-web-search/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Generation backend.
	backend, err := openai.New(openai.Config{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating backend: %w", err)
	}
	defer backend.Close()

	// Chat ledger.
	accessor, err := newAccessor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer accessor.Close()

	// Search provider.
	searcher, err := newSearcher(cfg)
	if err != nil {
		return fmt.Errorf("creating search provider: %w", err)
	}

	p := pipeline.New(backend, searcher, pipeline.DefaultToolSet(), accessor, pipeline.Config{
		SystemPrompt:    cfg.Chat.SystemPrompt,
		MaxSteps:        cfg.Chat.MaxSteps,
		ReasoningModels: cfg.Backend.ReasoningModels,
	})

	// Resumable stream registry. Initialization is lazy; a missing or
	// unreachable backend degrades to disabled resumability.
	streams := stream.NewService(stream.ServiceConfig{
		Driver: cfg.Stream.Driver,
		Redis: stream.RedisConfig{
			URL: cfg.Stream.RedisURL,
			TTL: cfg.Stream.TTL,
		},
	})

	entitlements := auth.Entitlements{
		auth.TierGuest:   {MaxMessagesPerDay: cfg.Entitlements.GuestMessagesPerDay},
		auth.TierRegular: {MaxMessagesPerDay: cfg.Entitlements.RegularMessagesPerDay},
	}

	titleModel := cfg.Backend.TitleModel
	if titleModel == "" {
		titleModel = cfg.Backend.DefaultModel
	}

	orch := orchestrator.New(accessor, p, backend, streams, entitlements, orchestrator.Config{
		TitleModel:        titleModel,
		QuotaWindow:       cfg.Chat.QuotaWindow,
		GenerationTimeout: cfg.Chat.GenerationTimeout,
		ResumeWindow:      cfg.Chat.ResumeWindow,
	})

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithRoute("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := accessor.HealthCheck(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok\n"))
		})),
		transporthttp.WithHTTPMiddleware(auth.Middleware(newAuthChain(cfg)), observability.MetricsMiddleware),
	}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts, transporthttp.WithRoute("GET "+cfg.Observability.Metrics.Path, promhttp.Handler()))
	}

	srv := transporthttp.NewServer(orch, opts...)

	slog.Info("server starting",
		"port", cfg.Server.Port,
		"backend", cfg.Backend.BaseURL,
		"model", cfg.Backend.DefaultModel,
		"ledger", cfg.Ledger.Driver,
		"stream_driver", cfg.Stream.Driver,
		"auth", cfg.Auth.Type,
	)
	return srv.ListenAndServe()
}

// newAccessor builds the configured ledger backend.
func newAccessor(ctx context.Context, cfg *config.Config) (ledger.Accessor, error) {
	switch cfg.Ledger.Driver {
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Ledger.Postgres.DSN,
			MaxConns:       cfg.Ledger.Postgres.MaxConns,
			MinConns:       cfg.Ledger.Postgres.MinConns,
			MigrateOnStart: cfg.Ledger.Postgres.MigrateOnStart,
		})
	default:
		slog.Info("using in-memory ledger, chats are lost on restart")
		return memory.New(), nil
	}
}

// newSearcher builds the configured search provider, or a disabled
// stand-in when no provider is configured.
func newSearcher(cfg *config.Config) (search.Provider, error) {
	if cfg.Search.Provider != "exa" {
		slog.Info("web search disabled")
		return search.Disabled{}, nil
	}
	return search.NewExa(search.ExaConfig{
		BaseURL:      cfg.Search.BaseURL,
		APIKey:       cfg.Search.APIKey,
		MaxResults:   cfg.Search.MaxResults,
		MaxTextChars: cfg.Search.MaxTextChars,
	})
}

// newAuthChain builds the authenticator chain. Without JWT configured,
// every request authenticates as an anonymous guest.
func newAuthChain(cfg *config.Config) *auth.AuthChain {
	chain := &auth.AuthChain{DefaultDecision: auth.Yes}
	if cfg.Auth.Type == "jwt" {
		chain.Authenticators = append(chain.Authenticators, jwt.New(jwt.Config{
			Issuer:    cfg.Auth.JWT.Issuer,
			Audience:  cfg.Auth.JWT.Audience,
			JWKSURL:   cfg.Auth.JWT.JWKSURL,
			UserClaim: cfg.Auth.JWT.UserClaim,
			TierClaim: cfg.Auth.JWT.TierClaim,
		}))
		chain.DefaultDecision = auth.No
	}
	return chain
}
