// Command agenthub runs the conversational backend: it loads configuration,
// wires the oracle provider, document store and checkpoint backend, registers
// the built-in agents and serves the streaming HTTP API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/jackc/pgx/v5/pgxpool"
	openaisdk "github.com/openai/openai-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/agenthub/agenthub/agent"
	"github.com/agenthub/agenthub/checkpoint"
	checkpointredis "github.com/agenthub/agenthub/checkpoint/redis"
	"github.com/agenthub/agenthub/config"
	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/graph"
	"github.com/agenthub/agenthub/hitl"
	"github.com/agenthub/agenthub/hub"
	"github.com/agenthub/agenthub/logging"
	"github.com/agenthub/agenthub/oracle"
	"github.com/agenthub/agenthub/oracle/anthropic"
	"github.com/agenthub/agenthub/oracle/openai"
	"github.com/agenthub/agenthub/server"
	"github.com/agenthub/agenthub/store"
	"github.com/agenthub/agenthub/store/pgvector"
	"github.com/agenthub/agenthub/tool"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkpoints, cleanup, err := buildCheckpoints(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	orc := buildOracle(cfg)

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	oaiClient := openaisdk.NewClient()
	docs := pgvector.New(pool, openai.NewEmbedder(&oaiClient, ""))

	// No live search backend is configured out of the box; the fallback
	// reports that explicitly so graded answers stay honest.
	web := store.WebSearcherFunc(func(_ context.Context, query string) ([]core.Document, error) {
		return []core.Document{{
			Content:  fmt.Sprintf("No web search backend is configured; unable to search for %q.", query),
			Metadata: map[string]any{"source": "web_search"},
		}}, nil
	})

	h := hub.New(checkpoints, func(o *hub.Options) {
		o.Logger = logger
	})
	h.Register(agent.NewChatAgent(hub.DefaultAgentID, orc, checkpoints))
	h.Register(agent.NewRAGAgent("rag-agent", graph.New(orc, docs, web, checkpoints, func(g *graph.Options) {
		g.Collection = cfg.Collection
		g.TopK = cfg.TopK
		g.MaxCritiqueCycles = cfg.MaxCritiqueCycles
		g.Logger = logger
	})))

	registry := tool.NewRegistry(
		tool.NewWriteFileTool("."),
		tool.NewExecuteSQLTool(pool),
		tool.NewReadDataTool(pool),
	)
	policy := hitl.Policy{
		"write_file":  hitl.ReviewAll(),
		"execute_sql": hitl.ReviewOnly(core.DecisionApprove, core.DecisionReject),
		"read_data":   hitl.NoReview(),
	}
	h.Register(agent.NewHITLAgent("hitl-agent", hitl.New(orc, registry, policy, checkpoints, func(b *hitl.Options) {
		b.Logger = logger
	})))

	srv := server.New(h, func(s *server.Options) {
		s.Logger = logger
	})
	return srv.Run(ctx, cfg.ServerAddr)
}

func buildCheckpoints(cfg *config.Config) (core.CheckpointStore, func(), error) {
	if cfg.RedisAddr == "" {
		return checkpoint.NewInMemoryStore(), func() {}, nil
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	return checkpointredis.New(client), func() { _ = client.Close() }, nil
}

func buildOracle(cfg *config.Config) oracle.Oracle {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.AnthropicAPIKey
		})
	default:
		return openai.New(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		})
	}
}
