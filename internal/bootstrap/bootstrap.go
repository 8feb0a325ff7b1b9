// Package bootstrap wires configuration, infrastructure clients and use
// cases into a runnable application for both the API and the worker.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkorolev/insight-router/internal/config"
	"github.com/mkorolev/insight-router/internal/core/ports"
	"github.com/mkorolev/insight-router/internal/core/usecase"
	"github.com/mkorolev/insight-router/internal/infrastructure/charts"
	"github.com/mkorolev/insight-router/internal/infrastructure/llm/ollama"
	"github.com/mkorolev/insight-router/internal/infrastructure/llm/openai"
	"github.com/mkorolev/insight-router/internal/infrastructure/queue/nats"
	"github.com/mkorolev/insight-router/internal/infrastructure/repository/postgres"
	"github.com/mkorolev/insight-router/internal/infrastructure/resilience"
	"github.com/mkorolev/insight-router/internal/infrastructure/vector/qdrant"
	"github.com/mkorolev/insight-router/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue       *nats.Queue
	Repo        ports.KnowledgeRepository
	IngestUC    ports.KnowledgeIngestor
	ProcessUC   ports.EntryProcessor
	QueryRouter ports.QueryRouter
	Metrics     *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewKnowledgeRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var executor *resilience.Executor
	if cfg.ResilienceEnabled {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), logger)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)

	completer, err := buildCompleter(cfg, ollamaClient)
	if err != nil {
		return nil, err
	}

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	chartGen, err := charts.NewGenerator()
	if err != nil {
		return nil, fmt.Errorf("init chart generator: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")

	retrieval := usecase.NewRetrievalHandler(embedder, index, completer, cfg.RAGTopK)
	viz := usecase.NewVisualizationHandler(completer, chartGen)
	orchestrator := usecase.NewOrchestrator(completer, retrieval, viz, httpMetrics)

	ingestUC := usecase.NewIngestKnowledgeUseCase(repo, queue)
	processUC := usecase.NewProcessEntryUseCase(repo, embedder, index)

	return &App{
		Config: cfg,

		Queue:       queue,
		Repo:        repo,
		IngestUC:    ingestUC,
		ProcessUC:   processUC,
		QueryRouter: orchestrator,
		Metrics:     httpMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func buildCompleter(cfg config.Config, ollamaClient *ollama.Client) (ports.Completer, error) {
	switch cfg.LLMProvider {
	case "openai":
		completer, err := openai.NewCompleter(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("init openai completer: %w", err)
		}
		return completer, nil
	case "", "ollama":
		return ollama.NewCompleter(ollamaClient), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
