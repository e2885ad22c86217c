package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
	"github.com/muneeb-ds/ai-travel-advisor/internal/llm/providers"
	"github.com/muneeb-ds/ai-travel-advisor/internal/planner"
	"github.com/muneeb-ds/ai-travel-advisor/internal/session"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool/builtins"
)

// app bundles the assembled planning core and everything that needs closing
// when a command finishes.
type app struct {
	planner   *planner.Planner
	registry  tool.Registry
	knowledge knowledge.Store
	sessions  session.Store
}

func (a *app) close() {
	if a.knowledge != nil {
		_ = a.knowledge.Close()
	}
	if a.sessions != nil {
		_ = a.sessions.Close()
	}
}

// buildApp wires the full planning stack from config: LLM provider, tool
// registry with fixture-backed adapters, knowledge store, and session store.
func buildApp(opts ...planner.Option) (*app, error) {
	provider, err := providers.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	client := llm.NewClient(provider,
		llm.WithTimeout(cfg.LLM.Timeout),
		llm.WithMaxRetries(cfg.LLM.MaxRetries),
		llm.WithLogger(logger),
	)

	registry := tool.NewRegistry(tool.WithRateLimit(cfg.Tools.RatePerSecond, cfg.Tools.MaxInFlight))

	fixtures, err := builtins.LoadFixtures(cfg.Core.FixturesDir)
	if err != nil {
		logger.Debug("no fixtures file, using built-in dataset", "dir", cfg.Core.FixturesDir)
		fixtures = builtins.DefaultFixtures()
	}
	if err := builtins.RegisterAll(registry, fixtures); err != nil {
		return nil, err
	}

	knowledgeStore, err := openKnowledgeStore()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(knowledge.NewRetrievalTool(knowledgeStore, cfg.Knowledge.TopK)); err != nil {
		knowledgeStore.Close()
		return nil, err
	}

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		knowledgeStore.Close()
		return nil, err
	}

	if verbose {
		opts = append(opts, planner.WithEmitter(&logEmitter{logger: logger}))
	}

	return &app{
		planner:   planner.New(cfg, client, registry, sessions, logger, opts...),
		registry:  registry,
		knowledge: knowledgeStore,
		sessions:  sessions,
	}, nil
}

// openKnowledgeStore opens the sqlite knowledge base, creating its directory
// on first use. An empty db_path selects the in-memory store.
func openKnowledgeStore() (knowledge.Store, error) {
	if cfg.Knowledge.DBPath == "" {
		return knowledge.NewMemoryStore(), nil
	}
	if dir := filepath.Dir(cfg.Knowledge.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return knowledge.NewSQLiteStore(cfg.Knowledge.DBPath, knowledge.WithLogger(logger))
}

// logEmitter streams planner progress events to the debug log.
type logEmitter struct {
	logger *slog.Logger
}

func (e *logEmitter) Emit(event planner.ProgressEvent) {
	e.logger.Debug("progress",
		"stage", event.Stage,
		"name", event.Name,
		"status", event.Status,
		"duration", event.Duration)
}
