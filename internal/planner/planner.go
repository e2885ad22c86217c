package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/muneeb-ds/ai-travel-advisor/internal/config"
	"github.com/muneeb-ds/ai-travel-advisor/internal/knowledge"
	"github.com/muneeb-ds/ai-travel-advisor/internal/llm"
	"github.com/muneeb-ds/ai-travel-advisor/internal/session"
	"github.com/muneeb-ds/ai-travel-advisor/internal/tool"
	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// PlanningResult is everything one planning or refinement run returns: the
// itinerary with its explanation and citations, the audit trail (tools used,
// decisions), the quality score, any violations the run could not resolve,
// and best-effort annotations.
type PlanningResult struct {
	ThreadID          string               `json:"thread_id"`
	Itinerary         *Itinerary           `json:"itinerary"`
	Explanation       string               `json:"explanation"`
	Citations         []knowledge.Citation `json:"citations,omitempty"`
	ToolsUsed         []tool.Usage         `json:"tools_used,omitempty"`
	Decisions         []Decision           `json:"decisions,omitempty"`
	QualityScore      float64              `json:"quality_score"`
	Violations        []Violation          `json:"violations,omitempty"`
	Annotations       []Annotation         `json:"annotations,omitempty"`
	ConstraintVersion int                  `json:"constraint_version"`
}

// Planner is the planning surface: Plan starts a conversation thread, Refine
// continues one. Runs on the same thread are serialized; a new request waits
// for the in-flight one rather than interleaving mutation of shared state.
type Planner struct {
	extractor    *Extractor
	generator    *Generator
	orchestrator *Orchestrator
	validator    *Validator
	repairer     *Repairer
	synthesizer  *Synthesizer
	store        session.Store
	deadline     time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	threads map[string]*sync.Mutex
}

// Option configures a Planner beyond its config file settings.
type Option func(*plannerSettings)

type plannerSettings struct {
	deadline time.Duration
	now      func() time.Time
	emitter  ProgressEmitter
}

// WithOverallDeadline overrides the configured end-to-end deadline.
func WithOverallDeadline(d time.Duration) Option {
	return func(s *plannerSettings) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithNowFunc overrides the clock used to anchor inferred trip dates.
func WithNowFunc(now func() time.Time) Option {
	return func(s *plannerSettings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEmitter sets the progress event sink for all runs.
func WithEmitter(emitter ProgressEmitter) Option {
	return func(s *plannerSettings) {
		if emitter != nil {
			s.emitter = emitter
		}
	}
}

// New assembles a Planner from its collaborators. client drives extraction
// and synthesis; registry must hold the travel tool adapters (and usually
// the knowledge retrieval tool); store persists per-thread state.
func New(cfg *config.Config, client *llm.Client, registry tool.Registry, store session.Store, logger *slog.Logger, opts ...Option) *Planner {
	if logger == nil {
		logger = slog.Default()
	}

	settings := plannerSettings{
		deadline: cfg.Core.Deadline,
		now:      time.Now,
		emitter:  NopEmitter{},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	orchestrator := NewOrchestrator(registry,
		WithCallTimeout(cfg.Tools.CallTimeout),
		WithToolRetries(cfg.Tools.MaxRetries),
		WithMaxInFlight(cfg.Tools.MaxInFlight),
		WithSimilarityThreshold(cfg.Knowledge.SimilarityThreshold),
		WithBaseCurrency(cfg.Core.BaseCurrency),
		WithLogger(logger),
		WithProgressEmitter(settings.emitter),
	)
	validator := NewValidator(cfg.Core.BaseCurrency)

	return &Planner{
		extractor:    NewExtractor(client, cfg.Core.BaseCurrency, logger),
		generator:    NewGenerator(cfg.Planning.DefaultTripDays, WithClock(settings.now)),
		orchestrator: orchestrator,
		validator:    validator,
		repairer:     NewRepairer(orchestrator, validator, cfg.Planning.MaxRepairRounds, logger),
		synthesizer:  NewSynthesizer(client, cfg.Core.BaseCurrency, logger),
		store:        store,
		deadline:     settings.deadline,
		logger:       logger,
		threads:      make(map[string]*sync.Mutex),
	}
}

// Plan runs a fresh planning request for a conversation thread, replacing
// any prior state for it.
func (p *Planner) Plan(ctx context.Context, threadID, requestText string) (*PlanningResult, error) {
	return p.run(ctx, threadID, requestText, false)
}

// Refine continues a thread: the request is applied as a delta over the
// thread's prior constraints. A thread with no prior state behaves like
// Plan.
func (p *Planner) Refine(ctx context.Context, threadID, requestText string) (*PlanningResult, error) {
	return p.run(ctx, threadID, requestText, true)
}

func (p *Planner) run(ctx context.Context, threadID, requestText string, refine bool) (*PlanningResult, error) {
	unlock := p.lockThread(threadID)
	defer unlock()

	runCtx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	start := time.Now()
	emit(p.orchestrator.emitter, "plan", threadID, ProgressStarted, 0)

	state := newSessionState(threadID)
	if refine {
		prior, err := loadState(runCtx, p.store, threadID)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			state = prior
		}
	}

	cs, err := p.extractor.Extract(runCtx, requestText, state.Constraints)
	if err != nil {
		emit(p.orchestrator.emitter, "plan", threadID, ProgressFailed, time.Since(start))
		return nil, err
	}

	skeleton, cs := p.generator.Generate(cs)

	fillResult, err := p.orchestrator.Fill(runCtx, skeleton, cs)
	if err != nil {
		return nil, err
	}

	rates := mergedRates(state.Rates, fillResult.Rates)
	final := fillResult.Skeleton
	calls := fillResult.Calls
	citations := fillResult.Citations
	violations := p.validator.Validate(final, cs, rates)
	score := p.validator.QualityScore(final, cs)

	var annotations []Annotation
	var decisions []Decision
	repairRounds := 0

	if len(violations) > 0 && runCtx.Err() == nil {
		outcome := p.repairer.Repair(runCtx, final, cs, violations, rates)
		final = outcome.Skeleton
		violations = outcome.Violations
		score = outcome.Score
		decisions = outcome.Decisions
		repairRounds = outcome.Rounds
		calls = append(calls, outcome.Calls...)
		citations = append(citations, outcome.Citations...)
		if outcome.Exhausted {
			annotations = append(annotations, AnnotationRepairExhausted)
		}
	}
	if runCtx.Err() != nil {
		annotations = append(annotations, AnnotationDeadlineExceeded)
	}

	state.recordRun(cs, final, calls, decisions, citations, fillResult.Rates, repairRounds)

	itinerary, explanation, err := p.synthesizer.Synthesize(runCtx, final, cs, state.ToolCalls, state.Citations)
	if err != nil {
		// A provenance failure is a defect in the run, never the user's
		// fault; log the specifics and surface a generic failure.
		p.logger.ErrorContext(runCtx, "synthesis invariant failure",
			"thread_id", threadID,
			"error", err)
		return nil, types.NewError(types.INTERNAL_INVARIANT_VIOLATION, "planning failed internally")
	}

	// Persist even when the deadline fired mid-run; refinements should see
	// the best-effort state.
	if err := saveState(context.WithoutCancel(runCtx), p.store, state); err != nil {
		return nil, err
	}

	emit(p.orchestrator.emitter, "plan", threadID, ProgressCompleted, time.Since(start))
	p.logger.InfoContext(runCtx, "planning run finished",
		"thread_id", threadID,
		"refine", refine,
		"days", len(itinerary.Days),
		"violations", len(violations),
		"quality_score", score,
		"elapsed", time.Since(start))

	return &PlanningResult{
		ThreadID:          threadID,
		Itinerary:         itinerary,
		Explanation:       explanation,
		Citations:         state.Citations,
		ToolsUsed:         tool.AggregateUsage(state.ToolCalls),
		Decisions:         state.Decisions,
		QualityScore:      score,
		Violations:        violations,
		Annotations:       annotations,
		ConstraintVersion: cs.Version,
	}, nil
}

// Close releases the thread's session. Callers use it when a conversation
// ends explicitly rather than by TTL expiry.
func (p *Planner) Close(ctx context.Context, threadID string) error {
	unlock := p.lockThread(threadID)
	defer unlock()

	p.mu.Lock()
	delete(p.threads, threadID)
	p.mu.Unlock()

	return p.store.Delete(ctx, threadID)
}

// lockThread serializes runs per conversation thread.
func (p *Planner) lockThread(threadID string) func() {
	p.mu.Lock()
	m, ok := p.threads[threadID]
	if !ok {
		m = &sync.Mutex{}
		p.threads[threadID] = m
	}
	p.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func mergedRates(prior, fresh map[string]float64) map[string]float64 {
	if len(prior) == 0 {
		return fresh
	}
	merged := make(map[string]float64, len(prior)+len(fresh))
	for currency, rate := range prior {
		merged[currency] = rate
	}
	for currency, rate := range fresh {
		merged[currency] = rate
	}
	return merged
}
