package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// Registry manages tool registration, discovery, and execution.
// It provides a centralized registry for tool adapters with built-in metrics
// tracking and shared rate limiting across all tools.
type Registry interface {
	// Register registers a tool implementation
	Register(tool Tool) error

	// Unregister removes a tool from the registry by name
	Unregister(name string) error

	// Get retrieves a tool by name, returning an error if not found
	Get(name string) (Tool, error)

	// List returns descriptors for all registered tools
	List() []Descriptor

	// ListByTag returns descriptors for tools matching the given tag
	ListByTag(tag string) []Descriptor

	// Execute runs a tool by name with the given input, applying the shared
	// rate limit and recording metrics
	Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error)

	// Metrics returns execution metrics for a specific tool
	Metrics(name string) (Metrics, error)
}

// DefaultRegistry implements Registry with thread-safe operations.
type DefaultRegistry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	metrics map[string]*Metrics
	limiter *rate.Limiter
}

// RegistryOption is a functional option for configuring DefaultRegistry.
type RegistryOption func(*DefaultRegistry)

// WithRateLimit bounds the dispatch rate across all tools to respect
// downstream provider limits. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) RegistryOption {
	return func(r *DefaultRegistry) {
		if perSecond > 0 {
			if burst < 1 {
				burst = 1
			}
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewRegistry creates a new DefaultRegistry instance.
func NewRegistry(opts ...RegistryOption) *DefaultRegistry {
	r := &DefaultRegistry{
		tools:   make(map[string]Tool),
		metrics: make(map[string]*Metrics),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register registers a tool implementation.
// Returns ErrToolAlreadyExists if a tool with the same name is registered.
func (r *DefaultRegistry) Register(tool Tool) error {
	if tool == nil {
		return types.NewError(ErrToolInvalidInput, "tool cannot be nil")
	}

	name := tool.Name()
	if name == "" {
		return types.NewError(ErrToolInvalidInput, "tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return types.NewError(ErrToolAlreadyExists, fmt.Sprintf("tool %q already registered", name))
	}

	r.tools[name] = tool
	r.metrics[name] = &Metrics{}
	return nil
}

// Unregister removes a tool from the registry by name.
func (r *DefaultRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; !exists {
		return types.NewError(ErrToolNotFound, fmt.Sprintf("tool %q not registered", name))
	}

	delete(r.tools, name)
	delete(r.metrics, name)
	return nil
}

// Get retrieves a tool by name.
func (r *DefaultRegistry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tools[name]
	if !exists {
		return nil, types.NewError(ErrToolNotFound, fmt.Sprintf("tool %q not registered", name))
	}
	return t, nil
}

// List returns descriptors for all registered tools.
func (r *DefaultRegistry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descriptors = append(descriptors, NewDescriptor(t))
	}
	return descriptors
}

// ListByTag returns descriptors for tools carrying the given tag.
func (r *DefaultRegistry) ListByTag(tag string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var descriptors []Descriptor
	for _, t := range r.tools {
		for _, tg := range t.Tags() {
			if tg == tag {
				descriptors = append(descriptors, NewDescriptor(t))
				break
			}
		}
	}
	return descriptors
}

// Execute runs a tool by name, waiting on the shared rate limiter first and
// recording per-tool metrics. Cancellation while waiting on the limiter
// releases the permit and returns the context error.
func (r *DefaultRegistry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, types.WrapRetryableError(ErrToolTimeout,
				fmt.Sprintf("tool %q cancelled while rate limited", name), err)
		}
	}

	start := time.Now()
	result, err := t.Invoke(ctx, args)
	duration := time.Since(start)

	r.mu.Lock()
	if m, ok := r.metrics[name]; ok {
		if err != nil {
			m.RecordFailure(duration)
		} else {
			m.RecordSuccess(duration)
		}
	}
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Metrics returns execution metrics for a specific tool.
func (r *DefaultRegistry) Metrics(name string) (Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.metrics[name]
	if !exists {
		return Metrics{}, types.NewError(ErrToolNotFound, fmt.Sprintf("tool %q not registered", name))
	}
	return *m, nil
}
