package reports

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/report-atlas/pkg/services/analysis"
	"github.com/de-tools/report-atlas/pkg/services/pipeline"
	"github.com/de-tools/report-atlas/pkg/services/sentiment"
)

// ErrUnknownReport is returned when no factory is registered under a name.
var ErrUnknownReport = errors.New("unknown report")

// Factory creates the state of a single report run.
type Factory func() pipeline.Report

// Registry manages report factories
type Registry interface {
	// Register adds a new report factory
	Register(name string, factory Factory) error
	// Create instantiates a fresh report run
	Create(name string) (pipeline.Report, error)
	// List returns the registered report names in alphabetical order
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty report registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// Default registers the analytics, behavior and feedback reports.
func Default() Registry {
	r := NewRegistry()
	scorer := sentiment.NewLexiconScorer()
	settings := analysis.DefaultRecommendationSettings()

	_ = r.Register(AnalyticsName, func() pipeline.Report { return NewAnalytics() })
	_ = r.Register(BehaviorName, func() pipeline.Report { return NewBehavior(settings) })
	_ = r.Register(FeedbackName, func() pipeline.Report { return NewFeedback(scorer) })
	return r
}

func (r *registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("report name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("report %q is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *registry) Create(name string) (pipeline.Report, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}

	return factory(), nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
