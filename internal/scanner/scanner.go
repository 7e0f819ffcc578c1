package scanner

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"InvestingIdeas/internal/domain"
)

// Strategy captures a single candidate heuristic (anchor-based, pattern-based, etc.).
type Strategy interface {
	Method() domain.Method
	Candidates(doc *goquery.Document) []domain.Candidate
}

// Registry keeps strategies in registration order; that order decides
// which heuristic's names come first after deduplication.
type Registry struct {
	strategies []Strategy
	index      map[domain.Method]int
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[domain.Method]int{}}
}

// Register appends a strategy or replaces the one registered for the same method in place.
func (r *Registry) Register(strategy Strategy) {
	if r.index == nil {
		r.index = map[domain.Method]int{}
	}
	if i, ok := r.index[strategy.Method()]; ok {
		r.strategies[i] = strategy
		return
	}
	r.index[strategy.Method()] = len(r.strategies)
	r.strategies = append(r.strategies, strategy)
}

// Resolve returns a strategy by method or an error if it is absent.
func (r *Registry) Resolve(method domain.Method) (Strategy, error) {
	if i, ok := r.index[method]; ok {
		return r.strategies[i], nil
	}
	return nil, fmt.Errorf("strategy %s is not registered", method)
}

// Strategies returns registered strategies in order.
func (r *Registry) Strategies() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}
