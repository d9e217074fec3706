package agent

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps specialties to reviewers, preserving registration order.
// Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	order     []Specialty
	reviewers map[Specialty]Reviewer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		reviewers: make(map[Specialty]Reviewer),
	}
}

// DefaultRegistry registers reviewer for every built-in specialty.
func DefaultRegistry(reviewer func(Specialty) Reviewer) *Registry {
	r := NewRegistry()
	for _, s := range Specialties() {
		r.reviewers[s] = reviewer(s)
		r.order = append(r.order, s)
	}
	return r
}

// Register adds a reviewer for specialty.
func (r *Registry) Register(specialty Specialty, reviewer Reviewer) error {
	if specialty == "" {
		return ErrEmptySpecialty
	}

	if reviewer == nil {
		return fmt.Errorf("reviewer for %s cannot be nil", specialty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reviewers[specialty]; exists {
		return fmt.Errorf("%w: %s", ErrReviewerExists, specialty)
	}

	r.reviewers[specialty] = reviewer
	r.order = append(r.order, specialty)
	return nil
}

// Replace swaps the reviewer of an already registered specialty. Its
// position in the order is kept.
func (r *Registry) Replace(specialty Specialty, reviewer Reviewer) error {
	if specialty == "" {
		return ErrEmptySpecialty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reviewers[specialty]; !exists {
		return fmt.Errorf("%w: %s", ErrReviewerNotFound, specialty)
	}

	r.reviewers[specialty] = reviewer
	return nil
}

// Unregister removes a specialty.
func (r *Registry) Unregister(specialty Specialty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reviewers[specialty]; !exists {
		return fmt.Errorf("%w: %s", ErrReviewerNotFound, specialty)
	}

	delete(r.reviewers, specialty)
	r.order = slices.DeleteFunc(r.order, func(s Specialty) bool { return s == specialty })
	return nil
}

// Get returns the reviewer registered for specialty.
func (r *Registry) Get(specialty Specialty) (Reviewer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviewer, exists := r.reviewers[specialty]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrReviewerNotFound, specialty)
	}
	return reviewer, nil
}

// List returns the registered specialties in registration order.
func (r *Registry) List() []Specialty {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
