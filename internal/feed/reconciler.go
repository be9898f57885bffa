package feed

import (
	"sync"

	"speechcraft/internal/domain"
)

// Reconciler maintains a local newest-first snapshot of one user's job list
// by folding change events through Reduce. It is safe for concurrent use.
type Reconciler struct {
	mu   sync.RWMutex
	list []domain.TranscriptionJob
}

// NewReconciler creates a Reconciler seeded with an initial snapshot,
// typically the current page of rows fetched before subscribing.
func NewReconciler(initial []domain.TranscriptionJob) *Reconciler {
	list := make([]domain.TranscriptionJob, len(initial))
	copy(list, initial)
	return &Reconciler{list: list}
}

// Apply folds one event into the snapshot.
func (r *Reconciler) Apply(ev domain.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = Reduce(r.list, ev)
}

// Jobs returns a copy of the current snapshot, newest first.
func (r *Reconciler) Jobs() []domain.TranscriptionJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TranscriptionJob, len(r.list))
	copy(out, r.list)
	return out
}

// Len returns the current snapshot size.
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.list)
}
