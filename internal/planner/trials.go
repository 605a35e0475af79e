package planner

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/runway-core/internal/search"
)

// TrialStatus is the lifecycle state of one trial
type TrialStatus string

const (
	TrialPending   TrialStatus = "pending"
	TrialRunning   TrialStatus = "running"
	TrialCompleted TrialStatus = "completed"
	TrialFailed    TrialStatus = "failed"
	TrialCanceled  TrialStatus = "canceled"
)

// Trial is one optimizer run inside a restart
type Trial struct {
	ID        string
	Restart   int
	Index     int
	Seed      int64
	Status    TrialStatus
	Result    *search.Result
	Error     string
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

// TrialStore tracks the trials of a run. It is safe for concurrent use.
type TrialStore struct {
	mu     sync.RWMutex
	trials map[string]*Trial
}

// NewTrialStore creates an empty store
func NewTrialStore() *TrialStore {
	return &TrialStore{
		trials: make(map[string]*Trial),
	}
}

// Create registers a pending trial
func (s *TrialStore) Create(id string, restart, index int, seed int64) (*Trial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trials[id]; exists {
		return nil, fmt.Errorf("trial already exists: %s", id)
	}
	t := &Trial{
		ID:        id,
		Restart:   restart,
		Index:     index,
		Seed:      seed,
		Status:    TrialPending,
		CreatedAt: time.Now(),
	}
	s.trials[id] = t
	return t, nil
}

// Get returns a copy of the trial
func (s *TrialStore) Get(id string) (Trial, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trials[id]
	if !ok {
		return Trial{}, false
	}
	return *t, true
}

// List returns copies of all trials ordered by restart, then index
func (s *TrialStore) List() []Trial {
	s.mu.RLock()
	out := make([]Trial, 0, len(s.trials))
	for _, t := range s.trials {
		out = append(out, *t)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Trial) int {
		if c := cmp.Compare(a.Restart, b.Restart); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}

// SetStatus moves a trial to status, stamping start and end times
func (s *TrialStore) SetStatus(id string, status TrialStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trials[id]
	if !ok {
		return fmt.Errorf("trial not found: %s", id)
	}
	t.Status = status
	if errMsg != "" {
		t.Error = errMsg
	}

	switch status {
	case TrialRunning:
		if t.StartedAt.IsZero() {
			t.StartedAt = time.Now()
		}
	case TrialCompleted, TrialFailed, TrialCanceled:
		t.EndedAt = time.Now()
	}
	return nil
}

// SetResult attaches the optimizer result of a trial
func (s *TrialStore) SetResult(id string, res *search.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trials[id]
	if !ok {
		return fmt.Errorf("trial not found: %s", id)
	}
	t.Result = res
	return nil
}

// Best returns the lowest-cost trial of restart, ties going to the lower
// index. ok is false when no trial of that restart has a result.
func (s *TrialStore) Best(restart int) (Trial, bool) {
	var (
		best  Trial
		found bool
	)
	for _, t := range s.List() {
		if t.Restart != restart || t.Result == nil {
			continue
		}
		if !found || t.Result.Cost < best.Result.Cost {
			best, found = t, true
		}
	}
	return best, found
}
