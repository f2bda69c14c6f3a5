package uistore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultName is the record name used by the storefront.
const DefaultName = "ui-store"

// ErrNotFound is returned by a Storage that holds no record for a name.
var ErrNotFound = errors.New("uistore: record not found")

// State is the persisted UI record.
type State struct {
	IsSidebarOpen bool `json:"isSidebarOpen"`
}

// Storage persists named records.
type Storage interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// Store holds one named record. State changes only through its update
// operations, each of which is written through to storage.
type Store struct {
	mu      sync.Mutex
	name    string
	storage Storage
	state   State
}

// Open hydrates the record from storage, or starts empty when storage holds
// nothing usable.
func Open(ctx context.Context, storage Storage, name string) (*Store, error) {
	if name == "" {
		name = DefaultName
	}
	s := &Store{name: name, storage: storage}

	data, err := storage.Load(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("uistore: load %s: %w", name, err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		s.state = State{}
	}
	return s, nil
}

// Name returns the record name.
func (s *Store) Name() string { return s.name }

// State returns the current record.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ToggleSidebar flips isSidebarOpen and persists the result.
func (s *Store) ToggleSidebar(ctx context.Context) (State, error) {
	return s.update(ctx, func(st *State) { st.IsSidebarOpen = !st.IsSidebarOpen })
}

// SetSidebarOpen sets isSidebarOpen and persists the result.
func (s *Store) SetSidebarOpen(ctx context.Context, open bool) (State, error) {
	return s.update(ctx, func(st *State) { st.IsSidebarOpen = open })
}

func (s *Store) update(ctx context.Context, fn func(*State)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	fn(&next)

	data, err := json.Marshal(next)
	if err != nil {
		return s.state, err
	}
	if err := s.storage.Save(ctx, s.name, data); err != nil {
		return s.state, fmt.Errorf("uistore: save %s: %w", s.name, err)
	}
	s.state = next
	return next, nil
}

// Records opens named records over one Storage and serializes updates to the
// same name within the process, so concurrent read-modify-write cycles do not
// lose toggles. Processes sharing the storage are not coordinated: the last
// write wins.
type Records struct {
	storage Storage
	locks   *xsync.MapOf[string, *sync.Mutex]
}

// NewRecords returns Records over storage.
func NewRecords(storage Storage) *Records {
	return &Records{storage: storage, locks: xsync.NewMapOf[string, *sync.Mutex]()}
}

// State hydrates name and returns its current record.
func (r *Records) State(ctx context.Context, name string) (State, error) {
	s, err := Open(ctx, r.storage, name)
	if err != nil {
		return State{}, err
	}
	return s.State(), nil
}

// Update hydrates name and applies fn while holding the lock for name.
func (r *Records) Update(ctx context.Context, name string, fn func(context.Context, *Store) (State, error)) (State, error) {
	if name == "" {
		name = DefaultName
	}
	mu, _ := r.locks.LoadOrCompute(name, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	defer mu.Unlock()

	s, err := Open(ctx, r.storage, name)
	if err != nil {
		return State{}, err
	}
	return fn(ctx, s)
}

// ToggleSidebar flips isSidebarOpen on name.
func (r *Records) ToggleSidebar(ctx context.Context, name string) (State, error) {
	return r.Update(ctx, name, func(ctx context.Context, s *Store) (State, error) {
		return s.ToggleSidebar(ctx)
	})
}

// SetSidebarOpen sets isSidebarOpen on name.
func (r *Records) SetSidebarOpen(ctx context.Context, name string, open bool) (State, error) {
	return r.Update(ctx, name, func(ctx context.Context, s *Store) (State, error) {
		return s.SetSidebarOpen(ctx, open)
	})
}
