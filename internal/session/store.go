package session

import (
	"errors"
	"fmt"
	"time"

	"smart-calculator/internal/observability"
	"smart-calculator/internal/solver"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultMaxSessions bounds a Store when no size is configured.
const DefaultMaxSessions = 1024

var ErrSessionNotFound = errors.New("session not found")

// Store keeps live sessions in memory. When full, the least recently used
// session is dropped. Nothing survives a restart.
type Store struct {
	sessions *lru.Cache[string, *Session]
	client   solver.Client
	now      func() time.Time
}

// NewStore creates a store holding at most size sessions that all share client.
func NewStore(size int, client solver.Client) (*Store, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}

	sessions, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		observability.Logger.Info("session removed", zap.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &Store{
		sessions: sessions,
		client:   client,
		now:      time.Now,
	}, nil
}

// Create starts a new session with a fresh id.
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.client, st.now)
	st.sessions.Add(s.ID(), s)
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	s, ok := st.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	return st.sessions.Remove(id)
}

func (st *Store) Len() int {
	return st.sessions.Len()
}

// RegisterCollectors exposes the live session count to Prometheus.
func (st *Store) RegisterCollectors(reg prometheus.Registerer) error {
	gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "smartcalc",
		Name:      "sessions_active",
		Help:      "Number of calculator sessions currently held in memory.",
	}, func() float64 {
		return float64(st.Len())
	})
	if err := reg.Register(gauge); err != nil {
		return fmt.Errorf("registering sessions gauge: %w", err)
	}
	return nil
}
