// Package session manages the lifecycle of recitation sessions: one
// [Session] per reciter, each owning an alignment tracker and a progress
// recorder, collected in a [Registry] keyed by generated session IDs.
//
// The tracker itself is single-writer; the Session wraps every call in its
// own mutex so the transport layer may deliver control messages and
// hypotheses from any goroutine. Different sessions share no mutable state
// and run fully in parallel.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quranlabs/murattil/internal/arabic"
	"github.com/quranlabs/murattil/internal/observe"
	"github.com/quranlabs/murattil/internal/progress"
	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/tracker"
)

// Config holds the parameters for a new session.
type Config struct {
	// Words is the ordered reference passage, required.
	Words []quran.WordInput

	// Mode is the initial latency mode. Empty means balanced.
	Mode tracker.LatencyMode

	// Tajweed overrides the mode's tajweed default when non-nil.
	Tajweed *bool

	// AcceptThreshold, when in (0, 1], overrides the mode policy's
	// acceptance threshold, e.g. from per-user calibration.
	AcceptThreshold float64

	// ClassCost, when in (0, 1), tunes the scorer's same-phonetic-class
	// substitution cost.
	ClassCost float64
}

// Session is one reciter's live session. All exported methods are safe for
// concurrent use.
type Session struct {
	id        string
	createdAt time.Time
	metrics   *observe.Metrics

	mu        sync.Mutex
	tracker   *tracker.Tracker
	recorder  *progress.Recorder
	completed bool
}

// ID returns the generated session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was registered.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Start begins tracking.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Start()
}

// Pause suspends tracking, preserving all state.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Pause()
}

// Resume continues a paused session at the same cursor.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Resume()
}

// Reset returns the session to its initial state, clearing tracker history
// and progress aggregates.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset()
	s.recorder.Reset()
	s.completed = false
}

// SetMode switches the latency mode for subsequent submissions.
func (s *Session) SetMode(m tracker.LatencyMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.SetMode(m)
}

// SetTajweedEnabled toggles tajweed analysis for subsequent submissions.
func (s *Session) SetTajweedEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.SetTajweedEnabled(enabled)
}

// Snapshot returns the current position summary.
func (s *Session) Snapshot() tracker.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Snapshot()
}

// Progress returns the session's aggregated statistics so far.
func (s *Session) Progress() progress.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Summary()
}

// Submit applies one hypothesis word, records the feedback into the
// progress aggregates, and updates metrics.
func (s *Session) Submit(ctx context.Context, h tracker.Hypothesis) (tracker.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := s.tracker.Submit(h)
	if err != nil {
		return res, err
	}
	if s.metrics != nil && s.metrics.SubmitDuration != nil {
		s.metrics.SubmitDuration.Record(ctx, time.Since(start).Seconds())
	}
	if res.NoEffect {
		return res, nil
	}

	s.recorder.Record(res.Feedback)
	mode := string(res.Snapshot.Mode)
	for _, fb := range res.Feedback {
		s.metrics.RecordOutcome(ctx, string(fb.Status), mode)
		for _, iss := range fb.Issues {
			s.metrics.RecordTajweedIssue(ctx, string(iss.Category), string(iss.Severity))
		}
	}
	if res.Snapshot.State == tracker.StateCompleted && !s.completed {
		s.completed = true
		if s.metrics != nil && s.metrics.SessionsCompleted != nil {
			s.metrics.SessionsCompleted.Add(ctx, 1)
		}
	}
	return res, nil
}

// Registry holds the live sessions of this process. Safe for concurrent
// use.
type Registry struct {
	metrics *observe.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry recording into metrics. metrics may
// be nil in tests.
func NewRegistry(metrics *observe.Metrics) *Registry {
	return &Registry{
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Create builds a session from cfg, registers it under a fresh ID, and
// returns it. The reference passage is built once here and never mutated
// afterwards.
func (r *Registry) Create(cfg Config) (*Session, error) {
	passage, err := quran.NewPassage(cfg.Words)
	if err != nil {
		return nil, fmt.Errorf("session: build passage: %w", err)
	}

	opts := []tracker.Option{}
	if cfg.Mode != "" {
		if !cfg.Mode.IsValid() {
			return nil, fmt.Errorf("session: unknown latency mode %q", cfg.Mode)
		}
		opts = append(opts, tracker.WithMode(cfg.Mode))
	}
	if cfg.Tajweed != nil {
		opts = append(opts, tracker.WithTajweedEnabled(*cfg.Tajweed))
	}
	if cfg.AcceptThreshold > 0 {
		if cfg.AcceptThreshold > 1 {
			return nil, fmt.Errorf("session: accept threshold %v out of range", cfg.AcceptThreshold)
		}
		opts = append(opts, tracker.WithAcceptThreshold(cfg.AcceptThreshold))
	}
	if cfg.ClassCost > 0 {
		opts = append(opts, tracker.WithScorer(arabic.NewScorer(arabic.WithClassCost(cfg.ClassCost))))
	}

	s := &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		metrics:   r.metrics,
		tracker:   tracker.New(passage, opts...),
		recorder:  progress.NewRecorder(),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	if r.metrics != nil && r.metrics.ActiveSessions != nil {
		r.metrics.ActiveSessions.Add(context.Background(), 1)
	}
	return s, nil
}

// Get returns the session with the given ID.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove discards the session with the given ID. Removing an unknown ID is
// a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, existed := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if existed && r.metrics != nil && r.metrics.ActiveSessions != nil {
		r.metrics.ActiveSessions.Add(context.Background(), -1)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
