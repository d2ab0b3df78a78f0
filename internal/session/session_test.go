package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/session"
	"github.com/quranlabs/murattil/internal/tracker"
)

func basmalaConfig() session.Config {
	return session.Config{
		Words: []quran.WordInput{
			{Surface: "بِسْمِ"},
			{Surface: "اللَّهِ"},
			{Surface: "الرَّحْمَٰنِ"},
			{Surface: "الرَّحِيمِ"},
		},
	}
}

func TestRegistry_CreateGetRemove(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	s, err := reg.Create(basmalaConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID() == "" {
		t.Error("ID() is empty")
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	got, ok := reg.Get(s.ID())
	if !ok || got != s {
		t.Errorf("Get(%q) = %v, %v; want the created session", s.ID(), got, ok)
	}

	reg.Remove(s.ID())
	if _, ok := reg.Get(s.ID()); ok {
		t.Error("Get after Remove: ok = true, want false")
	}
	if reg.Len() != 0 {
		t.Errorf("Len() after Remove = %d, want 0", reg.Len())
	}

	// Removing twice is a no-op.
	reg.Remove(s.ID())
}

func TestRegistry_CreateValidation(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	if _, err := reg.Create(session.Config{}); err == nil {
		t.Error("Create with no words: err = nil, want error")
	}
	cfg := basmalaConfig()
	cfg.Mode = "turbo"
	if _, err := reg.Create(cfg); err == nil {
		t.Error("Create with unknown mode: err = nil, want error")
	}
	cfg = basmalaConfig()
	cfg.AcceptThreshold = 1.5
	if _, err := reg.Create(cfg); err == nil {
		t.Error("Create with threshold 1.5: err = nil, want error")
	}
}

func TestSession_LifecycleAndProgress(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	s, err := reg.Create(basmalaConfig())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, word := range []string{"بسم", "الله", "رحمن", "رحيم"} {
		if _, err := s.Submit(context.Background(), tracker.Hypothesis{Text: word}); err != nil {
			t.Fatalf("Submit(%q): %v", word, err)
		}
	}

	snap := s.Snapshot()
	if snap.State != tracker.StateCompleted {
		t.Errorf("Snapshot state = %q, want %q", snap.State, tracker.StateCompleted)
	}
	if summary := s.Progress(); summary.WordsScored != 4 {
		t.Errorf("Progress().WordsScored = %d, want 4", summary.WordsScored)
	}

	s.Reset()
	if snap := s.Snapshot(); snap.State != tracker.StateNotStarted || snap.Cursor != -1 {
		t.Errorf("Snapshot after reset = %+v, want not_started at cursor -1", snap)
	}
	if summary := s.Progress(); summary.WordsScored != 0 {
		t.Errorf("Progress after reset: WordsScored = %d, want 0", summary.WordsScored)
	}
}

func TestSession_TajweedOverride(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	enabled := true
	cfg := basmalaConfig()
	cfg.Mode = tracker.ModeInstant
	cfg.Tajweed = &enabled

	s, err := reg.Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if snap := s.Snapshot(); !snap.Tajweed {
		t.Error("Snapshot.Tajweed = false, want true (explicit override)")
	}
}

func TestSessions_RunIndependently(t *testing.T) {
	t.Parallel()

	reg := session.NewRegistry(nil)
	const n = 8
	sessions := make([]*session.Session, n)
	for i := range sessions {
		s, err := reg.Create(basmalaConfig())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		sessions[i] = s
	}

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *session.Session) {
			defer wg.Done()
			for _, word := range []string{"بسم", "الله", "رحمن", "رحيم"} {
				if _, err := s.Submit(context.Background(), tracker.Hypothesis{Text: word}); err != nil {
					t.Errorf("Submit(%q): %v", word, err)
				}
			}
		}(s)
	}
	wg.Wait()

	for i, s := range sessions {
		if snap := s.Snapshot(); snap.State != tracker.StateCompleted {
			t.Errorf("session %d: state = %q, want %q", i, snap.State, tracker.StateCompleted)
		}
	}
}
