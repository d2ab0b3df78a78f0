// Package tracker implements the streaming recitation-alignment state
// machine: it consumes transcribed word hypotheses one at a time, decides
// which reference position each one matches, advances (or corrects) the
// session cursor, and emits position/score/tajweed feedback records.
//
// A Tracker is single-writer. Hypotheses for one session must be applied in
// non-decreasing timestamp order by one goroutine at a time; the owning
// session layer serializes calls. Nothing in the tracker blocks on I/O —
// every operation is bounded CPU work proportional to the search window
// size times word length, so it is safe inside a latency-sensitive path.
package tracker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/quranlabs/murattil/internal/arabic"
	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/tajweed"
)

// ErrInvalidState is returned by control calls issued in an incompatible
// lifecycle state. The session state is left unchanged.
var ErrInvalidState = errors.New("tracker: invalid state")

// Positional bonuses applied during candidate selection so ties favor
// forward progress over re-matching repeated words earlier in the passage.
const (
	expectedBonus = 0.05
	nextBonus     = 0.02
)

// Scorer is the similarity capability consumed by the tracker. The default
// implementation is [arabic.Scorer]; alternatives can be swapped in without
// touching the alignment algorithm.
type Scorer interface {
	// Similarity returns a graded score in [0, 1] between two normalized
	// words.
	Similarity(a, b string) float64
}

// Analyzer is the tajweed capability invoked for accepted matches.
type Analyzer interface {
	Analyze(ref quran.Word, hypothesis string, timing tajweed.Timing) []tajweed.Issue
}

// Option is a functional option for configuring a [Tracker].
type Option func(*Tracker)

// WithScorer replaces the default [arabic.Scorer].
func WithScorer(s Scorer) Option {
	return func(t *Tracker) {
		if s != nil {
			t.scorer = s
		}
	}
}

// WithAnalyzer replaces the default [tajweed.Analyzer]. Passing nil disables
// tajweed analysis entirely.
func WithAnalyzer(a Analyzer) Option {
	return func(t *Tracker) {
		t.analyzer = a
		t.analyzerSet = true
	}
}

// WithMode sets the initial latency mode. Default: [ModeBalanced].
func WithMode(m LatencyMode) Option {
	return func(t *Tracker) {
		if m.IsValid() {
			t.mode = m
		}
	}
}

// WithTajweedEnabled overrides the mode's tajweed default for this session.
func WithTajweedEnabled(enabled bool) Option {
	return func(t *Tracker) {
		t.tajweed = enabled
		t.tajweedSet = true
	}
}

// WithAcceptThreshold overrides the mode policy's acceptance threshold for
// this session, e.g. from a per-user calibration. Values outside (0, 1] are
// ignored. The override applies across mode switches.
func WithAcceptThreshold(threshold float64) Option {
	return func(t *Tracker) {
		if threshold > 0 && threshold <= 1 {
			t.thresholdOverride = threshold
		}
	}
}

// Tracker aligns one recitation session against one reference passage.
// Not safe for concurrent use; see the package comment.
type Tracker struct {
	passage  *quran.Passage
	scorer   Scorer
	analyzer Analyzer

	mode              LatencyMode
	thresholdOverride float64
	tajweed           bool
	tajweedSet        bool
	analyzerSet       bool

	state  State
	cursor int // -1 before the first confirmed word
	// history holds exactly one entry per confirmed position; history[i]
	// is always position i, because skips insert placeholder entries.
	history []Entry
	misses  int
}

// New creates a tracker for passage in state [StateNotStarted].
func New(passage *quran.Passage, opts ...Option) *Tracker {
	t := &Tracker{
		passage: passage,
		mode:    ModeBalanced,
		state:   StateNotStarted,
		cursor:  -1,
	}
	for _, o := range opts {
		o(t)
	}
	if t.scorer == nil {
		t.scorer = arabic.NewScorer()
	}
	if !t.analyzerSet {
		t.analyzer = tajweed.New()
	}
	if !t.tajweedSet {
		t.tajweed = PolicyFor(t.mode).TajweedDefault
	}
	return t
}

// State returns the current lifecycle state.
func (t *Tracker) State() State { return t.state }

// Cursor returns the current confirmed position, or -1 before the first
// confirmed word.
func (t *Tracker) Cursor() int { return t.cursor }

// Mode returns the current latency mode.
func (t *Tracker) Mode() LatencyMode { return t.mode }

// TajweedEnabled reports whether tajweed analysis runs for accepted matches.
func (t *Tracker) TajweedEnabled() bool { return t.tajweed }

// History returns a copy of the confirmed history.
func (t *Tracker) History() []Entry {
	out := make([]Entry, len(t.history))
	copy(out, t.history)
	return out
}

// Accuracy returns correct-or-partial entries over all confirmed entries,
// in [0, 1]. Zero before any word is confirmed.
func (t *Tracker) Accuracy() float64 {
	if len(t.history) == 0 {
		return 0
	}
	correct := 0
	for _, e := range t.history {
		if e.Status == StatusCorrect || e.Status == StatusPartial {
			correct++
		}
	}
	return float64(correct) / float64(len(t.history))
}

// Start transitions NotStarted → Tracking.
func (t *Tracker) Start() error {
	if t.state != StateNotStarted {
		return fmt.Errorf("start in state %q: %w", t.state, ErrInvalidState)
	}
	t.state = StateTracking
	return nil
}

// Pause suspends a tracking session, preserving all state.
func (t *Tracker) Pause() error {
	if t.state != StateTracking {
		return fmt.Errorf("pause in state %q: %w", t.state, ErrInvalidState)
	}
	t.state = StatePaused
	return nil
}

// Resume returns a paused session to tracking at the same cursor.
func (t *Tracker) Resume() error {
	if t.state != StatePaused {
		return fmt.Errorf("resume in state %q: %w", t.state, ErrInvalidState)
	}
	t.state = StateTracking
	return nil
}

// Reset returns the tracker to NotStarted from any state, clearing the
// cursor, history, and miss counter. This is the only path besides an
// in-window backward correction that moves the cursor backward.
func (t *Tracker) Reset() {
	t.state = StateNotStarted
	t.cursor = -1
	t.history = nil
	t.misses = 0
}

// SetMode switches the latency mode. The switch affects only subsequent
// submissions; history is never rewritten.
func (t *Tracker) SetMode(m LatencyMode) error {
	if !m.IsValid() {
		return fmt.Errorf("unknown latency mode %q: %w", m, ErrInvalidState)
	}
	t.mode = m
	if !t.tajweedSet {
		t.tajweed = PolicyFor(m).TajweedDefault
	}
	return nil
}

// SetTajweedEnabled toggles tajweed analysis for subsequent submissions.
func (t *Tracker) SetTajweedEnabled(enabled bool) {
	t.tajweed = enabled
	t.tajweedSet = true
}

// Snapshot returns the current position summary.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		State:      t.state,
		Mode:       t.mode,
		Cursor:     t.cursor,
		TotalWords: t.passage.Len(),
		Accuracy:   t.Accuracy(),
		Misses:     t.misses,
		Tajweed:    t.tajweed,
	}
}

// Submit applies one hypothesis word to the session. Only valid while
// tracking: paused and completed sessions report a no-effect result with
// state unchanged, and a not-started session is a caller error.
//
// A hypothesis that matches no candidate above the acceptance threshold is
// not an error — it is the expected common case, producing a next-expected
// guidance record and an incremented miss counter.
func (t *Tracker) Submit(h Hypothesis) (Result, error) {
	switch t.state {
	case StatePaused, StateCompleted:
		return Result{NoEffect: true, Snapshot: t.Snapshot()}, nil
	case StateTracking:
	default:
		return Result{}, fmt.Errorf("submit in state %q: %w", t.state, ErrInvalidState)
	}

	normalized := arabic.Normalize(h.Text)
	expected := t.cursor + 1

	best, ok := t.searchWindow(normalized, expected)
	if !ok {
		// No-match path: hold position and keep guiding the reciter.
		t.misses++
		res := Result{Feedback: t.appendNextExpected(nil)}
		res.Snapshot = t.Snapshot()
		return res, nil
	}

	res := Result{Accepted: true}

	switch {
	case best.position <= t.cursor:
		// Correction of an already-confirmed word: overwrite, never append.
		res.Feedback = append(res.Feedback, t.confirm(best, h, normalized))
	default:
		// Insert skip placeholders for unspoken words between the expected
		// position and the accepted one.
		for pos := expected; pos < best.position; pos++ {
			w, _ := t.passage.Word(pos)
			entry := Entry{Position: pos, Score: 0, Status: StatusIncorrect}
			t.history = append(t.history, entry)
			res.Feedback = append(res.Feedback, WordFeedback{
				Position:  pos,
				Reference: w,
				Score:     0,
				Status:    StatusIncorrect,
			})
		}
		res.Feedback = append(res.Feedback, t.confirm(best, h, normalized))
		t.cursor = best.position
	}
	t.misses = 0

	t.maybeComplete()
	if t.state == StateTracking {
		res.Feedback = t.appendNextExpected(res.Feedback)
	}
	res.Snapshot = t.Snapshot()
	return res, nil
}

// candidate is a scored reference position from the search window.
type candidate struct {
	position int
	word     quran.Word
	score    float64 // raw similarity, without positional bonus
	adjusted float64 // bonus-adjusted selection score
}

// searchWindow scores the hypothesis against every candidate position and
// returns the best one, or ok=false when none clears the acceptance
// threshold. The window spans from the mode's backward tolerance behind the
// cursor to its lookahead past the expected position; after enough
// consecutive misses it widens to the recovery bounds so a dropped phrase
// can be re-acquired.
func (t *Tracker) searchWindow(normalized string, expected int) (candidate, bool) {
	if normalized == "" {
		return candidate{}, false
	}

	policy := PolicyFor(t.mode)
	back, fwd := policy.BackwardTolerance, policy.Lookahead
	if t.misses >= policy.MissRecoveryAfter {
		back, fwd = policy.RecoveryBackward, policy.RecoveryForward
	}

	lo := t.cursor - back
	if lo < 0 {
		lo = 0
	}
	hi := expected + fwd
	if max := t.passage.Len() - 1; hi > max {
		hi = max
	}

	threshold := policy.AcceptThreshold
	if t.thresholdOverride > 0 {
		threshold = t.thresholdOverride
	}

	var best candidate
	found := false
	for pos := lo; pos <= hi; pos++ {
		w, ok := t.passage.Word(pos)
		if !ok {
			continue
		}
		score := t.scorer.Similarity(normalized, w.Normalized)
		adjusted := score
		switch pos {
		case expected:
			adjusted += expectedBonus
		case expected + 1:
			adjusted += nextBonus
		}
		if adjusted > 1 {
			adjusted = 1
		}
		if adjusted < threshold {
			continue
		}
		c := candidate{position: pos, word: w, score: score, adjusted: adjusted}
		if !found || c.adjusted > best.adjusted || (c.adjusted == best.adjusted && closerToExpected(c.position, best.position, expected)) {
			best = c
			found = true
		}
	}
	return best, found
}

// closerToExpected reports whether a should win a score tie against b:
// smaller distance to the expected position wins, and on equal distance the
// forward position wins so ties favor forward progress.
func closerToExpected(a, b, expected int) bool {
	da, db := abs(a-expected), abs(b-expected)
	if da != db {
		return da < db
	}
	return a > b
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// confirm records the accepted match in history (overwriting on a
// correction) and builds its feedback record, running tajweed analysis when
// enabled.
func (t *Tracker) confirm(c candidate, h Hypothesis, normalized string) WordFeedback {
	entry := Entry{
		Position:   c.position,
		Hypothesis: normalized,
		Score:      c.score,
		Status:     statusForScore(c.score),
	}
	if c.position < len(t.history) {
		t.history[c.position] = entry
	} else {
		t.history = append(t.history, entry)
	}

	fb := WordFeedback{
		Position:   c.position,
		Reference:  c.word,
		Hypothesis: normalized,
		Score:      c.score,
		Status:     entry.Status,
	}
	if t.tajweed && t.analyzer != nil {
		fb.Issues = t.analyze(c.word, normalized, h)
	}
	return fb
}

// analyze runs the tajweed analyzer, degrading any panic to "no issues
// reported" so analysis can never reject an accepted match.
func (t *Tracker) analyze(w quran.Word, normalized string, h Hypothesis) (issues []tajweed.Issue) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("tajweed analysis failed", "position", w.Position, "panic", r)
			issues = nil
		}
	}()
	return t.analyzer.Analyze(w, normalized, tajweed.Timing{Start: h.Start, End: h.End})
}

// appendNextExpected appends the guidance record for the word after the
// cursor, when one exists.
func (t *Tracker) appendNextExpected(fb []WordFeedback) []WordFeedback {
	w, ok := t.passage.Word(t.cursor + 1)
	if !ok {
		return fb
	}
	return append(fb, WordFeedback{
		Position:  w.Position,
		Reference: w,
		Status:    StatusNextExpected,
	})
}

// maybeComplete transitions to Completed once the final word is confirmed
// as correct or partial.
func (t *Tracker) maybeComplete() {
	if t.cursor != t.passage.Len()-1 {
		return
	}
	last := t.history[len(t.history)-1]
	if last.Status == StatusCorrect || last.Status == StatusPartial {
		t.state = StateCompleted
	}
}
