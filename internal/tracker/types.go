package tracker

import (
	"time"

	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/tajweed"
)

// Hypothesis is a single transcribed word guess from the ASR collaborator,
// consumed once per submission and not retained beyond the tracker's short
// context window.
type Hypothesis struct {
	// Text is the raw transcribed word; it is normalized on submission.
	Text string `json:"text"`

	// Start and End are the spoken span relative to session start.
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`

	// Confidence is the ASR's own confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Status classifies a word feedback entry.
type Status string

const (
	// StatusCorrect marks a match scoring at or above 0.9.
	StatusCorrect Status = "correct"

	// StatusPartial marks a match scoring in [0.6, 0.9).
	StatusPartial Status = "partial"

	// StatusIncorrect marks a match below 0.6 or a skipped, unspoken word.
	StatusIncorrect Status = "incorrect"

	// StatusNextExpected is guidance: the word the reciter should say next.
	StatusNextExpected Status = "next_expected"
)

// statusForScore maps a match score to its feedback status.
func statusForScore(score float64) Status {
	switch {
	case score >= 0.9:
		return StatusCorrect
	case score >= 0.6:
		return StatusPartial
	}
	return StatusIncorrect
}

// WordFeedback is one emitted feedback record. The core emits and forgets;
// persistence belongs to downstream consumers.
type WordFeedback struct {
	Position   int             `json:"position"`
	Reference  quran.Word      `json:"reference"`
	Hypothesis string          `json:"hypothesis"`
	Score      float64         `json:"score"`
	Status     Status          `json:"status"`
	Issues     []tajweed.Issue `json:"tajweed_issues,omitempty"`
}

// State is the tracker lifecycle state.
type State string

const (
	StateNotStarted State = "not_started"
	StateTracking   State = "tracking"
	StatePaused     State = "paused"
	StateCompleted  State = "completed"
)

// Snapshot is the session position summary emitted after every submission,
// shaped for verbatim forwarding to a transport layer.
type Snapshot struct {
	State      State       `json:"state"`
	Mode       LatencyMode `json:"mode"`
	Cursor     int         `json:"cursor"` // -1 before the first confirmed word
	TotalWords int         `json:"total_words"`
	Accuracy   float64     `json:"accuracy"`
	Misses     int         `json:"consecutive_misses"`
	Tajweed    bool        `json:"tajweed_enabled"`
}

// Result is the outcome of one hypothesis submission.
type Result struct {
	// Accepted is true when a candidate cleared the acceptance threshold.
	Accepted bool `json:"accepted"`

	// NoEffect is true when the submission was ignored because the tracker
	// was paused or completed.
	NoEffect bool `json:"no_effect,omitempty"`

	// Feedback holds one record per position touched by this submission,
	// plus the trailing next-expected guidance record.
	Feedback []WordFeedback `json:"feedback"`

	Snapshot Snapshot `json:"snapshot"`
}

// Entry is one confirmed history record: the reference position, the
// normalized hypothesis that matched it (empty for skip placeholders), and
// the match score.
type Entry struct {
	Position   int
	Hypothesis string
	Score      float64
	Status     Status
}
