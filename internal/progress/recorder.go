// Package progress aggregates per-session recitation statistics from the
// feedback stream: running accuracy, the reciter's common mistakes, and
// which reference words they find difficult.
//
// Aggregation is in-memory and scoped to one session; nothing is persisted.
// Downstream consumers that want history across sessions own that storage.
package progress

import (
	"sort"

	"github.com/quranlabs/murattil/internal/tracker"
)

// mistakeThreshold is the score below which a scored word counts as a
// mistake worth surfacing to the reciter.
const mistakeThreshold = 0.7

// Mistake is one recurring expected→heard confusion.
type Mistake struct {
	Expected string  `json:"expected"`
	Heard    string  `json:"heard"`
	Count    int     `json:"count"`
	Worst    float64 `json:"worst_score"`
}

// WordDifficulty is the running average score for one reference word.
type WordDifficulty struct {
	Word     string  `json:"word"`
	Attempts int     `json:"attempts"`
	Average  float64 `json:"average_score"`
}

// Summary is the queryable aggregation snapshot returned on demand and at
// session stop.
type Summary struct {
	WordsScored   int              `json:"words_scored"`
	TajweedIssues int              `json:"tajweed_issues"`
	Mistakes      []Mistake        `json:"mistakes,omitempty"`
	Difficulties  []WordDifficulty `json:"difficulties,omitempty"`
}

// Recorder accumulates feedback for one session. Not safe for concurrent
// use on its own; the owning session serializes calls alongside tracker
// submissions.
type Recorder struct {
	scored      int
	issues      int
	mistakes    map[[2]string]*Mistake
	difficulty  map[string]*WordDifficulty
	wordOrder   []string
	mistakeKeys [][2]string
}

// NewRecorder returns an empty [Recorder].
func NewRecorder() *Recorder {
	return &Recorder{
		mistakes:   make(map[[2]string]*Mistake),
		difficulty: make(map[string]*WordDifficulty),
	}
}

// Record folds one submission's feedback into the aggregates. Guidance
// records (next-expected) are ignored; skip placeholders count as scored
// words with score zero.
func (r *Recorder) Record(feedback []tracker.WordFeedback) {
	for _, fb := range feedback {
		if fb.Status == tracker.StatusNextExpected {
			continue
		}
		r.scored++
		r.issues += len(fb.Issues)

		word := fb.Reference.Surface
		d, ok := r.difficulty[word]
		if !ok {
			d = &WordDifficulty{Word: word}
			r.difficulty[word] = d
			r.wordOrder = append(r.wordOrder, word)
		}
		d.Average = (d.Average*float64(d.Attempts) + fb.Score) / float64(d.Attempts+1)
		d.Attempts++

		if fb.Score < mistakeThreshold {
			key := [2]string{word, fb.Hypothesis}
			m, ok := r.mistakes[key]
			if !ok {
				m = &Mistake{Expected: word, Heard: fb.Hypothesis, Worst: fb.Score}
				r.mistakes[key] = m
				r.mistakeKeys = append(r.mistakeKeys, key)
			}
			m.Count++
			if fb.Score < m.Worst {
				m.Worst = fb.Score
			}
		}
	}
}

// Summary returns the current aggregates. Mistakes are ordered most
// frequent first, difficulties hardest first.
func (r *Recorder) Summary() Summary {
	s := Summary{
		WordsScored:   r.scored,
		TajweedIssues: r.issues,
	}
	for _, key := range r.mistakeKeys {
		s.Mistakes = append(s.Mistakes, *r.mistakes[key])
	}
	sort.SliceStable(s.Mistakes, func(i, j int) bool {
		return s.Mistakes[i].Count > s.Mistakes[j].Count
	})
	for _, w := range r.wordOrder {
		s.Difficulties = append(s.Difficulties, *r.difficulty[w])
	}
	sort.SliceStable(s.Difficulties, func(i, j int) bool {
		return s.Difficulties[i].Average < s.Difficulties[j].Average
	})
	return s
}

// Reset clears all aggregates, mirroring a tracker reset.
func (r *Recorder) Reset() {
	r.scored = 0
	r.issues = 0
	r.mistakes = make(map[[2]string]*Mistake)
	r.difficulty = make(map[string]*WordDifficulty)
	r.wordOrder = nil
	r.mistakeKeys = nil
}
