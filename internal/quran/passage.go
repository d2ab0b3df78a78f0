// Package quran holds the immutable reference index for a recitation
// passage: the ordered word sequence the reciter is expected to follow,
// each word carrying its display form, its normalized comparison form, and
// its precomputed tajweed rule tags.
//
// A [Passage] is built once at session start from ordered
// (surface text, tags) pairs and never mutated afterwards, so it is safe to
// share read-only across any number of concurrent sessions.
package quran

import (
	"errors"
	"fmt"

	"github.com/quranlabs/murattil/internal/arabic"
)

// ErrEmptyPassage is returned by [NewPassage] when no words are supplied.
var ErrEmptyPassage = errors.New("quran: passage has no words")

// Word is a single reference word, addressable by its 0-based global
// position within the passage. Immutable after passage construction.
type Word struct {
	// Surah and Ayah locate the word in the mushaf. Zero when the caller
	// supplied no location metadata.
	Surah int
	Ayah  int

	// Position is the 0-based global position within the passage.
	Position int

	// Surface is the diacritized display form.
	Surface string

	// Normalized is the comparison form produced by [arabic.Normalize].
	// Never empty.
	Normalized string

	// Tags are the tajweed rules applicable to this word.
	Tags []RuleTag
}

// WordInput is one entry of the ordered word list supplied at passage
// construction. When Tags is nil the tags are derived from the diacritized
// surface form; an explicit empty slice suppresses derivation.
type WordInput struct {
	Surface string    `json:"surface"`
	Surah   int       `json:"surah,omitempty"`
	Ayah    int       `json:"ayah,omitempty"`
	Tags    []RuleTag `json:"tags,omitempty"`
}

// Passage is the ordered, immutable word sequence of a reference text.
// Positions are contiguous from 0 to Len()-1.
type Passage struct {
	words []Word
}

// NewPassage builds a [Passage] from the ordered word inputs. Words whose
// surface form normalizes to an empty string are rejected, keeping the
// invariant that every reference word has a non-empty comparison form.
func NewPassage(inputs []WordInput) (*Passage, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyPassage
	}

	words := make([]Word, 0, len(inputs))
	for i, in := range inputs {
		normalized := arabic.Normalize(in.Surface)
		if normalized == "" {
			return nil, fmt.Errorf("quran: word %d (%q) normalizes to empty", i, in.Surface)
		}
		tags := in.Tags
		if tags == nil {
			tags = DeriveTags(in.Surface)
		}
		words = append(words, Word{
			Surah:      in.Surah,
			Ayah:       in.Ayah,
			Position:   i,
			Surface:    in.Surface,
			Normalized: normalized,
			Tags:       tags,
		})
	}
	return &Passage{words: words}, nil
}

// Len returns the total word count.
func (p *Passage) Len() int {
	return len(p.words)
}

// Word returns the word at the given 0-based position. The second return
// value is false when position is out of range.
func (p *Passage) Word(position int) (Word, bool) {
	if position < 0 || position >= len(p.words) {
		return Word{}, false
	}
	return p.words[position], true
}

// Window returns the words at positions [center-radius, center+radius],
// clamped to the passage bounds. The result is ordered by position and may
// be empty when center is far outside the passage.
func (p *Passage) Window(center, radius int) []Word {
	if radius < 0 {
		radius = 0
	}
	lo := center - radius
	if lo < 0 {
		lo = 0
	}
	hi := center + radius + 1
	if hi > len(p.words) {
		hi = len(p.words)
	}
	if lo >= hi {
		return nil
	}
	out := make([]Word, hi-lo)
	copy(out, p.words[lo:hi])
	return out
}
