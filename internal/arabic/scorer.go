package arabic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	// defaultClassCost is the substitution cost between two distinct letters
	// that share a phonetic class. Tunable via [WithClassCost]; validated
	// against native-speaker-labeled recitations rather than derived.
	defaultClassCost = 0.3

	// unrelatedCost is the substitution cost between letters of different
	// phonetic classes, equal to the insertion/deletion cost.
	unrelatedCost = 1.0
)

// phoneticClasses groups letters that are commonly confused in recitation:
// emphatic/plain counterparts and letters differing only by point of
// articulation.
var phoneticClasses = [][]rune{
	{'س', 'ص', 'ث'}, // sibilants
	{'ت', 'ط'},      // plain/emphatic t
	{'د', 'ض', 'ذ', 'ظ'}, // d and th sounds
	{'ح', 'خ', 'ه'}, // h sounds
	{'ق', 'ك'},      // uvular/velar stops
	{'غ', 'ع'},      // gutturals
}

// classOf maps each classed letter to its phonetic class index.
var classOf = func() map[rune]int {
	m := make(map[rune]int)
	for i, class := range phoneticClasses {
		for _, r := range class {
			m[r] = i
		}
	}
	return m
}()

// jwToken maps Arabic letters to single-byte tokens so that Jaro-Winkler,
// which compares byte-wise, sees one symbol per letter instead of the shared
// UTF-8 lead bytes of the Arabic block. Letters absent from the table (and
// any non-Arabic rune outside printable ASCII) collapse to '?'.
var jwToken = map[rune]byte{
	'ا': 'a', 'ب': 'b', 'ت': 'c', 'ث': 'd', 'ج': 'e', 'ح': 'f',
	'خ': 'g', 'د': 'h', 'ذ': 'i', 'ر': 'j', 'ز': 'k', 'س': 'l',
	'ش': 'm', 'ص': 'n', 'ض': 'o', 'ط': 'p', 'ظ': 'q', 'ع': 'r',
	'غ': 's', 'ف': 't', 'ق': 'u', 'ك': 'v', 'ل': 'w', 'م': 'x',
	'ن': 'y', 'ه': 'z', 'و': 'A', 'ي': 'B', 'ء': 'C',
}

// Option is a functional option for configuring a [Scorer].
type Option func(*Scorer)

// WithClassCost sets the substitution cost applied between two distinct
// letters of the same phonetic class. Must be in (0, 1). Default: 0.3.
func WithClassCost(cost float64) Option {
	return func(s *Scorer) {
		if cost > 0 && cost < 1 {
			s.classCost = cost
		}
	}
}

// Scorer computes graded similarity between normalized Arabic words.
// All methods are safe for concurrent use — the Scorer is read-only after
// construction.
type Scorer struct {
	classCost float64
}

// NewScorer returns a [Scorer] configured with the supplied options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{classCost: defaultClassCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Similarity returns a graded similarity score in [0, 1] between two
// normalized words. Identical strings score 1.0; completely disjoint strings
// of equal length score 0.0. The score is the stronger of two signals:
//
//  1. One minus the phonetically-weighted edit distance normalized by
//     max(len(a), len(b)), so the score is length-invariant.
//  2. Jaro-Winkler similarity on per-letter tokens, which rewards shared
//     prefixes common in Arabic morphology.
//
// Similarity is symmetric. Empty input on either side scores 0 unless both
// are empty, which scores 1.
func (s *Scorer) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	dist := s.weightedDistance(ra, rb)
	score := 1.0 - dist/float64(maxLen)
	if score < 0 {
		score = 0
	}

	if jw := matchr.JaroWinkler(tokenize(ra), tokenize(rb), false); jw > score {
		score = jw
	}
	return score
}

// weightedDistance computes the Levenshtein distance between two rune slices
// using phonetic substitution costs. It keeps only two DP rows, bounding
// memory at O(min(len)) regardless of word length.
func (s *Scorer) weightedDistance(a, b []rune) float64 {
	// Iterate over the longer word so the rows track the shorter one.
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]float64, len(b)+1)
	curr := make([]float64, len(b)+1)
	for j := range prev {
		prev[j] = float64(j)
	}

	for i, ca := range a {
		curr[0] = float64(i + 1)
		for j, cb := range b {
			subst := prev[j] + s.substitutionCost(ca, cb)
			insert := curr[j] + 1
			del := prev[j+1] + 1

			m := subst
			if insert < m {
				m = insert
			}
			if del < m {
				m = del
			}
			curr[j+1] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// substitutionCost returns the cost of substituting one letter for another:
// 0 for identical letters, the configured class cost for distinct letters in
// the same phonetic class, 1 otherwise.
func (s *Scorer) substitutionCost(a, b rune) float64 {
	if a == b {
		return 0
	}
	ca, okA := classOf[a]
	cb, okB := classOf[b]
	if okA && okB && ca == cb {
		return s.classCost
	}
	return unrelatedCost
}

// SameClass reports whether two distinct letters belong to the same phonetic
// class, i.e. substituting one for the other is an articulation near-miss
// rather than an unrelated letter.
func SameClass(a, b rune) bool {
	if a == b {
		return false
	}
	ca, okA := classOf[a]
	cb, okB := classOf[b]
	return okA && okB && ca == cb
}

// tokenize converts a normalized word to its single-byte token form for
// Jaro-Winkler comparison.
func tokenize(word []rune) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if t, ok := jwToken[r]; ok {
			b.WriteByte(t)
		} else if r < 0x80 {
			b.WriteByte(byte(r))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}
