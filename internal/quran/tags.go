package quran

import "strings"

// RuleTag identifies a tajweed rule that applies to a reference word.
// Tags are precomputed at passage construction so the analyzer only
// evaluates categories that are actually applicable to a word.
type RuleTag string

const (
	// TagQalqalah marks a qalqalah letter carrying sukun or ending the word.
	TagQalqalah RuleTag = "qalqalah"

	// TagGhunnah marks a noon or meem doubled with shadda.
	TagGhunnah RuleTag = "ghunnah"

	// TagMaddNatural marks a natural two-count elongation (short vowel
	// followed by its matching madd letter).
	TagMaddNatural RuleTag = "madd_natural"

	// TagMaddMuttasil marks a four-count elongation (madd letter followed
	// by hamza within the word).
	TagMaddMuttasil RuleTag = "madd_muttasil"

	// TagIkhfa marks noon sakin concealed before an ikhfa letter.
	TagIkhfa RuleTag = "ikhfa"

	// TagIqlab marks noon sakin converted to meem before ب.
	TagIqlab RuleTag = "iqlab"

	// TagIdgham marks a word-final noon sakin that may merge into the next
	// word.
	TagIdgham RuleTag = "idgham"

	// TagTafkheem marks a word containing a heavy (isti'la) letter that
	// must keep its emphatic quality.
	TagTafkheem RuleTag = "tafkheem"

	// TagThroat marks a word containing a throat letter whose point of
	// articulation is commonly shifted.
	TagThroat RuleTag = "throat"
)

const (
	sukun  = 'ْ'
	shadda = 'ّ'
	fatha  = 'َ'
	damma  = 'ُ'
	kasra  = 'ِ'
)

var (
	qalqalahLetters = "قطبجد"
	ghunnahLetters  = "نم"
	ikhfaLetters    = "تثجدذزسشصضطظفقك"
	istiAlaLetters  = "خصضغطقظ"
	throatLetters   = "ءهعحغخ"
)

// maddPairs maps each short vowel to the madd letter it elongates into.
var maddPairs = map[rune]rune{
	fatha: 'ا',
	damma: 'و',
	kasra: 'ي',
}

// isMark reports whether r is a combining mark or tatweel rather than a
// letter.
func isMark(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670 || r == 0x0640
}

// DeriveTags inspects a diacritized surface form and returns the tajweed
// rule tags applicable to the word. Derivation is heuristic and works on
// the written form only; rules that depend on the following word are
// reported as candidates (idgham). An undiacritized input yields few or no
// tags, which simply disables the corresponding analyzer categories.
func DeriveTags(surface string) []RuleTag {
	runes := []rune(surface)
	seen := make(map[RuleTag]bool)
	var tags []RuleTag

	add := func(t RuleTag) {
		if !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}

	// Trailing diacritics do not count as the final letter.
	lastLetter := -1
	for i := len(runes) - 1; i >= 0; i-- {
		if !isMark(runes[i]) {
			lastLetter = i
			break
		}
	}

	for i, r := range runes {
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		if strings.ContainsRune(qalqalahLetters, r) {
			if next == sukun || i == lastLetter {
				add(TagQalqalah)
			}
		}

		if strings.ContainsRune(ghunnahLetters, r) && next == shadda {
			add(TagGhunnah)
		}

		if madd, ok := maddPairs[r]; ok && next == madd {
			add(TagMaddNatural)
			// Hamza directly after the madd letter lengthens the madd.
			if i+2 < len(runes) && runes[i+2] == 'ء' {
				add(TagMaddMuttasil)
			}
		}

		if strings.ContainsRune(istiAlaLetters, r) {
			add(TagTafkheem)
		}
		if strings.ContainsRune(throatLetters, r) {
			add(TagThroat)
		}

		if r == 'ن' && next == sukun && i+2 < len(runes) {
			after := runes[i+2]
			switch {
			case after == 'ب':
				add(TagIqlab)
			case strings.ContainsRune(ikhfaLetters, after):
				add(TagIkhfa)
			}
		}
	}

	// Word-final noon sakin merges into the next word for most openings.
	if len(runes) >= 2 && runes[len(runes)-2] == 'ن' && runes[len(runes)-1] == sukun {
		add(TagIdgham)
	}

	return tags
}

// HasTag reports whether the word carries the given rule tag.
func (w Word) HasTag(tag RuleTag) bool {
	for _, t := range w.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
