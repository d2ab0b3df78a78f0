// Package tajweed evaluates recitation-rule compliance for confirmed word
// matches. The analyzer works from the reference word's precomputed rule
// tags and the observed timing of the hypothesis: a category whose tag is
// absent from the word is not applicable and is skipped entirely.
//
// Analysis is advisory. It runs only after the alignment tracker has
// accepted a match, and its failure mode is always "no issues reported" —
// it can never reject or degrade the match itself.
package tajweed

import (
	"fmt"
	"strings"
	"time"

	"github.com/quranlabs/murattil/internal/arabic"
	"github.com/quranlabs/murattil/internal/quran"
)

// Category classifies a tajweed issue.
type Category string

const (
	Makharij Category = "makharij"
	Sifat    Category = "sifat"
	Ghunnah  Category = "ghunnah"
	Madd     Category = "madd"
	NoonRule Category = "noon_rules"
	Qalqalah Category = "qalqalah"
	Other    Category = "other"
)

// Severity grades how strongly an issue deviates from the rule.
type Severity string

const (
	Low    Severity = "low"
	Medium Severity = "medium"
	High   Severity = "high"
)

// Issue is a single detected rule deviation.
type Issue struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Timing is the observed span of the spoken hypothesis word.
type Timing struct {
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Duration returns the spoken length of the word. Never negative.
func (t Timing) Duration() time.Duration {
	if t.End <= t.Start {
		return 0
	}
	return t.End - t.Start
}

// countDuration is the assumed length of one madd/ghunnah count. Recitation
// cadence varies widely between reciters, so duration findings below are
// heuristic and capped at Medium severity.
const countDuration = 250 * time.Millisecond

var qalqalahLetters = "قطبجد"

// Analyzer evaluates tajweed categories against tagged reference words.
// Read-only after construction; safe for concurrent use across sessions.
type Analyzer struct{}

// New returns a ready [Analyzer].
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze evaluates each applicable rule category for an accepted
// (reference, hypothesis) pair and returns detected issues in category
// evaluation order. The hypothesis must already be normalized. An untagged
// word always yields nil.
func (a *Analyzer) Analyze(ref quran.Word, hypothesis string, timing Timing) []Issue {
	if len(ref.Tags) == 0 || hypothesis == "" {
		return nil
	}

	var issues []Issue
	issues = append(issues, a.checkArticulation(ref, hypothesis)...)
	issues = append(issues, a.checkGhunnah(ref, timing)...)
	issues = append(issues, a.checkMadd(ref, timing)...)
	issues = append(issues, a.checkNoonRules(ref, hypothesis)...)
	issues = append(issues, a.checkQalqalah(ref, hypothesis)...)
	return issues
}

// checkArticulation compares the reference and hypothesis letter sequences
// and reports same-class substitutions: a throat-letter shift is a makharij
// (point of articulation) issue, an emphatic/plain swap is a sifat issue.
// Gated on the word's tafkheem/throat tags.
func (a *Analyzer) checkArticulation(ref quran.Word, hypothesis string) []Issue {
	checkThroat := ref.HasTag(quran.TagThroat)
	checkTafkheem := ref.HasTag(quran.TagTafkheem)
	if !checkThroat && !checkTafkheem {
		return nil
	}

	var issues []Issue
	for _, sub := range alignedSubstitutions([]rune(ref.Normalized), []rune(hypothesis)) {
		if !arabic.SameClass(sub.want, sub.got) {
			continue
		}
		switch {
		case checkTafkheem && strings.ContainsRune("خصضغطقظ", sub.want):
			issues = append(issues, Issue{
				Category:    Sifat,
				Description: fmt.Sprintf("heavy letter %q pronounced as %q; keep the emphatic quality", sub.want, sub.got),
				Severity:    Medium,
			})
		case checkThroat && strings.ContainsRune("ءهعحغخ", sub.want):
			issues = append(issues, Issue{
				Category:    Makharij,
				Description: fmt.Sprintf("throat letter %q articulated as %q", sub.want, sub.got),
				Severity:    Medium,
			})
		}
	}
	return issues
}

// checkGhunnah verifies that a shadda-doubled noon or meem was held long
// enough for its two-count nasalization.
func (a *Analyzer) checkGhunnah(ref quran.Word, timing Timing) []Issue {
	if !ref.HasTag(quran.TagGhunnah) {
		return nil
	}
	return durationIssue(Ghunnah, "ghunnah", 2, timing)
}

// checkMadd verifies elongation length: two counts for natural madd, four
// for muttasil.
func (a *Analyzer) checkMadd(ref quran.Word, timing Timing) []Issue {
	counts := 0
	switch {
	case ref.HasTag(quran.TagMaddMuttasil):
		counts = 4
	case ref.HasTag(quran.TagMaddNatural):
		counts = 2
	default:
		return nil
	}
	return durationIssue(Madd, "madd", counts, timing)
}

// checkNoonRules verifies iqlab realization: noon sakin before ب must be
// converted to meem, so a hypothesis still showing ن directly before ب
// indicates the conversion was skipped. Ikhfa and idgham depend on nasal
// quality the text form cannot show, so their tags produce no issues here.
func (a *Analyzer) checkNoonRules(ref quran.Word, hypothesis string) []Issue {
	if !ref.HasTag(quran.TagIqlab) {
		return nil
	}
	if strings.Contains(hypothesis, "نب") {
		return []Issue{{
			Category:    NoonRule,
			Description: "noon before ب should convert to meem (iqlab)",
			Severity:    Medium,
		}}
	}
	return nil
}

// checkQalqalah verifies the qalqalah letter survived in the hypothesis; a
// dropped echo letter is the one High-severity finding, since it usually
// means the letter was swallowed entirely.
func (a *Analyzer) checkQalqalah(ref quran.Word, hypothesis string) []Issue {
	if !ref.HasTag(quran.TagQalqalah) {
		return nil
	}
	for _, r := range ref.Normalized {
		if !strings.ContainsRune(qalqalahLetters, r) {
			continue
		}
		if !strings.ContainsRune(hypothesis, r) {
			return []Issue{{
				Category:    Qalqalah,
				Description: fmt.Sprintf("qalqalah letter %q not heard; give it its bounce", r),
				Severity:    High,
			}}
		}
	}
	return nil
}

// durationIssue reports when a timed rule was held for less than its
// expected count length. A span under half the expectation is Medium, under
// the full expectation Low, otherwise no issue. Zero timing (no timestamps
// from the ASR) is skipped rather than flagged.
func durationIssue(cat Category, name string, counts int, timing Timing) []Issue {
	d := timing.Duration()
	if d == 0 {
		return nil
	}
	expected := time.Duration(counts) * countDuration
	switch {
	case d < expected/2:
		return []Issue{{
			Category:    cat,
			Description: fmt.Sprintf("%s held %v, expected about %v (%d counts)", name, d.Round(10*time.Millisecond), expected, counts),
			Severity:    Medium,
		}}
	case d < expected:
		return []Issue{{
			Category:    cat,
			Description: fmt.Sprintf("%s slightly short of %d counts", name, counts),
			Severity:    Low,
		}}
	}
	return nil
}

// substitution is a positionally-aligned letter replacement between the
// reference and the hypothesis.
type substitution struct {
	want rune
	got  rune
}

// alignedSubstitutions pairs the two words letter-by-letter after skipping
// a shared prefix and suffix, catching the common case of a single interior
// letter swap without running a full alignment.
func alignedSubstitutions(ref, hyp []rune) []substitution {
	for len(ref) > 0 && len(hyp) > 0 && ref[0] == hyp[0] {
		ref, hyp = ref[1:], hyp[1:]
	}
	for len(ref) > 0 && len(hyp) > 0 && ref[len(ref)-1] == hyp[len(hyp)-1] {
		ref, hyp = ref[:len(ref)-1], hyp[:len(hyp)-1]
	}
	if len(ref) != len(hyp) {
		return nil
	}
	subs := make([]substitution, 0, len(ref))
	for i := range ref {
		if ref[i] != hyp[i] {
			subs = append(subs, substitution{want: ref[i], got: hyp[i]})
		}
	}
	return subs
}
