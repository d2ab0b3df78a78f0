package tajweed_test

import (
	"testing"
	"time"

	"github.com/quranlabs/murattil/internal/quran"
	"github.com/quranlabs/murattil/internal/tajweed"
)

func refWord(t *testing.T, surface string) quran.Word {
	t.Helper()
	p, err := quran.NewPassage([]quran.WordInput{{Surface: surface}})
	if err != nil {
		t.Fatalf("NewPassage(%q): %v", surface, err)
	}
	w, _ := p.Word(0)
	return w
}

func TestAnalyze_UntaggedWordYieldsNoIssues(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "بِسْمِ")
	w.Tags = nil

	issues := a.Analyze(w, "بسم", tajweed.Timing{End: 400 * time.Millisecond})
	if len(issues) != 0 {
		t.Errorf("Analyze on untagged word = %v, want no issues", issues)
	}
}

func TestAnalyze_GhunnahTooShort(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "إِنَّ") // noon with shadda: two-count ghunnah expected

	// 100ms is well under half of the expected 500ms.
	issues := a.Analyze(w, "ان", tajweed.Timing{End: 100 * time.Millisecond})
	if !hasCategory(issues, tajweed.Ghunnah) {
		t.Errorf("Analyze = %v, want a ghunnah issue", issues)
	}

	// Full two counts: no ghunnah finding.
	issues = a.Analyze(w, "ان", tajweed.Timing{End: 600 * time.Millisecond})
	if hasCategory(issues, tajweed.Ghunnah) {
		t.Errorf("Analyze at 600ms = %v, want no ghunnah issue", issues)
	}
}

func TestAnalyze_MaddTooShort(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "قَالَ") // fatha + alef: natural madd

	issues := a.Analyze(w, "قال", tajweed.Timing{End: 150 * time.Millisecond})
	if !hasCategory(issues, tajweed.Madd) {
		t.Errorf("Analyze = %v, want a madd issue", issues)
	}
}

func TestAnalyze_QalqalahLetterDropped(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "أَحَدٌ") // final د requires qalqalah

	issues := a.Analyze(w, "احا", tajweed.Timing{End: 300 * time.Millisecond})
	found := false
	for _, iss := range issues {
		if iss.Category == tajweed.Qalqalah && iss.Severity == tajweed.High {
			found = true
		}
	}
	if !found {
		t.Errorf("Analyze = %v, want a high-severity qalqalah issue", issues)
	}

	// Letter present: no qalqalah finding.
	issues = a.Analyze(w, "احد", tajweed.Timing{End: 300 * time.Millisecond})
	if hasCategory(issues, tajweed.Qalqalah) {
		t.Errorf("Analyze with letter present = %v, want no qalqalah issue", issues)
	}
}

func TestAnalyze_SifatSubstitution(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "صِرَاط") // emphatic ص and ط carry tafkheem

	// Reciting the plain س instead of the heavy ص.
	issues := a.Analyze(w, "سراط", tajweed.Timing{End: 500 * time.Millisecond})
	if !hasCategory(issues, tajweed.Sifat) {
		t.Errorf("Analyze = %v, want a sifat issue for the lightened ص", issues)
	}
}

func TestAnalyze_IqlabNotApplied(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "مِنْبَعْدِ")

	issues := a.Analyze(w, "منبعد", tajweed.Timing{End: 500 * time.Millisecond})
	if !hasCategory(issues, tajweed.NoonRule) {
		t.Errorf("Analyze = %v, want a noon-rules issue for the unconverted noon", issues)
	}
}

func TestAnalyze_EmptyHypothesis(t *testing.T) {
	t.Parallel()

	a := tajweed.New()
	w := refWord(t, "إِنَّ")
	if issues := a.Analyze(w, "", tajweed.Timing{}); issues != nil {
		t.Errorf("Analyze with empty hypothesis = %v, want nil", issues)
	}
}

func hasCategory(issues []tajweed.Issue, cat tajweed.Category) bool {
	for _, iss := range issues {
		if iss.Category == cat {
			return true
		}
	}
	return false
}
