package arabic_test

import (
	"testing"
	"unicode/utf8"

	"github.com/quranlabs/murattil/internal/arabic"
)

func TestNormalize_StripsDiacritics(t *testing.T) {
	t.Parallel()

	// "بِسْمِ" carries kasra and sukun marks; they must all be removed.
	got := arabic.Normalize("بِسْمِ")
	want := "بسم"
	if got != want {
		t.Errorf("Normalize(%q) = %q, want %q", "بِسْمِ", got, want)
	}
}

func TestNormalize_FoldsLetterVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"أحد", "احد"},   // hamza-on-alef folds to alef
		{"إله", "اله"},   // hamza-under-alef folds to alef
		{"آمن", "امن"},   // madda alef folds to alef
		{"ٱللَّهِ", "الله"}, // wasla alef folds to alef, marks stripped
		{"رحمة", "رحمه"}, // taa-marbuta folds to haa
		{"هدى", "هدي"},   // alef-maqsura folds to ya
		{"مؤمن", "مومن"}, // hamza-on-waw folds to waw
	}
	for _, tt := range tests {
		if got := arabic.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"بِسْمِ", "الرَّحْمَٰنِ", "ٱلْحَمْدُ", "hello", "", "مَـــدّ"}
	for _, in := range inputs {
		once := arabic.Normalize(in)
		twice := arabic.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first=%q second=%q", in, once, twice)
		}
	}
}

func TestNormalize_NeverGrows(t *testing.T) {
	t.Parallel()

	inputs := []string{"بِسْمِ اللَّهِ", "الرَّحِيمِ", "abc", "مُحَمَّدٌ"}
	for _, in := range inputs {
		got := arabic.Normalize(in)
		if utf8.RuneCountInString(got) > utf8.RuneCountInString(in) {
			t.Errorf("Normalize(%q) = %q grew in length", in, got)
		}
	}
}

func TestNormalize_NonArabicPassesThrough(t *testing.T) {
	t.Parallel()

	if got := arabic.Normalize("hello world"); got != "hello world" {
		t.Errorf("Normalize(%q) = %q, want unchanged", "hello world", got)
	}
}
