package quran_test

import (
	"errors"
	"testing"

	"github.com/quranlabs/murattil/internal/quran"
)

func basmala() []quran.WordInput {
	return []quran.WordInput{
		{Surface: "بِسْمِ", Surah: 1, Ayah: 1},
		{Surface: "اللَّهِ", Surah: 1, Ayah: 1},
		{Surface: "الرَّحْمَٰنِ", Surah: 1, Ayah: 1},
		{Surface: "الرَّحِيمِ", Surah: 1, Ayah: 1},
	}
}

func TestNewPassage_PositionsContiguous(t *testing.T) {
	t.Parallel()

	p, err := quran.NewPassage(basmala())
	if err != nil {
		t.Fatalf("NewPassage: %v", err)
	}
	if p.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", p.Len())
	}
	for i := 0; i < p.Len(); i++ {
		w, ok := p.Word(i)
		if !ok {
			t.Fatalf("Word(%d): not found", i)
		}
		if w.Position != i {
			t.Errorf("Word(%d).Position = %d, want %d", i, w.Position, i)
		}
		if w.Normalized == "" {
			t.Errorf("Word(%d).Normalized is empty", i)
		}
	}
}

func TestNewPassage_RejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := quran.NewPassage(nil); !errors.Is(err, quran.ErrEmptyPassage) {
		t.Errorf("NewPassage(nil) error = %v, want ErrEmptyPassage", err)
	}

	// A word of only diacritics normalizes to empty and must be rejected.
	_, err := quran.NewPassage([]quran.WordInput{{Surface: "َّ"}})
	if err == nil {
		t.Error("NewPassage with diacritic-only word: err = nil, want error")
	}
}

func TestPassage_WordOutOfRange(t *testing.T) {
	t.Parallel()

	p, err := quran.NewPassage(basmala())
	if err != nil {
		t.Fatalf("NewPassage: %v", err)
	}
	if _, ok := p.Word(-1); ok {
		t.Error("Word(-1): ok = true, want false")
	}
	if _, ok := p.Word(4); ok {
		t.Error("Word(4): ok = true, want false")
	}
}

func TestPassage_WindowClamped(t *testing.T) {
	t.Parallel()

	p, err := quran.NewPassage(basmala())
	if err != nil {
		t.Fatalf("NewPassage: %v", err)
	}

	tests := []struct {
		center, radius int
		wantPositions  []int
	}{
		{center: 1, radius: 1, wantPositions: []int{0, 1, 2}},
		{center: 0, radius: 2, wantPositions: []int{0, 1, 2}},
		{center: 3, radius: 2, wantPositions: []int{1, 2, 3}},
		{center: 10, radius: 1, wantPositions: nil},
		{center: 2, radius: 0, wantPositions: []int{2}},
	}
	for _, tt := range tests {
		got := p.Window(tt.center, tt.radius)
		if len(got) != len(tt.wantPositions) {
			t.Errorf("Window(%d, %d) returned %d words, want %d", tt.center, tt.radius, len(got), len(tt.wantPositions))
			continue
		}
		for i, w := range got {
			if w.Position != tt.wantPositions[i] {
				t.Errorf("Window(%d, %d)[%d].Position = %d, want %d", tt.center, tt.radius, i, w.Position, tt.wantPositions[i])
			}
		}
	}
}

func TestDeriveTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		surface string
		want    quran.RuleTag
	}{
		// أَحَدٌ ends in the qalqalah letter د.
		{"أَحَدٌ", quran.TagQalqalah},
		// إِنَّ carries noon with shadda.
		{"إِنَّ", quran.TagGhunnah},
		// قَالَ has fatha followed by alef.
		{"قَالَ", quran.TagMaddNatural},
		// أَنْتَ has noon sakin before ت (an ikhfa letter).
		{"أَنْتَ", quran.TagIkhfa},
		// مِنْ بَعْدِ within one token: noon sakin before ب.
		{"مِنْبَعْدِ", quran.TagIqlab},
		// مَنْ ends with noon sakin: idgham candidate.
		{"مَنْ", quran.TagIdgham},
	}
	for _, tt := range tests {
		tags := quran.DeriveTags(tt.surface)
		found := false
		for _, tag := range tags {
			if tag == tt.want {
				found = true
			}
		}
		if !found {
			t.Errorf("DeriveTags(%q) = %v, want to contain %q", tt.surface, tags, tt.want)
		}
	}
}

func TestNewPassage_ExplicitTagsSuppressDerivation(t *testing.T) {
	t.Parallel()

	p, err := quran.NewPassage([]quran.WordInput{
		{Surface: "أَحَدٌ", Tags: []quran.RuleTag{}},
	})
	if err != nil {
		t.Fatalf("NewPassage: %v", err)
	}
	w, _ := p.Word(0)
	if len(w.Tags) != 0 {
		t.Errorf("Word(0).Tags = %v, want empty (explicit tags supplied)", w.Tags)
	}
}
