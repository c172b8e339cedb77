package sym

import (
	"testing"
	"unicode/utf8"
)

func TestLabelsAndDescriptionsCoverSameGlyphs(t *testing.T) {
	if len(Labels) != len(Descriptions) {
		t.Errorf("map size mismatch: Labels has %d entries, Descriptions has %d",
			len(Labels), len(Descriptions))
	}
	for glyph := range Labels {
		if _, ok := Descriptions[glyph]; !ok {
			t.Errorf("Labels has %q but Descriptions does not", glyph)
		}
	}
}

func TestGlyphsAreSingleRunes(t *testing.T) {
	for glyph, label := range Labels {
		if utf8.RuneCountInString(glyph) != 1 {
			t.Errorf("%s glyph %q is %d runes, want 1", label, glyph, utf8.RuneCountInString(glyph))
		}
	}
}

func TestGlyphsAreDistinct(t *testing.T) {
	seen := make(map[string]string)
	for glyph, label := range Labels {
		if prev, ok := seen[glyph]; ok {
			t.Errorf("glyph %q is shared by %s and %s", glyph, prev, label)
		}
		seen[glyph] = label
	}
}
