package mood

import (
	"errors"
	"testing"

	"moodquote/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase unchanged", "vui vẻ", "vui vẻ"},
		{"mixed case", "Vui vẻ", "vui vẻ"},
		{"upper case", "BUỒN", "buồn"},
		{"surrounding whitespace", "  động lực \t", "động lực"},
		{"ascii", "  Happy  ", "happy"},
		{"decomposed accents", "vui ve\u0309", "vui vẻ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeVariantsShareKey(t *testing.T) {
	variants := []string{"vui vẻ", "Vui Vẻ", "VUI VẺ", "  vui vẻ  ", "\tVui vẻ\n"}

	first, err := Normalize(variants[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range variants[1:] {
		got, err := Normalize(v)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", v, err)
		}
		if got != first {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, first)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := Normalize(raw); !errors.Is(err, domain.ErrEmptyMood) {
			t.Errorf("Normalize(%q) error = %v, want ErrEmptyMood", raw, err)
		}
	}
}
