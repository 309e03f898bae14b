package sanitizer

import (
	"strings"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Sunny Loft  ", "Sunny Loft"},
		{"collapse inner spaces", "Sunny    Loft", "Sunny Loft"},
		{"tabs and newlines", "Sunny\t\nLoft", "Sunny Loft"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"unicode kept", " Фотозона № 5 ", "Фотозона № 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeMultiline(t *testing.T) {
	in := "  Bright studio  \r\n\r\n\r\n  Natural   light\n\n"
	want := "Bright studio\n\nNatural light"

	if got := NormalizeMultiline(in); got != want {
		t.Errorf("NormalizeMultiline = %q, want %q", got, want)
	}
	if got := NormalizeMultiline("\n\n"); got != "" {
		t.Errorf("blank input should collapse to empty, got %q", got)
	}
}

func TestSanitizeImageURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"adds https", "cdn.example.com/img/Loft.JPG", "https://cdn.example.com/img/Loft.JPG"},
		{"upgrades http", "HTTP://CDN.Example.com/a.png", "https://cdn.example.com/a.png"},
		{"drops tracking", "https://cdn.example.com/a.png?utm_source=x&v=2", "https://cdn.example.com/a.png?v=2"},
		{"drops fragment and trailing slash", "https://cdn.example.com/gallery/#top", "https://cdn.example.com/gallery"},
		{"empty", "   ", ""},
		{"no host", "https://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeImageURL(tt.input); got != tt.want {
				t.Errorf("SanitizeImageURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSearchTerm(t *testing.T) {
	if SearchTerm("   ") != "" {
		t.Errorf("whitespace-only search must be empty")
	}
	long := strings.Repeat("a ", 1000)
	if got := SearchTerm(long); strings.HasSuffix(got, " ") {
		t.Errorf("trailing space not trimmed")
	}
}
