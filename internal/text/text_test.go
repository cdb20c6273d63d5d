package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   \t\n  ", ""},
		{"already clean", "Grande offerta", "Grande offerta"},
		{"leading and trailing", "  sconto del 50%  ", "sconto del 50%"},
		{"internal runs", "offerta\t\tlampo\n   oggi", "offerta lampo oggi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short strings come back unchanged", func(t *testing.T) {
		if got := Truncate("offerta lampo", 120); got != "offerta lampo" {
			t.Errorf("Truncate() = %q", got)
		}
	})

	t.Run("exact length is not cut", func(t *testing.T) {
		s := strings.Repeat("a", 20)
		if got := Truncate(s, 20); got != s {
			t.Errorf("Truncate() = %q, want unchanged", got)
		}
	})

	t.Run("long strings end with ellipsis", func(t *testing.T) {
		got := Truncate(strings.Repeat("a", 50), 20)
		if utf8.RuneCountInString(got) != 20 {
			t.Errorf("Truncate() rune length = %d, want 20", utf8.RuneCountInString(got))
		}
		if !strings.HasSuffix(got, Ellipsis) {
			t.Errorf("Truncate() = %q, want ellipsis suffix", got)
		}
	})

	t.Run("multibyte titles are cut on rune boundaries", func(t *testing.T) {
		got := Truncate("caffè è già qui però più forte così", 10)
		if utf8.RuneCountInString(got) != 10 {
			t.Errorf("rune length = %d, want 10", utf8.RuneCountInString(got))
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate() produced invalid UTF-8: %q", got)
		}
	})

	t.Run("normalizes before measuring", func(t *testing.T) {
		if got := Truncate("  molto   spazio  ", 120); got != "molto spazio" {
			t.Errorf("Truncate() = %q, want %q", got, "molto spazio")
		}
	})
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passes through", "sconto del 30%", "sconto del 30%"},
		{"tags removed", "<p>Offerta <b>lampo</b> oggi</p>", "Offerta lampo oggi"},
		{"entities decoded", "prezzo &amp; qualit&agrave;", "prezzo & qualità"},
		{"nested markup", "<div><a href=\"x\">link</a> e testo</div>", "link e testo"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
