package i18n

import "testing"

func TestMessagesFallsBackToDefault(t *testing.T) {
	table := NewTable()

	if got := table.Messages("et").Started; got != "MÄNG ON ALANUD" {
		t.Fatalf("et started=%q", got)
	}
	if got := table.Messages("de").CTA; got != "START BETTING" {
		t.Fatalf("expected default CTA for unsupported language, got %q", got)
	}
}

func TestResolvePrefersExplicitParam(t *testing.T) {
	table := NewTable()

	if got := table.Resolve("et", "en-US,en;q=0.9"); got != "et" {
		t.Fatalf("Resolve param=et got %q", got)
	}
	if got := table.Resolve(" ET ", ""); got != "et" {
		t.Fatalf("Resolve should normalize case/whitespace, got %q", got)
	}
}

func TestResolveNegotiatesFromAcceptLanguage(t *testing.T) {
	table := NewTable()

	tests := []struct {
		header string
		want   string
	}{
		{"et-EE,et;q=0.9,en;q=0.5", "et"},
		{"en-GB,en;q=0.8", "en"},
		{"fr-FR,fr;q=0.9", "en"},
		{"", "en"},
		{"not a header", "en"},
	}
	for _, tc := range tests {
		if got := table.Resolve("", tc.header); got != tc.want {
			t.Errorf("Resolve(%q)=%q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestResolveRejectsUnsupportedParam(t *testing.T) {
	table := NewTable()

	if got := table.Resolve("de", "et"); got != "et" {
		t.Fatalf("unsupported param should fall through to header, got %q", got)
	}
}
