package normalize

import (
	"strings"
	"testing"
	"unicode"

	"github.com/cognicore/ticketai/pkg/ticketai/lexicon"
	"github.com/cognicore/ticketai/pkg/ticketai/stoplist"
)

func TestNormalizeWiFiScenario(t *testing.T) {
	n := Default()

	text := `I cannot connect to the company WiFi network. The error shows "Network is unreachable". I'm on my MacBook and tried rebooting but still no connection.`
	got := n.Normalize(text)
	want := "cannot connect company wifi network error show network unreachable macbook tried reboot still connection"

	if got != want {
		t.Errorf("Normalize() =\n  %q\nwant\n  %q", got, want)
	}
}

func TestNormalizeExamples(t *testing.T) {
	n := Default()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n ", ""},
		{"stopwords only", "the and of is", ""},
		{"login portal", "I'm unable to LOGIN to the company portal!", "unable login company portal"},
		{"standalone numbers removed", "System boots in 10 minutes", "system boot minute"},
		{"embedded digits kept", "error404 and 404error shown", "error404 404error show"},
		{"punctuation glued", "john.smith can't print", "johnsmith cant print"},
		{"plurals", "printers, policies and switches", "printer policy switch"},
		{"protected words", "the status of kubernetes", "status kubernetes"},
		{"unicode punctuation", "printer — jammed… badly«»", "printer jammed badly"},
		{"tabs and newlines", "disk\tfull\n\nagain", "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := Default()

	inputs := []string{
		"Laptop screen is flickering constantly",
		"Microsoft Word crashes when opening large documents",
		"Disk space critically low on C drive; 100MB free!!",
		"Our addresses, classes, viruses and boxes",
		"User john.smith@company.com has ERROR-500 on SERVER-01",
		"Memory usage at 100 percent constantly",
		"yours ours theirs hers",
		"",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeOutputShape(t *testing.T) {
	n := Default()
	stops := stoplist.English()

	out := n.Normalize(`URGENT!!! The VPN (v2) drops 3 times/hour -- see C:\logs\vpn.txt & call 555-1234 @ 9am.`)

	if out != strings.TrimSpace(out) || strings.Contains(out, "  ") {
		t.Errorf("whitespace not collapsed: %q", out)
	}
	for _, tok := range strings.Fields(out) {
		if IsNumeric(tok) {
			t.Errorf("standalone numeric token %q in %q", tok, out)
		}
		if stops.IsStop(tok) {
			t.Errorf("stopword %q in %q", tok, out)
		}
		for _, r := range tok {
			if unicode.IsUpper(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
				t.Errorf("token %q contains %q", tok, r)
			}
		}
	}
}

func TestNormalizeInjectedVocabulary(t *testing.T) {
	lex := lexicon.New()
	lex.AddGroup("go", []string{"went"})
	n := New(stoplist.NewManager([]string{"printer"}), NewMorphy(lex))

	if got := n.Normalize("The printer went offline"); got != "the go offline" {
		t.Errorf("got %q", got)
	}

	plain := New(nil, nil)
	if got := plain.Normalize("Printers WENT 42 offline"); got != "printers went offline" {
		t.Errorf("without lemmatizer got %q", got)
	}
}

func TestMorphyLemma(t *testing.T) {
	m := NewMorphy(lexicon.English())

	tests := map[string]string{
		"classes":   "class",
		"policies":  "policy",
		"boxes":     "box",
		"patches":   "patch",
		"crashes":   "crash",
		"drivers":   "driver",
		"status":    "status",
		"analysis":  "analysis",
		"access":    "access",
		"children":  "child",
		"rebooting": "reboot",
		"froze":     "freeze",
		"caches":    "cache",
		"bus":       "bus",
		"ties":      "tie",
		"gps":       "gps",
		"Rebooted":  "reboot",
	}
	for in, want := range tests {
		if got := m.Lemma(in); got != want {
			t.Errorf("Lemma(%q) = %q, want %q", in, got, want)
		}
		if again := m.Lemma(m.Lemma(in)); again != m.Lemma(in) {
			t.Errorf("Lemma not at fixpoint for %q: %q", in, again)
		}
	}
}

func TestMorphyWithoutLexicon(t *testing.T) {
	m := NewMorphy(nil)
	if got := m.Lemma("servers"); got != "server" {
		t.Errorf("Lemma('servers') = %q, want 'server'", got)
	}
	if got := m.Lemma("rebooting"); got != "rebooting" {
		t.Errorf("rule-only lemmatizer should not touch gerunds, got %q", got)
	}
}

func TestIsNumeric(t *testing.T) {
	tests := map[string]bool{
		"123":   true,
		"٣":     true,
		"":      false,
		"12a":   false,
		"0x1f":  false,
		"error": false,
	}
	for in, want := range tests {
		if got := IsNumeric(in); got != want {
			t.Errorf("IsNumeric(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("abcdefghij", "abcde")
	if s.OriginalLength != 10 || s.CleanedLength != 5 {
		t.Errorf("lengths = %d/%d, want 10/5", s.OriginalLength, s.CleanedLength)
	}
	if s.CompressionRatio != 50 {
		t.Errorf("CompressionRatio = %v, want 50", s.CompressionRatio)
	}

	empty := Summarize("", "")
	if empty.CompressionRatio != 100 {
		t.Errorf("empty CompressionRatio = %v, want 100", empty.CompressionRatio)
	}
}
