// Package entities pulls structured fragments out of raw ticket text:
// usernames, device names, error codes, e-mail addresses, URLs and file paths.
//
// Extraction runs on the original text. Normalization would destroy the
// casing and symbols these patterns depend on.
package entities

import (
	"regexp"
	"sort"
	"strings"
)

// Kind names an entity list in a Bundle.
type Kind string

const (
	KindUsernames  Kind = "usernames"
	KindDevices    Kind = "devices"
	KindErrorCodes Kind = "error_codes"
	KindEmails     Kind = "emails"
	KindURLs       Kind = "urls"
	KindFilePaths  Kind = "file_paths"
)

// Kinds lists every entity kind in display order.
var Kinds = []Kind{KindUsernames, KindDevices, KindErrorCodes, KindEmails, KindURLs, KindFilePaths}

// Bundle holds the deduplicated entities found in one description.
// Every list is non-nil and sorted.
type Bundle struct {
	Usernames  []string `json:"usernames"`
	Devices    []string `json:"devices"`
	ErrorCodes []string `json:"error_codes"`
	Emails     []string `json:"emails"`
	URLs       []string `json:"urls"`
	FilePaths  []string `json:"file_paths"`
}

// NewBundle returns a bundle with all six lists empty.
func NewBundle() Bundle {
	return Bundle{
		Usernames:  []string{},
		Devices:    []string{},
		ErrorCodes: []string{},
		Emails:     []string{},
		URLs:       []string{},
		FilePaths:  []string{},
	}
}

// Get returns the list for one kind.
func (b Bundle) Get(k Kind) []string {
	switch k {
	case KindUsernames:
		return b.Usernames
	case KindDevices:
		return b.Devices
	case KindErrorCodes:
		return b.ErrorCodes
	case KindEmails:
		return b.Emails
	case KindURLs:
		return b.URLs
	case KindFilePaths:
		return b.FilePaths
	}
	return nil
}

// ByKind returns the bundle as a kind → values mapping.
func (b Bundle) ByKind() map[Kind][]string {
	m := make(map[Kind][]string, len(Kinds))
	for _, k := range Kinds {
		m[k] = b.Get(k)
	}
	return m
}

// Empty reports whether no entity of any kind was found.
func (b Bundle) Empty() bool {
	for _, k := range Kinds {
		if len(b.Get(k)) > 0 {
			return false
		}
	}
	return true
}

// Summary renders a readable bullet list of the non-empty kinds.
func (b Bundle) Summary() string {
	var parts []string
	for _, k := range Kinds {
		if values := b.Get(k); len(values) > 0 {
			parts = append(parts, "  • "+string(k)+": "+strings.Join(values, ", "))
		}
	}
	if len(parts) == 0 {
		return "  • No specific entities detected"
	}
	return strings.Join(parts, "\n")
}

// Vocabulary is the fixed word list data baked into the extraction passes.
type Vocabulary struct {
	// Devices are common device nouns matched case-insensitively.
	Devices []string `yaml:"devices"`
	// DeviceQualifiers may follow a device noun ("macbook pro").
	DeviceQualifiers []string `yaml:"device_qualifiers"`
	// ErrorCodes are well-known codes searched for in the uppercased text.
	ErrorCodes []string `yaml:"error_codes"`
	// UserDomains are mail domains whose local-parts are reported as usernames.
	UserDomains []string `yaml:"user_domains"`
}

// DefaultVocabulary returns the built-in word lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Devices: []string{
			"laptop", "desktop", "server", "printer", "monitor",
			"keyboard", "mouse", "external drive", "hard drive",
			"macbook", "windows", "linux", "ipad", "iphone",
			"router", "switch", "gateway",
		},
		DeviceQualifiers: []string{"pro", "air", "mini"},
		ErrorCodes:       []string{"404", "500", "503", "403", "401", "BSOD", "STOP"},
		UserDomains:      []string{"company", "infosys", "corp"},
	}
}

var (
	// @handle, not preceded by a word character or dot, so the domain of an
	// e-mail address is not read as a mention.
	mentionPattern = regexp.MustCompile(`(?:^|[^\w.@])@(\w+)`)
	userKVPattern  = regexp.MustCompile(`(?i)\buser\s*[:=]\s*(\w+)`)

	capsDevicePattern = regexp.MustCompile(`\b([A-Z]{2,}[A-Z0-9\-]*)\b`)

	// Only hex-alphabet codes that carry a digit, so "error deleting" yields nothing.
	errorKeywordPattern = regexp.MustCompile(`(?i)\b(?:error|err|code)\s*[-:]?\s*([0-9a-f]*[0-9][0-9a-f]*)\b`)
	hexPattern          = regexp.MustCompile(`(?i)\b0x[0-9a-f]+`)
	statusCodePattern   = regexp.MustCompile(`\b([45]\d{2})\b`)

	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)

	windowsPathPattern = regexp.MustCompile(`[A-Z]:\\(?:[^\s\\]*\\)*[^\s\\]*`)
	// Unix paths start at a boundary so URLs and "and/or" are not paths.
	unixPathPattern = regexp.MustCompile(`(?:^|[\s"'(=])(/[A-Za-z0-9._\-]+(?:/[A-Za-z0-9._\-]*)*)`)
	uncPathPattern  = regexp.MustCompile(`\\\\[^\s\\]+\\[^\s\\]+`)
)

// Extractor runs the six pattern passes. It is safe for concurrent use.
type Extractor struct {
	devicePatterns  []*regexp.Regexp
	errorCodes      []string
	userDomainMatch *regexp.Regexp
}

// New compiles the vocabulary-driven patterns.
func New(v Vocabulary) *Extractor {
	e := &Extractor{}

	qualifier := ""
	if qs := quoteAll(v.DeviceQualifiers); len(qs) > 0 {
		qualifier = `(?:\s+(?:` + strings.Join(qs, "|") + `))?`
	}
	for _, d := range v.Devices {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		e.devicePatterns = append(e.devicePatterns,
			regexp.MustCompile(`\b(`+regexp.QuoteMeta(d)+qualifier+`)\b`))
	}

	for _, c := range v.ErrorCodes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			e.errorCodes = append(e.errorCodes, c)
		}
	}

	if ds := quoteAll(v.UserDomains); len(ds) > 0 {
		e.userDomainMatch = regexp.MustCompile(`(?i)([a-z]+[._]?[a-z]+)@(?:` + strings.Join(ds, "|") + `)`)
	}

	return e
}

// Default returns an extractor using DefaultVocabulary.
func Default() *Extractor {
	return New(DefaultVocabulary())
}

// Extract runs every pass over the original text. It never fails; empty
// input yields a bundle of empty lists.
func (e *Extractor) Extract(text string) Bundle {
	return Bundle{
		Usernames:  e.Usernames(text),
		Devices:    e.Devices(text),
		ErrorCodes: e.ErrorCodes(text),
		Emails:     Emails(text),
		URLs:       URLs(text),
		FilePaths:  FilePaths(text),
	}
}

// Usernames returns lowercased @mentions, user:/user= values and local-parts
// of addresses at the configured domains.
func (e *Extractor) Usernames(text string) []string {
	var found []string
	found = append(found, submatches(mentionPattern, text)...)
	found = append(found, submatches(userKVPattern, text)...)
	if e.userDomainMatch != nil {
		found = append(found, submatches(e.userDomainMatch, text)...)
	}

	for i, u := range found {
		found[i] = strings.ToLower(u)
	}
	return dedupe(found)
}

// Devices returns acronym-style names (case preserved) and vocabulary device
// nouns (lowercase, with an optional qualifier).
func (e *Extractor) Devices(text string) []string {
	found := submatches(capsDevicePattern, text)

	lower := strings.ToLower(text)
	for _, p := range e.devicePatterns {
		found = append(found, submatches(p, lower)...)
	}
	return dedupe(found)
}

// ErrorCodes returns keyword codes, hex literals, 4xx/5xx status codes and
// well-known codes found anywhere in the uppercased text.
func (e *Extractor) ErrorCodes(text string) []string {
	var found []string
	found = append(found, submatches(errorKeywordPattern, text)...)
	found = append(found, hexPattern.FindAllString(text, -1)...)
	found = append(found, submatches(statusCodePattern, text)...)

	upper := strings.ToUpper(text)
	for _, code := range e.errorCodes {
		if strings.Contains(upper, code) {
			found = append(found, code)
		}
	}
	return dedupe(found)
}

// Emails returns addresses as written. Deduplication is case-sensitive, so
// distinct casings of one mailbox are both kept.
func Emails(text string) []string {
	return dedupe(emailPattern.FindAllString(text, -1))
}

// URLs returns http(s) links up to the next whitespace.
func URLs(text string) []string {
	return dedupe(urlPattern.FindAllString(text, -1))
}

// FilePaths returns Windows drive paths, Unix paths and UNC network paths.
func FilePaths(text string) []string {
	var found []string
	found = append(found, windowsPathPattern.FindAllString(text, -1)...)
	found = append(found, submatches(unixPathPattern, text)...)
	found = append(found, uncPathPattern.FindAllString(text, -1)...)
	return dedupe(found)
}

// submatches returns the first capture group of every match.
func submatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
		}
	}
	return out
}

// dedupe trims, drops empties, removes duplicates and sorts.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func quoteAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, regexp.QuoteMeta(w))
		}
	}
	return out
}
