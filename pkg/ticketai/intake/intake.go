// Package intake validates and cleans descriptions before they reach the
// classification pipeline.
package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/ticketai/pkg/ticketai/internalerr"
)

// Bounds limit description length in characters.
type Bounds struct {
	Min int `yaml:"min_length"`
	Max int `yaml:"max_length"`
}

// DefaultBounds returns 10..5000.
func DefaultBounds() Bounds {
	return Bounds{Min: 10, Max: 5000}
}

// Validate checks a raw description against b. Errors wrap
// internalerr.ErrInvalidInput.
func Validate(description string, b Bounds) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return invalid("Description cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) < b.Min {
		return invalid(fmt.Sprintf("Description must be at least %d characters long", b.Min))
	}
	if b.Max > 0 && utf8.RuneCountInString(description) > b.Max {
		return invalid(fmt.Sprintf("Description cannot exceed %d characters", b.Max))
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidInput, msg)
}

// Message returns the user-facing part of a validation error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if errors.Is(err, internalerr.ErrInvalidInput) {
		msg = strings.TrimPrefix(msg, internalerr.ErrInvalidInput.Error()+": ")
	}
	return msg
}

// Format is the markup of an incoming body.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatAuto Format = ""
)

var tagPattern = regexp.MustCompile(`(?i)<(?:html|body|p|div|br|span|table|ul|ol|li|b|i|a)\b[^>]*>`)

// LooksLikeHTML reports whether body carries common HTML tags.
func LooksLikeHTML(body string) bool {
	return tagPattern.MatchString(body)
}

// Prepare converts body to plain text according to format. FormatAuto
// sniffs for HTML tags.
func Prepare(body string, format Format) (string, error) {
	switch format {
	case FormatText:
		return body, nil
	case FormatHTML:
		return PlainText(body), nil
	case FormatAuto:
		if LooksLikeHTML(body) {
			return PlainText(body), nil
		}
		return body, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", internalerr.ErrInvalidInput, format)
}

// PlainText extracts the text nodes of an HTML body. Script and style
// contents are skipped and block elements become line breaks. Unparseable
// input is returned unchanged.
func PlainText(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return body
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Head:
				return
			case atom.Br, atom.P, atom.Div, atom.Li, atom.Tr, atom.H1, atom.H2, atom.H3:
				buf.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	lines := strings.Split(buf.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
