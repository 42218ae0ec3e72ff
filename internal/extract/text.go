package extract

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// ErrNoURL is returned when a chat message carries no usable link
var ErrNoURL = errors.New("no url found in message")

var (
	urlRe = regexp.MustCompile(`https?://[^\s]+`)

	// Short links, google.<tld>/maps... and maps.google.<tld>/... links
	mapURLRe = regexp.MustCompile(`https?://(?:maps\.app\.goo\.gl/[^\s]+|goo\.gl/maps/[^\s]+|maps\.google\.[a-z.]+/[^\s]*|(?:[a-z0-9-]+\.)*google\.[a-z.]+/maps[^\s]*)`)

	newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize folds full-width characters that phones insert into shared text
// (e.g. "，" in coordinates) and unifies line endings.
func Normalize(text string) string {
	text = width.Fold.String(text)
	text = newlineReplacer.Replace(text)
	return strings.TrimSpace(text)
}

// ExtractURL returns the first http(s) link inside text, or "" when there is none
func ExtractURL(text string) string {
	return urlRe.FindString(text)
}

// ExtractMapURL returns the Google Maps link embedded in text.
// A message that mentions google and http but does not match the known link
// shapes is used as-is.
func ExtractMapURL(text string) string {
	if m := mapURLRe.FindString(text); m != "" {
		return m
	}
	if strings.Contains(text, "google") && strings.Contains(text, "http") {
		return strings.TrimSpace(text)
	}
	return ""
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// SingleLine replaces line breaks with spaces
func SingleLine(s string) string {
	return strings.ReplaceAll(newlineReplacer.Replace(s), "\n", " ")
}
