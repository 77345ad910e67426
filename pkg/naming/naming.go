// Package naming turns page and image text into file names that are safe on
// every common filesystem.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	// MaxNameLength caps a sanitized name, in runes
	MaxNameLength = 200

	// MaxItemNameLength caps the per-item part of a file name, in runes
	MaxItemNameLength = 80

	// RandomTokenLength is the token used when an item has no usable name
	RandomTokenLength = 8

	// DefaultContainer is used when a page title sanitizes to nothing
	DefaultContainer = "pinterest-board"
)

// siteSuffix matches the first " - ", " – " or " | " separator and the rest
// of the title after it
var siteSuffix = regexp.MustCompile(`\s*[-–|].*$`)

func illegal(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return true
	}
	return r <= 0x1f || (r >= 0x80 && r <= 0x9f)
}

// Sanitize strips characters that are illegal in file names, trims
// surrounding whitespace and caps the result at MaxNameLength runes.
// It reports false when nothing usable remains. Sanitize(Sanitize(s)) is
// always equal to Sanitize(s).
func Sanitize(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !illegal(r) {
			b.WriteRune(r)
		}
	}

	out := truncate(strings.TrimSpace(b.String()), MaxNameLength)
	if out == "" {
		return "", false
	}
	return out, true
}

// truncate caps s at n runes and drops whitespace left dangling at the cut
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace)
}

// FileName builds "<container> - <item><ext>". An empty or unusable item
// name is replaced by a random token.
func FileName(container, item, ext string) string {
	if c, ok := Sanitize(container); ok {
		container = c
	} else {
		container = DefaultContainer
	}

	name, ok := Sanitize(item)
	if ok {
		name = truncate(name, MaxItemNameLength)
	} else {
		name = RandomToken(RandomTokenLength)
	}

	return container + " - " + name + ext
}

// ContainerName derives the folder/prefix name from a page title by cutting
// the site suffix ("Cats - Pinterest" becomes "Cats")
func ContainerName(title string) string {
	name, ok := Sanitize(siteSuffix.ReplaceAllString(title, ""))
	if !ok {
		return DefaultContainer
	}
	return name
}

// RandomToken returns n random lowercase alphanumeric characters
func RandomToken(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return b.String()[:n]
}
