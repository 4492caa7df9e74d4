// Package sanitize provides text normalization for user-supplied input.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
// Output is still escaped at render time.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", "\"",
		"&#39;", "'",
	).Replace(result)
	// entities may have hidden a tag
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes free text such as notes and bios.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers. Blank input becomes nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	if result == "" {
		return nil
	}
	return &result
}

// Username trims whitespace and a leading @ from a social handle.
func Username(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

// Tags trims, drops empties and de-duplicates tags, keeping first-seen order.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// SplitTags parses a comma separated tag list.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return Tags(strings.Split(s, ","))
}

// Terminal removes control characters, including the ESC that starts ANSI
// sequences, so user text cannot restyle or move the cursor of a terminal.
func Terminal(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
