package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.Dutch,
	language.French,
	language.Spanish,
}

var tagMatcher = language.NewMatcher(supportedTags)

// DefaultTag is used when no Accept-Language preference matches.
var DefaultTag = language.AmericanEnglish

// ResolveTag picks the best supported locale for an Accept-Language header.
func ResolveTag(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return DefaultTag
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultTag
	}
	_, index, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag
	}
	return supportedTags[index]
}

// ResolvePOSIXLocale maps a POSIX locale such as "de_DE.UTF-8" or
// "nl_NL@euro" to the best supported tag. "C", "POSIX" and empty values
// yield DefaultTag.
func ResolvePOSIXLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return DefaultTag
	}
	return ResolveTag(strings.ReplaceAll(locale, "_", "-"))
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// FormatFollowers renders a follower count with locale thousands separators.
func FormatFollowers(p *message.Printer, followers int64) string {
	return p.Sprintf("%d", followers)
}

// FormatScore renders an engagement score with one decimal.
func FormatScore(p *message.Printer, score float64) string {
	return p.Sprintf("%.1f", score)
}
