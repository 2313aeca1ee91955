package search

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// tokenize lowercases text and splits it on runs of whitespace.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// wholeWordPatterns compiles one case-insensitive word-boundary pattern per token.
// Tokens are escaped first so punctuation such as "(test)" is matched literally.
func wholeWordPatterns(tokens []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, token := range tokens {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(token) + `\b`)
	}
	return patterns
}

// countWholeWordMatches returns how many patterns match somewhere in title.
func countWholeWordMatches(patterns []*regexp.Regexp, title string) int {
	count := 0
	for _, pattern := range patterns {
		if pattern.MatchString(title) {
			count++
		}
	}
	return count
}

// alignedPrefixCount compares two token lists index by index up to the shorter
// length and returns how many positions hold equal tokens.
func alignedPrefixCount(query, title []string) int {
	limit := min(len(query), len(title))
	count := 0
	for i := 0; i < limit; i++ {
		if query[i] == title[i] {
			count++
		}
	}
	return count
}

// registrableDomain returns the eTLD+1 of a website value. Values without a
// scheme are treated as https URLs.
func registrableDomain(website string) (string, bool) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", false
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil {
		return "", false
	}
	return domain, true
}
