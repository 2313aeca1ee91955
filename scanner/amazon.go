package scanner

import (
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Words that precede a brand in Amazon product slugs.
var commonPrefixes = map[string]struct{}{
	"new": {}, "used": {}, "refurbished": {}, "certified": {}, "amazon": {}, "basics": {},
}

// Words that never name a brand.
var genericKeywords = map[string]struct{}{
	"product": {}, "details": {}, "store": {}, "ref": {}, "sr": {}, "dp": {},
	"monitor": {}, "laptop": {}, "pc": {}, "tv": {},
}

var (
	sanitizePattern   = regexp.MustCompile(`[^\p{L}\p{N}\s-]+`)
	digitsOnlyPattern = regexp.MustCompile(`^\d+$`)
	storeSeparators   = regexp.MustCompile(`[_-]`)
	keywordSeparators = regexp.MustCompile(`[,+ ]`)
)

// AmazonStrategy handles Amazon storefronts on any public suffix.
// It extracts brand names from store pages, product slugs and search keywords.
type AmazonStrategy struct {
	logger *slog.Logger
}

var (
	_ Strategy        = (*AmazonStrategy)(nil)
	_ EntityExtractor = (*AmazonStrategy)(nil)
)

// NewAmazonStrategy creates the Amazon strategy. A nil logger falls back to slog.Default().
func NewAmazonStrategy(logger *slog.Logger) *AmazonStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &AmazonStrategy{logger: logger.With("scanner", "amazon")}
}

func (a *AmazonStrategy) Name() string { return "amazon" }

func (a *AmazonStrategy) AppliesTo(params Params) bool {
	return params.MainDomain == "amazon"
}

func (a *AmazonStrategy) DomainKey(params Params) string {
	return params.MainDomain
}

// ExtractEntity tries, in order: the segment after "stores", the first usable
// word of the slug before "dp", and the first usable "keywords" query term.
func (a *AmazonStrategy) ExtractEntity(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		a.logger.Warn("error parsing url", "url", rawURL, "err", err)
		return "", false
	}

	segments := splitPath(u.EscapedPath())

	// Store pages: /stores/<Brand>/page/...
	if i := slices.Index(segments, "stores"); i != -1 && i+1 < len(segments) {
		raw := segments[i+1]
		decoded, err := url.PathUnescape(raw)
		if err != nil {
			// A malformed store segment poisons the whole url.
			a.logger.Warn("cannot decode store segment", "segment", raw, "err", err)
			return "", false
		}
		brand := sanitizeAndCapitalize(storeSeparators.ReplaceAllString(decoded, " "), true)
		if utf8.RuneCountInString(brand) > 1 && !digitsOnlyPattern.MatchString(brand) {
			a.logger.Debug("potential brand from store url", "brand", brand, "original", raw)
			return brand, true
		}
	}

	// Product pages: /<Brand-Model-Words>/dp/<ASIN>
	if i := slices.Index(segments, "dp"); i > 0 {
		for _, part := range strings.Split(segments[i-1], "-") {
			if !usableBrandWord(part) {
				continue
			}
			if brand := sanitizeAndCapitalize(part, false); brand != "" {
				a.logger.Debug("potential brand from product url", "brand", brand, "original", part)
				return brand, true
			}
		}
	}

	// Search pages: ?keywords=<brand>+<words>
	if keywords := u.Query().Get("keywords"); keywords != "" {
		for _, part := range keywordSeparators.Split(keywords, -1) {
			if usableBrandWord(part) {
				a.logger.Debug("potential brand from keywords in url", "brand", part)
				return capitalize(part), true
			}
		}
	}

	a.logger.Debug("could not extract entity from url", "url", rawURL)
	return "", false
}

// splitPath splits an escaped URL path into its non-empty segments.
func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// usableBrandWord rejects short, numeric and deny-listed words.
func usableBrandWord(word string) bool {
	if utf8.RuneCountInString(word) <= 1 || digitsOnlyPattern.MatchString(word) {
		return false
	}
	lower := strings.ToLower(word)
	if _, ok := commonPrefixes[lower]; ok {
		return false
	}
	if _, ok := genericKeywords[lower]; ok {
		return false
	}
	return true
}

// sanitizeAndCapitalize strips everything but letters, digits, whitespace and
// hyphens, then capitalizes. With multiWord set, each space separated word is
// capitalized; otherwise only the first letter of the whole string.
func sanitizeAndCapitalize(brand string, multiWord bool) string {
	sanitized := strings.TrimSpace(sanitizePattern.ReplaceAllString(brand, ""))

	if multiWord && strings.Contains(sanitized, " ") {
		words := strings.Fields(sanitized)
		for i, word := range words {
			words[i] = capitalize(word)
		}
		return strings.Join(words, " ")
	}
	return capitalize(sanitized)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
