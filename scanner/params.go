package scanner

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Params describes the page being scanned.
type Params struct {
	// Domain is the registrable domain (eTLD+1), e.g. "amazon.co.uk".
	Domain string
	// MainDomain is Domain without its public suffix, e.g. "amazon".
	MainDomain string
	// URL is the full page URL as visited.
	URL string
}

// ParamsFromURL derives scan parameters from a page URL.
// The host is lower-cased; private suffixes such as blogspot.com are honoured.
func ParamsFromURL(rawURL string) (Params, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		return Params{}, fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	suffix, _ := publicsuffix.PublicSuffix(domain)
	return Params{
		Domain:     domain,
		MainDomain: strings.TrimSuffix(domain, "."+suffix),
		URL:        rawURL,
	}, nil
}
