package amazon

import (
	"regexp"
	"strings"
)

// Product identifiers are 10-character alphanumeric codes (ASINs). The
// matchers run in priority order and the first match wins: product-detail
// path segments beat alternate path forms, which beat query parameters,
// which beat the bare-path fallback.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)/gp/aw/d/([A-Z0-9]{10})(?:[/?#]|$)`),
	regexp.MustCompile(`(?i)[?&]asin=([A-Z0-9]{10})(?:[&#]|$)`),
	regexp.MustCompile(`(?i)/([A-Z0-9]{10})(?:[/?#]|$)`),
}

// ExtractIdentifier derives the product identifier from a URL. A miss is a
// normal outcome (the submission goes to manual review), not an error.
func ExtractIdentifier(rawURL string) (string, bool) {
	for _, p := range identifierPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return strings.ToUpper(m[1]), true
		}
	}
	return "", false
}

// IsDigitalEdition reports whether the identifier belongs to the
// digital/Kindle class. Those never match catalog search directly, so they
// gate the scrape-assisted lookup fallback.
func IsDigitalEdition(id string) bool {
	return strings.HasPrefix(id, "B")
}
