package amazon

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// ResolvedLink is the outcome of following a submitted link's redirects.
// ResolvedURL equals OriginalURL when no redirect occurred.
type ResolvedLink struct {
	OriginalURL string
	ResolvedURL string
	Hops        int
}

// maxRedirectHops bounds redirect chains; loops and malicious chains
// terminate with the last observed URL rather than an error.
const maxRedirectHops = 10

var productHostPattern = regexp.MustCompile(`(?i)(^|\.)amazon\.[a-z.]{2,6}$`)

// Resolver follows short links to a canonical product URL without letting
// the HTTP client chase redirects on its own.
type Resolver struct {
	client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Resolve follows redirects from rawURL up to the hop cap. Transport
// failures end the walk and return the last known URL; the only returned
// error is the caller's context expiring mid-hop.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (ResolvedLink, error) {
	current := rawURL
	hops := 0
	for hops < maxRedirectHops {
		if isProductURL(current) {
			break
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			break
		}
		resp, err := r.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ResolvedLink{OriginalURL: rawURL, ResolvedURL: current, Hops: hops}, ctx.Err()
			}
			break
		}
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			break
		}
		next, err := resolveReference(current, location)
		if err != nil {
			break
		}
		current = next
		hops++
	}
	return ResolvedLink{OriginalURL: rawURL, ResolvedURL: current, Hops: hops}, nil
}

// isProductURL reports whether the URL is already on a product domain and
// carries an extractable identifier, in which case further hops add nothing.
func isProductURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !productHostPattern.MatchString(u.Hostname()) {
		return false
	}
	_, ok := ExtractIdentifier(rawURL)
	return ok
}

// resolveReference handles relative redirect targets against the current URL.
func resolveReference(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
