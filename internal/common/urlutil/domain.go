// Package urlutil holds small URL string helpers shared by the rule
// specification's URL parser.
package urlutil

import (
	"net/url"
	"strings"
)

// ExtractHost extracts and lowercases the host from a URL string, per
// spec.md §3's "host is lowercased" normalization. Returns the empty
// string if the URL cannot be parsed or has no host, matching the
// ParsedURL invariant that absent parts are always "" and never null.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
