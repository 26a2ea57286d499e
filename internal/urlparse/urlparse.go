// Package urlparse is the URL parser collaborator spec.md §6 describes by
// interface only: it turns a raw URL string into the (host, path, file,
// query) shape the matching engine queries against, or reports that the
// URL is malformed.
package urlparse

import (
	"net/url"
	"strings"

	"github.com/edgecomet/ruleengine/internal/common/urlutil"
	"github.com/edgecomet/ruleengine/pkg/urlrule"
)

// Parse normalizes rawURL per spec.md §3: host lowercased, file is the
// last path segment after the final "/" (empty if the path is empty or
// ends in "/"), query excludes the leading "?". ok is false if rawURL
// cannot be parsed at all, in which case the caller should treat the URL
// as invalid rather than inspect the returned (zero) ParsedURL.
func Parse(rawURL string) (u urlrule.ParsedURL, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return urlrule.ParsedURL{}, false
	}

	return urlrule.ParsedURL{
		Host:  urlutil.ExtractHost(rawURL),
		Path:  parsed.Path,
		File:  lastPathSegment(parsed.Path),
		Query: parsed.RawQuery,
	}, true
}

func lastPathSegment(path string) string {
	if path == "" || strings.HasSuffix(path, "/") {
		return ""
	}
	if idx := strings.LastIndex(path, "/"); idx != -1 {
		return path[idx+1:]
	}
	return path
}
