package urlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgecomet/ruleengine/pkg/urlrule"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want urlrule.ParsedURL
	}{
		{
			name: "host lowercased",
			url:  "https://Shop.Example.CA/category/sport/items",
			want: urlrule.ParsedURL{Host: "shop.example.ca", Path: "/category/sport/items", File: "items"},
		},
		{
			name: "root path has no file",
			url:  "https://example.com/",
			want: urlrule.ParsedURL{Host: "example.com", Path: "/"},
		},
		{
			name: "empty path has no file",
			url:  "https://example.com",
			want: urlrule.ParsedURL{Host: "example.com"},
		},
		{
			name: "trailing slash has no file",
			url:  "https://x.com/a/b/",
			want: urlrule.ParsedURL{Host: "x.com", Path: "/a/b/"},
		},
		{
			name: "file is last segment",
			url:  "https://x.com/a/b/index.html",
			want: urlrule.ParsedURL{Host: "x.com", Path: "/a/b/index.html", File: "index.html"},
		},
		{
			name: "query excludes leading question mark",
			url:  "https://example.com/search?q=shoes&page=2",
			want: urlrule.ParsedURL{Host: "example.com", Path: "/search", File: "search", Query: "q=shoes&page=2"},
		},
		{
			name: "no query means empty query",
			url:  "https://example.com/search",
			want: urlrule.ParsedURL{Host: "example.com", Path: "/search", File: "search"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.url)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MalformedURL(t *testing.T) {
	_, ok := Parse("http://[::1]:namedport/broken")
	assert.False(t, ok)
}
