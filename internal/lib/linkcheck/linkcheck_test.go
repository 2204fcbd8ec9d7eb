package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{name: "plain http", candidate: "http://example.com", want: true},
		{name: "https with www", candidate: "https://www.youtube.com/watch?v=abc123", want: true},
		{name: "path with query", candidate: "https://vimeo.com/12345?t=10", want: true},
		{name: "fragment rejected", candidate: "https://vimeo.com/12345#t=10s", want: false},
		{name: "host with port", candidate: "http://example.com:8080/v/1", want: true},
		{name: "subdomain", candidate: "https://cdn.videos.example.org/clip.mp4", want: true},
		{name: "empty", candidate: "", want: false},
		{name: "no scheme", candidate: "example.com/video", want: false},
		{name: "wrong scheme", candidate: "ftp://example.com/video", want: false},
		{name: "no tld", candidate: "http://localhost", want: false},
		{name: "bare word", candidate: "notalink", want: false},
		{name: "scheme only", candidate: "https://", want: false},
		{name: "embedded space", candidate: "http://example.com/a b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.candidate))
		})
	}
}

func TestSplitBatch(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantLinks   []string
		wantInvalid []string
	}{
		{
			name:      "spaces",
			text:      "http://a.com http://b.com",
			wantLinks: []string{"http://a.com", "http://b.com"},
		},
		{
			name:      "newlines and tabs",
			text:      "http://a.com\nhttp://b.com\thttp://c.com",
			wantLinks: []string{"http://a.com", "http://b.com", "http://c.com"},
		},
		{
			name:        "mixed valid and invalid",
			text:        "http://a.com nonsense http://b.com",
			wantLinks:   []string{"http://a.com", "http://b.com"},
			wantInvalid: []string{"nonsense"},
		},
		{
			name:        "all invalid",
			text:        "foo bar",
			wantInvalid: []string{"foo", "bar"},
		},
		{name: "empty", text: ""},
		{name: "whitespace only", text: "  \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, invalid := SplitBatch(tt.text)
			assert.Equal(t, tt.wantLinks, links)
			assert.Equal(t, tt.wantInvalid, invalid)
		})
	}
}
