package shadow

import (
	"testing"

	"github.com/okkema/linkshade/pkg/chat"
)

func TestEqualEmbedSets(t *testing.T) {
	base := []chat.Embed{
		{Title: "a", URL: "https://example.com/a", Color: 1, Timestamp: "2026-08-30T12:00:00Z"},
		{Title: "b", URL: "https://example.com/b", Color: 2, Timestamp: "2026-08-30T13:00:00Z"},
	}

	tests := []struct {
		name string
		a, b []chat.Embed
		want bool
	}{
		{
			name: "identical",
			a:    base,
			b:    base,
			want: true,
		},
		{
			name: "timestamp formatting difference is equal",
			a:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T12:00:00Z"}},
			b:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T12:00:00.000+00:00"}},
			want: true,
		},
		{
			name: "timestamp zone representation is equal",
			a:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T12:00:00Z"}},
			b:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T14:00:00+02:00"}},
			want: true,
		},
		{
			name: "different instant",
			a:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T12:00:00Z"}},
			b:    []chat.Embed{{Title: "a", Timestamp: "2026-08-30T12:00:01Z"}},
			want: false,
		},
		{
			name: "different title",
			a:    []chat.Embed{{Title: "a"}},
			b:    []chat.Embed{{Title: "b"}},
			want: false,
		},
		{
			name: "different color",
			a:    []chat.Embed{{Title: "a", Color: 1}},
			b:    []chat.Embed{{Title: "a", Color: 2}},
			want: false,
		},
		{
			name: "different url",
			a:    []chat.Embed{{Title: "a", URL: "https://example.com/a"}},
			b:    []chat.Embed{{Title: "a", URL: "https://example.com/b"}},
			want: false,
		},
		{
			name: "different length",
			a:    base,
			b:    base[:1],
			want: false,
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: true,
		},
		{
			name: "unparseable timestamps fall back to string equality",
			a:    []chat.Embed{{Title: "a", Timestamp: "not-a-time"}},
			b:    []chat.Embed{{Title: "a", Timestamp: "not-a-time"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualEmbedSets(tt.a, tt.b); got != tt.want {
				t.Errorf("EqualEmbedSets() = %v, want %v", got, tt.want)
			}
		})
	}
}
