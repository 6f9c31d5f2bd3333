// Package chat defines the platform-agnostic data contract between the
// channel adapter and the shadow synchronization engine: messages, embeds,
// message flags, and the lifecycle event union.
package chat

import "strings"

// MessageFlags is a bitfield of platform message flags.
type MessageFlags int

// Flags understood by this system. Values match the Discord wire format.
const (
	// FlagSuppressEmbeds hides the platform's own automatic link previews.
	FlagSuppressEmbeds MessageFlags = 1 << 2
	// FlagSuppressNotifications delivers a message without notifying anyone.
	FlagSuppressNotifications MessageFlags = 1 << 12
)

// Has reports whether all bits of flag are set.
func (f MessageFlags) Has(flag MessageFlags) bool {
	return f&flag == flag
}

// EmbedKind discriminates who produced an embed.
type EmbedKind string

const (
	// EmbedRich is a bot-authored embed.
	EmbedRich EmbedKind = "rich"
	// EmbedLink is a platform-generated automatic link preview.
	EmbedLink EmbedKind = "link"
)

// Embed is the renderable preview unit. Only fields this system sets are
// modeled; volatile platform-added fields are dropped at the adapter
// boundary so they never participate in comparisons.
type Embed struct {
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Color     int       `json:"color,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Kind      EmbedKind `json:"type,omitempty"`
}

// CompareIDs orders two message ids. Ids are decimal strings whose numeric
// value is monotonic in creation time, so shorter strings sort first and
// equal-length strings sort lexicographically.
func CompareIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
