package shadow

import (
	"time"

	"github.com/okkema/linkshade/pkg/chat"
)

// EqualEmbedSets reports whether two embed sets are semantically equal.
// Timestamps are compared as parsed instants so that formatting
// differences between what was sent and what the platform echoes back do
// not register as changes. All other fields compare structurally. Fields
// the platform adds on its own are not part of the model and therefore
// never participate.
func EqualEmbedSets(a, b []chat.Embed) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalEmbeds(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalEmbeds(a, b chat.Embed) bool {
	if a.Title != b.Title || a.URL != b.URL || a.Color != b.Color {
		return false
	}
	return equalInstants(a.Timestamp, b.Timestamp)
}

// equalInstants compares two timestamp strings as instants, falling back
// to string equality when either fails to parse.
func equalInstants(a, b string) bool {
	if a == b {
		return true
	}
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA != nil || errB != nil {
		return false
	}
	return ta.Equal(tb)
}
