// Package shadow implements the embed synchronization engine: building
// embed sets from resolved file metadata, locating the shadow message for
// a source message, diffing embed sets, suppressing native link previews,
// and orchestrating create/update/delete in response to lifecycle events.
package shadow

import (
	"fmt"
	"time"

	"github.com/okkema/linkshade/internal/metadata"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

// BuildEmbeds turns resolved files into the embed set for a shadow
// message. The correlation id is hidden in the title of the first embed
// only. An empty input yields a nil set, meaning no shadow content is
// needed. A resolved file with a missing field or an unparseable
// modification time fails the whole build: post-resolution, every field
// is required.
func BuildEmbeds(files []metadata.FileMetadata, correlationID string) ([]chat.Embed, error) {
	if len(files) == 0 {
		return nil, nil
	}

	embeds := make([]chat.Embed, 0, len(files))
	for i, f := range files {
		if f.Name == "" || f.ViewURL == "" || f.MIMEType == "" || f.ModifiedTime == "" {
			return nil, fmt.Errorf("%w: file %d (%+v)", ErrMissingField, i, f)
		}

		modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
		if err != nil {
			return nil, fmt.Errorf("%w: file %d has malformed modified time %q", ErrMissingField, i, f.ModifiedTime)
		}

		title := f.Name
		if i == 0 {
			title += steg.Encode(correlationID)
		}

		embeds = append(embeds, chat.Embed{
			Title:     title,
			URL:       f.ViewURL,
			Color:     colorFor(f.MIMEType),
			Timestamp: modified.UTC().Format(time.RFC3339),
			Kind:      chat.EmbedRich,
		})
	}
	return embeds, nil
}
