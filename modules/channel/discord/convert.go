package discord

import (
	"fmt"
	"time"

	"github.com/okkema/linkshade/pkg/chat"
)

// convertMessage maps a Discord message to the platform-neutral form.
func convertMessage(m *Message) (chat.Message, error) {
	out := chat.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Flags:     chat.MessageFlags(m.Flags),
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
	}

	if m.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, m.Timestamp)
		if err != nil {
			return chat.Message{}, fmt.Errorf("discord: parse message %s timestamp: %w", m.ID, err)
		}
		out.Timestamp = ts
	}
	if m.EditedTimestamp != nil && *m.EditedTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, *m.EditedTimestamp)
		if err != nil {
			return chat.Message{}, fmt.Errorf("discord: parse message %s edited timestamp: %w", m.ID, err)
		}
		out.EditedTimestamp = &ts
	}

	out.Embeds = convertEmbeds(m.Embeds)
	return out, nil
}

// convertEmbeds maps Discord embed objects. Discord marks automatic URL
// unfurls with type "link"; everything else (notably the "rich" embeds
// this bot authors) converts to EmbedRich.
func convertEmbeds(embeds []Embed) []chat.Embed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]chat.Embed, 0, len(embeds))
	for _, e := range embeds {
		kind := chat.EmbedRich
		if e.Type == "link" {
			kind = chat.EmbedLink
		}
		out = append(out, chat.Embed{
			Title:     e.Title,
			URL:       e.URL,
			Color:     e.Color,
			Timestamp: e.Timestamp,
			Kind:      kind,
		})
	}
	return out
}

// toWireEmbeds maps platform-neutral embeds to the Discord wire form for
// outbound create/edit requests.
func toWireEmbeds(embeds []chat.Embed) []Embed {
	out := make([]Embed, 0, len(embeds))
	for _, e := range embeds {
		out = append(out, Embed{
			Title:     e.Title,
			URL:       e.URL,
			Color:     e.Color,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// classifyUpdate decides what lifecycle event a MESSAGE_UPDATE payload
// represents. A set edited_timestamp means the author changed the
// content. An update without it that carries the suppress-embeds flag is
// the platform reporting a flags change; everything else (for example a
// late unfurl attaching link previews) is treated as an edit so the
// shadow logic re-evaluates the message.
func classifyUpdate(msg chat.Message) chat.EventKind {
	if msg.EditedTimestamp != nil {
		return chat.EventEdited
	}
	if msg.SuppressesEmbeds() {
		return chat.EventSuppressionToggled
	}
	return chat.EventEdited
}
