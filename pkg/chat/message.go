package chat

import "time"

// Message is a platform message as seen by the engine. Source messages are
// end-user authored; shadow messages are authored by the bot user.
type Message struct {
	ID              string       `json:"id"`
	ChannelID       string       `json:"channel_id"`
	AuthorID        string       `json:"author_id"`
	Content         string       `json:"content"`
	Embeds          []Embed      `json:"embeds,omitempty"`
	Flags           MessageFlags `json:"flags,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
	EditedTimestamp *time.Time   `json:"edited_timestamp,omitempty"`
}

// SuppressesEmbeds reports whether the platform's automatic link previews
// are currently hidden on this message.
func (m *Message) SuppressesEmbeds() bool {
	return m.Flags.Has(FlagSuppressEmbeds)
}

// LinkPreviews returns the platform-generated automatic previews attached
// to the message, excluding bot-authored rich embeds.
func (m *Message) LinkPreviews() []Embed {
	var out []Embed
	for _, e := range m.Embeds {
		if e.Kind == EmbedLink {
			out = append(out, e)
		}
	}
	return out
}

// Payload is the content of an outbound send or edit operation.
type Payload struct {
	Embeds []Embed      `json:"embeds"`
	Flags  MessageFlags `json:"flags,omitempty"`
}
