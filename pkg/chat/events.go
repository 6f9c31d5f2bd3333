package chat

import "fmt"

// EventKind discriminates the variant stored in an Event.
type EventKind string

// Lifecycle event kinds delivered by a channel adapter.
const (
	EventCreated EventKind = "created"
	EventEdited  EventKind = "edited"
	// EventSuppressionToggled is an edit whose only change is the message
	// flags field. The adapter classifies these separately so the engine
	// does not react to its own suppression toggles.
	EventSuppressionToggled EventKind = "suppression_toggled"
	EventDeleted            EventKind = "deleted"
	EventBulkDeleted        EventKind = "bulk_deleted"
)

// Event is a flat tagged union of message lifecycle events. The Kind field
// discriminates which fields are meaningful:
//
//   - created, edited, suppression_toggled: Message is set.
//   - deleted: ChannelID and MessageID are set.
//   - bulk_deleted: ChannelID and MessageIDs are set.
type Event struct {
	Kind       EventKind
	Message    *Message
	ChannelID  string
	MessageID  string
	MessageIDs []string
}

// NewCreatedEvent wraps a freshly created message.
func NewCreatedEvent(msg *Message) Event {
	return Event{Kind: EventCreated, Message: msg, ChannelID: msg.ChannelID, MessageID: msg.ID}
}

// NewEditedEvent wraps an edited message carrying its full updated state.
func NewEditedEvent(msg *Message) Event {
	return Event{Kind: EventEdited, Message: msg, ChannelID: msg.ChannelID, MessageID: msg.ID}
}

// NewSuppressionToggledEvent wraps a flag-only message update.
func NewSuppressionToggledEvent(msg *Message) Event {
	return Event{Kind: EventSuppressionToggled, Message: msg, ChannelID: msg.ChannelID, MessageID: msg.ID}
}

// NewDeletedEvent records the removal of a single message.
func NewDeletedEvent(channelID, messageID string) Event {
	return Event{Kind: EventDeleted, ChannelID: channelID, MessageID: messageID}
}

// NewBulkDeletedEvent records the removal of a batch of messages.
func NewBulkDeletedEvent(channelID string, messageIDs []string) Event {
	return Event{Kind: EventBulkDeleted, ChannelID: channelID, MessageIDs: messageIDs}
}

// Validate checks that the fields required by the event's kind are present.
func (e Event) Validate() error {
	switch e.Kind {
	case EventCreated, EventEdited, EventSuppressionToggled:
		if e.Message == nil {
			return fmt.Errorf("chat: %s event missing message", e.Kind)
		}
	case EventDeleted:
		if e.ChannelID == "" || e.MessageID == "" {
			return fmt.Errorf("chat: deleted event missing channel or message id")
		}
	case EventBulkDeleted:
		if e.ChannelID == "" || len(e.MessageIDs) == 0 {
			return fmt.Errorf("chat: bulk_deleted event missing channel or message ids")
		}
	default:
		return fmt.Errorf("chat: unknown event kind %q", e.Kind)
	}
	return nil
}
