// Package channel defines the bridge between the chat platform adapter and
// the shadow synchronization engine: the operation surface the engine
// consumes, the channel module contract, and the watch-list filter.
package channel

import (
	"context"

	"github.com/okkema/linkshade/internal/core"
	"github.com/okkema/linkshade/pkg/chat"
)

// Service is the platform operation surface the engine consumes. A
// concrete channel module (Discord) implements it over the platform API;
// tests substitute a MockService.
type Service interface {
	// BotUserID returns the id of the authenticated bot user.
	BotUserID() string

	// MessagesAfter fetches up to limit messages authored strictly after
	// afterID in the given channel, in the platform's native order.
	MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]chat.Message, error)

	// Send creates a new message in the channel.
	Send(ctx context.Context, channelID string, payload chat.Payload) (*chat.Message, error)

	// Edit replaces the content of an existing message.
	Edit(ctx context.Context, channelID, messageID string, payload chat.Payload) (*chat.Message, error)

	// Delete removes a message.
	Delete(ctx context.Context, channelID, messageID string) error

	// SetSuppressEmbeds toggles the platform's automatic link previews on
	// a message.
	SetSuppressEmbeds(ctx context.Context, channelID, messageID string, suppress bool) error
}

// Channel is the bridge between a messaging platform and the engine.
// Every concrete channel (Discord, etc.) must implement this interface.
//
// A channel receives lifecycle events from its platform, filters them
// through the watch list, and pushes them to the engine via the inbox
// callback. The engine performs platform operations back through Service.
type Channel interface {
	core.Module
	Service

	// SetInbox gives the channel a function to push lifecycle events to
	// the engine. The engine module calls this during wiring, before Start().
	SetInbox(fn func(ev chat.Event) error)
}
