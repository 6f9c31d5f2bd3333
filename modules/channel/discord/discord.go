package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/core"
	"github.com/okkema/linkshade/pkg/chat"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Discord{})
}

// Compile-time interface guards.
var (
	_ channel.Channel   = (*Discord)(nil)
	_ core.Configurable = (*Discord)(nil)
	_ core.Provisioner  = (*Discord)(nil)
	_ core.Validator    = (*Discord)(nil)
	_ core.Starter      = (*Discord)(nil)
	_ core.Stopper      = (*Discord)(nil)
)

// Discord implements the Discord channel for linkshade.
type Discord struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	watchList *channel.WatchList
	inbox     func(chat.Event) error
	botUser   *User
	socket    *socket
}

// ModuleInfo implements core.Module.
func (d *Discord) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.discord",
		New: func() core.Module { return &Discord{} },
	}
}

// Configure implements core.Configurable.
func (d *Discord) Configure(node *yaml.Node) error {
	if err := node.Decode(&d.config); err != nil {
		return fmt.Errorf("discord: decode config: %w", err)
	}
	d.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It registers itself as the
// channel service so the synchronization module can wire up to it.
func (d *Discord) Provision(ctx *core.AppContext) error {
	d.logger = ctx.Logger
	d.client = NewClient(d.config.Token, d.config.APIURL, d.config.RequestsPerSecond)
	d.watchList = channel.NewWatchList(d.config.WatchChannels)
	ctx.RegisterService("channel.service", d)
	return nil
}

// Validate implements core.Validator.
func (d *Discord) Validate() error {
	if d.config.Token == "" {
		return errors.New("discord: token is required")
	}
	return d.config.validate()
}

// Start implements core.Starter. It validates the bot token, then opens
// the realtime gateway connection.
func (d *Discord) Start() error {
	if d.inbox == nil {
		return errors.New("discord: inbox not set, call SetInbox before Start")
	}

	ctx := context.Background()

	user, err := d.client.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("discord: authenticate failed (check token): %w", err)
	}
	d.botUser = user
	d.logger.Info("discord bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	gatewayURL, err := d.client.GetGatewayURL(ctx)
	if err != nil {
		return fmt.Errorf("discord: resolve gateway url: %w", err)
	}
	gatewayURL += "?v=10&encoding=json"

	d.socket = newSocket(gatewayURL, d.config.Token, d.config.Intents, d.logger, d.handleDispatch)
	if err := d.socket.Start(ctx); err != nil {
		return err
	}

	if watched := d.watchList.IDs(); len(watched) > 0 {
		d.logger.Info("discord channel started", "watch_channels", watched)
	} else {
		d.logger.Info("discord channel started, watching all channels")
	}
	return nil
}

// Stop implements core.Stopper.
func (d *Discord) Stop(ctx context.Context) error {
	if d.socket == nil {
		return nil
	}
	return d.socket.Stop(ctx)
}

// SetInbox implements channel.Channel.
func (d *Discord) SetInbox(fn func(chat.Event) error) {
	d.inbox = fn
}

// handleDispatch routes gateway dispatches into lifecycle events. Events
// from unwatched channels and messages authored by the bot itself are
// dropped here; the engine only ever sees messages it may need to act on.
func (d *Discord) handleDispatch(event string, data json.RawMessage) {
	var ev chat.Event

	switch event {
	case "MESSAGE_CREATE", "MESSAGE_UPDATE":
		var raw Message
		if err := json.Unmarshal(data, &raw); err != nil {
			d.logger.Warn("undecodable message payload", "event", event, "error", err)
			return
		}
		if !d.watchList.IsWatched(raw.ChannelID) {
			return
		}
		// Unfurl and flag updates arrive as partial payloads without an
		// author or content. Processing one as-is would look like the
		// message lost its links, so fetch the full message first.
		if event == "MESSAGE_UPDATE" && raw.Author == nil {
			full, err := d.client.GetMessage(context.Background(), raw.ChannelID, raw.ID)
			if err != nil {
				d.logger.Warn("fetch for partial update failed",
					"message_id", raw.ID,
					"error", err,
				)
				return
			}
			raw = *full
		}
		if raw.Author != nil && raw.Author.ID == d.BotUserID() {
			return
		}
		msg, err := convertMessage(&raw)
		if err != nil {
			d.logger.Warn("message conversion failed", "event", event, "error", err)
			return
		}
		if event == "MESSAGE_CREATE" {
			ev = chat.NewCreatedEvent(&msg)
		} else if classifyUpdate(msg) == chat.EventSuppressionToggled {
			ev = chat.NewSuppressionToggledEvent(&msg)
		} else {
			ev = chat.NewEditedEvent(&msg)
		}

	case "MESSAGE_DELETE":
		var del deleteData
		if err := json.Unmarshal(data, &del); err != nil {
			d.logger.Warn("undecodable delete payload", "error", err)
			return
		}
		if !d.watchList.IsWatched(del.ChannelID) {
			return
		}
		ev = chat.NewDeletedEvent(del.ChannelID, del.ID)

	case "MESSAGE_DELETE_BULK":
		var del bulkDeleteData
		if err := json.Unmarshal(data, &del); err != nil {
			d.logger.Warn("undecodable bulk delete payload", "error", err)
			return
		}
		if !d.watchList.IsWatched(del.ChannelID) {
			return
		}
		ev = chat.NewBulkDeletedEvent(del.ChannelID, del.IDs)

	default:
		return
	}

	if err := d.inbox(ev); err != nil {
		d.logger.Error("event processing failed",
			"event", event,
			"channel_id", ev.ChannelID,
			"error", err,
		)
	}
}

// BotUserID implements channel.Service.
func (d *Discord) BotUserID() string {
	if d.botUser == nil {
		return ""
	}
	return d.botUser.ID
}

// MessagesAfter implements channel.Service.
func (d *Discord) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]chat.Message, error) {
	raw, err := d.client.MessagesAfter(ctx, channelID, afterID, limit)
	if err != nil {
		return nil, err
	}
	msgs := make([]chat.Message, 0, len(raw))
	for i := range raw {
		msg, err := convertMessage(&raw[i])
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Send implements channel.Service.
func (d *Discord) Send(ctx context.Context, channelID string, payload chat.Payload) (*chat.Message, error) {
	raw, err := d.client.CreateMessage(ctx, channelID, CreateMessageRequest{
		Embeds: toWireEmbeds(payload.Embeds),
		Flags:  int(payload.Flags),
	})
	if err != nil {
		return nil, err
	}
	msg, err := convertMessage(raw)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Edit implements channel.Service.
func (d *Discord) Edit(ctx context.Context, channelID, messageID string, payload chat.Payload) (*chat.Message, error) {
	raw, err := d.client.EditMessage(ctx, channelID, messageID, EditMessageRequest{
		Embeds: toWireEmbeds(payload.Embeds),
	})
	if err != nil {
		return nil, err
	}
	msg, err := convertMessage(raw)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// Delete implements channel.Service.
func (d *Discord) Delete(ctx context.Context, channelID, messageID string) error {
	return d.client.DeleteMessage(ctx, channelID, messageID)
}

// SetSuppressEmbeds implements channel.Service. Discord only permits
// bots to modify the suppress-embeds flag on other users' messages, so
// the patched flag set carries nothing else.
func (d *Discord) SetSuppressEmbeds(ctx context.Context, channelID, messageID string, suppress bool) error {
	flags := 0
	if suppress {
		flags = int(chat.FlagSuppressEmbeds)
	}
	_, err := d.client.SetMessageFlags(ctx, channelID, messageID, flags)
	return err
}
