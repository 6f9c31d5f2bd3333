package shadow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/extract"
	"github.com/okkema/linkshade/internal/metadata"
	"github.com/okkema/linkshade/pkg/chat"
)

// editRetryBudget is the locate retry budget used when handling an edit,
// tolerating a race with a shadow creation still in flight.
const editRetryBudget = 2

// Engine drives shadow message synchronization. It owns every shadow
// message it creates and holds no correlation state of its own: each
// event re-derives everything from current channel and message content.
type Engine struct {
	svc      channel.Service
	provider metadata.Provider
	locator  *Locator
	logger   *slog.Logger
}

// NewEngine creates an Engine over the given channel service and metadata
// provider.
func NewEngine(svc channel.Service, provider metadata.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		svc:      svc,
		provider: provider,
		locator:  NewLocator(svc, logger),
		logger:   logger,
	}
}

// Handle dispatches a lifecycle event to its handler. Unknown event kinds
// are an error: the union is matched exhaustively.
func (e *Engine) Handle(ctx context.Context, ev chat.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	eventsTotal.WithLabelValues(string(ev.Kind)).Inc()

	var err error
	switch ev.Kind {
	case chat.EventCreated:
		err = e.handleCreated(ctx, ev.Message)
	case chat.EventEdited:
		err = e.handleEdited(ctx, ev.Message, true)
	case chat.EventSuppressionToggled:
		// An edit this system caused by toggling suppression. Sync the
		// shadow as usual but skip the suppressor to prevent feedback.
		err = e.handleEdited(ctx, ev.Message, false)
	case chat.EventDeleted:
		err = e.handleDeleted(ctx, ev.ChannelID, ev.MessageID)
	case chat.EventBulkDeleted:
		err = e.handleBulkDeleted(ctx, ev.ChannelID, ev.MessageIDs)
	default:
		err = fmt.Errorf("shadow: unhandled event kind %q", ev.Kind)
	}

	if err != nil {
		eventErrorsTotal.WithLabelValues(string(ev.Kind)).Inc()
	}
	return err
}

// handleCreated computes the embed set for a brand-new message and sends
// a shadow if there is anything to show. No prior-shadow lookup is done:
// none can exist yet.
func (e *Engine) handleCreated(ctx context.Context, msg *chat.Message) error {
	embeds, refs, err := e.computeEmbeds(ctx, msg)
	if err != nil {
		return err
	}

	if len(embeds) > 0 {
		if _, err := e.svc.Send(ctx, msg.ChannelID, silentPayload(embeds)); err != nil {
			return fmt.Errorf("shadow: sending shadow for %s: %w", msg.ID, err)
		}
		shadowsCreated.Inc()
		e.logger.Info("shadow created", "source_id", msg.ID, "embeds", len(embeds))
	}

	return e.suppressNativePreviews(ctx, msg, refs)
}

// handleEdited reconciles the shadow with the message's current content.
// The locate step uses a retry budget to tolerate a race with a very
// recent creation.
func (e *Engine) handleEdited(ctx context.Context, msg *chat.Message, runSuppressor bool) error {
	existing, err := e.locator.Find(ctx, msg, editRetryBudget)
	if err != nil {
		return err
	}

	embeds, refs, err := e.computeEmbeds(ctx, msg)
	if err != nil {
		return err
	}

	switch {
	case existing == nil && len(embeds) == 0:
		// Nothing before, nothing now.

	case existing == nil:
		if _, err := e.svc.Send(ctx, msg.ChannelID, silentPayload(embeds)); err != nil {
			return fmt.Errorf("shadow: sending shadow for %s: %w", msg.ID, err)
		}
		shadowsCreated.Inc()
		e.logger.Info("shadow created on edit", "source_id", msg.ID, "embeds", len(embeds))

	case len(embeds) == 0:
		if err := e.svc.Delete(ctx, existing.ChannelID, existing.ID); err != nil {
			return fmt.Errorf("shadow: deleting shadow %s: %w", existing.ID, err)
		}
		shadowsDeleted.Inc()
		e.logger.Info("shadow deleted", "source_id", msg.ID, "shadow_id", existing.ID)

	default:
		if EqualEmbedSets(existing.Embeds, embeds) {
			// Editing an identical shadow would add a visible "edited"
			// marker for no reason.
			break
		}
		if _, err := e.svc.Edit(ctx, existing.ChannelID, existing.ID, silentPayload(embeds)); err != nil {
			return fmt.Errorf("shadow: editing shadow %s: %w", existing.ID, err)
		}
		shadowsUpdated.Inc()
		e.logger.Info("shadow updated", "source_id", msg.ID, "shadow_id", existing.ID)
	}

	if !runSuppressor {
		return nil
	}
	return e.suppressNativePreviews(ctx, msg, refs)
}

// handleDeleted removes the shadow of a deleted source message, if any.
// No retry: a shadow that cannot be found now will not appear later.
func (e *Engine) handleDeleted(ctx context.Context, channelID, messageID string) error {
	source := &chat.Message{ID: messageID, ChannelID: channelID}
	existing, err := e.locator.Find(ctx, source, 0)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := e.svc.Delete(ctx, existing.ChannelID, existing.ID); err != nil {
		return fmt.Errorf("shadow: deleting shadow %s: %w", existing.ID, err)
	}
	shadowsDeleted.Inc()
	e.logger.Info("shadow deleted with source", "source_id", messageID, "shadow_id", existing.ID)
	return nil
}

// handleBulkDeleted processes a batch strictly sequentially to respect
// host rate limits. A failure on one message does not stop the rest; all
// failures are reported together.
func (e *Engine) handleBulkDeleted(ctx context.Context, channelID string, messageIDs []string) error {
	var errs []error
	for _, id := range messageIDs {
		if err := e.handleDeleted(ctx, channelID, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// computeEmbeds extracts file references from the message content,
// resolves their metadata, and builds the embed set. Returns the embeds
// and the extracted references (needed later by the suppressor). An
// unresolvable file is dropped; a message whose links all fail to resolve
// behaves as if it had none.
func (e *Engine) computeEmbeds(ctx context.Context, msg *chat.Message) ([]chat.Embed, []extract.FileRef, error) {
	refs := extract.FileRefs(msg.Content)
	if len(refs) == 0 {
		return nil, nil, nil
	}

	resolved, err := metadata.Resolve(ctx, e.provider, extract.FileIDs(refs))
	if err != nil {
		return nil, nil, err
	}

	embeds, err := BuildEmbeds(resolved, msg.ID)
	if err != nil {
		return nil, nil, err
	}
	return embeds, refs, nil
}

// suppressNativePreviews hides the platform's own link previews when they
// all duplicate the files the shadow already renders. The toggle is
// one-directional and idempotent: previews the user suppressed manually
// are never re-enabled.
func (e *Engine) suppressNativePreviews(ctx context.Context, msg *chat.Message, refs []extract.FileRef) error {
	if !ShouldSuppress(msg.LinkPreviews(), extract.URLs(refs)) {
		return nil
	}
	if msg.SuppressesEmbeds() {
		return nil
	}

	if err := e.svc.SetSuppressEmbeds(ctx, msg.ChannelID, msg.ID, true); err != nil {
		return fmt.Errorf("shadow: suppressing previews on %s: %w", msg.ID, err)
	}
	suppressionsApplied.Inc()
	e.logger.Info("native previews suppressed", "source_id", msg.ID)
	return nil
}

// silentPayload wraps embeds in a payload flagged to skip delivery
// notifications: the shadow is a synthetic companion to an
// already-notified message.
func silentPayload(embeds []chat.Embed) chat.Payload {
	return chat.Payload{
		Embeds: embeds,
		Flags:  chat.FlagSuppressNotifications,
	}
}
