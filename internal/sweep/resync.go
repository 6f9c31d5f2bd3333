package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/extract"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

// EventHandler is the subset of the engine needed by the resync job.
// Defined here to avoid a circular dependency on the shadow package.
type EventHandler interface {
	Handle(ctx context.Context, ev chat.Event) error
}

// ResyncJob walks channel history through the engine as replayed edit
// events, so messages whose realtime events were missed (bot downtime,
// dropped gateway connections) converge back to the correct shadow state.
// Each run advances a per-channel cursor by up to Depth messages; once the
// cursor catches up with the present, subsequent runs only cover new
// history.
type ResyncJob struct {
	Service      channel.Service
	Handler      EventHandler
	Channels     []string
	Depth        int
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/15 * * * *"

	mu      sync.Mutex
	cursors map[string]string
}

// Compile-time interface check.
var _ Job = (*ResyncJob)(nil)

// Name implements Job.
func (j *ResyncJob) Name() string { return "resync" }

// Schedule implements Job.
func (j *ResyncJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/15 * * * *"
}

// Run implements Job. Channels are swept independently; a failing channel
// does not stop the others.
func (j *ResyncJob) Run(ctx context.Context) error {
	var errs []error
	for _, channelID := range j.Channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.sweepChannel(ctx, channelID); err != nil {
			errs = append(errs, fmt.Errorf("sweep channel %s: %w", channelID, err))
		}
	}
	return errors.Join(errs...)
}

func (j *ResyncJob) sweepChannel(ctx context.Context, channelID string) error {
	j.mu.Lock()
	if j.cursors == nil {
		j.cursors = make(map[string]string)
	}
	cursor := j.cursors[channelID]
	j.mu.Unlock()
	if cursor == "" {
		cursor = "0"
	}

	msgs, err := j.Service.MessagesAfter(ctx, channelID, cursor, j.Depth)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	botID := j.Service.BotUserID()

	// Index the window: which source ids are shadowed, which are present.
	shadowed := make(map[string]struct{})
	present := make(map[string]struct{}, len(msgs))
	oldest := msgs[0].ID
	for i := range msgs {
		msg := &msgs[i]
		if chat.CompareIDs(msg.ID, cursor) > 0 {
			cursor = msg.ID
		}
		if chat.CompareIDs(msg.ID, oldest) < 0 {
			oldest = msg.ID
		}
		present[msg.ID] = struct{}{}
		if msg.AuthorID == botID && len(msg.Embeds) > 0 {
			if sourceID, err := steg.Decode(msg.Embeds[0].Title); err == nil {
				shadowed[sourceID] = struct{}{}
			}
		}
	}

	replayed := 0
	var errs []error
	for i := range msgs {
		msg := msgs[i]
		if msg.AuthorID == botID {
			continue
		}

		// Replaying is worthwhile when the message references files now,
		// or a shadow correlates to it and may be stale. Anything else is
		// a guaranteed no-op.
		_, hasShadow := shadowed[msg.ID]
		if len(extract.FileRefs(msg.Content)) == 0 && !hasShadow {
			continue
		}

		if err := j.Handler.Handle(ctx, chat.NewEditedEvent(&msg)); err != nil {
			errs = append(errs, fmt.Errorf("message %s: %w", msg.ID, err))
			continue
		}
		replayed++
	}

	// Shadows whose source message fell inside this window but is gone
	// were orphaned by a missed delete event.
	for sourceID := range shadowed {
		if _, ok := present[sourceID]; ok {
			continue
		}
		if chat.CompareIDs(sourceID, oldest) < 0 {
			continue // source predates the window, cannot tell
		}
		if err := j.Handler.Handle(ctx, chat.NewDeletedEvent(channelID, sourceID)); err != nil {
			errs = append(errs, fmt.Errorf("orphan shadow for %s: %w", sourceID, err))
		}
	}

	j.mu.Lock()
	j.cursors[channelID] = cursor
	j.mu.Unlock()

	if replayed > 0 {
		j.Logger.Info("sweep: channel resynced",
			"channel_id", channelID,
			"replayed", replayed,
		)
	}
	return errors.Join(errs...)
}
