package shadow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

const (
	// historyLimit bounds how far past the source message the locator
	// scans. Shadows are sent immediately after their source, so a short
	// window suffices.
	historyLimit = 10

	// retryInterval is the fixed wait between locate attempts when a race
	// with shadow creation is possible.
	retryInterval = time.Second
)

// Locator recovers the shadow message for a source message by scanning
// recent channel history and decoding the correlation id hidden in shadow
// embed titles. No correlation state is kept in memory; the scan is the
// only source of truth.
type Locator struct {
	svc    channel.Service
	logger *slog.Logger

	// sleep is injectable so tests run without real delay.
	sleep func(time.Duration)
}

// NewLocator creates a Locator over the given channel service.
func NewLocator(svc channel.Service, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{svc: svc, logger: logger, sleep: time.Sleep}
}

// Find returns the shadow message correlated to the source message, or
// nil if none exists. retries is the number of additional attempts made
// after a miss, each preceded by a fixed wait; use it when a race with a
// concurrent shadow creation is possible. Fetch errors and malformed
// correlation payloads propagate.
func (l *Locator) Find(ctx context.Context, source *chat.Message, retries int) (*chat.Message, error) {
	for {
		found, err := l.scan(ctx, source)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
		if retries <= 0 {
			return nil, nil
		}
		retries--
		l.logger.Debug("shadow not found, retrying",
			"source_id", source.ID,
			"retries_left", retries,
		)
		l.sleep(retryInterval)
	}
}

// scan fetches the messages right after the source, keeps bot-authored
// ones oldest-first, and returns the first whose first embed carries the
// source id.
func (l *Locator) scan(ctx context.Context, source *chat.Message) (*chat.Message, error) {
	history, err := l.svc.MessagesAfter(ctx, source.ChannelID, source.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("shadow: fetching history after %s: %w", source.ID, err)
	}

	botID := l.svc.BotUserID()
	var candidates []chat.Message
	for _, msg := range history {
		if msg.AuthorID == botID {
			candidates = append(candidates, msg)
		}
	}
	slices.SortFunc(candidates, func(a, b chat.Message) int {
		return chat.CompareIDs(a.ID, b.ID)
	})

	for i := range candidates {
		msg := &candidates[i]
		if len(msg.Embeds) == 0 {
			continue
		}
		title := msg.Embeds[0].Title
		if steg.Index(title) < 0 {
			continue
		}
		decoded, err := steg.Decode(title)
		if err != nil {
			return nil, fmt.Errorf("shadow: decoding correlation id of message %s: %w", msg.ID, err)
		}
		if decoded == source.ID {
			return msg, nil
		}
	}
	return nil, nil
}
