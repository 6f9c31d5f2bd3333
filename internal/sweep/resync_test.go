package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

const driveLink = "https://drive.google.com/file/d/1aBcDeFgHiJkLmNoPqRsTuVwXyZ012/view"

// recordingHandler captures every event the resync job replays.
type recordingHandler struct {
	events []chat.Event
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, ev chat.Event) error {
	h.events = append(h.events, ev)
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newResyncJob(svc channel.Service, h EventHandler) *ResyncJob {
	return &ResyncJob{
		Service:  svc,
		Handler:  h,
		Channels: []string{"42"},
		Depth:    100,
		Logger:   discardLogger(),
	}
}

func TestResyncReplaysLinkedMessages(t *testing.T) {
	svc := channel.NewMockService("bot-1", 5000)
	svc.Seed(chat.Message{ID: "1000", ChannelID: "42", AuthorID: "7", Content: "see " + driveLink})
	svc.Seed(chat.Message{ID: "1001", ChannelID: "42", AuthorID: "7", Content: "no links here"})
	svc.Seed(chat.Message{ID: "1002", ChannelID: "42", AuthorID: "bot-1", Content: ""})

	h := &recordingHandler{}
	job := newResyncJob(svc, h)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(h.events) != 1 {
		t.Fatalf("got %d events, want 1", len(h.events))
	}
	ev := h.events[0]
	if ev.Kind != chat.EventEdited || ev.MessageID != "1000" {
		t.Errorf("event = %+v, want edited for message 1000", ev)
	}
}

func TestResyncCursorAdvances(t *testing.T) {
	svc := channel.NewMockService("bot-1", 5000)
	svc.Seed(chat.Message{ID: "1000", ChannelID: "42", AuthorID: "7", Content: driveLink})

	h := &recordingHandler{}
	job := newResyncJob(svc, h)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if len(h.events) != 1 {
		t.Fatalf("got %d events after two runs, want 1 (cursor must advance)", len(h.events))
	}

	svc.Seed(chat.Message{ID: "1005", ChannelID: "42", AuthorID: "7", Content: driveLink})
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("third Run() error: %v", err)
	}
	if len(h.events) != 2 {
		t.Fatalf("got %d events, want 2 (new message past the cursor)", len(h.events))
	}
	if h.events[1].MessageID != "1005" {
		t.Errorf("replayed message = %q, want 1005", h.events[1].MessageID)
	}
}

func TestResyncDetectsOrphanShadow(t *testing.T) {
	svc := channel.NewMockService("bot-1", 5000)
	// Source message 1000 was deleted while the bot was down; its shadow
	// remains at 1001 inside the same window.
	svc.Seed(chat.Message{ID: "900", ChannelID: "42", AuthorID: "7", Content: "hi"})
	svc.Seed(chat.Message{
		ID: "1001", ChannelID: "42", AuthorID: "bot-1",
		Embeds: []chat.Embed{{Title: "Report" + steg.Encode("1000"), Kind: chat.EmbedRich}},
	})

	h := &recordingHandler{}
	job := newResyncJob(svc, h)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(h.events) != 1 {
		t.Fatalf("got %d events, want 1", len(h.events))
	}
	ev := h.events[0]
	if ev.Kind != chat.EventDeleted || ev.MessageID != "1000" {
		t.Errorf("event = %+v, want deleted for source 1000", ev)
	}
}

func TestResyncSkipsShadowWithSourcePredatingWindow(t *testing.T) {
	svc := channel.NewMockService("bot-1", 5000)
	svc.Seed(chat.Message{ID: "2000", ChannelID: "42", AuthorID: "7", Content: "hi"})
	svc.Seed(chat.Message{
		ID: "2001", ChannelID: "42", AuthorID: "bot-1",
		Embeds: []chat.Embed{{Title: "Report" + steg.Encode("100"), Kind: chat.EmbedRich}},
	})

	h := &recordingHandler{}
	job := newResyncJob(svc, h)
	job.mu.Lock()
	job.cursors = map[string]string{"42": "1500"}
	job.mu.Unlock()

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(h.events) != 0 {
		t.Fatalf("got %d events, want 0 (source 100 predates the window)", len(h.events))
	}
}

func TestResyncJoinsHandlerErrors(t *testing.T) {
	svc := channel.NewMockService("bot-1", 5000)
	svc.Seed(chat.Message{ID: "1000", ChannelID: "42", AuthorID: "7", Content: driveLink})
	svc.Seed(chat.Message{ID: "1001", ChannelID: "42", AuthorID: "7", Content: driveLink})

	sentinel := errors.New("engine down")
	h := &recordingHandler{err: sentinel}
	job := newResyncJob(svc, h)

	err := job.Run(context.Background())
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want wrapped sentinel", err)
	}
	if len(h.events) != 2 {
		t.Errorf("got %d events, want 2 (errors must not stop the sweep)", len(h.events))
	}
}

func TestModuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Schedule: "*/15 * * * *", Channels: []string{"42"}, Depth: 50}, false},
		{"no channels", Config{Schedule: "*/15 * * * *", Depth: 50}, true},
		{"bad schedule", Config{Schedule: "often", Channels: []string{"42"}, Depth: 50}, true},
		{"depth too large", Config{Schedule: "*/15 * * * *", Channels: []string{"42"}, Depth: 500}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Module{config: tt.config}
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}
