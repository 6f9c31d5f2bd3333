package shadow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noSleep replaces the locator's retry wait and records how often it was
// called.
type noSleep struct{ calls int }

func (s *noSleep) sleep(time.Duration) { s.calls++ }

func shadowMessage(id, channelID, botID, sourceID string) chat.Message {
	return chat.Message{
		ID:        id,
		ChannelID: channelID,
		AuthorID:  botID,
		Embeds: []chat.Embed{{
			Title: "file.pdf" + steg.Encode(sourceID),
			URL:   "https://drive.google.com/file/d/x/view",
			Kind:  chat.EmbedRich,
		}},
	}
}

func TestLocatorFindsShadow(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)
	svc.Seed(shadowMessage("1001", "chan", "bot", "1000"))

	loc := NewLocator(svc, discardLogger())
	found, err := loc.Find(context.Background(), &source, 0)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if found == nil || found.ID != "1001" {
		t.Fatalf("Find() = %v, want message 1001", found)
	}
}

func TestLocatorReturnsOldestMatch(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)
	// A duplicate shadow exists; the oldest one wins.
	svc.Seed(shadowMessage("1005", "chan", "bot", "1000"))
	svc.Seed(shadowMessage("1002", "chan", "bot", "1000"))

	loc := NewLocator(svc, discardLogger())
	found, err := loc.Find(context.Background(), &source, 0)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if found == nil || found.ID != "1002" {
		t.Fatalf("Find() = %v, want oldest shadow 1002", found)
	}
}

func TestLocatorSkipsForeignMessages(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)
	// Other bot messages without markers, user chatter, and a shadow for a
	// different source message.
	svc.Seed(chat.Message{ID: "1001", ChannelID: "chan", AuthorID: "bot", Embeds: []chat.Embed{{Title: "plain"}}})
	svc.Seed(chat.Message{ID: "1002", ChannelID: "chan", AuthorID: "user2", Content: "hi"})
	svc.Seed(shadowMessage("1003", "chan", "bot", "999"))

	loc := NewLocator(svc, discardLogger())
	found, err := loc.Find(context.Background(), &source, 0)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if found != nil {
		t.Fatalf("Find() = %v, want nil", found)
	}
}

func TestLocatorRetryBudget(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)

	loc := NewLocator(svc, discardLogger())
	ns := &noSleep{}
	loc.sleep = ns.sleep

	found, err := loc.Find(context.Background(), &source, 2)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if found != nil {
		t.Fatalf("Find() = %v, want nil", found)
	}
	if ns.calls != 2 {
		t.Errorf("sleep calls = %d, want 2 (one per retry)", ns.calls)
	}
}

func TestLocatorRetryFindsLateShadow(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)

	loc := NewLocator(svc, discardLogger())
	// The shadow appears while the locator waits out its first retry.
	loc.sleep = func(time.Duration) {
		svc.Seed(shadowMessage("1001", "chan", "bot", "1000"))
	}

	found, err := loc.Find(context.Background(), &source, 2)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if found == nil || found.ID != "1001" {
		t.Fatalf("Find() = %v, want late shadow 1001", found)
	}
}

func TestLocatorMalformedPayloadPropagates(t *testing.T) {
	svc := channel.NewMockService("bot", 2000)
	source := chat.Message{ID: "1000", ChannelID: "chan", AuthorID: "user"}
	svc.Seed(source)
	// A bot message whose title carries a marker followed by a foreign rune.
	svc.Seed(chat.Message{
		ID:        "1001",
		ChannelID: "chan",
		AuthorID:  "bot",
		Embeds:    []chat.Embed{{Title: "x" + steg.Encode("10") + "y" + steg.Encode("00")}},
	})

	loc := NewLocator(svc, discardLogger())
	if _, err := loc.Find(context.Background(), &source, 0); err == nil {
		t.Fatal("Find() expected decoding error to propagate")
	}
}
