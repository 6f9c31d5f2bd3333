package discord

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okkema/linkshade/internal/channel"
	"github.com/okkema/linkshade/pkg/chat"
)

func newTestDiscord(t *testing.T, watch []string) (*Discord, *[]chat.Event) {
	t.Helper()
	var events []chat.Event
	d := &Discord{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		watchList: channel.NewWatchList(watch),
		botUser:   &User{ID: "bot-1"},
	}
	d.SetInbox(func(ev chat.Event) error {
		events = append(events, ev)
		return nil
	})
	return d, &events
}

func dispatch(t *testing.T, d *Discord, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal dispatch payload: %v", err)
	}
	d.handleDispatch(event, data)
}

func TestDispatchMessageCreate(t *testing.T) {
	d, events := newTestDiscord(t, nil)

	dispatch(t, d, "MESSAGE_CREATE", Message{
		ID:        "1001",
		ChannelID: "42",
		Author:    &User{ID: "7"},
		Content:   "hello",
	})

	if len(*events) != 1 {
		t.Fatalf("got %d events, want 1", len(*events))
	}
	ev := (*events)[0]
	if ev.Kind != chat.EventCreated {
		t.Errorf("Kind = %q, want created", ev.Kind)
	}
	if ev.Message == nil || ev.Message.ID != "1001" {
		t.Errorf("Message = %+v", ev.Message)
	}
}

func TestDispatchSkipsOwnMessages(t *testing.T) {
	d, events := newTestDiscord(t, nil)

	dispatch(t, d, "MESSAGE_CREATE", Message{
		ID:        "1001",
		ChannelID: "42",
		Author:    &User{ID: "bot-1", Bot: true},
	})

	if len(*events) != 0 {
		t.Fatalf("got %d events, want 0 for bot-authored message", len(*events))
	}
}

func TestDispatchWatchListFilter(t *testing.T) {
	d, events := newTestDiscord(t, []string{"42"})

	dispatch(t, d, "MESSAGE_CREATE", Message{ID: "1", ChannelID: "99", Author: &User{ID: "7"}})
	dispatch(t, d, "MESSAGE_DELETE", deleteData{ID: "2", ChannelID: "99"})
	dispatch(t, d, "MESSAGE_CREATE", Message{ID: "3", ChannelID: "42", Author: &User{ID: "7"}})

	if len(*events) != 1 {
		t.Fatalf("got %d events, want 1 (only watched channel)", len(*events))
	}
	if (*events)[0].MessageID != "3" {
		t.Errorf("MessageID = %q, want %q", (*events)[0].MessageID, "3")
	}
}

func TestDispatchUpdateClassification(t *testing.T) {
	d, events := newTestDiscord(t, nil)
	edited := "2026-08-30T12:05:00+00:00"

	dispatch(t, d, "MESSAGE_UPDATE", Message{
		ID: "1", ChannelID: "42", Author: &User{ID: "7"},
		EditedTimestamp: &edited,
	})
	dispatch(t, d, "MESSAGE_UPDATE", Message{
		ID: "2", ChannelID: "42", Author: &User{ID: "7"},
		Flags: int(chat.FlagSuppressEmbeds),
	})

	if len(*events) != 2 {
		t.Fatalf("got %d events, want 2", len(*events))
	}
	if (*events)[0].Kind != chat.EventEdited {
		t.Errorf("event 0 Kind = %q, want edited", (*events)[0].Kind)
	}
	if (*events)[1].Kind != chat.EventSuppressionToggled {
		t.Errorf("event 1 Kind = %q, want suppression_toggled", (*events)[1].Kind)
	}
}

func TestDispatchPartialUpdateFetchesFullMessage(t *testing.T) {
	// Link unfurls arrive as partial MESSAGE_UPDATE payloads carrying only
	// id, channel_id, and embeds. The adapter must deliver the full
	// message, or the engine would see empty content and tear down a
	// shadow whose source still holds the link.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/42/messages/1001" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(t, w, Message{
			ID:        "1001",
			ChannelID: "42",
			Author:    &User{ID: "7"},
			Content:   "see https://drive.google.com/file/d/1aBcDeFgHiJkLmNoPqRsTuVwXyZ012/view",
			Embeds:    []Embed{{Type: "link", Title: "Quarterly Report"}},
		})
	}))
	defer srv.Close()

	d, events := newTestDiscord(t, nil)
	d.client = NewClient("TOKEN", srv.URL, 0)

	dispatch(t, d, "MESSAGE_UPDATE", Message{
		ID:        "1001",
		ChannelID: "42",
		Embeds:    []Embed{{Type: "link", Title: "Quarterly Report"}},
	})

	if len(*events) != 1 {
		t.Fatalf("got %d events, want 1", len(*events))
	}
	ev := (*events)[0]
	if ev.Kind != chat.EventEdited {
		t.Errorf("Kind = %q, want edited", ev.Kind)
	}
	if ev.Message == nil || ev.Message.Content == "" {
		t.Fatalf("event message = %+v, want full content from the fetch", ev.Message)
	}
	if ev.Message.AuthorID != "7" {
		t.Errorf("AuthorID = %q, want 7", ev.Message.AuthorID)
	}
}

func TestDispatchPartialUpdateForOwnMessageDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, Message{
			ID:        "2001",
			ChannelID: "42",
			Author:    &User{ID: "bot-1", Bot: true},
		})
	}))
	defer srv.Close()

	d, events := newTestDiscord(t, nil)
	d.client = NewClient("TOKEN", srv.URL, 0)

	dispatch(t, d, "MESSAGE_UPDATE", Message{ID: "2001", ChannelID: "42"})

	if len(*events) != 0 {
		t.Fatalf("got %d events, want 0 for the bot's own message", len(*events))
	}
}

func TestDispatchPartialUpdateFetchFailureDropsEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]any{"code": 10008, "message": "Unknown Message"})
	}))
	defer srv.Close()

	d, events := newTestDiscord(t, nil)
	d.client = NewClient("TOKEN", srv.URL, 0)

	dispatch(t, d, "MESSAGE_UPDATE", Message{ID: "3001", ChannelID: "42"})

	if len(*events) != 0 {
		t.Fatalf("got %d events, want 0 when the fetch fails", len(*events))
	}
}

func TestDispatchDeletes(t *testing.T) {
	d, events := newTestDiscord(t, nil)

	dispatch(t, d, "MESSAGE_DELETE", deleteData{ID: "1001", ChannelID: "42"})
	dispatch(t, d, "MESSAGE_DELETE_BULK", bulkDeleteData{IDs: []string{"1", "2", "3"}, ChannelID: "42"})

	if len(*events) != 2 {
		t.Fatalf("got %d events, want 2", len(*events))
	}
	if (*events)[0].Kind != chat.EventDeleted || (*events)[0].MessageID != "1001" {
		t.Errorf("delete event = %+v", (*events)[0])
	}
	bulk := (*events)[1]
	if bulk.Kind != chat.EventBulkDeleted || len(bulk.MessageIDs) != 3 {
		t.Errorf("bulk delete event = %+v", bulk)
	}
}

func TestDispatchIgnoresUnknownEvents(t *testing.T) {
	d, events := newTestDiscord(t, nil)
	d.handleDispatch("TYPING_START", json.RawMessage(`{"channel_id":"42"}`))
	if len(*events) != 0 {
		t.Fatalf("got %d events, want 0", len(*events))
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.defaults()
	if c.APIURL != "https://discord.com/api/v10" {
		t.Errorf("APIURL = %q", c.APIURL)
	}
	if c.Intents != defaultIntents {
		t.Errorf("Intents = %d, want %d", c.Intents, defaultIntents)
	}
	if c.RequestsPerSecond != 25 {
		t.Errorf("RequestsPerSecond = %g, want 25", c.RequestsPerSecond)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid defaults", Config{APIURL: "https://discord.com/api/v10", RequestsPerSecond: 25}, false},
		{"bad api url", Config{APIURL: "not a url"}, true},
		{"negative intents", Config{APIURL: "https://x.test", Intents: -1}, true},
		{"excessive rate", Config{APIURL: "https://x.test", RequestsPerSecond: 100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRequiresToken(t *testing.T) {
	d := &Discord{}
	d.config.defaults()
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for missing token")
	}
	d.config.Token = "secret"
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
}
