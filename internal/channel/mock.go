package channel

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okkema/linkshade/pkg/chat"
)

// MockService is a test double that implements Service over an in-memory
// channel store. Sent messages get monotonically increasing ids so tests
// can exercise history ordering the way the real platform behaves.
type MockService struct {
	mu       sync.Mutex
	botID    string
	nextID   int64
	messages []chat.Message

	// Ops records every mutating operation in call order, formatted as
	// "send", "edit:<id>", "delete:<id>", "suppress:<id>:<bool>".
	Ops []string

	// SendErr, EditErr, DeleteErr, SuppressErr, if set, are returned by
	// the corresponding operation instead of mutating the store.
	SendErr     error
	EditErr     error
	DeleteErr   error
	SuppressErr error
}

// Compile-time interface guard.
var _ Service = (*MockService)(nil)

// NewMockService creates a MockService whose bot user has the given id.
// Message ids start above firstID so that seeded source messages can use
// lower ids.
func NewMockService(botID string, firstID int64) *MockService {
	return &MockService{botID: botID, nextID: firstID}
}

// Seed inserts a message into the store without recording an operation.
func (m *MockService) Seed(msg chat.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Get returns a copy of the stored message with the given id.
func (m *MockService) Get(messageID string) (chat.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == messageID {
			return msg, true
		}
	}
	return chat.Message{}, false
}

// Messages returns a snapshot of all stored messages.
func (m *MockService) Messages() []chat.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// BotUserID implements Service.
func (m *MockService) BotUserID() string { return m.botID }

// MessagesAfter implements Service. Results are returned newest-first,
// matching the platform's native history order.
func (m *MockService) MessagesAfter(_ context.Context, channelID, afterID string, limit int) ([]chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []chat.Message
	for _, msg := range m.messages {
		if msg.ChannelID == channelID && chat.CompareIDs(msg.ID, afterID) > 0 {
			out = append(out, msg)
		}
	}
	slices.SortFunc(out, func(a, b chat.Message) int {
		return chat.CompareIDs(b.ID, a.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Send implements Service.
func (m *MockService) Send(_ context.Context, channelID string, payload chat.Payload) (*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		return nil, m.SendErr
	}

	m.nextID++
	msg := chat.Message{
		ID:        strconv.FormatInt(m.nextID, 10),
		ChannelID: channelID,
		AuthorID:  m.botID,
		Embeds:    slices.Clone(payload.Embeds),
		Flags:     payload.Flags,
		Timestamp: time.Now(),
	}
	m.messages = append(m.messages, msg)
	m.Ops = append(m.Ops, "send")
	return &msg, nil
}

// Edit implements Service.
func (m *MockService) Edit(_ context.Context, channelID, messageID string, payload chat.Payload) (*chat.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EditErr != nil {
		return nil, m.EditErr
	}

	for i := range m.messages {
		if m.messages[i].ID == messageID && m.messages[i].ChannelID == channelID {
			m.messages[i].Embeds = slices.Clone(payload.Embeds)
			now := time.Now()
			m.messages[i].EditedTimestamp = &now
			m.Ops = append(m.Ops, "edit:"+messageID)
			msg := m.messages[i]
			return &msg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
}

// Delete implements Service.
func (m *MockService) Delete(_ context.Context, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	for i := range m.messages {
		if m.messages[i].ID == messageID && m.messages[i].ChannelID == channelID {
			m.messages = slices.Delete(m.messages, i, i+1)
			m.Ops = append(m.Ops, "delete:"+messageID)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
}

// SetSuppressEmbeds implements Service.
func (m *MockService) SetSuppressEmbeds(_ context.Context, channelID, messageID string, suppress bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SuppressErr != nil {
		return m.SuppressErr
	}

	for i := range m.messages {
		if m.messages[i].ID == messageID && m.messages[i].ChannelID == channelID {
			if suppress {
				m.messages[i].Flags |= chat.FlagSuppressEmbeds
			} else {
				m.messages[i].Flags &^= chat.FlagSuppressEmbeds
			}
			m.Ops = append(m.Ops, fmt.Sprintf("suppress:%s:%t", messageID, suppress))
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
}
