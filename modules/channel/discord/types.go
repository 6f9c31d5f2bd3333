package discord

import (
	"encoding/json"
	"fmt"
)

// User represents a Discord user or bot account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot,omitempty"`
}

// Message represents a Discord message as returned by the REST API and
// the realtime gateway. Gateway MESSAGE_UPDATE payloads may be partial.
type Message struct {
	ID              string  `json:"id"`
	ChannelID       string  `json:"channel_id"`
	Author          *User   `json:"author,omitempty"`
	Content         string  `json:"content"`
	Timestamp       string  `json:"timestamp,omitempty"`
	EditedTimestamp *string `json:"edited_timestamp,omitempty"`
	Embeds          []Embed `json:"embeds,omitempty"`
	Flags           int     `json:"flags,omitempty"`
}

// Embed is the Discord embed object, reduced to the fields this system
// reads or writes.
type Embed struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
	Color     int    `json:"color,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// CreateMessageRequest is the body for POST /channels/{id}/messages.
type CreateMessageRequest struct {
	Embeds []Embed `json:"embeds"`
	Flags  int     `json:"flags,omitempty"`
}

// EditMessageRequest is the body for PATCH /channels/{id}/messages/{mid}.
// Flags uses a pointer so a flag-only patch can carry an explicit zero.
type EditMessageRequest struct {
	Embeds []Embed `json:"embeds,omitempty"`
	Flags  *int    `json:"flags,omitempty"`
}

// GatewayURL is the response of GET /gateway/bot.
type GatewayURL struct {
	URL string `json:"url"`
}

// APIError is a non-2xx response from the Discord REST API.
type APIError struct {
	Status     int     `json:"-"`
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("discord: API error %d (code %d): %s", e.Status, e.Code, e.Message)
}

// Gateway opcodes used by this client.
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11
)

// gatewayPayload is the envelope for every gateway frame.
type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

// helloData is the op 10 payload.
type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// identifyData is the op 2 payload.
type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// resumeData is the op 6 payload.
type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

// readyData is the READY dispatch payload, reduced to what reconnection
// needs.
type readyData struct {
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
	User             User   `json:"user"`
}

// bulkDeleteData is the MESSAGE_DELETE_BULK dispatch payload.
type bulkDeleteData struct {
	IDs       []string `json:"ids"`
	ChannelID string   `json:"channel_id"`
}

// deleteData is the MESSAGE_DELETE dispatch payload.
type deleteData struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}
