package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	maxReconnectBackoff = 60 * time.Second
	gatewayReadLimit    = 10 << 20
)

// dispatchFunc is called for every dispatch (opcode 0) payload with its
// event name and raw data.
type dispatchFunc func(event string, data json.RawMessage)

// socket maintains a realtime gateway connection: hello/identify
// handshake, heartbeat loop, dispatch fan-out, and automatic resume on
// disconnect.
type socket struct {
	url      string
	token    string
	intents  int
	logger   *slog.Logger
	dispatch dispatchFunc

	mu         sync.Mutex
	conn       *websocket.Conn
	sessionID  string
	resumeURL  string
	sequence   int64
	cancel     context.CancelFunc
	done       chan struct{}
	identified chan struct{} // closed once the first READY arrives
}

func newSocket(url, token string, intents int, logger *slog.Logger, dispatch dispatchFunc) *socket {
	return &socket{
		url:        url,
		token:      token,
		intents:    intents,
		logger:     logger,
		dispatch:   dispatch,
		identified: make(chan struct{}),
	}
}

// Start connects the socket and blocks until the first READY dispatch
// arrives or ctx expires. The connection loop keeps running in the
// background until Stop is called.
func (s *socket) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)

	select {
	case <-s.identified:
		return nil
	case <-ctx.Done():
		cancel()
		return fmt.Errorf("discord: gateway handshake: %w", ctx.Err())
	}
}

// Stop closes the connection and waits for the run loop to exit.
func (s *socket) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the connection supervision loop: connect, serve until the
// connection drops, back off, reconnect. Resume state survives across
// iterations.
func (s *socket) run(ctx context.Context) {
	defer close(s.done)

	backoff := time.Second
	for {
		err := s.connectAndServe(ctx)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("gateway connection lost, reconnecting",
			"error", err,
			"backoff", backoff,
		)

		// Jittered so a fleet of bots does not reconnect in lockstep.
		wait := backoff + time.Duration(rand.Int63n(int64(backoff/2)))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff = min(backoff*2, maxReconnectBackoff)
	}
}

// connectAndServe runs one full connection lifecycle: dial, hello,
// identify or resume, then the read loop with a concurrent heartbeat.
func (s *socket) connectAndServe(ctx context.Context) error {
	url := s.url
	s.mu.Lock()
	canResume := s.sessionID != "" && s.resumeURL != ""
	if canResume {
		url = s.resumeURL
	}
	s.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("discord: dial gateway: %w", err)
	}
	conn.SetReadLimit(gatewayReadLimit)
	defer func() {
		_ = conn.Close(websocket.StatusGoingAway, "closing")
	}()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	interval, err := s.handleHello(ctx, conn)
	if err != nil {
		return err
	}

	if canResume {
		err = s.sendResume(ctx, conn)
	} else {
		err = s.sendIdentify(ctx, conn)
	}
	if err != nil {
		return err
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go s.heartbeatLoop(hbCtx, conn, interval)

	return s.readLoop(ctx, conn)
}

func (s *socket) handleHello(ctx context.Context, conn *websocket.Conn) (time.Duration, error) {
	helloCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, data, err := conn.Read(helloCtx)
	if err != nil {
		return 0, fmt.Errorf("discord: read hello: %w", err)
	}
	var payload gatewayPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("discord: decode hello: %w", err)
	}
	if payload.Op != opHello {
		return 0, fmt.Errorf("discord: expected hello, got opcode %d", payload.Op)
	}
	var hello helloData
	if err := json.Unmarshal(payload.D, &hello); err != nil {
		return 0, fmt.Errorf("discord: decode hello data: %w", err)
	}
	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (s *socket) sendIdentify(ctx context.Context, conn *websocket.Conn) error {
	return s.send(ctx, conn, opIdentify, identifyData{
		Token:   s.token,
		Intents: s.intents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "linkshade",
			Device:  "linkshade",
		},
	})
}

func (s *socket) sendResume(ctx context.Context, conn *websocket.Conn) error {
	s.mu.Lock()
	resume := resumeData{
		Token:     s.token,
		SessionID: s.sessionID,
		Seq:       s.sequence,
	}
	s.mu.Unlock()
	return s.send(ctx, conn, opResume, resume)
}

func (s *socket) send(ctx context.Context, conn *websocket.Conn, op int, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("discord: marshal opcode %d payload: %w", op, err)
	}
	payload, err := json.Marshal(gatewayPayload{Op: op, D: raw})
	if err != nil {
		return fmt.Errorf("discord: marshal opcode %d envelope: %w", op, err)
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("discord: write opcode %d: %w", op, err)
	}
	return nil
}

func (s *socket) heartbeatLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	// First beat after a random fraction of the interval, per gateway
	// contract.
	timer := time.NewTimer(time.Duration(rand.Int63n(int64(interval))))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.mu.Lock()
		seq := s.sequence
		s.mu.Unlock()

		raw, _ := json.Marshal(seq)
		if err := s.send(ctx, conn, opHeartbeat, json.RawMessage(raw)); err != nil {
			s.logger.Warn("heartbeat failed", "error", err)
			_ = conn.Close(websocket.StatusGoingAway, "heartbeat failed")
			return
		}
		timer.Reset(interval)
	}
}

func (s *socket) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("discord: gateway read: %w", err)
		}

		var payload gatewayPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			s.logger.Warn("undecodable gateway payload", "error", err)
			continue
		}

		switch payload.Op {
		case opDispatch:
			s.mu.Lock()
			if payload.S != nil {
				s.sequence = *payload.S
			}
			s.mu.Unlock()
			s.handleDispatch(payload.T, payload.D)

		case opHeartbeat:
			s.mu.Lock()
			seq := s.sequence
			s.mu.Unlock()
			raw, _ := json.Marshal(seq)
			if err := s.send(ctx, conn, opHeartbeat, json.RawMessage(raw)); err != nil {
				return err
			}

		case opReconnect:
			_ = conn.Close(websocket.StatusGoingAway, "reconnect requested")
			return fmt.Errorf("discord: gateway requested reconnect")

		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(payload.D, &resumable)
			if !resumable {
				s.mu.Lock()
				s.sessionID = ""
				s.resumeURL = ""
				s.mu.Unlock()
			}
			return fmt.Errorf("discord: gateway invalidated session (resumable: %t)", resumable)

		case opHeartbeatAck:
			// Nothing to do. A stricter client would track missed acks;
			// the read loop already surfaces dead connections as errors.
		}
	}
}

func (s *socket) handleDispatch(event string, data json.RawMessage) {
	if event == "READY" {
		var ready readyData
		if err := json.Unmarshal(data, &ready); err != nil {
			s.logger.Warn("undecodable READY payload", "error", err)
			return
		}
		s.mu.Lock()
		s.sessionID = ready.SessionID
		s.resumeURL = ready.ResumeGatewayURL
		alreadyReady := false
		select {
		case <-s.identified:
			alreadyReady = true
		default:
			close(s.identified)
		}
		s.mu.Unlock()

		if alreadyReady {
			s.logger.Info("gateway session resumed", "session_id", ready.SessionID)
		} else {
			s.logger.Info("gateway session established", "session_id", ready.SessionID)
		}
		return
	}

	s.dispatch(event, data)
}
