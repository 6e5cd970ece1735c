package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Size of the outgoing command buffer
	sendBufferSize = 16
)

// MessageType names a message on the remote engine wire.
type MessageType string

// Shell -> engine commands
const (
	MsgStart   MessageType = "start"
	MsgRestart MessageType = "restart"
)

// Engine -> shell events
const (
	MsgScoreUpdate MessageType = "score_update"
	MsgGameOver    MessageType = "game_over"
)

// Message is one JSON frame on the remote engine connection.
type Message struct {
	Type  MessageType `json:"type"`
	Value int         `json:"value,omitempty"`
}

// ErrRemoteClosed is returned when commanding a closed remote engine.
var ErrRemoteClosed = errors.New("engine: remote connection closed")

// Remote drives an engine running in another process over a websocket.
// Events are delivered to the listener from the read goroutine, in the
// order they arrive on the wire.
type Remote struct {
	conn     *websocket.Conn
	listener Listener
	logger   *log.Logger

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// DialRemote connects to the engine at url and starts pumping messages.
func DialRemote(ctx context.Context, url string, listener Listener, logger *log.Logger) (*Remote, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: cannot dial %s: %w", url, err)
	}

	if logger == nil {
		logger = log.Default()
	}

	r := &Remote{
		conn:     conn,
		listener: listener,
		logger:   logger.WithPrefix("engine"),
		send:     make(chan Message, sendBufferSize),
		done:     make(chan struct{}),
	}

	r.wg.Add(2)
	go r.readPump()
	go r.writePump()

	return r, nil
}

// Start asks the remote engine to begin a new game.
func (r *Remote) Start() {
	r.command(MsgStart)
}

// Restart asks the remote engine to reset for a new attempt.
func (r *Remote) Restart() {
	r.command(MsgRestart)
}

// Done is closed once the connection is gone.
func (r *Remote) Done() <-chan struct{} {
	return r.done
}

// Close shuts the connection down and waits for the pumps.
func (r *Remote) Close() error {
	r.shutdown()
	r.wg.Wait()
	return nil
}

func (r *Remote) shutdown() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

func (r *Remote) command(t MessageType) {
	select {
	case <-r.done:
		r.logger.Warn("command dropped", "type", t, "error", ErrRemoteClosed)
	case r.send <- Message{Type: t}:
	default:
		r.logger.Warn("send buffer full, command dropped", "type", t)
	}
}

// readPump delivers events from the connection to the listener.
func (r *Remote) readPump() {
	defer r.wg.Done()
	defer r.shutdown()

	r.conn.SetReadLimit(maxMessageSize)
	r.conn.SetReadDeadline(time.Now().Add(pongWait))
	r.conn.SetPongHandler(func(string) error {
		r.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := r.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn("engine connection lost", "error", err)
			}
			return
		}

		switch msg.Type {
		case MsgScoreUpdate:
			r.listener.ScoreUpdate(msg.Value)
		case MsgGameOver:
			r.listener.GameOver(msg.Value)
		default:
			r.logger.Debug("unknown engine message", "type", msg.Type)
		}
	}
}

// writePump sends queued commands and keep-alive pings.
func (r *Remote) writePump() {
	defer r.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			r.conn.SetWriteDeadline(time.Now().Add(writeWait))
			r.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			r.conn.Close()
			return
		case msg := <-r.send:
			r.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := r.conn.WriteJSON(msg); err != nil {
				r.logger.Warn("cannot send command", "type", msg.Type, "error", err)
				r.shutdown()
				r.conn.Close()
				return
			}
		case <-ticker.C:
			r.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := r.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				r.shutdown()
				r.conn.Close()
				return
			}
		}
	}
}
