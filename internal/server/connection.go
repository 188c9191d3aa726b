package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/rpsduel/internal/move"
	"github.com/lox/rpsduel/internal/round"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection is one WebSocket client and the session it owns.
type Connection struct {
	id          string
	conn        *websocket.Conn
	engine      *round.Engine
	send        chan *Message
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	unsubscribe func()
}

// NewConnection creates a new connection wrapper
func NewConnection(id string, conn *websocket.Conn, engine *round.Engine, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:     id,
		conn:   conn,
		engine: engine,
		send:   make(chan *Message, 64),
		logger: logger.WithPrefix("conn").With("session", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start sends the initial state and begins handling the connection
func (c *Connection) Start() {
	c.unsubscribe = c.engine.Subscribe(round.SubscriberFunc(func(event round.Event) {
		c.sendState(event.Type.String(), event.Snapshot)
	}))
	c.sendState("", c.engine.Snapshot())

	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection and the session's engine
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.unsubscribe != nil {
			c.unsubscribe()
		}
		c.engine.Close()
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client without blocking
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		// Engine events arrive with the engine locked; close asynchronously.
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("Malformed message", "error", err)
			c.sendError("invalid_message", "Malformed message: "+err.Error())
			continue
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeSubmitChoice:
		var data SubmitChoiceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_move", err.Error())
			return
		}
		if !data.Move.Valid() {
			c.sendError("invalid_move", "move must be rock, paper or scissors")
			return
		}
		if !c.engine.SubmitChoice(data.Move) {
			c.sendRejected(data.Move)
		}

	case MessageTypeResetSession:
		c.engine.ResetSession()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) sendState(event string, snap round.Snapshot) {
	msg, err := NewMessage(MessageTypeState, StateData{
		SessionID: c.id,
		Event:     event,
		Snapshot:  snap,
	})
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

func (c *Connection) sendRejected(m move.Move) {
	c.logger.Debug("Choice rejected while deciding", "move", m)
	msg, err := NewMessage(MessageTypeRejected, RejectedData{Reason: "round in progress"})
	if err != nil {
		c.logger.Error("Failed to create rejected message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
