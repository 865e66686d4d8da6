package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/nfcprofile/internal/logging"
	"github.com/muurk/nfcprofile/internal/urls"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Outgoing messages buffered per bridge
	sendBuffer = 16
)

var errSendQueueFull = errors.New("bridge send queue full")

// bridge is one connected tag reader.
type bridge struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan Message
	done       chan struct{}
}

func newBridge(conn *websocket.Conn) *bridge {
	return &bridge{
		conn:       conn,
		remoteAddr: conn.RemoteAddr().String(),
		send:       make(chan Message, sendBuffer),
		done:       make(chan struct{}),
	}
}

func (b *bridge) enqueue(msg Message) error {
	select {
	case <-b.done:
		return ErrBridgeGone
	default:
	}
	select {
	case b.send <- msg:
		return nil
	case <-b.done:
		return ErrBridgeGone
	default:
		return errSendQueueFull
	}
}

// serveBridge runs the read loop on the calling goroutine and the write
// loop on another until the connection drops.
func (s *Server) serveBridge(b *bridge) {
	logging.LogConnection(b.remoteAddr, "websocket_upgraded")
	s.addBridge(b)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		b.writePump()
	}()

	b.readPump(s.handleMessage)

	close(b.done)
	s.removeBridge(b)
	_ = b.conn.Close()
	logging.LogConnection(b.remoteAddr, "websocket_closed")
}

func (b *bridge) readPump(handle func(*bridge, *Message)) {
	b.conn.SetReadLimit(maxMessageSize)
	_ = b.conn.SetReadDeadline(time.Now().Add(pongWait))
	b.conn.SetPongHandler(func(string) error {
		return b.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := b.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("Bridge connection dropped", zap.String("remote_addr", b.remoteAddr), zap.Error(err))
			}
			return
		}
		logging.LogWebSocketMessage(b.remoteAddr, "received", msgType, data)

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn("Ignoring malformed bridge message", zap.String("remote_addr", b.remoteAddr), zap.Error(err))
			continue
		}
		handle(b, &msg)
	}
}

func (b *bridge) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-b.send:
			data, err := json.Marshal(msg)
			if err != nil {
				logging.Error("Failed to encode bridge message", zap.Error(err))
				continue
			}
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Warn("Failed to send to bridge", zap.String("remote_addr", b.remoteAddr), zap.Error(err))
				_ = b.conn.Close()
				return
			}
			logging.LogWebSocketMessage(b.remoteAddr, "sent", websocket.TextMessage, data)
		case <-ticker.C:
			_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := b.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = b.conn.Close()
				return
			}
		case <-b.done:
			_ = b.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) handleMessage(b *bridge, msg *Message) {
	switch msg.Type {
	case TypeRead:
		s.handleRead(b, msg)
	case TypeWriteResult:
		s.completeWrite(WriteResult{ID: msg.ID, OK: msg.OK, Err: msg.Error})
	default:
		logging.Warn("Unknown bridge message type", zap.String("type", msg.Type))
	}
}

func (s *Server) handleRead(b *bridge, msg *Message) {
	reply := Message{Type: TypeTransition}

	key, err := urls.KeyFromURI(msg.URI)
	if err != nil {
		reply.Error = err.Error()
		_ = b.enqueue(reply)
		return
	}
	reply.Key = key

	tr, err := s.invoker.Invoke(key)
	if tr != nil {
		reply.Key = tr.Key
		reply.Name = tr.Name
		reply.Action = string(tr.Action)
	}
	if err != nil {
		reply.Error = err.Error()
		logging.Error("Tag read failed", zap.String("profile", key), zap.Error(err))
	}
	if err := b.enqueue(reply); err != nil {
		logging.Warn("Could not reply to bridge", zap.String("remote_addr", b.remoteAddr), zap.Error(err))
	}
}
