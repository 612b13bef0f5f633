package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatapp/logger"
	"chatapp/tools/safe"
)

// Conn is what the registry holds per online user. The production impl
// wraps a websocket; tests substitute fakes.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
}

const (
	sendQueueSize = 256
	writeDeadline = 5 * time.Second
)

var (
	errConnClosed = errors.New("connection closed")
	errQueueFull  = errors.New("send queue full")
)

// WSConn owns a websocket plus its outbound queue. gorilla's WriteMessage
// must not be called concurrently, so all writes funnel through a single
// pump goroutine.
type WSConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewWSConn(id string, ws *websocket.Conn) *WSConn {
	c := &WSConn{
		id:   id,
		ws:   ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	safe.Go(c.writePump)
	return c
}

func (c *WSConn) ID() string { return c.id }

// Send enqueues without blocking. A full queue drops the frame with an
// error rather than stalling the caller; the peer is either dead or too
// slow and the next disconnect signal cleans it up.
func (c *WSConn) Send(data []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		return errQueueFull
	}
}

func (c *WSConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.ws.Close()
}

func (c *WSConn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Infof("[conn] write failed conn=%s err=%v", c.id, err)
				_ = c.Close()
				return
			}
		}
	}
}
