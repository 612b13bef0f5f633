package chat

import (
	"context"
	"fmt"
)

// Session is an authenticated connection. The bound user id is the only
// sender identity handlers ever see; ids inside payloads are never
// trusted.
type Session struct {
	UserID   string
	Username string
	Conn     Conn
}

type HandlerFunc func(ctx context.Context, sess *Session, f *Frame) error

// Dispatcher demultiplexes inbound frames by type.
type Dispatcher struct {
	handlers map[EventKind]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[EventKind]HandlerFunc)}
}

func (d *Dispatcher) Register(kind EventKind, h HandlerFunc) { d.handlers[kind] = h }

func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, f *Frame) error {
	h, ok := d.handlers[f.Type]
	if !ok {
		return fmt.Errorf("no handler for type=%s", f.Type)
	}
	return h(ctx, sess, f)
}
