// network/connection.go
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

const writeWait = 10 * time.Second

type Connection interface {
	// Send queues an event without blocking the caller.
	Send(event string, payload any) error
	ReadEnvelope() (*Envelope, error)
	Close() error
	RemoteAddr() net.Addr
}

type Options struct {
	SendBuffer   int
	PingInterval time.Duration
	ReadLimit    int64
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 4096
	}
	return o
}

// WSConnection is a websocket with a dedicated writer goroutine. Send only
// enqueues, so a slow client can never stall the room that broadcasts to it.
type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	opts      Options
}

func NewWSConnection(conn *websocket.Conn, opts Options) *WSConnection {
	opts = opts.withDefaults()
	c := &WSConnection{
		conn:   conn,
		send:   make(chan []byte, opts.SendBuffer),
		closed: make(chan struct{}),
		opts:   opts,
	}

	conn.SetReadLimit(opts.ReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(opts.PingInterval * 2))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(opts.PingInterval * 2))
	})

	go c.writeLoop()
	return c
}

func (c *WSConnection) Send(event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.closed:
		return ErrConnectionClosed
	default:
		return ErrSendBufferFull
	}
}

func (c *WSConnection) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	// Any inbound frame proves the peer is alive.
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PingInterval * 2))
	return Decode(data)
}

func (c *WSConnection) writeLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *WSConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
