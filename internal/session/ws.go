package session

import (
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsDialTimeout  = 10 * time.Second
	wsWriteTimeout = 5 * time.Second
	// wsInboundDepth bounds messages buffered between Polls. The collector
	// sends occasional acknowledgements, not a stream; overflow is dropped.
	wsInboundDepth = 16
)

// WSChannel is a Channel over a WebSocket connection.
type WSChannel struct {
	conn     *websocket.Conn
	inbound  chan string
	callback func(string)
	alive    atomic.Bool
}

// NewWSChannel creates an unconnected WebSocket channel.
func NewWSChannel() *WSChannel {
	return &WSChannel{
		inbound: make(chan string, wsInboundDepth),
	}
}

// Connect dials ws://host:port/path and starts the read pump.
func (c *WSChannel) Connect(host string, port int, path string) error {
	u := url.URL{Scheme: "ws", Host: host + ":" + strconv.Itoa(port), Path: path}

	dialer := websocket.Dialer{HandshakeTimeout: wsDialTimeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}

	c.conn = conn
	c.alive.Store(true)
	go c.readPump(conn)
	return nil
}

// readPump moves inbound messages onto the buffered channel until the
// connection dies. It owns all reads on conn.
func (c *WSChannel) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.alive.Store(false)
			return
		}
		select {
		case c.inbound <- string(data):
		default:
			// Inbound buffer full between Polls; drop.
		}
	}
}

// Send transmits one payload as a text message.
func (c *WSChannel) Send(payload []byte) error {
	if c.conn == nil || !c.alive.Load() {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.alive.Store(false)
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Poll dispatches any buffered inbound messages to the callback.
func (c *WSChannel) Poll() {
	for {
		select {
		case msg := <-c.inbound:
			if c.callback != nil {
				c.callback(msg)
			}
		default:
			return
		}
	}
}

// OnMessage registers the inbound-message callback.
func (c *WSChannel) OnMessage(cb func(string)) {
	c.callback = cb
}

// IsConnected reports channel liveness.
func (c *WSChannel) IsConnected() bool {
	return c.conn != nil && c.alive.Load()
}

// Close closes the connection.
func (c *WSChannel) Close() error {
	if c.conn == nil {
		return nil
	}
	c.alive.Store(false)
	return c.conn.Close()
}
