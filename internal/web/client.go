package web

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abhisek/quizarcade/internal/bridge"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// CloseFrameReplaced tells the page its frame was torn down and it
	// should reload to pick up the current instance.
	CloseFrameReplaced = 4000
)

// client relays one page's sandbox messages for one frame.
type client struct {
	host   *Host
	bridge *bridge.Bridge
	frame  *bridge.Frame
	conn   *websocket.Conn
	send   chan []byte

	quit     chan struct{}
	quitOnce sync.Once
}

func newClient(h *Host, b *bridge.Bridge, f *bridge.Frame, conn *websocket.Conn) *client {
	return &client{
		host:   h,
		bridge: b,
		frame:  f,
		conn:   conn,
		send:   make(chan []byte, 64),
		quit:   make(chan struct{}),
	}
}

func (c *client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// enqueue drops the message when the page is not keeping up; the next
// feedback or a reload brings it back in sync.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("web: client for frame %s is slow, dropping message", c.frame.ID())
	}
}

// readPump hands every inbound message to the bridge. The bridge decides
// whether the frame is still the active one.
func (c *client) readPump() {
	defer func() {
		c.host.detach(c)
		c.stop()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Printf("web: websocket error: %v", err)
			}
			return
		}
		c.bridge.Deliver(c.frame, message)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.frame.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(CloseFrameReplaced, "frame replaced"))
			return

		case <-c.quit:
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
