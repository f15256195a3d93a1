package ws

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 4096
)

// Client is one connected browser view.
type Client struct {
	id           string
	user         string
	conn         *websocket.Conn
	send         chan []byte
	writeTimeout time.Duration
	logger       *zap.Logger
}

func newClient(id, user string, conn *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		id:           id,
		user:         user,
		conn:         conn,
		send:         make(chan []byte, 16),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// run blocks until the peer goes away or ctx ends, then detaches from the hub.
func (c *Client) run(ctx context.Context, hub *Hub) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()
	go c.writePump(ctx)
	c.readPump(ctx)

	hub.remove(c.id)
	close(c.send)
	_ = c.conn.Close()
	c.logger.Info("view disconnected", zap.String("client_id", c.id), zap.String("user_id", c.user))
}

// readPump only drains control frames; views never send data.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if ctx.Err() != nil {
			return
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping session event, buffer full", zap.String("client_id", c.id))
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}
