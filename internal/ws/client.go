package ws

import (
    "sync"
    "time"

    "github.com/gorilla/websocket"
)

// Client is one WebSocket connection listening on a chat.
type Client struct {
    hub    *Hub
    chatID uint64
    conn   *websocket.Conn

    mu     sync.Mutex
    send   chan []byte
    closed bool
}

func newClient(h *Hub, chatID uint64, conn *websocket.Conn) *Client {
    return &Client{hub: h, chatID: chatID, conn: conn, send: make(chan []byte, sendBuffer)}
}

// enqueue queues b for writing without blocking.  It reports false when
// the buffer is full.
func (c *Client) enqueue(b []byte) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.closed {
        return true
    }
    select {
    case c.send <- b:
        return true
    default:
        return false
    }
}

// Close detaches the client from its room and shuts the connection.  It is
// safe to call more than once.
func (c *Client) Close() {
    c.mu.Lock()
    if c.closed {
        c.mu.Unlock()
        return
    }
    c.closed = true
    close(c.send)
    c.mu.Unlock()
    c.hub.leave(c.chatID, c)
    if c.conn != nil {
        _ = c.conn.Close()
    }
}

// readPump discards client frames; it exists to process pongs and notice
// disconnects.
func (c *Client) readPump() {
    defer c.Close()
    c.conn.SetReadLimit(4 * 1024)
    _ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        return c.conn.SetReadDeadline(time.Now().Add(pongWait))
    })
    for {
        if _, _, err := c.conn.ReadMessage(); err != nil {
            return
        }
    }
}

func (c *Client) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        c.Close()
    }()
    for {
        select {
        case msg, ok := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
                return
            }
        case <-ticker.C:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
