// Package ws pushes new chat messages to connected participants over
// WebSocket.  Clients that cannot keep up are dropped; polling
// GET /api/chats/:id/messages remains the source of truth.
package ws

import (
    "encoding/json"
    "log"
    "net/http"
    "sync"
    "time"

    "github.com/gorilla/websocket"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

const (
    writeWait  = 10 * time.Second
    pongWait   = 60 * time.Second
    pingPeriod = (pongWait * 9) / 10
    sendBuffer = 64
)

// Hub keeps one room per chat.
type Hub struct {
    mu       sync.RWMutex
    rooms    map[uint64]map[*Client]bool
    upgrader websocket.Upgrader
}

// NewHub returns a hub.  allowOrigin decides which browser origins may
// connect; nil accepts same-host requests only.
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
    return &Hub{
        rooms: make(map[uint64]map[*Client]bool),
        upgrader: websocket.Upgrader{
            ReadBufferSize:  1024,
            WriteBufferSize: 1024,
            CheckOrigin:     allowOrigin,
        },
    }
}

func (h *Hub) join(chatID uint64, c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.rooms[chatID] == nil {
        h.rooms[chatID] = make(map[*Client]bool)
    }
    h.rooms[chatID][c] = true
}

func (h *Hub) leave(chatID uint64, c *Client) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if m := h.rooms[chatID]; m != nil {
        delete(m, c)
        if len(m) == 0 {
            delete(h.rooms, chatID)
        }
    }
}

// Clients returns the number of connections listening on chatID.
func (h *Hub) Clients(chatID uint64) int {
    h.mu.RLock()
    defer h.mu.RUnlock()
    return len(h.rooms[chatID])
}

// Broadcast sends payload to every client in the chat's room.  A client
// whose buffer is full is closed.
func (h *Hub) Broadcast(chatID uint64, payload any) {
    b, err := json.Marshal(payload)
    if err != nil {
        log.Printf("ws: marshal payload: %v", err)
        return
    }
    h.mu.RLock()
    clients := make([]*Client, 0, len(h.rooms[chatID]))
    for c := range h.rooms[chatID] {
        clients = append(clients, c)
    }
    h.mu.RUnlock()
    for _, c := range clients {
        if !c.enqueue(b) {
            c.Close()
        }
    }
}

// NotifyMessage pushes a stored message to the chat's room.
func (h *Hub) NotifyMessage(msg *model.Message) {
    if msg == nil {
        return
    }
    h.Broadcast(msg.ChatID, frame{Type: "message", Message: msg})
}

type frame struct {
    Type    string         `json:"type"`
    Message *model.Message `json:"message"`
}

// Serve upgrades the request and attaches the connection to chatID's room.
// Authorization must already have happened.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, chatID uint64) error {
    conn, err := h.upgrader.Upgrade(w, r, nil)
    if err != nil {
        return err
    }
    c := newClient(h, chatID, conn)
    h.join(chatID, c)
    go c.writePump()
    go c.readPump()
    return nil
}
