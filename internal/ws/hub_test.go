package ws

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/websocket"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

func TestHubPushesMessagesToRoom(t *testing.T) {
    hub := NewHub(func(*http.Request) bool { return true })
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _ = hub.Serve(w, r, 7)
    }))
    defer srv.Close()

    url := "ws" + strings.TrimPrefix(srv.URL, "http")
    conn, _, err := websocket.DefaultDialer.Dial(url, nil)
    if err != nil {
        t.Fatalf("dial: %v", err)
    }
    defer conn.Close()

    deadline := time.Now().Add(2 * time.Second)
    for hub.Clients(7) == 0 {
        if time.Now().After(deadline) {
            t.Fatal("client never joined")
        }
        time.Sleep(10 * time.Millisecond)
    }

    hub.NotifyMessage(&model.Message{ID: 3, ChatID: 8, Content: "other room"})
    hub.NotifyMessage(&model.Message{ID: 4, ChatID: 7, SenderID: 1, Content: "hola"})

    _ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
    _, data, err := conn.ReadMessage()
    if err != nil {
        t.Fatalf("read: %v", err)
    }
    var frame struct {
        Type    string        `json:"type"`
        Message model.Message `json:"message"`
    }
    if err := json.Unmarshal(data, &frame); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if frame.Type != "message" || frame.Message.ID != 4 || frame.Message.Content != "hola" {
        t.Fatalf("frame = %+v", frame)
    }
}

func TestClientCloseIsIdempotent(t *testing.T) {
    hub := NewHub(nil)
    c := newClient(hub, 1, nil)
    hub.join(1, c)
    c.Close()
    c.Close()
    if hub.Clients(1) != 0 {
        t.Fatal("client still in room")
    }
    if !c.enqueue([]byte("x")) {
        t.Fatal("enqueue on closed client should be a no-op")
    }
}
