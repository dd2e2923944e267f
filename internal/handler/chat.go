package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/service"
    "github.com/iliyamo/lotty-marketplace/internal/ws"
)

// ChatHandler serves /api/chats.
type ChatHandler struct {
    Chats *service.ChatService
    Hub   *ws.Hub
}

func NewChatHandler(s *service.ChatService, hub *ws.Hub) *ChatHandler {
    if s == nil {
        panic("nil chat service")
    }
    return &ChatHandler{Chats: s, Hub: hub}
}

type createChatReq struct {
    ListingID uint64 `json:"listingId"`
}

// Create handles POST /api/chats.  201 for a new chat, 200 when the chat
// already existed.
func (h *ChatHandler) Create(c echo.Context) error {
    var req createChatReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    chat, created, err := h.Chats.CreateChat(ctx, currentUser(c), req.ListingID)
    if err != nil {
        return writeError(c, err)
    }
    status := http.StatusOK
    if created {
        status = http.StatusCreated
    }
    return c.JSON(status, chat)
}

// List handles GET /api/chats.
func (h *ChatHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Chats.ListChats(ctx, currentUser(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

// Messages handles GET /api/chats/:id/messages?after=<id>.  Polling
// clients pass the last id they have.
func (h *ChatHandler) Messages(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var after uint64
    if v := c.QueryParam("after"); v != "" {
        n, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return badRequest(c, "after", "after must be a message id")
        }
        after = n
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    msgs, err := h.Chats.Messages(ctx, currentUser(c), id, after)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, msgs)
}

type sendMessageReq struct {
    Content string `json:"content"`
}

// Send handles POST /api/chats/:id/messages.
func (h *ChatHandler) Send(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var req sendMessageReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    msg, err := h.Chats.SendMessage(ctx, currentUser(c), id, req.Content)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, msg)
}

// Stream handles GET /api/chats/:id/ws, upgrading participants to a
// WebSocket that receives new messages as they are stored.
func (h *ChatHandler) Stream(c echo.Context) error {
    if h.Hub == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    ctx, cancel := reqCtx(c)
    chat, err := h.Chats.Authorize(ctx, currentUser(c), id)
    cancel()
    if err != nil {
        return writeError(c, err)
    }
    if err := h.Hub.Serve(c.Response(), c.Request(), chat.ID); err != nil {
        c.Logger().Warnf("ws upgrade for chat %d: %v", chat.ID, err)
    }
    return nil
}
