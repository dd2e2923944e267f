package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// FeedbackHandler serves comments and ratings under /api/listings/:id.
type FeedbackHandler struct {
    Feedback *service.FeedbackService
}

func NewFeedbackHandler(s *service.FeedbackService) *FeedbackHandler {
    if s == nil {
        panic("nil feedback service")
    }
    return &FeedbackHandler{Feedback: s}
}

// Comments handles GET /api/listings/:id/comments.
func (h *FeedbackHandler) Comments(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Feedback.Comments(ctx, currentUser(c), id)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

type commentReq struct {
    Content string `json:"content"`
}

// AddComment handles POST /api/listings/:id/comments.
func (h *FeedbackHandler) AddComment(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var req commentReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    cm, err := h.Feedback.AddComment(ctx, currentUser(c), id, req.Content)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, cm)
}

type ratingReq struct {
    Rating int `json:"rating"`
}

// Rate handles POST /api/listings/:id/ratings.
func (h *FeedbackHandler) Rate(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var req ratingReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    r, err := h.Feedback.Rate(ctx, currentUser(c), id, req.Rating)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, r)
}
