package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// OfferHandler serves /api/offers.
type OfferHandler struct {
    Offers *service.OfferService
}

func NewOfferHandler(s *service.OfferService) *OfferHandler {
    if s == nil {
        panic("nil offer service")
    }
    return &OfferHandler{Offers: s}
}

// Create handles POST /api/offers.
func (h *OfferHandler) Create(c echo.Context) error {
    var in service.OfferInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    o, err := h.Offers.MakeOffer(ctx, currentUser(c), in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, o)
}

// List handles GET /api/offers.
func (h *OfferHandler) List(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Offers.ListOffers(ctx, currentUser(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

type respondReq struct {
    Status string `json:"status"`
}

// Respond handles POST /api/offers/:id/respond.
func (h *OfferHandler) Respond(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var req respondReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    o, err := h.Offers.Respond(ctx, currentUser(c), id, req.Status)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, o)
}
