package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/service"
)

type subscriptionResp struct {
    Subscription *model.Subscription `json:"subscription"`
    Active       bool                `json:"active"`
}

// SubscriptionHandler serves GET /api/subscription.
type SubscriptionHandler struct {
    Subs *service.SubscriptionService
}

func NewSubscriptionHandler(s *service.SubscriptionService) *SubscriptionHandler {
    if s == nil {
        panic("nil subscription service")
    }
    return &SubscriptionHandler{Subs: s}
}

// Current returns the caller's latest subscription and whether it is in
// effect right now.  Admins are always allowed to publish.
func (h *SubscriptionHandler) Current(c echo.Context) error {
    u := currentUser(c)
    ctx, cancel := reqCtx(c)
    defer cancel()
    sub, active, err := h.Subs.Current(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, subscriptionResp{Subscription: sub, Active: active || u.IsAdmin()})
}
