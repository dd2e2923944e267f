package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// AdminHandler serves /api/admin.  Every route sits behind
// RequireRole("admin").
type AdminHandler struct {
    Admin    *service.AdminService
    Listings *service.ListingService
    Subs     *service.SubscriptionService
    Sweeper  *service.Sweeper
}

func NewAdminHandler(a *service.AdminService, l *service.ListingService, s *service.SubscriptionService, sw *service.Sweeper) *AdminHandler {
    if a == nil || l == nil || s == nil || sw == nil {
        panic("nil dependency")
    }
    return &AdminHandler{Admin: a, Listings: l, Subs: s, Sweeper: sw}
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    st, err := h.Admin.Stats(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, st)
}

// Users handles GET /api/admin/users.
func (h *AdminHandler) Users(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Admin.Users(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

// AssignPlan handles POST /api/admin/users/:id/plan.
func (h *AdminHandler) AssignPlan(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var in service.PlanInput
    if err := c.Bind(&in); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    sub, err := h.Subs.AssignPlan(ctx, id, in)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, sub)
}

// Queue handles GET /api/admin/listings?status=pending&page=1.
func (h *AdminHandler) Queue(c echo.Context) error {
    page, _ := strconv.Atoi(c.QueryParam("page"))
    ctx, cancel := reqCtx(c)
    defer cancel()
    out, err := h.Listings.ModerationQueue(ctx, currentUser(c), c.QueryParam("status"), page)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, out)
}

type moderateReq struct {
    Action string `json:"action"`
    Reason string `json:"reason"`
}

// Moderate handles POST /api/admin/listings/:id/moderate.
func (h *AdminHandler) Moderate(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    var req moderateReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    l, err := h.Listings.ModerateListing(ctx, currentUser(c), id, req.Action, req.Reason)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, l)
}

// Sweep handles POST /api/admin/sweep: run the expiry sweep now.
func (h *AdminHandler) Sweep(c echo.Context) error {
    res, err := h.Sweeper.Sweep(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}
