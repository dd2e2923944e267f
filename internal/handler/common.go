package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/middleware"
    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/service"
)

// requestTimeout bounds the database work of a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// writeError maps service errors onto status codes.  Anything unexpected
// is logged and reported as a bare 500.
func writeError(c echo.Context, err error) error {
    if ve, ok := service.IsValidation(err); ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
    }
    switch {
    case errors.Is(err, service.ErrUnauthorized):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
    case errors.Is(err, service.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func badRequest(c echo.Context, field, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "field": field})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

func currentUser(c echo.Context) *model.User { return middleware.CurrentUser(c) }
