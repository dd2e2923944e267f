package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that only lets through authenticated
// users whose role is one of roles.  Anonymous requests get 401, other
// roles 403.  It expects LoadSession to have run.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentUser(c) == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            role, _ := c.Get("role").(string)
            if !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
