package middleware

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/config"
    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/utils"
)

// SessionValidator resolves a session hash to its user id.
type SessionValidator interface {
    Validate(ctx context.Context, tokenHash string) (uint64, error)
}

// UserLoader loads a user by id.
type UserLoader interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// LoadSession reads the session cookie, verifies its signature, checks the
// session row and loads the user.  On success the user is stored in the
// context under "user", with "user_id" and "role" alongside.  Requests
// without a valid session continue anonymously; RequireSession decides
// whether that is acceptable.
func LoadSession(secret string, sessions SessionValidator, users UserLoader) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            cookie, err := c.Cookie(config.SessionCookieName)
            if err != nil || cookie.Value == "" {
                return next(c)
            }
            uid, raw, err := utils.ParseSessionToken(secret, cookie.Value)
            if err != nil {
                return next(c)
            }
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            owner, err := sessions.Validate(ctx, utils.HashSessionRaw(raw))
            if err != nil || owner != uid {
                return next(c)
            }
            u, err := users.GetByID(ctx, uid)
            if err != nil {
                return next(c)
            }
            c.Set("user", u)
            c.Set("user_id", u.ID)
            c.Set("role", u.Role)
            c.Set("session_hash", utils.HashSessionRaw(raw))
            return next(c)
        }
    }
}

// RequireSession rejects requests that LoadSession did not authenticate.
func RequireSession() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if CurrentUser(c) == nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
            }
            return next(c)
        }
    }
}
