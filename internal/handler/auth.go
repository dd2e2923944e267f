package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/config"
    "github.com/iliyamo/lotty-marketplace/internal/middleware"
    "github.com/iliyamo/lotty-marketplace/internal/model"
    "github.com/iliyamo/lotty-marketplace/internal/repository"
    "github.com/iliyamo/lotty-marketplace/internal/utils"
)

// AccountStore is the part of repository.UserRepo the auth endpoints use.
type AccountStore interface {
    Create(ctx context.Context, in repository.NewUser, cost int) (*model.User, error)
    GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionStore is the part of repository.SessionRepo the auth endpoints
// use.
type SessionStore interface {
    Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    Revoke(ctx context.Context, tokenHash string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Users    AccountStore
    Sessions SessionStore
}

func NewAuthHandler(cfg config.Config, u AccountStore, s SessionStore) *AuthHandler {
    if u == nil || s == nil {
        panic("nil dependency")
    }
    return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username" validate:"required,email,max=255"`
    Password string `json:"password" validate:"required,min=6,max=72"`
    FullName string `json:"fullName" validate:"required,max=255"`
    Phone    string `json:"phone" validate:"required,max=50"`
    Role     string `json:"role"` // accepted for compatibility; always "user"
}

type loginReq struct {
    Username string `json:"username" validate:"required"`
    Password string `json:"password" validate:"required"`
}

// Register creates a user account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    req.Username = strings.ToLower(strings.TrimSpace(req.Username))
    req.FullName = strings.TrimSpace(req.FullName)
    req.Phone = strings.TrimSpace(req.Phone)
    if err := c.Validate(&req); err != nil {
        return writeError(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.Create(ctx, repository.NewUser{
        Username: req.Username,
        Password: req.Password,
        FullName: req.FullName,
        Phone:    req.Phone,
        Role:     model.RoleUser,
    }, h.Cfg.BcryptCost)
    if errors.Is(err, repository.ErrUsernameExists) {
        return badRequest(c, "username", "username already exists")
    }
    if err != nil {
        return writeError(c, err)
    }
    if err := h.startSession(ctx, c, u.ID); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and starts a session.  Unknown users and wrong
// passwords get the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "", "invalid body")
    }
    if err := c.Validate(&req); err != nil {
        return writeError(c, err)
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByUsername(ctx, req.Username)
    if errors.Is(err, repository.ErrUserNotFound) {
        utils.BurnPasswordCheck(req.Password)
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if err != nil {
        return writeError(c, err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    if err := h.startSession(ctx, c, u.ID); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, u)
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    if hash := middleware.SessionHash(c); hash != "" {
        ctx, cancel := reqCtx(c)
        defer cancel()
        if err := h.Sessions.Revoke(ctx, hash); err != nil {
            return writeError(c, err)
        }
    }
    c.SetCookie(h.cookie("", -1))
    return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Me returns the signed-in user, or null.
func (h *AuthHandler) Me(c echo.Context) error {
    if u := currentUser(c); u != nil {
        return c.JSON(http.StatusOK, u)
    }
    return c.JSON(http.StatusOK, nil)
}

func (h *AuthHandler) startSession(ctx context.Context, c echo.Context, userID uint64) error {
    tok, err := utils.NewSessionToken(h.Cfg.SessionSecret, userID, h.ttlDays())
    if err != nil {
        return err
    }
    if err := h.Sessions.Store(ctx, userID, tok.Hash, tok.Exp); err != nil {
        return err
    }
    c.SetCookie(h.cookie(tok.Cookie, h.ttlDays()*24*60*60))
    return nil
}

func (h *AuthHandler) ttlDays() int {
    if h.Cfg.SessionTTLDays > 0 {
        return h.Cfg.SessionTTLDays
    }
    return 30
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
    return &http.Cookie{
        Name:     config.SessionCookieName,
        Value:    value,
        Path:     "/",
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   h.Cfg.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    }
}
