package middleware

// identity.go holds the helpers that read the authenticated user back out
// of the echo context.  LoadSession is the only writer.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/lotty-marketplace/internal/model"
)

// CurrentUser returns the user LoadSession attached to the request, or nil
// for anonymous requests.
func CurrentUser(c echo.Context) *model.User {
    if u, ok := c.Get("user").(*model.User); ok {
        return u
    }
    return nil
}

// SessionHash returns the hash of the request's session id, or "".
func SessionHash(c echo.Context) string {
    s, _ := c.Get("session_hash").(string)
    return s
}

// userKey identifies the caller in rate limit keys: the user id when
// authenticated, "anon" otherwise.
func userKey(c echo.Context) string {
    if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
