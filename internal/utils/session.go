package utils // package utils provides helpers for session tokens and password hashing

import (
    "crypto/rand"   // secure random number generation
    "crypto/sha256" // SHA‑256 hashing of session ids
    "encoding/hex"  // hex encoding of random bytes and digests
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // signs the cookie value
)

// ErrInvalidSession is returned for cookies that fail signature, expiry or
// claim checks.
var ErrInvalidSession = errors.New("invalid session token")

// SessionToken is a freshly issued session.  Cookie is the signed value sent
// to the browser, Raw is the random session id embedded in it as the jti
// claim and Hash is what the sessions table stores.
type SessionToken struct {
    Cookie string
    Raw    string
    Hash   string
    Exp    time.Time
}

// NewSessionToken creates a random session id for userID and wraps it in an
// HS256 JWT that expires after ttlDays.
func NewSessionToken(secret string, userID uint64, ttlDays int) (SessionToken, error) {
    raw, err := randomHex(32) // 32 bytes -> 64 hex chars
    if err != nil {
        return SessionToken{}, err
    }
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
    claims := jwt.RegisteredClaims{
        Subject:   strconv.FormatUint(userID, 10),
        ID:        raw,
        IssuedAt:  jwt.NewNumericDate(now),
        ExpiresAt: jwt.NewNumericDate(exp),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{Cookie: signed, Raw: raw, Hash: HashSessionRaw(raw), Exp: exp}, nil
}

// ParseSessionToken verifies the cookie value and returns the user id and
// raw session id it carries.
func ParseSessionToken(secret, signed string) (uint64, string, error) {
    var claims jwt.RegisteredClaims
    tok, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", ErrInvalidSession
    }
    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 || claims.ID == "" {
        return 0, "", ErrInvalidSession
    }
    return uid, claims.ID, nil
}

// HashSessionRaw returns the SHA‑256 hex digest of a raw session id.  Only
// the digest is stored, so a leaked sessions table cannot be replayed.
func HashSessionRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
