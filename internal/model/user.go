package model

import "time"

// Roles stored in users.role.
const (
    RoleUser  = "user"
    RoleAdmin = "admin"
)

// User represents an account stored in the `users` table.  PasswordHash is
// never serialised; handlers return the struct directly.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login identifier (an email address).
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name shown on listings and chats.
//  Phone        – contact phone number.
//  Role         – "user" or "admin".
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    `json:"id" db:"id"`
    Username     string    `json:"username" db:"username"`
    PasswordHash string    `json:"-" db:"password_hash"`
    FullName     string    `json:"fullName" db:"full_name"`
    Phone        string    `json:"phone" db:"phone"`
    Role         string    `json:"role" db:"role"`
    CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// PublicUser is the owner/participant profile embedded in listing details
// and chat summaries.
type PublicUser struct {
    ID       uint64 `json:"id" db:"id"`
    FullName string `json:"fullName" db:"full_name"`
    Phone    string `json:"phone" db:"phone"`
}

// Session models a row of the `sessions` table.  The raw session id only
// lives in the client's cookie; the table keeps its SHA-256 hash.
type Session struct {
    ID        uint64     // sessions.id
    UserID    uint64     // sessions.user_id
    TokenHash string     // sessions.token_hash
    ExpiresAt time.Time  // sessions.expires_at
    RevokedAt *time.Time // sessions.revoked_at (nullable)
    CreatedAt time.Time  // sessions.created_at
}
