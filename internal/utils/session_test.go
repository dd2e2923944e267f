package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
)

func TestSessionTokenRoundTrip(t *testing.T) {
    tok, err := NewSessionToken("secret", 42, 30)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    uid, raw, err := ParseSessionToken("secret", tok.Cookie)
    if err != nil {
        t.Fatalf("parse: %v", err)
    }
    if uid != 42 || raw != tok.Raw {
        t.Fatalf("got uid=%d raw=%q, want 42 %q", uid, raw, tok.Raw)
    }
    if HashSessionRaw(raw) != tok.Hash {
        t.Fatal("hash of parsed raw id does not match stored hash")
    }
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
    tok, err := NewSessionToken("secret", 7, 30)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if _, _, err := ParseSessionToken("other", tok.Cookie); err != ErrInvalidSession {
        t.Fatalf("want ErrInvalidSession, got %v", err)
    }
}

func TestSessionTokenRejectsExpired(t *testing.T) {
    tok, err := NewSessionToken("secret", 7, -1)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    if _, _, err := ParseSessionToken("secret", tok.Cookie); err != ErrInvalidSession {
        t.Fatalf("want ErrInvalidSession for expired token, got %v", err)
    }
}

func TestSessionTokenRejectsNoneAlg(t *testing.T) {
    claims := jwt.RegisteredClaims{Subject: "1", ID: "abc"}
    signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
    if err != nil {
        t.Fatalf("sign: %v", err)
    }
    if _, _, err := ParseSessionToken("secret", signed); err != ErrInvalidSession {
        t.Fatalf("want ErrInvalidSession for alg=none, got %v", err)
    }
}

func TestPasswordHashing(t *testing.T) {
    hash, err := HashPassword("hunter2", 4)
    if err != nil {
        t.Fatalf("hash: %v", err)
    }
    if hash == "hunter2" {
        t.Fatal("hash must not equal the plain password")
    }
    if !VerifyPassword(hash, "hunter2") {
        t.Fatal("correct password rejected")
    }
    if VerifyPassword(hash, "hunter3") {
        t.Fatal("wrong password accepted")
    }
}
