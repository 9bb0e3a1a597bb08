package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload carried by a signed bearer token.
type TokenClaims struct {
	Username  string `json:"username"`
	AccountID int64  `json:"account_id"`
	jwt.RegisteredClaims
}

// RevokedToken is a blacklist entry keyed by the token's jti claim.
// Rows become garbage once the token would have expired anyway and are
// purged by the background cleanup task.
type RevokedToken struct {
	ID        string
	JTI       string
	AccountID int64
	ExpiresAt time.Time
	Reason    string
	RevokedAt time.Time
}
