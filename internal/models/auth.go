package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims carried by an access token
type TokenClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Identity is the minimal result of a successful credential verification.
// It is constructed per request and never persisted.
type Identity struct {
	UserID string
}
