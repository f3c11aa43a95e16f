// Package auth issues and verifies the HMAC tokens that authorize
// moderator websocket streams, and checks moderator keys against their
// bcrypt hash.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTokenExpiry is how long an issued token stays valid.
const DefaultTokenExpiry = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims are the payload carried in a signed token.
type Claims struct {
	GameID  int64  `json:"gameId"`
	Subject string `json:"sub"`
	Exp     int64  `json:"exp"`
}

// GenerateToken signs claims as base64url(payload).base64url(signature).
func GenerateToken(secret []byte, gameID int64, subject string, expiry time.Duration) (string, error) {
	claims := Claims{
		GameID:  gameID,
		Subject: subject,
		Exp:     time.Now().Add(expiry).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	sig := sign(secret, encoded)
	return encoded + "." + sig, nil
}

// VerifyToken checks the signature and expiry and returns the claims.
func VerifyToken(secret []byte, token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}
	expected := sign(secret, parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() > claims.Exp {
		return nil, ErrExpiredToken
	}
	return &claims, nil
}

func sign(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
