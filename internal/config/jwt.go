package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenMismatch = errors.New("token was issued for another session")

// Tokens signs the bearer tokens handed out with new sessions. A token is
// bound to exactly one session id.
type Tokens struct {
	secret        []byte
	signingMethod jwt.SigningMethod
	tokenLifetime time.Duration
}

type SessionClaims struct {
	SessionId int64 `json:"session_id"`
	jwt.RegisteredClaims
}

func NewTokens() (*Tokens, error) {
	secret, err := secret("SESSION_SECRET")
	if err != nil {
		return nil, err
	}
	if len(secret) < 16 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 16 bytes long")
	}
	return NewTokensWithSecret([]byte(secret), time.Hour*24*7), nil
}

func NewTokensWithSecret(secret []byte, lifetime time.Duration) *Tokens {
	return &Tokens{
		secret:        secret,
		signingMethod: jwt.SigningMethodHS256,
		tokenLifetime: lifetime,
	}
}

func (t *Tokens) Sign(sessionId int64) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionId: sessionId,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(sessionId, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{t.signingMethod.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}

// Verify checks that tokenString grants access to sessionId.
func (t *Tokens) Verify(tokenString string, sessionId int64) error {
	claims, err := t.Parse(tokenString)
	if err != nil {
		return err
	}
	if claims.SessionId != sessionId {
		return ErrTokenMismatch
	}
	return nil
}
