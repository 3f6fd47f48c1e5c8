// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth keeps the signed-in session: the backend token, the user it
// belongs to and when it was issued.
//
// A session is passed explicitly to whatever needs it. It is persisted
// sealed on disk by Store and re-checked periodically by Guard.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/learnlab/internal/api"
)

var (
	// ErrNoSession means nobody is signed in.
	ErrNoSession = errors.New("not signed in")

	// ErrTokenExpired means the token's exp claim has passed.
	ErrTokenExpired = errors.New("session token expired")

	// ErrDayEnded means the local day the session started on is over.
	ErrDayEnded = errors.New("session ended at midnight")

	// ErrMalformedToken means the token could not be decoded as a JWT.
	ErrMalformedToken = errors.New("session token is malformed")
)

// Session is a signed-in user.
type Session struct {
	Token    string    `json:"token"`
	User     api.User  `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// New creates a session from a sign-in response, issued at now.
func New(resp *api.AuthResponse, now time.Time) *Session {
	return &Session{Token: resp.Token, User: resp.User, IssuedAt: now}
}

// Policy controls which checks a session must pass.
type Policy struct {
	// ExpireAtMidnight ends a session when the local day it was issued on ends.
	ExpireAtMidnight bool
}

// DefaultPolicy enforces both the token expiry and the end-of-day rule.
var DefaultPolicy = Policy{ExpireAtMidnight: true}

// Valid reports whether the session can still be used at now under
// DefaultPolicy.
func (s *Session) Valid(now time.Time) bool {
	return s.Check(now, DefaultPolicy) == nil
}

// Check returns nil when the session is usable at now, or the reason it
// is not. The token is decoded without verifying its signature; the backend
// verifies it on every request.
func (s *Session) Check(now time.Time, p Policy) error {
	if s == nil || s.Token == "" {
		return ErrNoSession
	}

	exp, err := ExpiresAt(s.Token)
	if err != nil {
		return err
	}
	if !exp.IsZero() && !now.Before(exp) {
		return ErrTokenExpired
	}

	if p.ExpireAtMidnight && !s.IssuedAt.IsZero() && !now.Before(EndOfDay(s.IssuedAt)) {
		return ErrDayEnded
	}
	return nil
}

// ExpiresAt returns the exp claim of a JWT, or the zero time when the
// token has none.
func ExpiresAt(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// EndOfDay returns the local midnight that ends the day containing t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
