// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultCheckInterval is how often a running client re-checks its session.
const DefaultCheckInterval = time.Minute

// Guard ends a session once it stops being valid: the stored copy is
// removed and the expiry callback runs once.
type Guard struct {
	session  *Session
	store    *Store
	policy   Policy
	onExpire func(error)
	logger   *zap.Logger
	now      func() time.Time
}

// NewGuard creates a guard for sess. store may be nil when the session is
// not persisted; onExpire may be nil.
func NewGuard(sess *Session, store *Store, policy Policy, onExpire func(error), logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		session:  sess,
		store:    store,
		policy:   policy,
		onExpire: onExpire,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the clock used by Check.
func (g *Guard) SetClock(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Check validates the session now. An invalid session is cleared and
// reported to the callback; the reason is returned.
func (g *Guard) Check() error {
	err := g.session.Check(g.now(), g.policy)
	if err == nil {
		return nil
	}

	g.logger.Info("session ended", zap.Error(err))
	if g.store != nil {
		if clearErr := g.store.Clear(); clearErr != nil {
			g.logger.Warn("failed to clear stored session", zap.Error(clearErr))
		}
	}
	if g.onExpire != nil {
		g.onExpire(err)
	}
	return err
}

// Watch checks the session immediately and then every interval, until the
// session ends or ctx is done. It returns the reason the session ended, or
// nil when ctx finished first.
func (g *Guard) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if err := g.Check(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := g.Check(); err != nil {
				return err
			}
		}
	}
}
