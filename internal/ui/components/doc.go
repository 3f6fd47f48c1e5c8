// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds the pieces shared by the learnlab screens: the
// tabbed header and the session-ended screen, plus the message screens send
// when the backend rejects the session.
package components
