// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the learnlab terminal application. It hosts the chat and
// problems screens under a shared header and replaces them with the
// session screen when the sign-in ends.
package ui
