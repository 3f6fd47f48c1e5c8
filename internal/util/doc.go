// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the learnlab packages.
//
// # Key Functions
//
// Display width (go-runewidth aware, so CJK and emoji count as two cells):
//   - Truncate: cut a string to a display width with an ellipsis
//   - Wrap: hard-wrap prose to a display width, keeping existing newlines
//   - Preview: one-line summary of a message for lists
//
// Files:
//   - AtomicWriteFile: write-to-temp, fsync, rename
package util
