// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved tutor conversations to shareable files.
//
// # Supported Formats
//
//   - markdown: fenced code blocks carry their detected language
//   - json: the stored conversation, complete
//   - yaml: the stored conversation, complete
//   - html: standalone page with highlighted code blocks and copy buttons
//
// # Usage
//
//	exporter, err := export.New("html", export.DefaultOptions())
//	path, err := export.ToFile(conv, exporter, opts)
package export
