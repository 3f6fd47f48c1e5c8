// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the tutor chat screen of the learnlab TUI.

Replies are parsed into text and code segments and rendered with
syntax-highlighted, numbered code blocks. Pressing ctrl+y followed by a
digit copies that code block of the latest reply to the clipboard.

Every exchange is written to the local history store when one is
configured, so conversations can be listed and exported later.

# Usage

	m := chat.New(chat.Deps{
		Theme:         theme,
		RenderOptions: render.Options{Width: 100},
		Tutor:         client,
		History:       store,
	})

The model is embedded by the application model, which forwards window
sizes and keys to it.
*/
package chat
