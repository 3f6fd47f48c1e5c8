// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package render turns chat messages and learning material into terminal output.

A message is split into segments by the content parser. Text segments are
wrapped to the configured width and have `inline code` styled. Code segments
are syntax highlighted with chroma and boxed with a language badge and a
"[n]" label that names the block for the copy shortcut:

	r := render.New(render.Options{Style: "monokai", Width: 80}, theme)
	fmt.Println(r.Message(reply))

Topic and problem descriptions are Markdown and go through glamour instead.
Evaluation scores are drawn as a progress bar by Accuracy.
*/
package render
