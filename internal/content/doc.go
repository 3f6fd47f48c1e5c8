// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content splits chat messages and evaluator feedback into typed
// segments for rendering.
//
// A message is a mix of prose and fenced code blocks. Parse scans it once,
// left to right, and returns an ordered slice of Segment values: text runs and
// code runs. Code runs carry a language, either the tag written after the
// opening fence or a guess from InferLanguage.
//
// # Guarantees
//
//   - Parse never fails. Malformed input (an opening fence with no closing
//     fence, empty tags, empty bodies) degrades to text.
//   - Segments appear in source order.
//   - Every segment records the byte span it was cut from. Spans are
//     contiguous, so Source reproduces the original input exactly.
//   - Parse is a pure function and is safe to call from any goroutine.
//
// # Usage
//
//	for _, seg := range content.Parse(msg) {
//	    switch seg.Kind {
//	    case content.Text:
//	        renderProse(seg.Content)
//	    case content.Code:
//	        renderCode(seg.Language, seg.Code)
//	    }
//	}
package content
