// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fence is the code block delimiter.
const Fence = "```"

// fencePattern matches a closed fence pair. Group 1 is the tag written right
// after the opening fence, group 2 the body. The body match is lazy, so a
// block ends at the first closing fence.
var fencePattern = regexp.MustCompile("(?s)```([0-9A-Za-z_+#.\\-]*)(.*?)```")

// Parse splits text into an ordered slice of text and code segments.
//
// Only closed fence pairs become code segments; an opening fence with no
// closing fence stays in the surrounding text. Text runs are trimmed and
// whitespace-only runs are dropped. Spans stay contiguous: a dropped run is
// folded into the span of the segment that follows it, and trailing
// whitespace is folded into the last segment.
//
// An empty or whitespace-only input yields nil.
func Parse(text string) []Segment {
	if text == "" {
		return nil
	}

	var segs []Segment
	prev := 0    // end of the last fence pair
	pending := 0 // first byte not yet owned by a segment

	for _, m := range fencePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]

		if gap := strings.TrimSpace(text[prev:start]); gap != "" {
			segs = append(segs, Segment{
				Kind:    Text,
				Content: gap,
				Start:   pending,
				End:     start,
			})
			pending = start
		}

		tag, body := splitTag(text[m[2]:m[3]], text[m[4]:m[5]])
		code := strings.TrimSpace(body)

		lang := NormalizeLanguage(tag)
		if lang == "" {
			lang = InferLanguage(code)
		}

		segs = append(segs, Segment{
			Kind:     Code,
			Language: lang,
			Code:     code,
			Tag:      tag,
			Start:    pending,
			End:      end,
		})
		prev, pending = end, end
	}

	if tail := strings.TrimSpace(text[prev:]); tail != "" {
		segs = append(segs, Segment{
			Kind:    Text,
			Content: tail,
			Start:   pending,
			End:     len(text),
		})
	} else if len(segs) > 0 {
		segs[len(segs)-1].End = len(text)
	}

	return segs
}

// splitTag decides whether the word captured after an opening fence is a
// language tag. It is only a tag when whitespace follows it, so "```x=1```"
// is the code "x=1" rather than tag "x" with body "=1", and "```ls```" is
// the code "ls".
func splitTag(tag, body string) (string, string) {
	if tag == "" {
		return tag, body
	}
	if body == "" {
		return "", tag
	}
	r, _ := utf8.DecodeRuneInString(body)
	if unicode.IsSpace(r) {
		return tag, body
	}
	return "", tag + body
}

// Join re-assembles segments into fenced text. Code segments are wrapped in
// fences carrying their original tag. Parsing the result yields the same
// segments, up to whitespace at segment boundaries.
func Join(segs []Segment) string {
	var sb strings.Builder
	for i, seg := range segs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch seg.Kind {
		case Code:
			sb.WriteString(Fence)
			sb.WriteString(seg.Tag)
			sb.WriteByte('\n')
			if seg.Code != "" {
				sb.WriteString(seg.Code)
				sb.WriteByte('\n')
			}
			sb.WriteString(Fence)
		default:
			sb.WriteString(seg.Content)
		}
	}
	return sb.String()
}

// Source returns the slice of text covered by segs, which were produced by
// Parse(text). For any input holding a non-whitespace byte this is text itself.
func Source(text string, segs []Segment) string {
	if len(segs) == 0 {
		return ""
	}
	start, end := segs[0].Start, segs[len(segs)-1].End
	if start < 0 || end > len(text) || start > end {
		return ""
	}
	return text[start:end]
}

// CodeBlocks returns the code segments of segs in order.
func CodeBlocks(segs []Segment) []Segment {
	var blocks []Segment
	for _, seg := range segs {
		if seg.Kind == Code {
			blocks = append(blocks, seg)
		}
	}
	return blocks
}

// HasCode reports whether text holds at least one closed fence pair.
func HasCode(text string) bool {
	return fencePattern.MatchString(text)
}
