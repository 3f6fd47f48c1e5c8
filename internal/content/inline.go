// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import "strings"

// InlineSpan is a piece of a text segment, either prose or `inline code`.
type InlineSpan struct {
	Code bool
	Text string
}

// ParseInline splits prose on single backticks. Backticks are dropped from
// code spans. An unclosed backtick and everything after it is kept as
// literal prose, and an empty pair (``) is literal too.
func ParseInline(text string) []InlineSpan {
	var spans []InlineSpan
	var prose strings.Builder

	flush := func() {
		if prose.Len() > 0 {
			spans = append(spans, InlineSpan{Text: prose.String()})
			prose.Reset()
		}
	}

	for {
		open := strings.IndexByte(text, '`')
		if open < 0 {
			prose.WriteString(text)
			break
		}
		closing := strings.IndexByte(text[open+1:], '`')
		if closing < 0 {
			prose.WriteString(text)
			break
		}
		closing += open + 1

		prose.WriteString(text[:open])
		if closing == open+1 {
			prose.WriteString("``")
		} else {
			flush()
			spans = append(spans, InlineSpan{Code: true, Text: text[open+1 : closing]})
		}
		text = text[closing+1:]
	}

	flush()
	return spans
}
