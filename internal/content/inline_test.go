// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseInline(t *testing.T) {
	tests := []struct {
		input string
		want  []InlineSpan
	}{
		{"", nil},
		{"no code", []InlineSpan{{Text: "no code"}}},
		{"use `fmt.Println` here", []InlineSpan{
			{Text: "use "},
			{Code: true, Text: "fmt.Println"},
			{Text: " here"},
		}},
		{"`x`", []InlineSpan{{Code: true, Text: "x"}}},
		{"`a` and `b`", []InlineSpan{
			{Code: true, Text: "a"},
			{Text: " and "},
			{Code: true, Text: "b"},
		}},
		{"a `b c", []InlineSpan{{Text: "a `b c"}}},
		{"a `` b", []InlineSpan{{Text: "a `` b"}}},
		{"`x` then `unclosed", []InlineSpan{
			{Code: true, Text: "x"},
			{Text: " then `unclosed"},
		}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseInline(tt.input)); diff != "" {
			t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}
