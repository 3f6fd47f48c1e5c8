// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ignoreSpans compares segments by payload only.
var ignoreSpans = cmpopts.IgnoreFields(Segment{}, "Start", "End", "Tag")

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: " \n\t\n ",
			want:  nil,
		},
		{
			name:  "prose only",
			input: "  just some words\n on two lines  ",
			want:  []Segment{TextSegment("just some words\n on two lines")},
		},
		{
			name:  "unterminated fence stays text",
			input: "before ```js\nconsole.log(1)",
			want:  []Segment{TextSegment("before ```js\nconsole.log(1)")},
		},
		{
			name:  "explicit tag wins over inference",
			input: "```java\npublic class X {}\n```",
			want:  []Segment{CodeSegment("java", "public class X {}")},
		},
		{
			name:  "inferred rust",
			input: "```\nfn main() {}\n```",
			want:  []Segment{CodeSegment("rust", "fn main() {}")},
		},
		{
			name:  "inferred javascript",
			input: "```\nfunction f() { return () => 1; }\n```",
			want:  []Segment{CodeSegment("javascript", "function f() { return () => 1; }")},
		},
		{
			name:  "inferred plaintext",
			input: "```\n42\n```",
			want:  []Segment{CodeSegment("plaintext", "42")},
		},
		{
			name:  "multiple blocks",
			input: "a\n```py\nx=1\n```\nb\n```go\npackage main\n```\nc",
			want: []Segment{
				TextSegment("a"),
				CodeSegment("python", "x=1"),
				TextSegment("b"),
				CodeSegment("go", "package main"),
				TextSegment("c"),
			},
		},
		{
			name:  "adjacent blocks drop the whitespace between them",
			input: "```go\npackage main\n```\n\n```\ndef f(): pass\n```",
			want: []Segment{
				CodeSegment("go", "package main"),
				CodeSegment("python", "def f(): pass"),
			},
		},
		{
			name:  "empty body",
			input: "``````",
			want:  []Segment{CodeSegment("plaintext", "")},
		},
		{
			name:  "word glued to code is not a tag",
			input: "run ```x=1``` now",
			want: []Segment{
				TextSegment("run"),
				CodeSegment("plaintext", "x=1"),
				TextSegment("now"),
			},
		},
		{
			name:  "tag is normalized",
			input: "```Golang\npackage main\n```",
			want:  []Segment{CodeSegment("go", "package main")},
		},
		{
			name:  "crlf line endings",
			input: "a\r\n```go\r\npackage main\r\n```\r\nb",
			want: []Segment{
				TextSegment("a"),
				CodeSegment("go", "package main"),
				TextSegment("b"),
			},
		},
		{
			name:  "first closing fence ends the block",
			input: "```\nfn a() {}\n``` mid ```\nfn b() {}\n``` ```",
			want: []Segment{
				CodeSegment("rust", "fn a() {}"),
				TextSegment("mid"),
				CodeSegment("rust", "fn b() {}"),
				TextSegment("```"),
			},
		},
		{
			name:  "unicode prose",
			input: "héllo ```py\nprint('ü')\n``` ✓",
			want: []Segment{
				TextSegment("héllo"),
				CodeSegment("python", "print('ü')"),
				TextSegment("✓"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if diff := cmp.Diff(tt.want, got, ignoreSpans); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParse_RecordsTag(t *testing.T) {
	segs := Parse("```py\nx = 1\n```\n```\nx = 2\n```")
	require.Len(t, segs, 2)
	assert.Equal(t, "py", segs[0].Tag)
	assert.Equal(t, "python", segs[0].Language)
	assert.Empty(t, segs[1].Tag)
	assert.Equal(t, PlainText, segs[1].Language)
}

func TestParse_SpansCoverInput(t *testing.T) {
	inputs := []string{
		"a\n```py\nx=1\n```\nb\n```go\npackage main\n```\nc",
		"\n\n```\nfn main() {}\n```\n\n",
		"  lead\n```js\nfunction f() { return () => 1 }\n```   \n\n  ```\n42\n```  trail  ",
		"before ```js\nconsole.log(1)",
		"``````",
		"x ```a``` y ```b``` z",
	}

	for _, input := range inputs {
		segs := Parse(input)
		require.NotEmpty(t, segs, "input %q", input)

		assert.Equal(t, 0, segs[0].Start, "input %q", input)
		for i := 1; i < len(segs); i++ {
			assert.Equal(t, segs[i-1].End, segs[i].Start, "gap before segment %d of %q", i, input)
		}
		assert.Equal(t, len(input), segs[len(segs)-1].End, "input %q", input)
		assert.Equal(t, input, Source(input, segs))
	}
}

func TestParse_SegmentSourceHoldsBody(t *testing.T) {
	input := "intro\n```go\npackage main\n```\noutro"
	for _, seg := range Parse(input) {
		src := input[seg.Start:seg.End]
		assert.Contains(t, src, seg.Body())
		if seg.IsCode() {
			assert.Equal(t, 2, strings.Count(src, Fence))
		}
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	input := "```\nfn a() {}\n```\ntext\n```\npackage main\n```\nmore\n```\n<?php echo 1;\n```"
	blocks := CodeBlocks(Parse(input))
	require.Len(t, blocks, 3)

	var langs []string
	for _, b := range blocks {
		langs = append(langs, b.Language)
	}
	assert.Equal(t, []string{"rust", "go", "php"}, langs)

	for i := 1; i < len(blocks); i++ {
		assert.Less(t, blocks[i-1].Start, blocks[i].Start)
	}
}

func TestJoin_RoundTrip(t *testing.T) {
	inputs := []string{
		"a\n```py\nx=1\n```\nb\n```go\npackage main\n```\nc",
		"```java\npublic class X {}\n```",
		"```\n\n```",
		"only prose here",
		"  padded  \n\n```\nfn main() {}\n```\n\n  tail  ",
	}

	for _, input := range inputs {
		first := Parse(input)
		second := Parse(Join(first))
		if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Segment{}, "Start", "End")); diff != "" {
			t.Errorf("round trip of %q changed segments (-first +second):\n%s", input, diff)
		}
	}
}

func TestJoin_ReinsertsFences(t *testing.T) {
	segs := Parse("a\n```py\nx=1\n```\nb")
	assert.Equal(t, "a\n```py\nx=1\n```\nb", Join(segs))
	assert.Empty(t, Join(nil))
}

func TestSource_Empty(t *testing.T) {
	assert.Empty(t, Source("", nil))
	assert.Empty(t, Source("abc", []Segment{{Start: 2, End: 9}}))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode("x ```go\npackage main\n``` y"))
	assert.False(t, HasCode("x ```go\npackage main"))
	assert.False(t, HasCode(""))
}

func TestKind_JSON(t *testing.T) {
	data, err := json.Marshal(CodeSegment("go", "package main"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"code"`)

	var seg Segment
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"text","content":"hi"}`), &seg))
	assert.Equal(t, TextSegment("hi"), seg)

	assert.Error(t, json.Unmarshal([]byte(`{"kind":"image"}`), &seg))
	assert.Equal(t, "kind(7)", Kind(7).String())
}
