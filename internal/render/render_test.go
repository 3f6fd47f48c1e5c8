// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/ui/styles"
)

func plainRenderer(opts Options) *Renderer {
	opts.Profile = termenv.Ascii
	return New(opts, styles.NewTheme("dark"))
}

func TestMessage_EmptyShowsPlaceholder(t *testing.T) {
	r := plainRenderer(Options{})
	assert.Contains(t, r.Message(""), Placeholder)
	assert.Contains(t, r.Message("  \n "), Placeholder)
}

func TestMessage_NumbersCodeBlocks(t *testing.T) {
	r := plainRenderer(Options{})
	out := r.Message("First:\n```py\nprint(1)\n```\nthen\n```go\npackage main\n```")

	assert.Contains(t, out, "First:")
	assert.Contains(t, out, "then")
	assert.Contains(t, out, "python [1]")
	assert.Contains(t, out, "go [2]")
	assert.Contains(t, out, "print(1)")
	assert.Contains(t, out, "package main")
	assert.Less(t, strings.Index(out, "[1]"), strings.Index(out, "[2]"))
}

func TestText_WrapsAndStylesInlineCode(t *testing.T) {
	r := plainRenderer(Options{Width: 16})
	out := r.Text("call `fmt.Println` to print a line")

	assert.NotContains(t, out, "`")
	assert.Contains(t, out, "fmt.Println")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), 16, "line %q", line)
	}
}

func TestText_KeepsNewlines(t *testing.T) {
	r := plainRenderer(Options{})
	assert.Equal(t, "one\n\ntwo", r.Text("one\n\ntwo"))
}

func TestCode_LineNumbers(t *testing.T) {
	r := plainRenderer(Options{LineNumbers: true})
	out := r.Code(content.CodeSegment("plaintext", "alpha\nbeta"), 0)

	assert.Contains(t, out, "1 alpha")
	assert.Contains(t, out, "2 beta")
	assert.NotContains(t, out, "[")
}

func TestHighlight(t *testing.T) {
	plain := plainRenderer(Options{})
	assert.Equal(t, "x := 1", plain.Highlight("x := 1", "go"))

	color := New(Options{Profile: termenv.TrueColor}, styles.NewTheme("dark"))
	out := color.Highlight("package main\nfunc main() {}", "go")
	assert.Contains(t, out, "\x1b[")
	assert.Empty(t, color.Highlight("", "go"))

	unknownStyle := New(Options{Profile: termenv.ANSI256, Style: "no-such-style"}, styles.NewTheme("dark"))
	assert.Contains(t, unknownStyle.Highlight("def f(): pass", "python"), "\x1b[")
}

func TestLexer(t *testing.T) {
	assert.Equal(t, "Python", Lexer("python", "").Config().Name)
	assert.Equal(t, "Go", Lexer("go", "").Config().Name)
	require.NotNil(t, Lexer("plaintext", "hello"))
	require.NotNil(t, Lexer("no-such-language", "hello"))
}

func TestCopyLabel(t *testing.T) {
	assert.Equal(t, "[3]", CopyLabel(3))
}

func TestMarkdown(t *testing.T) {
	r := plainRenderer(Options{Width: 60})
	out := r.Markdown("# Binary Search\n\nHalve the range each **step**.")

	assert.Contains(t, out, "Binary Search")
	assert.Contains(t, out, "Halve the range")
}

func TestAccuracy(t *testing.T) {
	r := plainRenderer(Options{})

	assert.Contains(t, r.Accuracy(85, 20), "85%")
	assert.Contains(t, r.Accuracy(140, 20), "100%")
	assert.Contains(t, r.Accuracy(-5, 20), "0%")
	assert.NotEmpty(t, r.Accuracy(50, 2))
}
