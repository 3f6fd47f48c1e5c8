// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/learnlab/internal/content"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// Code renders a code segment as a bordered block. index is the 1-based
// block number shown in the "[n]" copy label; 0 hides the label.
func (r *Renderer) Code(seg content.Segment, index int) string {
	highlighted := r.Highlight(seg.Code, seg.Language)
	lines := strings.Split(highlighted, "\n")

	if r.opts.LineNumbers {
		digits := len(strconv.Itoa(len(lines)))
		num := r.theme.CodeLineNum.Width(digits).Align(lipgloss.Right).MarginRight(1)
		for i, line := range lines {
			lines[i] = num.Render(strconv.Itoa(i+1)) + line
		}
	}

	header := r.theme.CodeLangBadge.Render(seg.Language)
	if index > 0 {
		header += " " + r.theme.CodeCopyLabel.Render(CopyLabel(index))
	}

	return r.theme.CodeBlock.Render(header + "\n" + strings.Join(lines, "\n"))
}

// CopyLabel is the label that names code block n for the copy shortcut.
func CopyLabel(n int) string {
	return "[" + strconv.Itoa(n) + "]"
}

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// Highlight applies syntax highlighting to code for the renderer's color
// profile. It returns code unchanged when colors are off or highlighting fails.
func (r *Renderer) Highlight(code, language string) string {
	formatter := formatterFor(r.opts.Profile)
	if formatter == nil || code == "" {
		return code
	}

	lexer := Lexer(language, code)

	style := chromaStyles.Get(r.opts.Style)
	if style == nil {
		style = chromaStyles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// Lexer picks the chroma lexer for a language name, falling back to content
// analysis and then to plain text.
func Lexer(language, code string) chroma.Lexer {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// formatterFor returns the terminal formatter for a color profile, or nil
// when the profile has no colors.
func formatterFor(profile termenv.Profile) chroma.Formatter {
	var name string
	switch profile {
	case termenv.TrueColor:
		name = "terminal16m"
	case termenv.ANSI256:
		name = "terminal256"
	case termenv.ANSI:
		name = "terminal16"
	default:
		return nil
	}
	return formatters.Get(name)
}
