// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/ui/styles"
	"github.com/jeranaias/learnlab/internal/util"
)

// Placeholder is shown for a message with no content.
const Placeholder = "No content"

// Options configures a Renderer.
type Options struct {
	// Style is the chroma style name. Unknown names fall back to chroma's default.
	Style string
	// LineNumbers prefixes each code line with its number.
	LineNumbers bool
	// Width wraps prose to this many cells; 0 disables wrapping.
	Width int
	// Profile selects the highlighting formatter. Ascii turns highlighting off.
	Profile termenv.Profile
}

// Renderer renders parsed messages for the terminal. It is safe for
// concurrent use once constructed.
type Renderer struct {
	opts  Options
	theme *styles.Theme
	md    *glamour.TermRenderer
}

// New creates a renderer. A nil theme uses the auto-detected one.
func New(opts Options, theme *styles.Theme) *Renderer {
	if theme == nil {
		theme = styles.NewTheme("auto")
	}
	if opts.Style == "" {
		opts.Style = "monokai"
	}

	r := &Renderer{opts: opts, theme: theme}
	r.md = newMarkdown(opts, theme)
	return r
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Message parses text and renders every segment in order. Code blocks are
// numbered from 1 in the order they appear.
func (r *Renderer) Message(text string) string {
	return r.Segments(content.Parse(text))
}

// Segments renders already parsed segments.
func (r *Renderer) Segments(segs []content.Segment) string {
	if len(segs) == 0 {
		return r.theme.Placeholder.Render(Placeholder)
	}

	parts := make([]string, 0, len(segs))
	n := 0
	for _, seg := range segs {
		if seg.IsCode() {
			n++
			parts = append(parts, r.Code(seg, n))
			continue
		}
		parts = append(parts, r.Text(seg.Content))
	}
	return strings.Join(parts, "\n")
}

// Text renders a prose segment: newlines are kept, lines are wrapped to
// the configured width and inline code spans are styled.
func (r *Renderer) Text(text string) string {
	lines := strings.Split(util.Wrap(text, r.opts.Width), "\n")
	for i, line := range lines {
		lines[i] = r.inline(line)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) inline(line string) string {
	spans := content.ParseInline(line)
	if len(spans) == 1 && !spans[0].Code {
		return line
	}

	var sb strings.Builder
	for _, span := range spans {
		if span.Code {
			sb.WriteString(r.theme.InlineCode.Render(span.Text))
		} else {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

// Markdown renders a Markdown document. It returns md unchanged when the
// Markdown renderer could not be built or fails on the input.
func (r *Renderer) Markdown(md string) string {
	if r.md == nil {
		return md
	}
	out, err := r.md.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func newMarkdown(opts Options, theme *styles.Theme) *glamour.TermRenderer {
	style := "light"
	switch {
	case opts.Profile == termenv.Ascii:
		style = "notty"
	case theme.IsDark:
		style = "dark"
	}

	wrap := opts.Width
	if wrap <= 0 {
		wrap = 80
	}

	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return md
}
