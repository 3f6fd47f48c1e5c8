// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	chromastyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/render"
	"github.com/jeranaias/learnlab/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(conv.Summary))
	sb.WriteString("<meta name=\"generator\" content=\"learnlab\">\n")
	fmt.Fprintf(&sb, "<meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n<div class=\"container\">\n", theme)

	if e.options.IncludeMetadata {
		e.renderHeader(&sb, conv)
	}

	sb.WriteString("<main class=\"conversation\">\n")
	block := 0
	for _, msg := range conv.Messages {
		e.renderMessage(&sb, msg, &block)
	}
	sb.WriteString("</main>\n")

	fmt.Fprintf(&sb, "<footer class=\"footer\">Exported from <strong>learnlab</strong> on %s</footer>\n",
		e.options.clock().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("</div>\n")
	sb.WriteString(pageScript)
	sb.WriteString("</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(sb *strings.Builder, conv *storage.StoredConversation) {
	sb.WriteString("<header class=\"header\">\n")
	fmt.Fprintf(sb, "<h1>%s</h1>\n", html.EscapeString(conv.Summary))
	sb.WriteString("<div class=\"metadata\">\n")
	fmt.Fprintf(sb, "<span><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt))
	fmt.Fprintf(sb, "<span><strong>Messages:</strong> %d</span>\n", len(conv.Messages))
	sb.WriteString("<button class=\"theme-toggle\" onclick=\"toggleTheme()\">Theme</button>\n")
	sb.WriteString("</div>\n</header>\n")
}

// renderMessage writes one message. block numbers code blocks across the
// whole page, starting at 1.
func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg storage.StoredMessage, block *int) {
	role := strings.ToLower(msg.Role)
	if role != storage.RoleUser && role != storage.RoleAssistant {
		role = "other"
	}
	fmt.Fprintf(sb, "<div class=\"message %s-message\">\n", role)

	sb.WriteString("<div class=\"message-header\">")
	fmt.Fprintf(sb, "<span class=\"role-label\">%s</span>", html.EscapeString(roleLabel(msg.Role)))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		fmt.Fprintf(sb, "<span class=\"timestamp\">%s</span>", formatShortTimestamp(msg.Timestamp))
	}
	sb.WriteString("</div>\n<div class=\"message-content\">\n")

	for _, seg := range content.Parse(msg.Content) {
		switch seg.Kind {
		case content.Code:
			*block++
			sb.WriteString(e.codeBlock(seg, *block))
		default:
			sb.WriteString(textHTML(seg.Content))
		}
	}

	sb.WriteString("</div>\n</div>\n")
}

// codeBlock renders a code segment through chroma with inline styles, under
// a header holding the language and a copy button.
func (e *HTMLExporter) codeBlock(seg content.Segment, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<div class=\"code-block\" id=\"block-%d\">\n", n)
	fmt.Fprintf(&sb, "<div class=\"code-header\"><span class=\"code-lang\">%s</span>", html.EscapeString(seg.Language))
	fmt.Fprintf(&sb, "<button class=\"copy-btn\" onclick=\"copyBlock(%d)\">Copy</button></div>\n", n)
	sb.WriteString(highlightHTML(seg.Code, seg.Language, e.options.CodeStyle))
	sb.WriteString("</div>\n")
	return sb.String()
}

// highlightHTML returns code as a chroma-highlighted <pre>, or as an
// escaped plain <pre> when highlighting fails.
func highlightHTML(code, language, styleName string) string {
	style := chromastyles.Get(styleName)
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	iterator, err := render.Lexer(language, code).Tokenise(nil, code)
	if err == nil {
		var sb strings.Builder
		if err = formatter.Format(&sb, style, iterator); err == nil {
			return sb.String() + "\n"
		}
	}
	return "<pre><code>" + html.EscapeString(code) + "</code></pre>\n"
}

// textHTML converts prose into paragraphs: blank lines split paragraphs,
// single newlines become <br>, and backtick spans become inline code.
func textHTML(text string) string {
	var sb strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		for i, line := range strings.Split(para, "\n") {
			if i > 0 {
				sb.WriteString("<br>\n")
			}
			for _, span := range content.ParseInline(line) {
				if span.Code {
					fmt.Fprintf(&sb, "<code class=\"inline-code\">%s</code>", html.EscapeString(span.Text))
				} else {
					sb.WriteString(html.EscapeString(span.Text))
				}
			}
		}
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// =============================================================================
// EMBEDDED ASSETS
// =============================================================================

const pageCSS = `<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
:root {
  --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  --font-mono: "SF Mono", "Fira Code", "Source Code Pro", monospace;
}
.dark-theme {
  --bg: #1a1b26; --panel: #24283b; --raised: #414868;
  --text: #c0caf5; --muted: #565f89; --border: #414868;
  --user: #7aa2f7; --tutor: #9ece6a; --accent: #bb9af7;
}
.light-theme {
  --bg: #ffffff; --panel: #f7f8fa; --raised: #e1e4e8;
  --text: #24292e; --muted: #6a737d; --border: #e1e4e8;
  --user: #0366d6; --tutor: #22863a; --accent: #6f42c1;
}
body { font-family: var(--font-sans); line-height: 1.6; color: var(--text); background: var(--bg); padding: 20px; }
.container { max-width: 900px; margin: 0 auto; background: var(--panel); border-radius: 12px; overflow: hidden; }
.header { padding: 28px 32px; background: var(--raised); }
.header h1 { font-size: 26px; margin-bottom: 12px; }
.metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; align-items: center; }
.theme-toggle { margin-left: auto; padding: 4px 12px; border-radius: 6px; border: 1px solid var(--border); background: var(--panel); color: var(--text); cursor: pointer; }
.conversation { padding: 24px 32px; }
.message { margin-bottom: 20px; padding: 16px 20px; border-radius: 8px; border-left: 4px solid var(--accent); background: var(--bg); }
.user-message { border-left-color: var(--user); }
.assistant-message { border-left-color: var(--tutor); }
.message-header { display: flex; justify-content: space-between; margin-bottom: 10px; font-size: 14px; }
.role-label { font-weight: 600; }
.timestamp { color: var(--muted); font-family: var(--font-mono); font-size: 13px; }
.message-content p { margin-bottom: 10px; }
.inline-code { font-family: var(--font-mono); font-size: 14px; padding: 1px 5px; border-radius: 4px; border: 1px solid var(--border); color: var(--accent); }
.code-block { margin: 14px 0; border: 1px solid var(--border); border-radius: 8px; overflow: hidden; }
.code-header { display: flex; justify-content: space-between; align-items: center; padding: 6px 12px; background: var(--raised); font-size: 12px; }
.code-lang { text-transform: uppercase; letter-spacing: 0.5px; font-weight: 600; }
.copy-btn { padding: 2px 10px; border-radius: 4px; border: 1px solid var(--border); background: var(--panel); color: var(--text); cursor: pointer; }
.code-block pre { margin: 0; padding: 14px; overflow-x: auto; font-family: var(--font-mono); font-size: 14px; }
.footer { padding: 16px 32px; text-align: center; font-size: 14px; color: var(--muted); }
@media print { .theme-toggle, .copy-btn { display: none; } .message { page-break-inside: avoid; } }
</style>
`

const pageScript = `<script>
function toggleTheme() {
  const next = document.body.classList.contains('dark-theme') ? 'light' : 'dark';
  document.body.className = next + '-theme';
  localStorage.setItem('theme', next);
}
function copyBlock(n) {
  const block = document.getElementById('block-' + n);
  const btn = block.querySelector('.copy-btn');
  navigator.clipboard.writeText(block.querySelector('pre').innerText).then(function () {
    btn.textContent = 'Copied!';
    setTimeout(function () { btn.textContent = 'Copy'; }, 2000);
  });
}
document.addEventListener('DOMContentLoaded', function () {
  const saved = localStorage.getItem('theme');
  if (saved) { document.body.className = saved + '-theme'; }
});
</script>
`
