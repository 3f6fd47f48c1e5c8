// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// Truncate cuts s to at most width display cells, replacing the tail with
// "..." when it has to cut and there is room for it.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= len(ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// Wrap hard-wraps s so that no line is wider than width cells. Existing
// newlines and leading indentation are kept; lines break at the last space
// that fits, or mid-word when a single word is too wide.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	var out []string
	for runewidth.StringWidth(line) > width {
		cut := runewidth.Truncate(line, width, "")
		if i := strings.LastIndexByte(cut, ' '); i > 0 && strings.TrimSpace(cut[:i]) != "" {
			cut = cut[:i]
		}
		if cut == "" {
			// A single rune wider than width; emit it alone.
			_, size := utf8.DecodeRuneInString(line)
			cut = line[:size]
		}
		out = append(out, strings.TrimRight(cut, " "))
		line = strings.TrimLeft(line[len(cut):], " ")
	}
	return append(out, line)
}

// Width returns the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Preview flattens s onto one line and truncates it to width cells.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return Truncate(s, width)
}
