// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/learnlab/internal/ui/styles"
)

// Accuracy renders an evaluation score (0-100) as a labelled progress bar
// width cells wide. Scores outside the range are clamped.
func (r *Renderer) Accuracy(score float64, width int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if width < 10 {
		width = 10
	}

	color := styles.AccuracyColor(score)
	hex := color.Light
	if r.theme.IsDark {
		hex = color.Dark
	}

	bar := progress.New(
		progress.WithSolidFill(hex),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	label := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(fmt.Sprintf("%.0f%%", score))
	return bar.ViewAs(score/100) + " " + label
}
