// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the learnlab terminal client.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The "ui.theme" setting can pin either variant.

# Color System (colors.go)

  - Purple - Primary accent, assistant messages, selections
  - Cyan - Brand color, prompts, user highlights
  - Emerald, Amber, Rose - Success, caution and error states

Problem difficulty and evaluation accuracy map onto the semantic colors:

	DifficultyColor("easy")   // Emerald
	AccuracyColor(72)         // Amber (60 <= score < 80)

# Theme System (theme.go)

	theme := styles.NewTheme("auto")
	fmt.Println(theme.Title.Render("Problems"))
*/
package styles
