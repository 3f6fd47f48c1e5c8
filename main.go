// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// learnlab is a terminal client for the learnlab AI tutor: chat with
// highlighted, copyable code blocks, practice problems with evaluation
// reports, and local conversation history.
package main

import (
	"os"

	"github.com/jeranaias/learnlab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
