// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package arena provides the practice problems screen: browse problems by
// difficulty, write a solution, submit it to the evaluator and read the
// report.
package arena
