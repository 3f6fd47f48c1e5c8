// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the learnlab command line with cobra.
//
// Every command receives an *App carrying the streams, configuration and
// logger, so commands can be exercised in tests against a fake backend
// and a temporary LEARNLAB_HOME.
package cli
