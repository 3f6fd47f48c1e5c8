// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for learnlab.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend URL, timeouts, retries and client-side rate limit
//   - RenderConfig: Code block highlighting and wrapping
//   - SessionConfig: Token expiry checks
//   - HistoryConfig: Local chat history database
//   - Watcher: Hot reload of the config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LEARNLAB_*)
//   - ~/.learnlab/config.toml
//   - ~/.learnlab/config.json
//   - Built-in defaults
//
// The base directory can be moved with LEARNLAB_HOME.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.API.Timeout()))
package config
