// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps tutor conversations on the local machine.
//
// Conversations live in a SQLite database (pure Go driver), by default
// ~/.learnlab/history.db. Each conversation and message has a UUID.
//
// # Usage
//
//	store, err := storage.Open(path)
//	defer store.Close()
//
//	id, err := store.Save(ctx, conv)
//	metas, err := store.List(ctx)        // most recent first
//	conv, err := store.Load(ctx, metas[0].ID)
//	hits, err := store.Search(ctx, "recursion")
//
// When MaxConversations is set, saving prunes the least recently updated
// conversations beyond the limit.
package storage
