// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import "strings"

// PlainText is the language reported when nothing else matches.
const PlainText = "plaintext"

// languageRule is one substring check of the inference heuristic.
type languageRule struct {
	language string
	match    func(code string) bool
}

func containsAll(subs ...string) func(string) bool {
	return func(code string) bool {
		for _, s := range subs {
			if !strings.Contains(code, s) {
				return false
			}
		}
		return true
	}
}

// languageRules are evaluated in order and the first match wins. The order is
// load-bearing: "function f() { def = x => y: }" is javascript, not python.
var languageRules = []languageRule{
	{"javascript", containsAll("function", "=>")},
	{"python", containsAll("def ", ":")},
	{"java", containsAll("public class")},
	{"php", containsAll("<?php")},
	{"go", containsAll("package main")},
	{"rust", containsAll("fn ")},
	{"csharp", containsAll("using System;")},
}

// InferLanguage guesses the language of an untagged code block.
//
// This is plain substring matching with no tokenization, so a comment or a
// string literal can trip a rule: any snippet containing "fn " is rust unless
// an earlier rule matched.
func InferLanguage(code string) string {
	for _, rule := range languageRules {
		if rule.match(code) {
			return rule.language
		}
	}
	return PlainText
}

// languageAliases maps short or alternate fence tags to the names used by
// InferLanguage and the highlighter.
var languageAliases = map[string]string{
	"py":         "python",
	"py3":        "python",
	"python3":    "python",
	"js":         "javascript",
	"node":       "javascript",
	"jsx":        "javascript",
	"ts":         "typescript",
	"tsx":        "typescript",
	"golang":     "go",
	"rs":         "rust",
	"cs":         "csharp",
	"c#":         "csharp",
	"c++":        "cpp",
	"cc":         "cpp",
	"hpp":        "cpp",
	"h":          "c",
	"sh":         "bash",
	"shell":      "bash",
	"zsh":        "bash",
	"console":    "bash",
	"rb":         "ruby",
	"kt":         "kotlin",
	"yml":        "yaml",
	"md":         "markdown",
	"txt":        "plaintext",
	"text":       "plaintext",
	"plain":      "plaintext",
	"ps1":        "powershell",
	"pwsh":       "powershell",
	"dockerfile": "docker",
}

// NormalizeLanguage lowercases a fence tag and resolves common aliases.
// Unknown tags are returned lowercased; an empty tag stays empty.
func NormalizeLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if lang, ok := languageAliases[tag]; ok {
		return lang
	}
	return tag
}
