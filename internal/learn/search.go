// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package learn filters the topic and problem catalogues fetched from the
// platform.
package learn

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/learnlab/internal/api"
)

// Fold returns s with case and diacritics removed, so that "Árbol" and
// "arbol" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// terms splits a query into folded words.
func terms(query string) []string {
	return strings.Fields(Fold(query))
}

func matchAll(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

// Search returns the topics whose title or description contains every word
// of query, ordered by title. An empty query returns all topics.
func Search(topics []api.Topic, query string) []api.Topic {
	words := terms(query)

	out := make([]api.Topic, 0, len(topics))
	for _, t := range topics {
		if matchAll(Fold(t.Title+" "+t.Description), words) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Fold(out[i].Title) < Fold(out[j].Title)
	})
	return out
}

// difficultyRank orders the platform's difficulty labels.
var difficultyRank = map[string]int{
	"easy":   0,
	"medium": 1,
	"hard":   2,
}

// FilterProblems returns the problems matching difficulty (any when empty)
// and every word of query, easiest first and then by title.
func FilterProblems(problems []api.Problem, difficulty, query string) []api.Problem {
	words := terms(query)
	difficulty = Fold(strings.TrimSpace(difficulty))

	out := make([]api.Problem, 0, len(problems))
	for _, p := range problems {
		if difficulty != "" && Fold(p.Difficulty) != difficulty {
			continue
		}
		if matchAll(Fold(strings.Join([]string{p.Title, p.Description, p.Category}, " ")), words) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Difficulty), rank(out[j].Difficulty)
		if ri != rj {
			return ri < rj
		}
		return Fold(out[i].Title) < Fold(out[j].Title)
	})
	return out
}

// rank sorts unknown difficulties after the known ones.
func rank(difficulty string) int {
	if r, ok := difficultyRank[Fold(difficulty)]; ok {
		return r
	}
	return len(difficultyRank)
}

// FindProblem looks a problem up by ID, or by 1-based position in problems
// when ref is a number.
func FindProblem(problems []api.Problem, ref string) (api.Problem, bool) {
	for _, p := range problems {
		if p.ID == ref {
			return p, true
		}
	}
	n := 0
	for _, r := range ref {
		if r < '0' || r > '9' {
			return api.Problem{}, false
		}
		n = n*10 + int(r-'0')
	}
	if ref == "" || n < 1 || n > len(problems) {
		return api.Problem{}, false
	}
	return problems[n-1], true
}
