// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package learn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/learnlab/internal/api"
)

var topics = []api.Topic{
	{ID: "1", Title: "Recursión", Description: "Funciones que se llaman a sí mismas"},
	{ID: "2", Title: "Arrays", Description: "Contiguous memory and indexing"},
	{ID: "3", Title: "binary Search", Description: "Halving a sorted array"},
	{ID: "4", Title: "Graphs", Description: "BFS and DFS traversal"},
}

func titles(ts []api.Topic) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return out
}

func TestFold(t *testing.T) {
	assert.Equal(t, "recursion", Fold("Recursión"))
	assert.Equal(t, "arbol", Fold("ÁRBOL"))
	assert.Equal(t, "strasse", Fold("Straße"))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Arrays", "binary Search", "Graphs", "Recursión"}},
		{"recursion", []string{"Recursión"}},
		{"ARRAY", []string{"Arrays", "binary Search"}},
		{"sorted array", []string{"binary Search"}},
		{"array graph", []string{}},
		{"  dfs  ", []string{"Graphs"}},
		{"sí", []string{"Recursión"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := titles(Search(topics, tt.query))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	in := append([]api.Topic(nil), topics...)
	Search(in, "")
	assert.Equal(t, topics, in)
}

var problems = []api.Problem{
	{ID: "p1", Title: "Two Sum", Difficulty: "Easy", Category: "arrays"},
	{ID: "p2", Title: "LRU Cache", Difficulty: "Hard", Category: "design"},
	{ID: "p3", Title: "Merge Intervals", Difficulty: "Medium", Category: "arrays"},
	{ID: "p4", Title: "Anagram", Difficulty: "easy", Category: "strings"},
	{ID: "p5", Title: "Puzzle", Difficulty: "Expert"},
}

func TestFilterProblems(t *testing.T) {
	ids := func(ps []api.Problem) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []string{"p4", "p1", "p3", "p2", "p5"}, ids(FilterProblems(problems, "", "")))
	assert.Equal(t, []string{"p4", "p1"}, ids(FilterProblems(problems, "EASY", "")))
	assert.Equal(t, []string{"p1", "p3"}, ids(FilterProblems(problems, "", "arrays")))
	assert.Empty(t, ids(FilterProblems(problems, "hard", "arrays")))
}

func TestFindProblem(t *testing.T) {
	p, ok := FindProblem(problems, "p3")
	assert.True(t, ok)
	assert.Equal(t, "Merge Intervals", p.Title)

	p, ok = FindProblem(problems, "2")
	assert.True(t, ok)
	assert.Equal(t, "p2", p.ID)

	for _, ref := range []string{"", "0", "6", "x1", "-1"} {
		_, ok := FindProblem(problems, ref)
		assert.False(t, ok, "ref %q", ref)
	}
}
