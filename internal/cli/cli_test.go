// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jeranaias/learnlab/internal/api"
	"github.com/jeranaias/learnlab/internal/auth"
	"github.com/jeranaias/learnlab/internal/config"
	"github.com/jeranaias/learnlab/internal/content"
	"github.com/jeranaias/learnlab/internal/storage"
)

var morning = time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)

// =============================================================================
// TEST HARNESS
// =============================================================================

type backend struct {
	t *testing.T

	mu        sync.Mutex
	evaluated []api.EvaluationRequest
	chats     []string
	logouts   int
	reject    bool
}

func (b *backend) token() string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": morning.Add(24 * time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(b.t, err)
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.reject && r.Header.Get("Authorization") != "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
		return
	}

	switch r.URL.Path {
	case "/api/auth/login":
		var req api.LoginRequest
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": b.token(),
			"user":  map[string]string{"_id": "u1", "name": "Ada", "email": req.Email},
		})
	case "/api/auth/logout":
		b.logouts++
		writeJSON(w, http.StatusOK, map[string]string{})
	case "/api/users/profile":
		writeJSON(w, http.StatusOK, map[string]string{"_id": "u1", "name": "Ada", "email": "ada@example.com"})
	case "/api/learn":
		writeJSON(w, http.StatusOK, []map[string]string{
			{"_id": "t1", "title": "Récursion", "description": "Functions calling themselves"},
			{"_id": "t2", "title": "Sorting", "description": "Ordering things"},
		})
	case "/api/problems":
		writeJSON(w, http.StatusOK, []map[string]string{
			{"_id": "p2", "title": "LRU Cache", "difficulty": "medium", "description": "Design a cache."},
			{"_id": "p1", "title": "Two Sum", "difficulty": "easy", "description": "Find two numbers.", "problemType": "code"},
		})
	case "/api/problems/evaluate":
		var req api.EvaluationRequest
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))
		b.evaluated = append(b.evaluated, req)
		writeJSON(w, http.StatusOK, map[string]any{
			"accuracy":    90,
			"complexity":  map[string]string{"time": "O(n)", "space": "O(n)"},
			"strengths":   []string{"Single pass"},
			"feedback":    "Nice use of a dict.",
			"suggestions": []string{"Handle empty input"},
		})
	case "/api/chats":
		var body map[string]string
		require.NoError(b.t, json.NewDecoder(r.Body).Decode(&body))
		b.chats = append(b.chats, body["message"])
		writeJSON(w, http.StatusOK, map[string]string{
			"role":    "assistant",
			"content": "Like this:\n```\ndef rev(xs):\n    return xs[::-1]\n```",
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

type harness struct {
	app     *App
	backend *backend
	home    string
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LEARNLAB_HOME", home)
	t.Setenv("NO_COLOR", "1")

	b := &backend{t: t}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.API.BaseURL = server.URL + "/api"
	cfg.API.RequestsPerSecond = 0
	cfg.API.MaxRetries = 1
	cfg.Render.WrapWidth = 80

	h := &harness{
		backend: b,
		home:    home,
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	h.app = &App{
		Stdin:  strings.NewReader(""),
		Stdout: h.stdout,
		Stderr: h.stderr,
		Config: cfg,
		Logger: zap.NewNop(),
		Now:    func() time.Time { return morning },
	}
	return h
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	sess := &auth.Session{
		Token:    h.backend.token(),
		User:     api.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
		IssuedAt: morning,
	}
	require.NoError(t, auth.NewStore(h.home).Save(sess))
}

func (h *harness) stored(t *testing.T) *auth.Session {
	t.Helper()
	sess, err := auth.NewStore(h.home).Load()
	if errors.Is(err, auth.ErrNoSession) {
		return nil
	}
	require.NoError(t, err)
	return sess
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_SavesSession(t *testing.T) {
	h := newHarness(t)
	h.app.Stdin = strings.NewReader("secret1\n")

	require.NoError(t, h.run("login", "--email", "ada@example.com"))
	assert.Contains(t, h.stdout.String(), "Signed in as Ada <ada@example.com>")
	assert.Contains(t, h.stdout.String(), "ends at midnight")

	sess := h.stored(t)
	require.NotNil(t, sess)
	assert.Equal(t, "u1", sess.User.ID)
	assert.True(t, morning.Equal(sess.IssuedAt))
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t)
	err := h.run("login", "--email", "ada@example.com", "--password", "nope")

	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", api.Message(err))
	assert.Nil(t, h.stored(t))
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	require.NoError(t, h.run("logout"))
	assert.Nil(t, h.stored(t))
	assert.Equal(t, 1, h.backend.logouts)
}

func TestResetPassword_ValidatesLocally(t *testing.T) {
	h := newHarness(t)
	h.app.Stdin = strings.NewReader("secret1\nsecret2\n")

	err := h.run("reset-password", "tok")
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestCommands_RequireSession(t *testing.T) {
	h := newHarness(t)
	err := h.run("problems", "list")

	assert.ErrorIs(t, err, auth.ErrNoSession)
	assert.Equal(t, ExitAuthError, ExitCode(err))
}

func TestCommands_SessionEndsAtMidnight(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.app.Now = func() time.Time { return auth.EndOfDay(morning).Add(time.Minute) }

	err := h.run("learn")
	assert.ErrorIs(t, err, auth.ErrDayEnded)
	assert.Nil(t, h.stored(t), "ended session is removed")
}

func TestCommands_UnauthorizedForgetsSession(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.backend.reject = true

	err := h.run("learn")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Nil(t, h.stored(t))
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	require.NoError(t, h.run("profile", "--json"))
	var resp struct {
		Success bool           `json:"success"`
		Data    profileSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ada", resp.Data.User.Name)
	assert.Equal(t, 2, resp.Data.Topics)
	assert.Equal(t, map[string]int{"easy": 1, "medium": 1}, resp.Data.Problems)
}

// =============================================================================
// LEARN / PROBLEMS
// =============================================================================

func TestLearn_SearchIgnoresAccents(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	require.NoError(t, h.run("learn", "recursion"))
	out := h.stdout.String()
	assert.Contains(t, out, "Récursion")
	assert.NotContains(t, out, "Sorting")
}

func TestProblems_ListAndShow(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	require.NoError(t, h.run("problems", "list"))
	out := h.stdout.String()
	assert.Less(t, strings.Index(out, "Two Sum"), strings.Index(out, "LRU Cache"), "easy first")

	require.NoError(t, h.run("problems", "show", "1"))
	assert.Contains(t, h.stdout.String(), "Two Sum")
	assert.Contains(t, h.stdout.String(), "Find two numbers.")

	err := h.run("problems", "show", "9")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
}

func TestProblems_ListBadDifficulty(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	err := h.run("problems", "list", "--difficulty", "extreme")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestProblems_Solve(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.app.Stdin = strings.NewReader("def two_sum(nums, t):\n    return []\n")

	require.NoError(t, h.run("problems", "solve", "p1"))
	require.Len(t, h.backend.evaluated, 1)
	assert.Equal(t, "p1", h.backend.evaluated[0].ProblemID)
	assert.Equal(t, "code", h.backend.evaluated[0].ProblemType)

	out := h.stdout.String()
	assert.Contains(t, out, "Evaluation: Two Sum")
	assert.Contains(t, out, "90%")
	assert.Contains(t, out, "Single pass")
	assert.Contains(t, out, "Handle empty input")
}

func TestProblems_SolveEmpty(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	err := h.run("problems", "solve", "p1")
	assert.Equal(t, ExitUsageError, ExitCode(err))
	assert.Empty(t, h.backend.evaluated)
}

// =============================================================================
// CHAT / HISTORY
// =============================================================================

func TestChat_OneShotSavesHistory(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	require.NoError(t, h.run("chat", "how", "do", "I", "reverse", "a", "list?"))
	assert.Equal(t, []string{"how do I reverse a list?"}, h.backend.chats)
	assert.Contains(t, h.stdout.String(), "return xs[::-1]")
	assert.Contains(t, h.stdout.String(), "1 code block(s)")

	require.NoError(t, h.run("history", "list"))
	assert.Contains(t, h.stdout.String(), "how do I reverse a list?")

	require.NoError(t, h.run("history", "show", "0"))
	assert.Contains(t, h.stdout.String(), "You")
	assert.Contains(t, h.stdout.String(), "Tutor")
}

func TestChatSession_Commands(t *testing.T) {
	var out bytes.Buffer
	var copied string
	h := newHarness(t)
	s := &chatSession{
		tutor:     h.app.client(h.backend.token()),
		renderer:  h.app.renderer(),
		out:       &out,
		logger:    zap.NewNop(),
		clipboard: func(s string) error { copied = s; return nil },
		now:       func() time.Time { return morning },
	}
	ctx := context.Background()

	quit, err := s.handle(ctx, "/copy 1")
	assert.False(t, quit)
	assert.EqualError(t, err, "the last reply has no code blocks")

	_, err = s.handle(ctx, "reverse please")
	require.NoError(t, err)
	require.Len(t, s.conv.Messages, 2)
	firstID := s.conv.ID

	_, err = s.handle(ctx, "/copy 1")
	require.NoError(t, err)
	assert.Equal(t, "def rev(xs):\n    return xs[::-1]", copied)

	_, err = s.handle(ctx, "/copy 2")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, err = s.handle(ctx, "/bogus")
	assert.Error(t, err)

	_, err = s.handle(ctx, "/new")
	require.NoError(t, err)
	assert.Empty(t, s.conv.Messages)
	_, _ = s.handle(ctx, "again")
	assert.NotEqual(t, firstID, s.conv.ID)

	quit, err = s.handle(ctx, "/quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestHistory_ExportAndDelete(t *testing.T) {
	h := newHarness(t)
	store, err := storage.Open(filepath.Join(h.home, "history.db"))
	require.NoError(t, err)
	id, err := store.Save(context.Background(), &storage.StoredConversation{
		Messages: []storage.StoredMessage{
			{Role: storage.RoleUser, Content: "show me a loop"},
			{Role: storage.RoleAssistant, Content: "```\ndef loop():\n    for i in range(3):\n        print(i)\n```"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	outDir := t.TempDir()
	require.NoError(t, h.run("history", "export", id[:6], "--format", "html", "--output", outDir))
	files, err := filepath.Glob(filepath.Join(outDir, "conversation_*.html"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "copyBlock(1)")

	require.NoError(t, h.run("history", "export", "0", "--format", "md", "--stdout"))
	assert.Contains(t, h.stdout.String(), "```python")

	err = h.run("history", "export", "0", "--format", "pdf")
	assert.Equal(t, ExitUsageError, ExitCode(err))

	require.NoError(t, h.run("history", "delete", id))
	err = h.run("history", "show", id)
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
}

func TestHistory_DeleteNeedsTarget(t *testing.T) {
	h := newHarness(t)
	err := h.run("history", "delete")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

// =============================================================================
// RENDER / CONFIG
// =============================================================================

func TestRender_Segments(t *testing.T) {
	h := newHarness(t)
	h.app.Stdin = strings.NewReader("Try:\n```\ndef f(x):\n    return x\n```\ndone")

	require.NoError(t, h.run("render", "--segments"))
	var segs []content.Segment
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &segs))
	require.Len(t, segs, 3)
	assert.Equal(t, content.Code, segs[1].Kind)
	assert.Equal(t, "python", segs[1].Language)
}

func TestRender_File(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("Hello\n```go\npackage main\n```"), 0o600))

	require.NoError(t, h.run("render", path))
	assert.Contains(t, h.stdout.String(), "Hello")
	assert.Contains(t, h.stdout.String(), "package main")
}

func TestConfig_SetShowPath(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("config", "set", "render.code_style", "dracula"))
	require.NoError(t, h.run("config", "show", "render.code_style"))
	assert.Equal(t, "dracula\n", h.stdout.String())

	require.NoError(t, h.run("config", "path"))
	path := strings.TrimSpace(h.stdout.String())
	assert.Equal(t, filepath.Join(h.home, "config.toml"), path)

	saved, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "dracula", saved.Render.CodeStyle)

	err = h.run("config", "set", "no.such", "x")
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestRootWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.run(), errNoTerminal)
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	displayError(&buf, auth.ErrDayEnded, false)
	assert.Contains(t, buf.String(), "learnlab login")

	buf.Reset()
	displayError(&buf, &api.APIError{Status: 500, Message: "boom"}, false)
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	displayError(&buf, errors.New("bad"), true)
	var resp jsonResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "bad", *resp.Error)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("x")))
	assert.Equal(t, ExitAuthError, ExitCode(api.ErrNotAuthenticated))
	assert.Equal(t, ExitTimeoutError, ExitCode(context.DeadlineExceeded))
	assert.Equal(t, ExitConfigError, ExitCode(config.ValidateErrors{{Field: "api.base_url", Message: "bad"}}))
	assert.Equal(t, ExitNotFoundError, ExitCode(storage.ErrConversationNotFound))
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("\nsecret\n"), &out)

	v, err := p.Line("Email", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", v)

	pw, err := p.Password("Password")
	require.NoError(t, err)
	assert.Equal(t, "secret", pw)

	_, err = p.Line("Name", "")
	assert.ErrorIs(t, err, io.EOF)
}
