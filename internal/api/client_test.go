// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newTestClient points a client at handler with fast retries.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(server.URL+"/api/", opts...)
	c.baseDelay = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, LoginRequest{Email: "ada@example.com", Password: "secret1"}, req)

		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-123",
			"user":  map[string]string{"_id": "u1", "name": "Ada", "email": "ada@example.com"},
		})
	})

	resp, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.Token)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "tok-123", c.Token())
}

func TestRegisterAndGoogle(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/api/auth/google" {
			assert.JSONEq(t, `{"token":"google-cred"}`, string(body))
		} else {
			assert.Contains(t, string(body), `"name":"Ada"`)
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "t", "user": map[string]string{"name": "Ada"}})
	})

	_, err := c.Register(context.Background(), RegisterRequest{Name: "Ada", Email: "a@b.c", Password: "pw1234"})
	require.NoError(t, err)
	_, err = c.GoogleSignIn(context.Background(), "google-cred")
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/auth/register", "/api/auth/google"}, paths)
}

func TestLogin_MissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{}})
	})

	_, err := c.Login(context.Background(), LoginRequest{})
	require.Error(t, err)
	assert.Empty(t, c.Token())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", 400, `{"message":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", 400, `{"error":"Token expired"}`, "Token expired"},
		{"message wins", 400, `{"message":"first","error":"second"}`, "first"},
		{"plain body", 502, "Bad gateway from proxy", "Bad gateway from proxy"},
		{"empty json", 404, `{}`, "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Login(context.Background(), LoginRequest{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestAuthenticatedCalls_RequireToken(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	ctx := context.Background()

	_, err := c.Profile(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.Topics(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = c.SendChat(ctx, "hi")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, c.Logout(ctx), ErrNotAuthenticated)
	assert.Zero(t, hits.Load())
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
	}, WithToken("stale"))

	_, err := c.Profile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "jwt expired", Message(err))
}

func TestProfile_SendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/users/profile", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{
			"_id": "u1", "name": "Ada", "email": "ada@example.com",
			"profilePicture": "https://img/ada.png", "createdAt": "2024-03-01T10:00:00Z",
		})
	}, WithToken("tok"))

	user, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "https://img/ada.png", user.ProfilePicture)
	assert.Equal(t, 2024, user.CreatedAt.Year())
}

func TestSendChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"message":"explain maps"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{
			"role":    "assistant",
			"content": "A map:\n```go\nm := map[string]int{}\n```",
		})
	}, WithToken("tok"))

	reply, err := c.SendChat(context.Background(), "explain maps")
	require.NoError(t, err)
	assert.False(t, reply.FromUser())
	assert.Contains(t, reply.Content, "```go")

	_, err = c.SendChat(context.Background(), "   ")
	assert.Error(t, err)
}

func TestTopicsAndProblems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/learn":
			writeJSON(w, http.StatusOK, []map[string]string{
				{"_id": "t1", "title": "Recursion", "description": "Functions calling themselves", "duration": "20 min"},
			})
		case "/api/problems":
			writeJSON(w, http.StatusOK, []map[string]string{
				{"_id": "p1", "title": "Two Sum", "difficulty": "easy", "category": "arrays", "problemType": "coding", "gridType": "none"},
			})
		default:
			http.NotFound(w, r)
		}
	}, WithToken("tok"))

	topics, err := c.Topics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "20 min", topics[0].Duration)

	problems, err := c.Problems(context.Background())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, Problem{ID: "p1", Title: "Two Sum", Difficulty: "easy", Category: "arrays", ProblemType: "coding", GridType: "none"}, problems[0])
}

func TestEvaluate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req EvaluationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.ProblemID)
		assert.Equal(t, "coding", req.ProblemType)

		writeJSON(w, http.StatusOK, map[string]any{
			"accuracy":    85,
			"complexity":  map[string]string{"time": "O(n)", "space": "O(1)"},
			"strengths":   []string{"clear names"},
			"weaknesses":  []string{"no tests"},
			"feedback":    "Good. Consider:\n```python\nassert f(1) == 2\n```",
			"suggestions": []string{"add edge cases"},
		})
	}, WithToken("tok"))

	eval, err := c.Evaluate(context.Background(), EvaluationRequest{
		ProblemID: "p1", Solution: "def f(x): return x + 1", ProblemType: "coding",
	})
	require.NoError(t, err)
	assert.Equal(t, 85.0, eval.Accuracy)
	assert.Equal(t, Complexity{Time: "O(n)", Space: "O(1)"}, eval.Complexity)
	assert.Equal(t, []string{"add edge cases"}, eval.Suggestions)

	_, err = c.Evaluate(context.Background(), EvaluationRequest{ProblemID: "p1"})
	assert.Error(t, err)
	_, err = c.Evaluate(context.Background(), EvaluationRequest{Solution: "x"})
	assert.Error(t, err)
}

func TestResetPassword(t *testing.T) {
	paths := make(chan string, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	ctx := context.Background()

	err := c.ResetPassword(ctx, "abc/def", ResetPasswordRequest{Password: "secret", ConfirmPassword: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/reset-password/abc%2Fdef", <-paths)

	assert.ErrorIs(t, c.ResetPassword(ctx, "t", ResetPasswordRequest{Password: "secret", ConfirmPassword: "secreT"}), ErrPasswordMismatch)
	assert.ErrorIs(t, c.ResetPassword(ctx, "t", ResetPasswordRequest{Password: "abc", ConfirmPassword: "abc"}), ErrPasswordTooShort)
	assert.Error(t, c.ResetPassword(ctx, " ", ResetPasswordRequest{Password: "secret", ConfirmPassword: "secret"}))
}

func TestLogout_DropsTokenOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithToken("tok"))

	assert.Error(t, c.Logout(context.Background()))
	assert.Empty(t, c.Token())
}

func TestRetry_GetRecoversFrom5xx(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, []Topic{{ID: "t1", Title: "Graphs"}})
	}, WithToken("tok"))

	topics, err := c.Topics(context.Background())
	require.NoError(t, err)
	assert.Len(t, topics, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithToken("tok"), WithMaxRetries(2))

	_, err := c.Problems(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetry_PostNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithToken("tok"))

	_, err := c.SendChat(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}, WithToken("tok"))

	_, err := c.Topics(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, WithToken("tok"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Topics(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Topic{})
	}, WithToken("tok"), WithRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Topics(context.Background())
		require.NoError(t, err)
	}
	// Two waits of 50ms after the first token.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestResponseSizeLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"` + strings.Repeat("x", MaxResponseSize) + `"`))
	}, WithToken("tok"))

	_, err := c.Profile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestLogging_OmitsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	}, WithLogger(zap.New(core)))

	err := c.ResetPassword(context.Background(), "reset-secret", ResetPasswordRequest{Password: "hunter22", ConfirmPassword: "hunter22"})
	require.NoError(t, err)

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			assert.NotContains(t, field.String, "reset-secret")
			assert.NotContains(t, field.String, "hunter22")
		}
	}
	assert.Equal(t, "/api/auth/reset-password/[REDACTED]", logs.All()[0].ContextMap()["path"])
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	c = NewClient("http://x/api/", WithTimeout(5*time.Second), WithRateLimit(0, 0))
	assert.Equal(t, "http://x/api", c.BaseURL())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)
}

func TestChatMessage_Helpers(t *testing.T) {
	assert.True(t, ChatMessage{Role: "user"}.FromUser())
	assert.True(t, ChatMessage{IsUser: true}.FromUser())
	assert.False(t, ChatMessage{Role: "assistant"}.FromUser())
	assert.True(t, ChatMessage{File: "aGk="}.HasAttachment())
}
