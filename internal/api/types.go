// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "time"

// MinPasswordLength is the shortest password the reset form accepts.
const MinPasswordLength = 6

// User is an account as returned by the backend.
type User struct {
	ID             string    `json:"_id,omitempty"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by every sign-in endpoint.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ResetPasswordRequest holds the new password typed twice.
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate applies the same checks as the reset form before anything is sent.
func (r ResetPasswordRequest) Validate() error {
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(r.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ChatMessage is one message of a tutor conversation.
type ChatMessage struct {
	ID           string    `json:"_id,omitempty"`
	Role         string    `json:"role,omitempty"`
	Content      string    `json:"content"`
	IsUser       bool      `json:"isUser,omitempty"`
	File         string    `json:"file,omitempty"`
	FileMimeType string    `json:"fileMimeType,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// FromUser reports whether the message was written by the learner.
func (m ChatMessage) FromUser() bool {
	return m.IsUser || m.Role == "user"
}

// HasAttachment reports whether the message carries an inline file.
func (m ChatMessage) HasAttachment() bool {
	return m.File != ""
}

// Topic is a learning topic from GET /learn.
type Topic struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
}

// Problem is a practice problem from GET /problems.
type Problem struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category,omitempty"`
	ProblemType string `json:"problemType,omitempty"`
	GridType    string `json:"gridType,omitempty"`
}

// EvaluationRequest is the body of POST /problems/evaluate.
type EvaluationRequest struct {
	ProblemID   string `json:"problemId"`
	Solution    string `json:"solution"`
	ProblemType string `json:"problemType,omitempty"`
	GridType    string `json:"gridType,omitempty"`
}

// Complexity is the evaluator's estimate of a solution's cost.
type Complexity struct {
	Time  string `json:"time"`
	Space string `json:"space"`
}

// Evaluation is the evaluator's report on a submitted solution.
type Evaluation struct {
	Accuracy    float64    `json:"accuracy"`
	Complexity  Complexity `json:"complexity"`
	Strengths   []string   `json:"strengths"`
	Weaknesses  []string   `json:"weaknesses"`
	Feedback    string     `json:"feedback"`
	Suggestions []string   `json:"suggestions"`
}
