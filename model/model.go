// Package model abstracts the LLM providers behind a single text-completion
// interface and routes enrichment tasks to the model configured for them,
// with automatic fallback when the primary provider errors.
package model

import (
	"context"
	"fmt"
	"sync"
)

// Usage captures token accounting for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is one normalized completion request.
type Request struct {
	// System is the optional system prompt.
	System string `json:"system,omitempty"`
	// Prompt is the user message.
	Prompt string `json:"prompt"`
}

// Response is the provider's completed answer.
type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Info describes a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Model is the minimal interface enrichment strategies need from an LLM.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns metadata about the model implementation.
	Info() Info
}

// MockModel is an in-memory Model for tests and examples: deterministic
// canned completions, optional forced error, call recording.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     []string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: map[string]string{},
	}
}

// AddResponse registers a canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Fail makes every subsequent Complete return err (nil restores normal
// operation).
func (m *MockModel) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the prompts seen so far, in order.
func (m *MockModel) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req.Prompt)
	if m.err != nil {
		return nil, m.err
	}

	text, ok := m.responses[req.Prompt]
	if !ok {
		text = fmt.Sprintf("mock response to: %s", req.Prompt)
	}
	return &Response{
		Text:         text,
		Model:        m.info.Name,
		FinishReason: "stop",
		Usage: Usage{
			PromptTokens:     len(req.Prompt),
			CompletionTokens: len(text),
			TotalTokens:      len(req.Prompt) + len(text),
		},
	}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
