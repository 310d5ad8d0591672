package ai

import "context"

// ChatRequest is a single-turn completion request. JSONResponse asks the
// model to emit a bare JSON object the caller will unmarshal.
type ChatRequest struct {
	Model        string
	System       string
	User         string
	Temperature  float64
	MaxTokens    int
	JSONResponse bool
}

// ChatProvider abstracts the LLM backend so agents can be tested against a
// canned implementation.
type ChatProvider interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
