package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests. Safe for
// concurrent use.
type MockClient struct {
	// GenerateObjectFunc is called when GenerateObject is invoked.
	// If nil, returns an empty result and nil error.
	GenerateObjectFunc func(ctx context.Context, req ObjectRequest) (*ObjectResult, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	mu                  sync.Mutex
	generateObjectCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{Model: "mock-model"}
}

// GenerateObject implements Client.
func (m *MockClient) GenerateObject(ctx context.Context, req ObjectRequest) (*ObjectResult, error) {
	m.mu.Lock()
	m.generateObjectCalls++
	m.mu.Unlock()
	if m.GenerateObjectFunc != nil {
		return m.GenerateObjectFunc(ctx, req)
	}
	return &ObjectResult{}, nil
}

// GenerateObjectCalls returns how many times GenerateObject has been called.
func (m *MockClient) GenerateObjectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateObjectCalls
}

// GetModel implements Client.
func (m *MockClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// Reset clears call tracking counters.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateObjectCalls = 0
}

var _ Client = (*MockClient)(nil)
