package llmclient

import (
	"context"
	"errors"
	"sync"
)

// MockClient replays scripted responses in order; deterministic for tests
// and offline runs. When Fn is set it takes precedence over the script.
type MockClient struct {
	Responses []string
	Fn        func(ctx context.Context, req Request) (Response, error)

	mu sync.Mutex
	i  int
}

func (m *MockClient) Name() string { return "mock" }
func (m *MockClient) Close() error { return nil }

func (m *MockClient) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if m.Fn != nil {
		return m.Fn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.i >= len(m.Responses) {
		return Response{}, errors.New("llmclient: mock script exhausted")
	}
	out := m.Responses[m.i]
	m.i++
	return Response{OutputText: out}, nil
}
