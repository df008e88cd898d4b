package plaid

import (
	"context"
	"sync"

	"github.com/Veraticus/life-sheet/internal/model"
)

// MockClient is a mock implementation of BalanceFetcher and Linker for testing.
type MockClient struct {
	FetchHoldingsFn       func(ctx context.Context) (model.Holdings, error)
	CreateLinkTokenFn     func(ctx context.Context) (string, error)
	ExchangePublicTokenFn func(ctx context.Context, publicToken string) (string, string, error)

	FetchHoldingsCalls   int
	CreateLinkTokenCalls int
	ExchangeCalls        []string
	mu                   sync.Mutex
}

// NewMockClient creates a new mock Plaid client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// FetchHoldings implements BalanceFetcher.
func (m *MockClient) FetchHoldings(ctx context.Context) (model.Holdings, error) {
	m.mu.Lock()
	m.FetchHoldingsCalls++
	m.mu.Unlock()

	if m.FetchHoldingsFn != nil {
		return m.FetchHoldingsFn(ctx)
	}
	return model.Holdings{}, nil
}

// CreateLinkToken implements Linker.
func (m *MockClient) CreateLinkToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.CreateLinkTokenCalls++
	m.mu.Unlock()

	if m.CreateLinkTokenFn != nil {
		return m.CreateLinkTokenFn(ctx)
	}
	return "link-sandbox-token", nil
}

// ExchangePublicToken implements Linker.
func (m *MockClient) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	m.mu.Lock()
	m.ExchangeCalls = append(m.ExchangeCalls, publicToken)
	m.mu.Unlock()

	if m.ExchangePublicTokenFn != nil {
		return m.ExchangePublicTokenFn(ctx, publicToken)
	}
	return "access-sandbox-token", "item-id", nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchHoldingsCalls = 0
	m.CreateLinkTokenCalls = 0
	m.ExchangeCalls = nil
}

var (
	_ BalanceFetcher = (*MockClient)(nil)
	_ Linker         = (*MockClient)(nil)
)
