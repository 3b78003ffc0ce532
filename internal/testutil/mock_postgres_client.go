package testutil

import (
	"context"
	"sync/atomic"

	"github.com/naasdev/naas/internal/logger"
	"github.com/naasdev/naas/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient runs transactional functions directly. It counts the
// outermost transactions so tests can assert on transaction scope.
type MockPostgresClient struct {
	logger *logger.Logger
	txs    atomic.Int64
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{logger: logger}
}

type mockTxKey struct{}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(mockTxKey{}) != nil {
		return fn(ctx)
	}
	c.txs.Add(1)
	return fn(context.WithValue(ctx, mockTxKey{}, true))
}

// TxCount returns how many outermost transactions were started
func (c *MockPostgresClient) TxCount() int {
	return int(c.txs.Load())
}
