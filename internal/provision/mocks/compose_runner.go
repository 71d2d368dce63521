package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockComposeRunner is a mock implementation of ComposeRunner for testing.
type MockComposeRunner struct {
	mock.Mock
}

// Version mocks the Version method of ComposeRunner.
func (m *MockComposeRunner) Version(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Preflight mocks the Preflight method of ComposeRunner.
func (m *MockComposeRunner) Preflight() error {
	args := m.Called()
	return args.Error(0)
}

// Up mocks the Up method of ComposeRunner.
func (m *MockComposeRunner) Up(ctx context.Context, recreate bool, services ...string) error {
	args := m.Called(ctx, recreate, services)
	return args.Error(0)
}

// LogsTail mocks the LogsTail method of ComposeRunner.
func (m *MockComposeRunner) LogsTail(ctx context.Context, service string, lines int) (string, error) {
	args := m.Called(ctx, service, lines)
	return args.String(0), args.Error(1)
}
