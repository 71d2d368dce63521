package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockObjectStore is a mock implementation of ObjectStore for testing.
type MockObjectStore struct {
	mock.Mock
}

// Ready mocks the Ready method of ObjectStore.
func (m *MockObjectStore) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Ensure mocks the Ensure method of ObjectStore.
func (m *MockObjectStore) Ensure(ctx context.Context) {
	m.Called(ctx)
}
