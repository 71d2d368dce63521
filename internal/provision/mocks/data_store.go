package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDataStore is a mock implementation of DataStore for testing.
type MockDataStore struct {
	mock.Mock
}

// Ping mocks the Ping method of DataStore.
func (m *MockDataStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Connect mocks the Connect method of DataStore.
func (m *MockDataStore) Connect() error {
	args := m.Called()
	return args.Error(0)
}

// RolesReady mocks the RolesReady method of DataStore.
func (m *MockDataStore) RolesReady(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Reconcile mocks the Reconcile method of DataStore.
func (m *MockDataStore) Reconcile(ctx context.Context, rootPassword string) error {
	args := m.Called(ctx, rootPassword)
	return args.Error(0)
}
