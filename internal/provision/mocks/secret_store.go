// Package mocks provides mock implementations for testing the provisioner.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/allisson/groundwork/internal/secrets"
)

// MockSecretStore is a mock implementation of SecretStore for testing.
type MockSecretStore struct {
	mock.Mock
}

// Load mocks the Load method of SecretStore.
func (m *MockSecretStore) Load() error {
	args := m.Called()
	return args.Error(0)
}

// Fill mocks the Fill method of SecretStore.
func (m *MockSecretStore) Fill(issuerFor func(signingSecret string) secrets.TokenIssuer) error {
	args := m.Called(issuerFor)
	return args.Error(0)
}

// Persist mocks the Persist method of SecretStore.
func (m *MockSecretStore) Persist() error {
	args := m.Called()
	return args.Error(0)
}

// Value mocks the Value method of SecretStore.
func (m *MockSecretStore) Value(key string) (string, bool) {
	args := m.Called(key)
	return args.String(0), args.Bool(1)
}
