package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/allisson/groundwork/internal/gateway"
)

// MockConfigRenderer is a mock implementation of ConfigRenderer for testing.
type MockConfigRenderer struct {
	mock.Mock
}

// Render mocks the Render method of ConfigRenderer.
func (m *MockConfigRenderer) Render(sub gateway.Substitutions) error {
	args := m.Called(sub)
	return args.Error(0)
}

// MockLayoutEnsurer is a mock implementation of LayoutEnsurer for testing.
type MockLayoutEnsurer struct {
	mock.Mock
}

// Ensure mocks the Ensure method of LayoutEnsurer.
func (m *MockLayoutEnsurer) Ensure() error {
	args := m.Called()
	return args.Error(0)
}
