package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	args := m.Called(ctx, eventType, key, payload)
	return args.Error(0)
}
