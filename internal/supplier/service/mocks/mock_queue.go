package mocks

import (
	"context"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/stretchr/testify/mock"
)

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) Enqueue(ctx context.Context, task domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockQueue) Due(ctx context.Context, now time.Time, limit int) ([]domain.Task, error) {
	args := m.Called(ctx, now, limit)
	if t := args.Get(0); t != nil {
		return t.([]domain.Task), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockQueue) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
