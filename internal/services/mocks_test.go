package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"revpulse/internal/ingest"
)

// MockBroadcaster is a mock for Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

// MockDatasetProvider is a mock for DatasetProvider interface
type MockDatasetProvider struct {
	mock.Mock
}

func (m *MockDatasetProvider) Get(ctx context.Context) (*ingest.LoadResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*ingest.LoadResult)
	return result, args.Error(1)
}

func (m *MockDatasetProvider) Reload(ctx context.Context) (*ingest.LoadResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*ingest.LoadResult)
	return result, args.Error(1)
}

func (m *MockDatasetProvider) Current() *ingest.LoadResult {
	args := m.Called()
	result, _ := args.Get(0).(*ingest.LoadResult)
	return result
}

func (m *MockDatasetProvider) Stats() ingest.CacheStats {
	args := m.Called()
	return args.Get(0).(ingest.CacheStats)
}
