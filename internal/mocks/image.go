package mocks

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockImageService is a mock implementation of the image service
type MockImageService struct {
	mock.Mock
}

// SaveDataURI mocks the SaveDataURI method
func (m *MockImageService) SaveDataURI(ctx context.Context, target service.ImageTarget, dataURI string) (string, error) {
	args := m.Called(ctx, target, dataURI)
	return args.String(0), args.Error(1)
}

// Remove mocks the Remove method
func (m *MockImageService) Remove(ctx context.Context, url string) {
	m.Called(ctx, url)
}

// MockImageStore is a mock implementation of an image store
type MockImageStore struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MockImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockImageStore) Delete(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}
