package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/diana-hep/femtocode/pkg/model"
)

// MockCatalog is a mock implementation of repository.CatalogRepository.
type MockCatalog struct {
	mock.Mock
}

// CreateDataset mocks the CreateDataset method.
func (m *MockCatalog) CreateDataset(ctx context.Context, ds *model.Dataset) error {
	args := m.Called(ctx, ds)
	return args.Error(0)
}

// GetDataset mocks the GetDataset method.
func (m *MockCatalog) GetDataset(ctx context.Context, name string) (*model.Dataset, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dataset), args.Error(1)
}

// ListDatasets mocks the ListDatasets method.
func (m *MockCatalog) ListDatasets(ctx context.Context) ([]*model.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Dataset), args.Error(1)
}

// DeleteDataset mocks the DeleteDataset method.
func (m *MockCatalog) DeleteDataset(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// ExpectGetDataset sets up an expectation for GetDataset.
func (m *MockCatalog) ExpectGetDataset(ds *model.Dataset) *mock.Call {
	return m.On("GetDataset", mock.Anything, ds.Name).Return(ds, nil)
}
