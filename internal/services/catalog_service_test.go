package services_test

import (
	"fmt"
	"testing"

	"github.com/Antocflores/casino/internal/models"
	"github.com/Antocflores/casino/internal/services"
	"github.com/Antocflores/casino/pkg/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateQuantity(id string, quantity int) error {
	args := m.Called(id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestCatalogService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewCatalogService(mockRepo, feed.NewHub(), nil)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Galleta", Price: 800, Quantity: 100},
		{ID: "2", Name: "Bebida", Price: 1000, Quantity: 200},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_UpdateQuantity(t *testing.T) {
	mockRepo := new(MockProductRepository)
	hub := feed.NewHub()
	service := services.NewCatalogService(mockRepo, hub, nil)

	catalogChanges, cancel := hub.Subscribe(feed.TopicCatalog)
	defer cancel()

	// Successful update signals catalog subscribers
	mockRepo.On("UpdateQuantity", "1", 42).Return(nil).Once()
	err := service.UpdateQuantity("1", 42)
	assert.NoError(t, err)
	assert.Len(t, catalogChanges, 1)
	mockRepo.AssertExpectations(t)

	// Negative quantity is rejected before touching the repository
	<-catalogChanges
	err = service.UpdateQuantity("1", -1)
	assert.Error(t, err)
	assert.Len(t, catalogChanges, 0)

	// Repository failure propagates
	mockRepo.On("UpdateQuantity", "99", 5).Return(fmt.Errorf("product with ID 99 not found for quantity update")).Once()
	err = service.UpdateQuantity("99", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_SeedDefaults(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewCatalogService(mockRepo, feed.NewHub(), nil)

	// Empty catalog gets the four standard products
	mockRepo.On("GetAll").Return([]models.Product{}, nil).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Times(4)
	err := service.SeedDefaults()
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Non-empty catalog is left alone
	mockRepo.On("GetAll").Return([]models.Product{{ID: "1", Name: "Galleta", Price: 800, Quantity: 100}}, nil).Once()
	err = service.SeedDefaults()
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
