package services

import (
	"context"
	"errors"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product code already exists")
)

// ProductService handles the grain/feed catalogue
type ProductService struct {
	productRepo *repositories.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo *repositories.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductRequest is the admin catalogue input
type CreateProductRequest struct {
	Code     string `json:"code" validate:"required,max=20"`
	Name     string `json:"name" validate:"required,max=100"`
	Category string `json:"category" validate:"required,max=50"`
	Unit     string `json:"unit" validate:"omitempty,max=20"`
}

// List returns the active catalogue
func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.List(ctx)
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Create adds a catalogue entry (admin)
func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if _, err := s.productRepo.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrProductExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unit := req.Unit
	if unit == "" {
		unit = "ton"
	}

	product := &models.Product{
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Unit:     unit,
		IsActive: true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update modifies a catalogue entry (admin)
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Unit != "" {
		product.Unit = req.Unit
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate retires a catalogue entry (admin)
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	product.IsActive = false
	return s.productRepo.Update(ctx, product)
}
