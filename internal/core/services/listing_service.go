package services

import (
	"context"
	"errors"
	"time"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrListingInactive = errors.New("listing is no longer active")
	ErrNotListingOwner = errors.New("only the listing owner may modify it")
)

// ListingService handles seller listings
type ListingService struct {
	listingRepo *repositories.ListingRepository
	productRepo *repositories.ProductRepository
	userRepo    repositories.UserRepository
}

// NewListingService creates a new listing service
func NewListingService(listingRepo *repositories.ListingRepository, productRepo *repositories.ProductRepository, userRepo repositories.UserRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// CreateListingRequest is the listing creation input
type CreateListingRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Title           string    `json:"title" validate:"required,min=5,max=150"`
	Description     string    `json:"description" validate:"omitempty,max=2000"`
	PricePerTon     float64   `json:"price_per_ton" validate:"required,gt=0"`
	QuantityTons    float64   `json:"quantity_tons" validate:"required,gt=0"`
	Location        string    `json:"location" validate:"omitempty,max=200"`
	Province        string    `json:"province" validate:"required,max=50"`
	DeliveryOptions []string  `json:"delivery_options" validate:"omitempty,dive,oneof=collection delivery rail"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

// UpdateListingRequest is the listing update input
type UpdateListingRequest struct {
	Title       string   `json:"title" validate:"omitempty,min=5,max=150"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	PricePerTon *float64 `json:"price_per_ton" validate:"omitempty,gt=0"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
}

// Create creates a listing after capability and quota checks
func (s *ListingService) Create(ctx context.Context, sellerID uuid.UUID, req *CreateListingRequest) (*models.Listing, error) {
	seller, err := s.userRepo.GetByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !domain.HasCapability(seller.Capabilities, domain.CapabilitySell) {
		return nil, domain.ErrCapabilityMissing
	}

	plan := domain.PlanByCode(seller.PlanCode)
	used, err := s.listingRepo.CountBySellerSince(ctx, sellerID, MonthStart(time.Now()))
	if err != nil {
		return nil, err
	}
	if !domain.WithinQuota(plan.QuotaFor(domain.CapabilitySell), used) {
		return nil, domain.ErrQuotaExceeded
	}

	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	listing := &models.Listing{
		SellerID:        sellerID,
		ProductID:       req.ProductID,
		Title:           req.Title,
		Description:     req.Description,
		PricePerTon:     req.PricePerTon,
		QuantityTons:    req.QuantityTons,
		AvailableTons:   req.QuantityTons,
		Location:        req.Location,
		Province:        req.Province,
		DeliveryOptions: models.StringList(req.DeliveryOptions),
		IsActive:        true,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get returns a listing by ID
func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

// List returns listings matching the filter
func (s *ListingService) List(ctx context.Context, filter *repositories.ListingFilter, offset, limit int) ([]*models.Listing, int64, error) {
	return s.listingRepo.List(ctx, filter, offset, limit)
}

// Update modifies an owned listing
func (s *ListingService) Update(ctx context.Context, sellerID, listingID uuid.UUID, req *UpdateListingRequest) (*models.Listing, error) {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, ErrNotListingOwner
	}

	if req.Title != "" {
		listing.Title = req.Title
	}
	if req.Description != "" {
		listing.Description = req.Description
	}
	if req.PricePerTon != nil {
		listing.PricePerTon = *req.PricePerTon
	}
	if req.Location != "" {
		listing.Location = req.Location
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Deactivate takes an owned listing off the market. Listings are never deleted.
func (s *ListingService) Deactivate(ctx context.Context, sellerID, listingID uuid.UUID) error {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		return ErrNotListingOwner
	}

	listing.IsActive = false
	return s.listingRepo.Update(ctx, listing)
}
