package repositories

import (
	"context"
	"time"

	"farm-feed/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository handles listing data access
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *ListingRepository) WithTx(tx *gorm.DB) *ListingRepository {
	return &ListingRepository{db: tx}
}

// Create creates a new listing
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// GetByID gets a listing by ID with relations
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Product").
		Where("id = ?", id).
		First(&listing).Error
	return &listing, err
}

// GetByIDForUpdate gets a listing by ID under a row lock. Must run inside
// a transaction.
func (r *ListingRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&listing).Error
	return &listing, err
}

// ListingFilter holds listing search filters
type ListingFilter struct {
	ProductID  *uuid.UUID
	Province   string
	MaxPrice   *float64
	SellerID   *uuid.UUID
	OnlyActive bool
}

// List lists listings with filters and pagination
func (r *ListingRepository) List(ctx context.Context, filter *ListingFilter, offset, limit int) ([]*models.Listing, int64, error) {
	var listings []*models.Listing
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Listing{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price_per_ton <= ?", *filter.MaxPrice)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Seller").
		Preload("Product").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error

	return listings, total, err
}

// Update updates a listing
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// CountBySellerSince counts listings created by a seller since a point in time
func (r *ListingRepository) CountBySellerSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("seller_id = ? AND created_at >= ?", sellerID, since).
		Count(&count).Error
	return count, err
}

// ListExpiredActive lists active listings whose expiry has passed
func (r *ListingRepository) ListExpiredActive(ctx context.Context, now time.Time) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Find(&listings).Error
	return listings, err
}
