package repositories

import (
	"context"

	"farm-feed/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealRepository handles deal data access
type DealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *DealRepository) WithTx(tx *gorm.DB) *DealRepository {
	return &DealRepository{db: tx}
}

// Create creates a new deal
func (r *DealRepository) Create(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

// GetByID gets a deal by ID with relations
func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Preload("Offer").
		Preload("Listing").
		Preload("Listing.Product").
		Preload("Buyer").
		Preload("Seller").
		Where("id = ?", id).
		First(&deal).Error
	return &deal, err
}

// GetByIDForUpdate gets a deal by ID under a row lock. Must run inside a
// transaction.
func (r *DealRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&deal).Error
	return &deal, err
}

// GetByOfferID gets the deal created for an offer, if any
func (r *DealRepository) GetByOfferID(ctx context.Context, offerID uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	err := r.db.WithContext(ctx).Where("offer_id = ?", offerID).First(&deal).Error
	return &deal, err
}

// ListByParty lists deals where the user is buyer or seller
func (r *DealRepository) ListByParty(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Deal, int64, error) {
	var deals []*models.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Deal{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)
	query.Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Product").
		Preload("Buyer").
		Preload("Seller").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&deals).Error

	return deals, total, err
}

// Update updates a deal
func (r *DealRepository) Update(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

// CreateEvent appends a deal status change to the audit trail
func (r *DealRepository) CreateEvent(ctx context.Context, event *models.DealEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvents returns the audit trail for a deal, newest first
func (r *DealRepository) GetEvents(ctx context.Context, dealID uuid.UUID) ([]*models.DealEvent, error) {
	var events []*models.DealEvent
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("deal_id = ?", dealID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}
