package repositories

import (
	"context"
	"time"

	"farm-feed/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferRepository handles offer data access
type OfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *OfferRepository) WithTx(tx *gorm.DB) *OfferRepository {
	return &OfferRepository{db: tx}
}

// Create creates a new offer
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

// GetByID gets an offer by ID with relations
func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Product").
		Preload("Buyer").
		Preload("Seller").
		Where("id = ?", id).
		First(&offer).Error
	return &offer, err
}

// GetByIDForUpdate gets an offer by ID under a row lock. Must run inside
// a transaction.
func (r *OfferRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&offer).Error
	return &offer, err
}

// ListByBuyer lists offers made by a buyer
func (r *OfferRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, offset, limit int) ([]*models.Offer, int64, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, offset, limit)
}

// ListBySeller lists offers received by a seller
func (r *OfferRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*models.Offer, int64, error) {
	return r.list(ctx, "seller_id = ?", sellerID, offset, limit)
}

// ListByListing lists offers against a listing
func (r *OfferRepository) ListByListing(ctx context.Context, listingID uuid.UUID, offset, limit int) ([]*models.Offer, int64, error) {
	return r.list(ctx, "listing_id = ?", listingID, offset, limit)
}

func (r *OfferRepository) list(ctx context.Context, cond string, arg interface{}, offset, limit int) ([]*models.Offer, int64, error) {
	var offers []*models.Offer
	var total int64

	r.db.WithContext(ctx).Model(&models.Offer{}).Where(cond, arg).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Product").
		Preload("Buyer").
		Preload("Seller").
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&offers).Error

	return offers, total, err
}

// Update updates an offer
func (r *OfferRepository) Update(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// CountByBuyerSince counts offers created by a buyer since a point in time
func (r *OfferRepository) CountByBuyerSince(ctx context.Context, buyerID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("buyer_id = ? AND created_at >= ?", buyerID, since).
		Count(&count).Error
	return count, err
}

// ListExpirable lists negotiable offers whose expiry has passed
func (r *OfferRepository) ListExpirable(ctx context.Context, now time.Time) ([]*models.Offer, error) {
	var offers []*models.Offer
	err := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?", []string{"pending", "countered"}, now).
		Find(&offers).Error
	return offers, err
}

// CreateNegotiationEntry appends a negotiation log entry
func (r *OfferRepository) CreateNegotiationEntry(ctx context.Context, entry *models.NegotiationEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetNegotiationHistory returns the negotiation log for an offer, oldest first
func (r *OfferRepository) GetNegotiationHistory(ctx context.Context, offerID uuid.UUID) ([]*models.NegotiationEntry, error) {
	var entries []*models.NegotiationEntry
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("offer_id = ?", offerID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
