package repositories

import (
	"context"
	"time"

	"farm-feed/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransportRepository handles transport request and quote data access
type TransportRepository struct {
	db *gorm.DB
}

// NewTransportRepository creates a new transport repository
func NewTransportRepository(db *gorm.DB) *TransportRepository {
	return &TransportRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *TransportRepository) WithTx(tx *gorm.DB) *TransportRepository {
	return &TransportRepository{db: tx}
}

// CreateRequest creates a new transport request
func (r *TransportRepository) CreateRequest(ctx context.Context, request *models.TransportRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetRequestByID gets a transport request by ID with relations
func (r *TransportRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*models.TransportRequest, error) {
	var request models.TransportRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Quotes").
		Preload("Quotes.Transporter").
		Where("id = ?", id).
		First(&request).Error
	return &request, err
}

// GetRequestByIDForUpdate gets a transport request under a row lock. Must
// run inside a transaction.
func (r *TransportRepository) GetRequestByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TransportRequest, error) {
	var request models.TransportRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&request).Error
	return &request, err
}

// ListOpenRequests lists requests still accepting quotes
func (r *TransportRepository) ListOpenRequests(ctx context.Context, offset, limit int) ([]*models.TransportRequest, int64, error) {
	var requests []*models.TransportRequest
	var total int64

	statuses := []string{"open", "quoted"}
	r.db.WithContext(ctx).Model(&models.TransportRequest{}).
		Where("status IN ?", statuses).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error

	return requests, total, err
}

// ListRequestsByRequester lists transport requests created by a user
func (r *TransportRepository) ListRequestsByRequester(ctx context.Context, requesterID uuid.UUID, offset, limit int) ([]*models.TransportRequest, int64, error) {
	var requests []*models.TransportRequest
	var total int64

	r.db.WithContext(ctx).Model(&models.TransportRequest{}).
		Where("requester_id = ?", requesterID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Quotes").
		Preload("Quotes.Transporter").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error

	return requests, total, err
}

// UpdateRequest updates a transport request
func (r *TransportRepository) UpdateRequest(ctx context.Context, request *models.TransportRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// CountRequestsByRequesterSince counts requests created since a point in time
func (r *TransportRepository) CountRequestsByRequesterSince(ctx context.Context, requesterID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransportRequest{}).
		Where("requester_id = ? AND created_at >= ?", requesterID, since).
		Count(&count).Error
	return count, err
}

// CreateQuote creates a new transport quote
func (r *TransportRepository) CreateQuote(ctx context.Context, quote *models.TransportQuote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// GetQuoteByID gets a transport quote by ID with relations
func (r *TransportRepository) GetQuoteByID(ctx context.Context, id uuid.UUID) (*models.TransportQuote, error) {
	var quote models.TransportQuote
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Transporter").
		Where("id = ?", id).
		First(&quote).Error
	return &quote, err
}

// GetQuoteByIDForUpdate gets a transport quote under a row lock. Must run
// inside a transaction.
func (r *TransportRepository) GetQuoteByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.TransportQuote, error) {
	var quote models.TransportQuote
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&quote).Error
	return &quote, err
}

// ListQuotesByRequest lists quotes submitted against a request
func (r *TransportRepository) ListQuotesByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.TransportQuote, error) {
	var quotes []*models.TransportQuote
	err := r.db.WithContext(ctx).
		Preload("Transporter").
		Where("request_id = ?", requestID).
		Order("price_zar ASC").
		Find(&quotes).Error
	return quotes, err
}

// ListQuotesByTransporter lists quotes submitted by a transporter
func (r *TransportRepository) ListQuotesByTransporter(ctx context.Context, transporterID uuid.UUID, offset, limit int) ([]*models.TransportQuote, int64, error) {
	var quotes []*models.TransportQuote
	var total int64

	r.db.WithContext(ctx).Model(&models.TransportQuote{}).
		Where("transporter_id = ?", transporterID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Request").
		Where("transporter_id = ?", transporterID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&quotes).Error

	return quotes, total, err
}

// GetQuoteByRequestAndTransporter gets a transporter's quote for a request
func (r *TransportRepository) GetQuoteByRequestAndTransporter(ctx context.Context, requestID, transporterID uuid.UUID) (*models.TransportQuote, error) {
	var quote models.TransportQuote
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND transporter_id = ?", requestID, transporterID).
		First(&quote).Error
	return &quote, err
}

// UpdateQuote updates a transport quote
func (r *TransportRepository) UpdateQuote(ctx context.Context, quote *models.TransportQuote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// RejectSiblingQuotes rejects all pending quotes on a request except the winner
func (r *TransportRepository) RejectSiblingQuotes(ctx context.Context, requestID, winnerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.TransportQuote{}).
		Where("request_id = ? AND id != ? AND status = ?", requestID, winnerID, "pending").
		Update("status", "rejected").Error
}
