package repositories

import (
	"context"

	"farm-feed/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FicaRepository handles FICA document data access
type FicaRepository struct {
	db *gorm.DB
}

// NewFicaRepository creates a new FICA repository
func NewFicaRepository(db *gorm.DB) *FicaRepository {
	return &FicaRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *FicaRepository) WithTx(tx *gorm.DB) *FicaRepository {
	return &FicaRepository{db: tx}
}

// Create creates a new FICA document record
func (r *FicaRepository) Create(ctx context.Context, doc *models.FicaDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// GetByID gets a FICA document by ID
func (r *FicaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FicaDocument, error) {
	var doc models.FicaDocument
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&doc).Error
	return &doc, err
}

// ListByUser lists all FICA documents for a user
func (r *FicaRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.FicaDocument, error) {
	var docs []*models.FicaDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

// GetByUserAndType gets the latest document of a type for a user
func (r *FicaRepository) GetByUserAndType(ctx context.Context, userID uuid.UUID, docType string) (*models.FicaDocument, error) {
	var doc models.FicaDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND doc_type = ?", userID, docType).
		Order("created_at DESC").
		First(&doc).Error
	return &doc, err
}

// ListPending lists documents awaiting admin review
func (r *FicaRepository) ListPending(ctx context.Context, offset, limit int) ([]*models.FicaDocument, int64, error) {
	var docs []*models.FicaDocument
	var total int64

	r.db.WithContext(ctx).Model(&models.FicaDocument{}).
		Where("status = ?", "pending").Count(&total)

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", "pending").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&docs).Error

	return docs, total, err
}

// Update updates a FICA document
func (r *FicaRepository) Update(ctx context.Context, doc *models.FicaDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// CountByUserAndStatus counts a user's documents in a given status
func (r *FicaRepository) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FicaDocument{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}
