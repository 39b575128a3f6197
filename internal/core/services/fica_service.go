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
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocType   = errors.New("invalid document type")
	ErrRejectionReason  = errors.New("a rejection reason is required")
)

// requiredDocTypes is the full FICA document set for a verified account.
var requiredDocTypes = []string{
	models.FicaDocID,
	models.FicaDocBusiness,
	models.FicaDocBank,
	models.FicaDocProofAddress,
}

// FicaService handles compliance documents and verification
type FicaService struct {
	ficaRepo *repositories.FicaRepository
	userRepo repositories.UserRepository
}

// NewFicaService creates a new FICA service
func NewFicaService(ficaRepo *repositories.FicaRepository, userRepo repositories.UserRepository) *FicaService {
	return &FicaService{ficaRepo: ficaRepo, userRepo: userRepo}
}

// UploadDocumentRequest records document metadata; bytes live in object storage
type UploadDocumentRequest struct {
	DocType  string `json:"doc_type" validate:"required,oneof=id_document business_registration bank_statement proof_of_address"`
	FileName string `json:"file_name" validate:"required,max=200"`
	FileURL  string `json:"file_url" validate:"required,url,max=500"`
}

// RejectDocumentRequest rejects a document with a reason
type RejectDocumentRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// ComplianceReport summarises a user's FICA standing
type ComplianceReport struct {
	UserID          uuid.UUID              `json:"user_id"`
	Status          string                 `json:"status"`
	ComplianceScore int                    `json:"compliance_score"`
	RiskLevel       string                 `json:"risk_level"`
	Documents       []*models.FicaDocument `json:"documents"`
}

func validDocType(t string) bool {
	for _, dt := range requiredDocTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// Upload records an uploaded compliance document. A re-upload of a
// previously rejected type resets the aggregate status to pending.
func (s *FicaService) Upload(ctx context.Context, userID uuid.UUID, req *UploadDocumentRequest) (*models.FicaDocument, error) {
	if !validDocType(req.DocType) {
		return nil, ErrInvalidDocType
	}

	doc := &models.FicaDocument{
		UserID:   userID,
		DocType:  req.DocType,
		FileName: req.FileName,
		FileURL:  req.FileURL,
		Status:   string(domain.FicaPending),
	}
	if err := s.ficaRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.recomputeAggregate(ctx, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListMine lists the user's own documents
func (s *FicaService) ListMine(ctx context.Context, userID uuid.UUID) ([]*models.FicaDocument, error) {
	return s.ficaRepo.ListByUser(ctx, userID)
}

// ListPending lists documents awaiting review (admin)
func (s *FicaService) ListPending(ctx context.Context, offset, limit int) ([]*models.FicaDocument, int64, error) {
	return s.ficaRepo.ListPending(ctx, offset, limit)
}

// Verify marks a document as verified (admin)
func (s *FicaService) Verify(ctx context.Context, adminID, docID uuid.UUID) (*models.FicaDocument, error) {
	doc, err := s.ficaRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	now := time.Now()
	doc.Status = string(domain.FicaVerified)
	doc.RejectReason = ""
	doc.VerifiedBy = &adminID
	doc.VerifiedAt = &now
	if err := s.ficaRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.recomputeAggregate(ctx, doc.UserID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Reject marks a document as rejected with a reason (admin)
func (s *FicaService) Reject(ctx context.Context, adminID, docID uuid.UUID, req *RejectDocumentRequest) (*models.FicaDocument, error) {
	if req.Reason == "" {
		return nil, ErrRejectionReason
	}

	doc, err := s.ficaRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	now := time.Now()
	doc.Status = string(domain.FicaRejected)
	doc.RejectReason = req.Reason
	doc.VerifiedBy = &adminID
	doc.VerifiedAt = &now
	if err := s.ficaRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.recomputeAggregate(ctx, doc.UserID); err != nil {
		return nil, err
	}
	return doc, nil
}

// Report builds the compliance report: score over the submitted document
// set and the derived risk level.
func (s *FicaService) Report(ctx context.Context, userID uuid.UUID) (*ComplianceReport, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	docs, err := s.ficaRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verified := 0
	for _, doc := range docs {
		if doc.Status == string(domain.FicaVerified) {
			verified++
		}
	}

	score := domain.ComplianceScore(verified, len(docs))
	return &ComplianceReport{
		UserID:          userID,
		Status:          user.FicaStatus,
		ComplianceScore: score,
		RiskLevel:       domain.RiskLevel(score),
		Documents:       docs,
	}, nil
}

// recomputeAggregate derives the user's overall FICA status from the latest
// document per type: any rejected -> rejected, full verified set -> verified,
// otherwise pending.
func (s *FicaService) recomputeAggregate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	latestByType := make(map[string]string, len(requiredDocTypes))
	for _, docType := range requiredDocTypes {
		doc, err := s.ficaRepo.GetByUserAndType(ctx, userID, docType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		latestByType[docType] = doc.Status
	}

	aggregate := domain.FicaVerified
	for _, docType := range requiredDocTypes {
		status, ok := latestByType[docType]
		if !ok || status == string(domain.FicaPending) {
			aggregate = domain.FicaPending
			continue
		}
		if status == string(domain.FicaRejected) {
			aggregate = domain.FicaRejected
			break
		}
	}
	if len(latestByType) == 0 {
		aggregate = domain.FicaPending
	}

	user.FicaStatus = string(aggregate)
	user.IsVerified = aggregate == domain.FicaVerified
	return s.userRepo.Update(ctx, user)
}
