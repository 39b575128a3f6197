package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDealNotFound   = errors.New("deal not found")
	ErrNotDealParty   = errors.New("not a party to this deal")
	ErrUnknownStatus  = errors.New("unknown deal status")
	ErrDealNotPaid    = errors.New("deal payment is not marked as paid")
	ErrAlreadyPaid    = errors.New("deal is already marked as paid")
	ErrCancelledDeal  = errors.New("deal has been cancelled")
	ErrReasonRequired = errors.New("cancel reason is required")
)

// DealService handles the deal lifecycle
type DealService struct {
	db               *gorm.DB
	dealRepo         *repositories.DealRepository
	userRepo         repositories.UserRepository
	notificationRepo *repositories.NotificationRepository
	outboxRepo       *repositories.OutboxRepository
}

// NewDealService creates a new deal service
func NewDealService(
	db *gorm.DB,
	dealRepo *repositories.DealRepository,
	userRepo repositories.UserRepository,
	notificationRepo *repositories.NotificationRepository,
	outboxRepo *repositories.OutboxRepository,
) *DealService {
	return &DealService{
		db:               db,
		dealRepo:         dealRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
	}
}

// AdvanceDealRequest moves a deal to the named status
type AdvanceDealRequest struct {
	Status      string `json:"status" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// CancelDealRequest cancels a deal with a reason
type CancelDealRequest struct {
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// Get returns a deal visible only to its parties
func (s *DealService) Get(ctx context.Context, userID, dealID uuid.UUID) (*models.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	if deal.BuyerID != userID && deal.SellerID != userID {
		return nil, ErrNotDealParty
	}
	return deal, nil
}

// List lists the user's deals
func (s *DealService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Deal, int64, error) {
	return s.dealRepo.ListByParty(ctx, userID, offset, limit)
}

// Events returns the audit trail for a deal
func (s *DealService) Events(ctx context.Context, userID, dealID uuid.UUID) ([]*models.DealEvent, error) {
	if _, err := s.Get(ctx, userID, dealID); err != nil {
		return nil, err
	}
	return s.dealRepo.GetEvents(ctx, dealID)
}

// Advance moves a deal forward through its lifecycle. The transition table
// rejects every backward or skipping move.
func (s *DealService) Advance(ctx context.Context, userID, dealID uuid.UUID, req *AdvanceDealRequest) (*models.Deal, error) {
	if !domain.ValidDealStatus(req.Status) {
		return nil, ErrUnknownStatus
	}
	target := domain.DealStatus(req.Status)

	var deal *models.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deal, err = s.dealRepo.WithTx(tx).GetByIDForUpdate(ctx, dealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDealNotFound
			}
			return err
		}
		if deal.BuyerID != userID && deal.SellerID != userID {
			return ErrNotDealParty
		}

		// Completion requires a settled payment.
		if target == domain.DealCompleted && deal.PaymentStatus != string(domain.PaymentPaid) {
			return ErrDealNotPaid
		}

		return s.transition(ctx, tx, deal, target, req.Description, userID)
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// MarkPaid marks a deal's payment as settled. Buyer only.
func (s *DealService) MarkPaid(ctx context.Context, userID, dealID uuid.UUID) (*models.Deal, error) {
	var deal *models.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deal, err = s.dealRepo.WithTx(tx).GetByIDForUpdate(ctx, dealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDealNotFound
			}
			return err
		}
		if deal.BuyerID != userID {
			return ErrNotDealParty
		}
		if domain.DealStatus(deal.Status) == domain.DealCancelled {
			return ErrCancelledDeal
		}
		if deal.PaymentStatus == string(domain.PaymentPaid) {
			return ErrAlreadyPaid
		}

		deal.PaymentStatus = string(domain.PaymentPaid)
		if err := s.dealRepo.WithTx(tx).Update(ctx, deal); err != nil {
			return err
		}

		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    deal.SellerID,
			Type:      "payment_received",
			Title:     "Payment marked as paid",
			Message:   fmt.Sprintf("Payment of R%.2f recorded for your deal", deal.TotalAmount),
			RelatedID: &deal.ID,
		}); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, TopicDealPaid, map[string]interface{}{
			"deal_id": deal.ID,
			"amount":  deal.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// Cancel cancels a deal from any non-terminal state
func (s *DealService) Cancel(ctx context.Context, userID, dealID uuid.UUID, req *CancelDealRequest) (*models.Deal, error) {
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}

	var deal *models.Deal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deal, err = s.dealRepo.WithTx(tx).GetByIDForUpdate(ctx, dealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDealNotFound
			}
			return err
		}
		if deal.BuyerID != userID && deal.SellerID != userID {
			return ErrNotDealParty
		}

		deal.CancelReason = req.Reason
		return s.transition(ctx, tx, deal, domain.DealCancelled, req.Reason, userID)
	})
	if err != nil {
		return nil, err
	}
	return deal, nil
}

// transition applies a validated status change with its audit row,
// notifications and outbox record. Must run inside the caller's transaction.
func (s *DealService) transition(ctx context.Context, tx *gorm.DB, deal *models.Deal, target domain.DealStatus, description string, performedBy uuid.UUID) error {
	from := domain.DealStatus(deal.Status)
	if err := from.Transition(target); err != nil {
		return err
	}

	deal.Status = string(target)
	if err := s.dealRepo.WithTx(tx).Update(ctx, deal); err != nil {
		return err
	}

	if err := s.dealRepo.WithTx(tx).CreateEvent(ctx, &models.DealEvent{
		DealID:      deal.ID,
		FromStatus:  string(from),
		ToStatus:    string(target),
		Description: description,
		PerformedBy: performedBy,
	}); err != nil {
		return err
	}

	// Completed deals count toward both parties' track record.
	if target == domain.DealCompleted {
		for _, partyID := range []uuid.UUID{deal.BuyerID, deal.SellerID} {
			if err := tx.WithContext(ctx).
				Model(&models.User{}).
				Where("id = ?", partyID).
				UpdateColumn("deals_done", gorm.Expr("deals_done + 1")).Error; err != nil {
				return err
			}
		}
	}

	counterparty := deal.SellerID
	if performedBy == deal.SellerID {
		counterparty = deal.BuyerID
	}
	if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
		UserID:    counterparty,
		Type:      "deal_updated",
		Title:     "Deal status updated",
		Message:   fmt.Sprintf("Deal moved from %s to %s", from, target),
		RelatedID: &deal.ID,
	}); err != nil {
		return err
	}

	return s.enqueue(ctx, tx, TopicDealAdvanced, map[string]interface{}{
		"deal_id": deal.ID,
		"from":    from,
		"to":      target,
	})
}

// enqueue records an outbox event inside the caller's transaction
func (s *DealService) enqueue(ctx context.Context, tx *gorm.DB, topic string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, &models.OutboxEvent{
		Topic:   topic,
		Payload: body,
		Status:  models.OutboxPending,
	})
}
