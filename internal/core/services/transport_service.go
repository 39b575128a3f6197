package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound = errors.New("transport request not found")
	ErrQuoteNotFound   = errors.New("transport quote not found")
	ErrNotRequester    = errors.New("only the requester may manage this request")
	ErrNotQuoteOwner   = errors.New("only the quoting transporter may perform this action")
	ErrAlreadyQuoted   = errors.New("transporter already quoted on this request")
	ErrOwnRequest      = errors.New("cannot quote on your own request")
	ErrRequestClosed   = errors.New("transport request is no longer accepting quotes")
)

// TransportService handles transport requests and quoting
type TransportService struct {
	db               *gorm.DB
	transportRepo    *repositories.TransportRepository
	dealRepo         *repositories.DealRepository
	userRepo         repositories.UserRepository
	notificationRepo *repositories.NotificationRepository
	outboxRepo       *repositories.OutboxRepository
}

// NewTransportService creates a new transport service
func NewTransportService(
	db *gorm.DB,
	transportRepo *repositories.TransportRepository,
	dealRepo *repositories.DealRepository,
	userRepo repositories.UserRepository,
	notificationRepo *repositories.NotificationRepository,
	outboxRepo *repositories.OutboxRepository,
) *TransportService {
	return &TransportService{
		db:               db,
		transportRepo:    transportRepo,
		dealRepo:         dealRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
	}
}

// CreateRequestRequest is the transport request input
type CreateRequestRequest struct {
	DealID        *uuid.UUID `json:"deal_id"`
	ProductName   string     `json:"product_name" validate:"required,max=100"`
	Origin        string     `json:"origin" validate:"required,max=200"`
	Destination   string     `json:"destination" validate:"required,max=200"`
	QuantityTons  float64    `json:"quantity_tons" validate:"required,gt=0"`
	PreferredDate *time.Time `json:"preferred_date"`
	BudgetZAR     *float64   `json:"budget_zar" validate:"omitempty,gt=0"`
}

// CreateQuoteRequest is the transporter bid input
type CreateQuoteRequest struct {
	PriceZAR      float64 `json:"price_zar" validate:"required,gt=0"`
	EstimatedDays int     `json:"estimated_days" validate:"required,gt=0"`
	Message       string  `json:"message" validate:"omitempty,max=2000"`
}

// CreateRequest posts a shipping need, quota-gated by the requester's plan
func (s *TransportService) CreateRequest(ctx context.Context, requesterID uuid.UUID, req *CreateRequestRequest) (*models.TransportRequest, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plan := domain.PlanByCode(requester.PlanCode)
	used, err := s.transportRepo.CountRequestsByRequesterSince(ctx, requesterID, MonthStart(time.Now()))
	if err != nil {
		return nil, err
	}
	if !domain.WithinQuota(plan.MonthlyTransportRequests, used) {
		return nil, domain.ErrQuotaExceeded
	}

	if req.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *req.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDealNotFound
			}
			return nil, err
		}
		if deal.BuyerID != requesterID && deal.SellerID != requesterID {
			return nil, ErrNotDealParty
		}
	}

	request := &models.TransportRequest{
		RequesterID:   requesterID,
		DealID:        req.DealID,
		ProductName:   req.ProductName,
		Origin:        req.Origin,
		Destination:   req.Destination,
		QuantityTons:  req.QuantityTons,
		PreferredDate: req.PreferredDate,
		BudgetZAR:     req.BudgetZAR,
		Status:        string(domain.RequestOpen),
	}
	if err := s.transportRepo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// GetRequest returns a transport request with its quotes
func (s *TransportService) GetRequest(ctx context.Context, id uuid.UUID) (*models.TransportRequest, error) {
	request, err := s.transportRepo.GetRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// ListOpenRequests lists requests still accepting quotes
func (s *TransportService) ListOpenRequests(ctx context.Context, offset, limit int) ([]*models.TransportRequest, int64, error) {
	return s.transportRepo.ListOpenRequests(ctx, offset, limit)
}

// ListMyRequests lists the user's own transport requests
func (s *TransportService) ListMyRequests(ctx context.Context, requesterID uuid.UUID, offset, limit int) ([]*models.TransportRequest, int64, error) {
	return s.transportRepo.ListRequestsByRequester(ctx, requesterID, offset, limit)
}

// CreateQuote submits a transporter's bid. The first quote flips the request
// from open to quoted; a deal-linked request also advances its deal.
func (s *TransportService) CreateQuote(ctx context.Context, transporterID, requestID uuid.UUID, req *CreateQuoteRequest) (*models.TransportQuote, error) {
	transporter, err := s.userRepo.GetByID(ctx, transporterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !domain.HasCapability(transporter.Capabilities, domain.CapabilityTransport) {
		return nil, domain.ErrCapabilityMissing
	}

	var quote *models.TransportQuote
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := s.transportRepo.WithTx(tx).GetRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.RequesterID == transporterID {
			return ErrOwnRequest
		}

		status := domain.TransportRequestStatus(request.Status)
		if status != domain.RequestOpen && status != domain.RequestQuoted {
			return ErrRequestClosed
		}

		if _, err := s.transportRepo.WithTx(tx).GetQuoteByRequestAndTransporter(ctx, requestID, transporterID); err == nil {
			return ErrAlreadyQuoted
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		quote = &models.TransportQuote{
			RequestID:     requestID,
			TransporterID: transporterID,
			PriceZAR:      req.PriceZAR,
			EstimatedDays: req.EstimatedDays,
			Message:       req.Message,
			Status:        string(domain.QuotePending),
		}
		if err := s.transportRepo.WithTx(tx).CreateQuote(ctx, quote); err != nil {
			return err
		}

		if status == domain.RequestOpen {
			if err := status.Transition(domain.RequestQuoted); err != nil {
				return err
			}
			request.Status = string(domain.RequestQuoted)
			if err := s.transportRepo.WithTx(tx).UpdateRequest(ctx, request); err != nil {
				return err
			}
		}

		if request.DealID != nil {
			if err := s.advanceLinkedDeal(ctx, tx, *request.DealID, domain.DealTransportQuoted, transporterID); err != nil {
				return err
			}
		}

		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    request.RequesterID,
			Type:      "quote_received",
			Title:     "New transport quote",
			Message:   fmt.Sprintf("%s quoted R%.2f (%d days) for %s to %s", transporter.FullName, req.PriceZAR, req.EstimatedDays, request.Origin, request.Destination),
			RelatedID: &quote.ID,
		}); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, TopicQuoteSubmitted, map[string]interface{}{
			"request_id":   requestID,
			"quote_id":     quote.ID,
			"requester_id": request.RequesterID,
		})
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// AcceptQuote selects the winning quote in a single transaction: the winner
// is accepted, every sibling pending quote is rejected and the request
// advances. Exactly one quote per request can ever be accepted.
func (s *TransportService) AcceptQuote(ctx context.Context, requesterID, quoteID uuid.UUID) (*models.TransportQuote, error) {
	var quote *models.TransportQuote

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		quote, err = s.transportRepo.WithTx(tx).GetQuoteByIDForUpdate(ctx, quoteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuoteNotFound
			}
			return err
		}

		request, err := s.transportRepo.WithTx(tx).GetRequestByIDForUpdate(ctx, quote.RequestID)
		if err != nil {
			return err
		}
		if request.RequesterID != requesterID {
			return ErrNotRequester
		}

		if err := domain.TransportQuoteStatus(quote.Status).Transition(domain.QuoteAccepted); err != nil {
			return err
		}
		if err := domain.TransportRequestStatus(request.Status).Transition(domain.RequestAccepted); err != nil {
			return err
		}

		quote.Status = string(domain.QuoteAccepted)
		if err := s.transportRepo.WithTx(tx).UpdateQuote(ctx, quote); err != nil {
			return err
		}
		if err := s.transportRepo.WithTx(tx).RejectSiblingQuotes(ctx, request.ID, quote.ID); err != nil {
			return err
		}

		request.Status = string(domain.RequestAccepted)
		if err := s.transportRepo.WithTx(tx).UpdateRequest(ctx, request); err != nil {
			return err
		}

		if request.DealID != nil {
			if err := s.advanceLinkedDeal(ctx, tx, *request.DealID, domain.DealTransportSelected, requesterID); err != nil {
				return err
			}
		}

		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    quote.TransporterID,
			Type:      "quote_accepted",
			Title:     "Your quote was accepted",
			Message:   fmt.Sprintf("Your R%.2f quote for %s to %s was selected", quote.PriceZAR, request.Origin, request.Destination),
			RelatedID: &quote.ID,
		}); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, TopicQuoteAccepted, map[string]interface{}{
			"request_id":     request.ID,
			"quote_id":       quote.ID,
			"transporter_id": quote.TransporterID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Transport quote %s accepted for request %s", quote.ID, quote.RequestID)
	return quote, nil
}

// StartTransport moves an accepted request to in_progress. Winning transporter only.
func (s *TransportService) StartTransport(ctx context.Context, transporterID, requestID uuid.UUID) (*models.TransportRequest, error) {
	return s.progressRequest(ctx, transporterID, requestID, domain.RequestInProgress, "transport_started", "Transport has started")
}

// CompleteTransport moves an in_progress request to completed. Winning transporter only.
func (s *TransportService) CompleteTransport(ctx context.Context, transporterID, requestID uuid.UUID) (*models.TransportRequest, error) {
	return s.progressRequest(ctx, transporterID, requestID, domain.RequestCompleted, "transport_completed", "Transport has been completed")
}

// CancelRequest cancels a request that has not yet completed. Requester only.
func (s *TransportService) CancelRequest(ctx context.Context, requesterID, requestID uuid.UUID) (*models.TransportRequest, error) {
	var request *models.TransportRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.transportRepo.WithTx(tx).GetRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.RequesterID != requesterID {
			return ErrNotRequester
		}
		if err := domain.TransportRequestStatus(request.Status).Transition(domain.RequestCancelled); err != nil {
			return err
		}

		request.Status = string(domain.RequestCancelled)
		return s.transportRepo.WithTx(tx).UpdateRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ListMyQuotes lists the transporter's submitted quotes
func (s *TransportService) ListMyQuotes(ctx context.Context, transporterID uuid.UUID, offset, limit int) ([]*models.TransportQuote, int64, error) {
	return s.transportRepo.ListQuotesByTransporter(ctx, transporterID, offset, limit)
}

// progressRequest applies a forward request transition driven by the winning transporter
func (s *TransportService) progressRequest(ctx context.Context, transporterID, requestID uuid.UUID, target domain.TransportRequestStatus, notifType, notifMessage string) (*models.TransportRequest, error) {
	var request *models.TransportRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = s.transportRepo.WithTx(tx).GetRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		winner, err := s.transportRepo.WithTx(tx).GetQuoteByRequestAndTransporter(ctx, requestID, transporterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotQuoteOwner
			}
			return err
		}
		if winner.Status != string(domain.QuoteAccepted) {
			return ErrNotQuoteOwner
		}

		if err := domain.TransportRequestStatus(request.Status).Transition(target); err != nil {
			return err
		}
		request.Status = string(target)
		if err := s.transportRepo.WithTx(tx).UpdateRequest(ctx, request); err != nil {
			return err
		}

		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    request.RequesterID,
			Type:      notifType,
			Title:     notifMessage,
			Message:   fmt.Sprintf("%s to %s: %s", request.Origin, request.Destination, notifMessage),
			RelatedID: &request.ID,
		}); err != nil {
			return err
		}
		return s.enqueue(ctx, tx, TopicTransportUpdated, map[string]interface{}{
			"request_id": request.ID,
			"status":     request.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// advanceLinkedDeal moves the linked deal forward when the transport flow
// reaches the matching milestone. A deal already past the milestone is left
// untouched.
func (s *TransportService) advanceLinkedDeal(ctx context.Context, tx *gorm.DB, dealID uuid.UUID, target domain.DealStatus, performedBy uuid.UUID) error {
	deal, err := s.dealRepo.WithTx(tx).GetByIDForUpdate(ctx, dealID)
	if err != nil {
		return err
	}

	from := domain.DealStatus(deal.Status)
	if !from.CanTransition(target) {
		return nil
	}

	deal.Status = string(target)
	if err := s.dealRepo.WithTx(tx).Update(ctx, deal); err != nil {
		return err
	}
	return s.dealRepo.WithTx(tx).CreateEvent(ctx, &models.DealEvent{
		DealID:      deal.ID,
		FromStatus:  string(from),
		ToStatus:    string(target),
		Description: "Transport milestone reached",
		PerformedBy: performedBy,
	})
}

// enqueue records an outbox event inside the caller's transaction
func (s *TransportService) enqueue(ctx context.Context, tx *gorm.DB, topic string, payload map[string]interface{}) error {
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
