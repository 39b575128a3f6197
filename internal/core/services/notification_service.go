package services

import (
	"context"
	"errors"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrChatNotIncluded      = errors.New("chat is not included in the current plan")
)

// NotificationService handles in-app notifications and deal messaging
type NotificationService struct {
	notificationRepo *repositories.NotificationRepository
	dealRepo         *repositories.DealRepository
	userRepo         repositories.UserRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo *repositories.NotificationRepository,
	dealRepo *repositories.DealRepository,
	userRepo repositories.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		dealRepo:         dealRepo,
		userRepo:         userRepo,
	}
}

// SendMessageRequest is a chat message within a deal
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// List returns the user's notifications
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, userID, offset, limit)
}

// UnreadCount returns the user's unread notification count
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks all of the user's notifications as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

// SendMessage sends a chat message to the deal counterparty. Gated by the
// sender's plan chat access.
func (s *NotificationService) SendMessage(ctx context.Context, senderID, dealID uuid.UUID, req *SendMessageRequest) (*models.Message, error) {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !domain.PlanByCode(sender.PlanCode).ChatAccess {
		return nil, ErrChatNotIncluded
	}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	if deal.BuyerID != senderID && deal.SellerID != senderID {
		return nil, ErrNotDealParty
	}

	recipientID := deal.SellerID
	if senderID == deal.SellerID {
		recipientID = deal.BuyerID
	}

	message := &models.Message{
		DealID:      &deal.ID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        req.Body,
	}
	if err := s.notificationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a deal's chat history for one of its parties
func (s *NotificationService) ListMessages(ctx context.Context, userID, dealID uuid.UUID, offset, limit int) ([]*models.Message, int64, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrDealNotFound
		}
		return nil, 0, err
	}
	if deal.BuyerID != userID && deal.SellerID != userID {
		return nil, 0, ErrNotDealParty
	}
	return s.notificationRepo.ListMessagesByDeal(ctx, dealID, offset, limit)
}
