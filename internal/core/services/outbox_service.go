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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox topics
const (
	TopicOfferCreated     = "offer.created"
	TopicOfferCountered   = "offer.countered"
	TopicOfferRejected    = "offer.rejected"
	TopicOfferAccepted    = "offer.accepted"
	TopicOfferExpired     = "offer.expired"
	TopicDealAdvanced     = "deal.advanced"
	TopicDealPaid         = "deal.paid"
	TopicQuoteSubmitted   = "transport.quote_submitted"
	TopicQuoteAccepted    = "transport.quote_accepted"
	TopicTransportUpdated = "transport.updated"
)

const (
	dispatchInterval = 10 * time.Second
	dispatchBatch    = 20
	maxAttempts      = 5
)

// OutboxService is the background dispatcher delivering recorded side
// effects at-least-once. Delivery failure never affects the transaction
// that recorded the event.
type OutboxService struct {
	db         *gorm.DB
	outboxRepo *repositories.OutboxRepository
	userRepo   repositories.UserRepository
	email      *EmailService
	stopChan   chan struct{}
	doneChan   chan struct{}
	running    bool
}

// NewOutboxService creates a new outbox dispatcher
func NewOutboxService(db *gorm.DB, outboxRepo *repositories.OutboxRepository, userRepo repositories.UserRepository, email *EmailService) *OutboxService {
	return &OutboxService{
		db:         db,
		outboxRepo: outboxRepo,
		userRepo:   userRepo,
		email:      email,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
}

// Start launches the dispatch loop
func (s *OutboxService) Start() {
	if s.running {
		return
	}
	s.running = true

	go func() {
		defer close(s.doneChan)
		ticker := time.NewTicker(dispatchInterval)
		defer ticker.Stop()

		log.Println("🚀 Outbox dispatcher started")
		for {
			select {
			case <-ticker.C:
				s.dispatchBatch()
			case <-s.stopChan:
				log.Println("🛑 Outbox dispatcher stopped")
				return
			}
		}
	}()
}

// Stop signals the dispatch loop to exit and waits for it
func (s *OutboxService) Stop() {
	if !s.running {
		return
	}
	s.running = false
	close(s.stopChan)
	<-s.doneChan
}

// NextBackoff returns the delay before the given retry: 1m, 2m, 4m, 8m...
func NextBackoff(attempts int) time.Duration {
	return time.Minute * time.Duration(1<<attempts)
}

// dispatchBatch claims due events under SKIP LOCKED and delivers them.
// Delivery happens inside the claiming transaction so a crashed dispatcher
// releases its claim.
func (s *OutboxService) dispatchBatch() {
	ctx := context.Background()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events, err := s.outboxRepo.WithTx(tx).GetDispatchable(ctx, dispatchBatch)
		if err != nil {
			return err
		}

		for _, event := range events {
			if err := s.deliver(ctx, event); err != nil {
				if event.Attempts+1 >= maxAttempts {
					log.Printf("❌ Outbox event %s permanently failed after %d attempts: %v", event.ID, event.Attempts+1, err)
					if err := s.outboxRepo.WithTx(tx).MarkFailed(ctx, event, err.Error()); err != nil {
						return err
					}
					continue
				}
				next := time.Now().Add(NextBackoff(event.Attempts))
				if err := s.outboxRepo.WithTx(tx).MarkRetry(ctx, event, next, err.Error()); err != nil {
					return err
				}
				continue
			}
			if err := s.outboxRepo.WithTx(tx).MarkSent(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Outbox dispatch failed: %v", err)
	}
}

// deliver routes an event to its channel. Unknown topics are treated as
// delivered so they cannot clog the queue.
func (s *OutboxService) deliver(ctx context.Context, event *models.OutboxEvent) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	switch event.Topic {
	case TopicOfferCreated:
		return s.notifyByEmail(ctx, payload, "seller_id", "New offer on your listing",
			"You have received a new offer on Farm Feed. Log in to review it.")
	case TopicOfferAccepted:
		if err := s.notifyByEmail(ctx, payload, "buyer_id", "Your offer was accepted",
			"Your offer was accepted and a deal has been created. Log in to arrange delivery."); err != nil {
			return err
		}
		return s.notifyByEmail(ctx, payload, "seller_id", "Deal confirmed",
			"You accepted an offer and a deal has been created. Log in to view the details.")
	case TopicOfferCountered:
		return s.notifyByEmail(ctx, payload, "buyer_id", "Counter-offer received",
			"The seller has countered your offer. Log in to respond.")
	case TopicOfferRejected:
		return s.notifyByEmail(ctx, payload, "buyer_id", "Offer declined",
			"The seller declined your offer. Browse other listings on Farm Feed.")
	case TopicOfferExpired:
		return s.notifyByEmail(ctx, payload, "buyer_id", "Offer expired",
			"Your offer expired before the seller responded.")
	case TopicQuoteAccepted:
		return s.notifyByEmail(ctx, payload, "transporter_id", "Transport quote accepted",
			"Your transport quote was selected. Log in to view the job details.")
	case TopicQuoteSubmitted:
		return s.notifyByEmail(ctx, payload, "requester_id", "New transport quote",
			"A transporter has quoted on your request. Log in to compare quotes.")
	case TopicDealAdvanced, TopicDealPaid, TopicTransportUpdated:
		// In-app notification already written transactionally; nothing to email.
		return nil
	default:
		log.Printf("⚠️ Unknown outbox topic %q, marking sent", event.Topic)
		return nil
	}
}

// notifyByEmail looks up the user referenced by the payload key and emails them
func (s *OutboxService) notifyByEmail(ctx context.Context, payload map[string]interface{}, key, subject, body string) error {
	raw, ok := payload[key].(string)
	if !ok {
		return fmt.Errorf("payload missing %s", key)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("payload %s is not a uuid: %w", key, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Recipient gone; nothing to deliver.
			return nil
		}
		return err
	}
	return s.email.Send(ctx, user.Email, subject, body)
}
