package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"farm-feed/internal/adapters/persistence/models"
	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ExpiryService runs the scheduled housekeeping sweeps: offers past their
// validity window move to expired, stale listings deactivate and expired
// refresh tokens are pruned.
type ExpiryService struct {
	db               *gorm.DB
	offerRepo        *repositories.OfferRepository
	listingRepo      *repositories.ListingRepository
	tokenRepo        repositories.RefreshTokenRepository
	notificationRepo *repositories.NotificationRepository
	outboxRepo       *repositories.OutboxRepository
	cron             *cron.Cron
}

// NewExpiryService creates a new expiry service
func NewExpiryService(
	db *gorm.DB,
	offerRepo *repositories.OfferRepository,
	listingRepo *repositories.ListingRepository,
	tokenRepo repositories.RefreshTokenRepository,
	notificationRepo *repositories.NotificationRepository,
	outboxRepo *repositories.OutboxRepository,
) *ExpiryService {
	return &ExpiryService{
		db:               db,
		offerRepo:        offerRepo,
		listingRepo:      listingRepo,
		tokenRepo:        tokenRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		cron:             cron.New(),
	}
}

// Start schedules the sweeps: offers and listings every 15 minutes, token
// cleanup daily at 03:00.
func (s *ExpiryService) Start() error {
	if _, err := s.cron.AddFunc("*/15 * * * *", s.sweepOffers); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/15 * * * *", s.sweepListings); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 3 * * *", s.sweepTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 Expiry scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (s *ExpiryService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Expiry scheduler stopped")
}

// sweepOffers expires negotiable offers whose validity window has passed
func (s *ExpiryService) sweepOffers() {
	ctx := context.Background()

	offers, err := s.offerRepo.ListExpirable(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Offer expiry sweep failed: %v", err)
		return
	}

	expired := 0
	for _, offer := range offers {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := s.offerRepo.WithTx(tx).GetByIDForUpdate(ctx, offer.ID)
			if err != nil {
				return err
			}
			if err := domain.OfferStatus(locked.Status).Transition(domain.OfferExpired); err != nil {
				// Already decided concurrently; leave it.
				return nil
			}

			locked.Status = string(domain.OfferExpired)
			if err := s.offerRepo.WithTx(tx).Update(ctx, locked); err != nil {
				return err
			}

			if err := s.offerRepo.WithTx(tx).CreateNegotiationEntry(ctx, &models.NegotiationEntry{
				OfferID:      locked.ID,
				ActorID:      locked.BuyerID,
				Action:       models.NegotiationExpire,
				PricePerTon:  locked.PricePerTon,
				QuantityTons: locked.QuantityTons,
			}); err != nil {
				return err
			}
			if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
				UserID:    locked.BuyerID,
				Type:      "offer_expired",
				Title:     "Offer expired",
				Message:   "Your offer expired before the seller responded",
				RelatedID: &locked.ID,
			}); err != nil {
				return err
			}

			payload, err := json.Marshal(map[string]interface{}{
				"offer_id": locked.ID,
				"buyer_id": locked.BuyerID,
			})
			if err != nil {
				return err
			}
			return s.outboxRepo.WithTx(tx).Create(ctx, &models.OutboxEvent{
				Topic:   TopicOfferExpired,
				Payload: payload,
				Status:  models.OutboxPending,
			})
		})
		if err != nil {
			log.Printf("❌ Failed to expire offer %s: %v", offer.ID, err)
			continue
		}
		expired++
	}

	if expired > 0 {
		log.Printf("✅ Expired %d offers", expired)
	}
}

// sweepListings deactivates active listings past their expiry date
func (s *ExpiryService) sweepListings() {
	ctx := context.Background()

	listings, err := s.listingRepo.ListExpiredActive(ctx, time.Now())
	if err != nil {
		log.Printf("❌ Listing expiry sweep failed: %v", err)
		return
	}

	for _, listing := range listings {
		listing.IsActive = false
		if err := s.listingRepo.Update(ctx, listing); err != nil {
			log.Printf("❌ Failed to deactivate listing %s: %v", listing.ID, err)
		}
	}

	if len(listings) > 0 {
		log.Printf("✅ Deactivated %d expired listings", len(listings))
	}
}

// sweepTokens prunes expired refresh tokens
func (s *ExpiryService) sweepTokens() {
	if err := s.tokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Refresh token cleanup failed: %v", err)
	}
}
