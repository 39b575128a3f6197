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
	ErrOfferNotFound  = errors.New("offer not found")
	ErrOwnListing     = errors.New("cannot make an offer on your own listing")
	ErrNotOfferParty  = errors.New("not a party to this offer")
	ErrNotOfferSeller = errors.New("only the seller may respond to this offer")
	ErrOfferExpired   = errors.New("offer has expired")
)

// OfferValidityDays is how long a new offer stays open for the seller.
const OfferValidityDays = 7

// OfferService handles offers and negotiation
type OfferService struct {
	db               *gorm.DB
	offerRepo        *repositories.OfferRepository
	listingRepo      *repositories.ListingRepository
	dealRepo         *repositories.DealRepository
	notificationRepo *repositories.NotificationRepository
	outboxRepo       *repositories.OutboxRepository
	userRepo         repositories.UserRepository
}

// NewOfferService creates a new offer service
func NewOfferService(
	db *gorm.DB,
	offerRepo *repositories.OfferRepository,
	listingRepo *repositories.ListingRepository,
	dealRepo *repositories.DealRepository,
	notificationRepo *repositories.NotificationRepository,
	outboxRepo *repositories.OutboxRepository,
	userRepo repositories.UserRepository,
) *OfferService {
	return &OfferService{
		db:               db,
		offerRepo:        offerRepo,
		listingRepo:      listingRepo,
		dealRepo:         dealRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		userRepo:         userRepo,
	}
}

// CreateOfferRequest is the offer creation input
type CreateOfferRequest struct {
	ListingID     uuid.UUID `json:"listing_id" validate:"required"`
	PricePerTon   float64   `json:"price_per_ton" validate:"required,gt=0"`
	QuantityTons  float64   `json:"quantity_tons" validate:"required,gt=0"`
	DeliveryTerms string    `json:"delivery_terms" validate:"omitempty,max=100"`
	Message       string    `json:"message" validate:"omitempty,max=2000"`
}

// CounterOfferRequest is the seller's counter input
type CounterOfferRequest struct {
	CounterPrice    float64 `json:"counter_price" validate:"required,gt=0"`
	CounterQuantity float64 `json:"counter_quantity" validate:"required,gt=0"`
	Message         string  `json:"message" validate:"omitempty,max=2000"`
}

// AcceptOfferResult bundles the accepted offer with its deal
type AcceptOfferResult struct {
	Offer *models.Offer `json:"offer"`
	Deal  *models.Deal  `json:"deal"`
}

// Create makes an offer against a listing. Quantity and price are
// re-validated server-side regardless of what the client displayed.
func (s *OfferService) Create(ctx context.Context, buyerID uuid.UUID, req *CreateOfferRequest) (*models.Offer, error) {
	buyer, err := s.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !domain.HasCapability(buyer.Capabilities, domain.CapabilityBuy) {
		return nil, domain.ErrCapabilityMissing
	}

	plan := domain.PlanByCode(buyer.PlanCode)
	used, err := s.offerRepo.CountByBuyerSince(ctx, buyerID, MonthStart(time.Now()))
	if err != nil {
		return nil, err
	}
	if !domain.WithinQuota(plan.QuotaFor(domain.CapabilityBuy), used) {
		return nil, domain.ErrQuotaExceeded
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if !listing.IsActive {
		return nil, ErrListingInactive
	}
	if listing.SellerID == buyerID {
		return nil, ErrOwnListing
	}
	if req.QuantityTons > listing.AvailableTons {
		return nil, domain.ErrInsufficientStock
	}

	offer := &models.Offer{
		ListingID:     listing.ID,
		BuyerID:       buyerID,
		SellerID:      listing.SellerID,
		PricePerTon:   req.PricePerTon,
		QuantityTons:  req.QuantityTons,
		DeliveryTerms: req.DeliveryTerms,
		Message:       req.Message,
		Status:        string(domain.OfferPending),
		ExpiresAt:     time.Now().AddDate(0, 0, OfferValidityDays),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.offerRepo.WithTx(tx).Create(ctx, offer); err != nil {
			return err
		}
		if err := s.offerRepo.WithTx(tx).CreateNegotiationEntry(ctx, &models.NegotiationEntry{
			OfferID:      offer.ID,
			ActorID:      buyerID,
			Action:       models.NegotiationOffer,
			PricePerTon:  req.PricePerTon,
			QuantityTons: req.QuantityTons,
			Message:      req.Message,
		}); err != nil {
			return err
		}
		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    listing.SellerID,
			Type:      "offer_received",
			Title:     "New offer received",
			Message:   fmt.Sprintf("%s offered R%.2f/ton for %.1f tons of %s", buyer.FullName, req.PricePerTon, req.QuantityTons, listing.Title),
			RelatedID: &offer.ID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, TopicOfferCreated, map[string]interface{}{
			"offer_id":   offer.ID,
			"listing_id": listing.ID,
			"buyer_id":   buyerID,
			"seller_id":  listing.SellerID,
		})
	})
	if err != nil {
		return nil, err
	}

	return offer, nil
}

// Counter records the seller's counter terms. The offer stays negotiable.
func (s *OfferService) Counter(ctx context.Context, sellerID, offerID uuid.UUID, req *CounterOfferRequest) (*models.Offer, error) {
	var offer *models.Offer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		offer, err = s.offerRepo.WithTx(tx).GetByIDForUpdate(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.SellerID != sellerID {
			return ErrNotOfferSeller
		}
		if time.Now().After(offer.ExpiresAt) {
			return ErrOfferExpired
		}
		if err := domain.OfferStatus(offer.Status).Transition(domain.OfferCountered); err != nil {
			return err
		}

		offer.Status = string(domain.OfferCountered)
		offer.CounterPrice = &req.CounterPrice
		offer.CounterQuantity = &req.CounterQuantity
		offer.CounterMessage = req.Message
		if err := s.offerRepo.WithTx(tx).Update(ctx, offer); err != nil {
			return err
		}

		if err := s.offerRepo.WithTx(tx).CreateNegotiationEntry(ctx, &models.NegotiationEntry{
			OfferID:      offer.ID,
			ActorID:      sellerID,
			Action:       models.NegotiationCounter,
			PricePerTon:  req.CounterPrice,
			QuantityTons: req.CounterQuantity,
			Message:      req.Message,
		}); err != nil {
			return err
		}
		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    offer.BuyerID,
			Type:      "offer_countered",
			Title:     "Counter-offer received",
			Message:   fmt.Sprintf("The seller countered with R%.2f/ton for %.1f tons", req.CounterPrice, req.CounterQuantity),
			RelatedID: &offer.ID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, TopicOfferCountered, map[string]interface{}{
			"offer_id": offer.ID,
			"buyer_id": offer.BuyerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Reject declines an offer. Terminal.
func (s *OfferService) Reject(ctx context.Context, sellerID, offerID uuid.UUID) (*models.Offer, error) {
	var offer *models.Offer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		offer, err = s.offerRepo.WithTx(tx).GetByIDForUpdate(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.SellerID != sellerID {
			return ErrNotOfferSeller
		}
		if err := domain.OfferStatus(offer.Status).Transition(domain.OfferRejected); err != nil {
			return err
		}

		offer.Status = string(domain.OfferRejected)
		if err := s.offerRepo.WithTx(tx).Update(ctx, offer); err != nil {
			return err
		}

		if err := s.offerRepo.WithTx(tx).CreateNegotiationEntry(ctx, &models.NegotiationEntry{
			OfferID:      offer.ID,
			ActorID:      sellerID,
			Action:       models.NegotiationReject,
			PricePerTon:  offer.PricePerTon,
			QuantityTons: offer.QuantityTons,
		}); err != nil {
			return err
		}
		if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
			UserID:    offer.BuyerID,
			Type:      "offer_rejected",
			Title:     "Offer declined",
			Message:   "The seller declined your offer",
			RelatedID: &offer.ID,
		}); err != nil {
			return err
		}
		return s.enqueueEvent(ctx, tx, TopicOfferRejected, map[string]interface{}{
			"offer_id": offer.ID,
			"buyer_id": offer.BuyerID,
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Accept accepts an offer and creates the deal in a single transaction.
// Accepting an already-accepted offer returns the existing deal unchanged,
// so a concurrent double-accept yields exactly one deal.
func (s *OfferService) Accept(ctx context.Context, sellerID, offerID uuid.UUID) (*AcceptOfferResult, error) {
	var result *AcceptOfferResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		offer, err := s.offerRepo.WithTx(tx).GetByIDForUpdate(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		if offer.SellerID != sellerID {
			return ErrNotOfferSeller
		}

		// Idempotent replay: the deal already exists, return it as success.
		if offer.Status == string(domain.OfferAccepted) && offer.DealID != nil {
			deal, err := s.dealRepo.WithTx(tx).GetByID(ctx, *offer.DealID)
			if err != nil {
				return err
			}
			result = &AcceptOfferResult{Offer: offer, Deal: deal}
			return nil
		}

		if time.Now().After(offer.ExpiresAt) {
			return ErrOfferExpired
		}
		if err := domain.OfferStatus(offer.Status).Transition(domain.OfferAccepted); err != nil {
			return err
		}

		// Countered terms supersede the original ones.
		finalPrice := offer.PricePerTon
		finalQuantity := offer.QuantityTons
		if offer.Status == string(domain.OfferCountered) && offer.CounterPrice != nil {
			finalPrice = *offer.CounterPrice
			finalQuantity = *offer.CounterQuantity
		}

		listing, err := s.listingRepo.WithTx(tx).GetByIDForUpdate(ctx, offer.ListingID)
		if err != nil {
			return err
		}
		if finalQuantity > listing.AvailableTons {
			return domain.ErrInsufficientStock
		}

		listing.AvailableTons -= finalQuantity
		if listing.AvailableTons <= 0 {
			listing.IsActive = false
		}
		if err := s.listingRepo.WithTx(tx).Update(ctx, listing); err != nil {
			return err
		}

		platformFee, totalAmount := domain.DealAmounts(finalPrice, finalQuantity)
		deliveryDate := time.Now().AddDate(0, 0, 7)

		deal := &models.Deal{
			OfferID:          offer.ID,
			ListingID:        listing.ID,
			BuyerID:          offer.BuyerID,
			SellerID:         offer.SellerID,
			FinalPricePerTon: finalPrice,
			QuantityTons:     finalQuantity,
			PlatformFee:      platformFee,
			TotalAmount:      totalAmount,
			DeliveryType:     offer.DeliveryTerms,
			DeliveryDate:     &deliveryDate,
			PaymentStatus:    string(domain.PaymentPending),
			Status:           string(domain.DealConnected),
		}
		if err := s.dealRepo.WithTx(tx).Create(ctx, deal); err != nil {
			return err
		}

		offer.Status = string(domain.OfferAccepted)
		offer.DealID = &deal.ID
		if err := s.offerRepo.WithTx(tx).Update(ctx, offer); err != nil {
			return err
		}

		if err := s.offerRepo.WithTx(tx).CreateNegotiationEntry(ctx, &models.NegotiationEntry{
			OfferID:      offer.ID,
			ActorID:      sellerID,
			Action:       models.NegotiationAccept,
			PricePerTon:  finalPrice,
			QuantityTons: finalQuantity,
		}); err != nil {
			return err
		}

		if err := s.dealRepo.WithTx(tx).CreateEvent(ctx, &models.DealEvent{
			DealID:      deal.ID,
			FromStatus:  "",
			ToStatus:    string(domain.DealConnected),
			Description: "Deal created from accepted offer",
			PerformedBy: sellerID,
		}); err != nil {
			return err
		}

		for _, userID := range []uuid.UUID{offer.BuyerID, offer.SellerID} {
			if err := s.notificationRepo.WithTx(tx).Create(ctx, &models.Notification{
				UserID:    userID,
				Type:      "deal_created",
				Title:     "Offer accepted",
				Message:   fmt.Sprintf("Deal confirmed: %.1f tons at R%.2f/ton (total R%.2f)", finalQuantity, finalPrice, totalAmount),
				RelatedID: &deal.ID,
			}); err != nil {
				return err
			}
		}

		if err := s.enqueueEvent(ctx, tx, TopicOfferAccepted, map[string]interface{}{
			"offer_id":  offer.ID,
			"deal_id":   deal.ID,
			"buyer_id":  offer.BuyerID,
			"seller_id": offer.SellerID,
			"total":     totalAmount,
		}); err != nil {
			return err
		}

		result = &AcceptOfferResult{Offer: offer, Deal: deal}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Offer %s accepted, deal %s", result.Offer.ID, result.Deal.ID)
	return result, nil
}

// Get returns an offer visible only to its parties
func (s *OfferService) Get(ctx context.Context, userID, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	if offer.BuyerID != userID && offer.SellerID != userID {
		return nil, ErrNotOfferParty
	}
	return offer, nil
}

// ListSent lists offers the user has made
func (s *OfferService) ListSent(ctx context.Context, buyerID uuid.UUID, offset, limit int) ([]*models.Offer, int64, error) {
	return s.offerRepo.ListByBuyer(ctx, buyerID, offset, limit)
}

// ListReceived lists offers against the user's listings
func (s *OfferService) ListReceived(ctx context.Context, sellerID uuid.UUID, offset, limit int) ([]*models.Offer, int64, error) {
	return s.offerRepo.ListBySeller(ctx, sellerID, offset, limit)
}

// History returns the append-only negotiation log for an offer
func (s *OfferService) History(ctx context.Context, userID, offerID uuid.UUID) ([]*models.NegotiationEntry, error) {
	if _, err := s.Get(ctx, userID, offerID); err != nil {
		return nil, err
	}
	return s.offerRepo.GetNegotiationHistory(ctx, offerID)
}

// enqueueEvent records an outbox event inside the caller's transaction
func (s *OfferService) enqueueEvent(ctx context.Context, tx *gorm.DB, topic string, payload map[string]interface{}) error {
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
