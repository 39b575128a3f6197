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
	ErrUnknownPlan = errors.New("unknown subscription plan")
	ErrSamePlan    = errors.New("already subscribed to this plan")
)

// MonthStart returns the first instant of the month containing t.
// Monthly quotas reset on this boundary.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SubscriptionService handles plan selection and usage reporting
type SubscriptionService struct {
	userRepo      repositories.UserRepository
	listingRepo   *repositories.ListingRepository
	offerRepo     *repositories.OfferRepository
	transportRepo *repositories.TransportRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	userRepo repositories.UserRepository,
	listingRepo *repositories.ListingRepository,
	offerRepo *repositories.OfferRepository,
	transportRepo *repositories.TransportRepository,
) *SubscriptionService {
	return &SubscriptionService{
		userRepo:      userRepo,
		listingRepo:   listingRepo,
		offerRepo:     offerRepo,
		transportRepo: transportRepo,
	}
}

// ChangePlanRequest selects a subscription plan
type ChangePlanRequest struct {
	PlanCode string `json:"plan_code" validate:"required,oneof=free basic premium"`
}

// QuotaUsage reports one monthly quota against its limit
type QuotaUsage struct {
	Used  int64 `json:"used"`
	Limit int   `json:"limit"`
}

// UsageReport is the current month's consumption against the active plan
type UsageReport struct {
	Plan              domain.Plan `json:"plan"`
	PeriodStart       time.Time   `json:"period_start"`
	Listings          QuotaUsage  `json:"listings"`
	Offers            QuotaUsage  `json:"offers"`
	TransportRequests QuotaUsage  `json:"transport_requests"`
}

// GetPlans returns the static plan table
func (s *SubscriptionService) GetPlans() []domain.Plan {
	return []domain.Plan{
		domain.SubscriptionPlans[domain.PlanFree],
		domain.SubscriptionPlans[domain.PlanBasic],
		domain.SubscriptionPlans[domain.PlanPremium],
	}
}

// GetMyPlan returns the user's active plan
func (s *SubscriptionService) GetMyPlan(ctx context.Context, userID uuid.UUID) (*domain.Plan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	plan := domain.PlanByCode(user.PlanCode)
	return &plan, nil
}

// ChangePlan switches the user's subscription tier
func (s *SubscriptionService) ChangePlan(ctx context.Context, userID uuid.UUID, req *ChangePlanRequest) (*models.UserResponse, error) {
	if !domain.ValidPlanCode(req.PlanCode) {
		return nil, ErrUnknownPlan
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.PlanCode == req.PlanCode {
		return nil, ErrSamePlan
	}

	user.PlanCode = req.PlanCode
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// GetUsage reports the current month's consumption against the plan quotas
func (s *SubscriptionService) GetUsage(ctx context.Context, userID uuid.UUID) (*UsageReport, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plan := domain.PlanByCode(user.PlanCode)
	since := MonthStart(time.Now())

	listings, err := s.listingRepo.CountBySellerSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	offers, err := s.offerRepo.CountByBuyerSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	requests, err := s.transportRepo.CountRequestsByRequesterSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &UsageReport{
		Plan:              plan,
		PeriodStart:       since,
		Listings:          QuotaUsage{Used: listings, Limit: plan.MonthlyListings},
		Offers:            QuotaUsage{Used: offers, Limit: plan.MonthlyOffers},
		TransportRequests: QuotaUsage{Used: requests, Limit: plan.MonthlyTransportRequests},
	}, nil
}
