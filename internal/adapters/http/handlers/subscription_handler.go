package handlers

import (
	"errors"

	"farm-feed/internal/core/services"
	"farm-feed/internal/pkg/response"
	"farm-feed/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler handles subscription plan endpoints
type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GetPlans returns the plan table
// @Summary List subscription plans
// @Tags Subscription
// @Produce json
// @Success 200 {object} response.Response
// @Router /subscription/plans [get]
func (h *SubscriptionHandler) GetPlans(c *fiber.Ctx) error {
	return response.Success(c, "Plans retrieved successfully", fiber.Map{
		"plans": h.subscriptionService.GetPlans(),
	})
}

// GetMyPlan returns the user's active plan
// @Summary Get my plan
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /subscription/me [get]
func (h *SubscriptionHandler) GetMyPlan(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	plan, err := h.subscriptionService.GetMyPlan(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get plan")
	}

	return response.Success(c, "Plan retrieved successfully", fiber.Map{"plan": plan})
}

// ChangePlan switches the subscription tier
// @Summary Change plan
// @Tags Subscription
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePlanRequest true "Plan code"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /subscription/plan [put]
func (h *SubscriptionHandler) ChangePlan(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.subscriptionService.ChangePlan(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlan):
			return response.BadRequest(c, "Unknown subscription plan")
		case errors.Is(err, services.ErrSamePlan):
			return response.Conflict(c, "Already subscribed to this plan")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to change plan")
		}
	}

	return response.Success(c, "Plan changed successfully", fiber.Map{"user": user})
}

// GetUsage returns the current month's quota consumption
// @Summary Get usage
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /subscription/usage [get]
func (h *SubscriptionHandler) GetUsage(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	usage, err := h.subscriptionService.GetUsage(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get usage")
	}

	return response.Success(c, "Usage retrieved successfully", fiber.Map{"usage": usage})
}
