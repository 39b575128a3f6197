package handlers

import (
	"errors"

	"farm-feed/internal/core/domain"
	"farm-feed/internal/core/services"
	"farm-feed/internal/pkg/pagination"
	"farm-feed/internal/pkg/response"
	"farm-feed/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// DealHandler handles deal lifecycle endpoints
type DealHandler struct {
	dealService *services.DealService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealService *services.DealService) *DealHandler {
	return &DealHandler{dealService: dealService}
}

// List lists the user's deals
// @Summary List deals
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /deals [get]
func (h *DealHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	deals, total, err := h.dealService.List(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list deals")
	}

	return response.Success(c, "Deals retrieved successfully", pagination.NewResponse(deals, params, total))
}

// Get returns a deal for one of its parties
// @Summary Get deal
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /deals/{id} [get]
func (h *DealHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	deal, err := h.dealService.Get(c.Context(), userID, id)
	if err != nil {
		return h.mapDealError(c, err, "Failed to get deal")
	}

	return response.Success(c, "Deal retrieved successfully", fiber.Map{"deal": deal})
}

// Events returns the audit trail for a deal
// @Summary Get deal events
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Success 200 {object} response.Response
// @Router /deals/{id}/events [get]
func (h *DealHandler) Events(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	events, err := h.dealService.Events(c.Context(), userID, id)
	if err != nil {
		return h.mapDealError(c, err, "Failed to get deal events")
	}

	return response.Success(c, "Deal events retrieved successfully", fiber.Map{"events": events})
}

// Advance moves a deal to the named status
// @Summary Advance deal
// @Description Move a deal forward through its lifecycle
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Param body body services.AdvanceDealRequest true "Target status"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /deals/{id}/advance [post]
func (h *DealHandler) Advance(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	var req services.AdvanceDealRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	deal, err := h.dealService.Advance(c.Context(), userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			return response.BadRequest(c, "Unknown deal status")
		case errors.Is(err, services.ErrDealNotPaid):
			return response.UnprocessableEntity(c, "Deal cannot complete until payment is marked as paid")
		default:
			return h.mapDealError(c, err, "Failed to advance deal")
		}
	}

	return response.Success(c, "Deal advanced successfully", fiber.Map{"deal": deal})
}

// MarkPaid records the buyer's payment
// @Summary Mark deal as paid
// @Tags Deals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /deals/{id}/pay [post]
func (h *DealHandler) MarkPaid(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	deal, err := h.dealService.MarkPaid(c.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyPaid):
			return response.Conflict(c, "Deal is already marked as paid")
		case errors.Is(err, services.ErrCancelledDeal):
			return response.Conflict(c, "Deal has been cancelled")
		default:
			return h.mapDealError(c, err, "Failed to mark deal as paid")
		}
	}

	return response.Success(c, "Payment recorded successfully", fiber.Map{"deal": deal})
}

// Cancel cancels a deal with a reason
// @Summary Cancel deal
// @Tags Deals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Param body body services.CancelDealRequest true "Cancel reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /deals/{id}/cancel [post]
func (h *DealHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	var req services.CancelDealRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	deal, err := h.dealService.Cancel(c.Context(), userID, id, &req)
	if err != nil {
		if errors.Is(err, services.ErrReasonRequired) {
			return response.BadRequest(c, "Cancel reason is required")
		}
		return h.mapDealError(c, err, "Failed to cancel deal")
	}

	return response.Success(c, "Deal cancelled", fiber.Map{"deal": deal})
}

// mapDealError maps shared deal errors to responses
func (h *DealHandler) mapDealError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrDealNotFound):
		return response.NotFound(c, "Deal not found")
	case errors.Is(err, services.ErrNotDealParty):
		return response.Forbidden(c, "Not a party to this deal")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}
