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

// OfferHandler handles offer and negotiation endpoints
type OfferHandler struct {
	offerService *services.OfferService
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerService *services.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// Create makes an offer against a listing
// @Summary Create offer
// @Description Make an offer; requires the buy capability and plan quota
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateOfferRequest true "Offer data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /offers [post]
func (h *OfferHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	offer, err := h.offerService.Create(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapabilityMissing):
			return response.Forbidden(c, "Your account does not have the buy capability")
		case errors.Is(err, domain.ErrQuotaExceeded):
			return response.TooManyRequests(c, "Monthly offer quota reached for your plan")
		case errors.Is(err, services.ErrListingNotFound):
			return response.NotFound(c, "Listing not found")
		case errors.Is(err, services.ErrListingInactive):
			return response.UnprocessableEntity(c, "Listing is no longer active")
		case errors.Is(err, services.ErrOwnListing):
			return response.UnprocessableEntity(c, "Cannot make an offer on your own listing")
		case errors.Is(err, domain.ErrInsufficientStock):
			return response.UnprocessableEntity(c, "Offer quantity exceeds available quantity")
		default:
			return response.InternalServerError(c, "Failed to create offer")
		}
	}

	return response.Created(c, "Offer submitted successfully", fiber.Map{"offer": offer})
}

// ListSent lists offers the user has made
// @Summary List sent offers
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /offers/sent [get]
func (h *OfferHandler) ListSent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	offers, total, err := h.offerService.ListSent(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list offers")
	}

	return response.Success(c, "Offers retrieved successfully", pagination.NewResponse(offers, params, total))
}

// ListReceived lists offers against the user's listings
// @Summary List received offers
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /offers/received [get]
func (h *OfferHandler) ListReceived(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	offers, total, err := h.offerService.ListReceived(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list offers")
	}

	return response.Success(c, "Offers retrieved successfully", pagination.NewResponse(offers, params, total))
}

// Get returns an offer for one of its parties
// @Summary Get offer
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /offers/{id} [get]
func (h *OfferHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid offer ID")
	}

	offer, err := h.offerService.Get(c.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOfferNotFound):
			return response.NotFound(c, "Offer not found")
		case errors.Is(err, services.ErrNotOfferParty):
			return response.Forbidden(c, "Not a party to this offer")
		default:
			return response.InternalServerError(c, "Failed to get offer")
		}
	}

	return response.Success(c, "Offer retrieved successfully", fiber.Map{"offer": offer})
}

// History returns the negotiation log for an offer
// @Summary Get negotiation history
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Response
// @Router /offers/{id}/history [get]
func (h *OfferHandler) History(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid offer ID")
	}

	history, err := h.offerService.History(c.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOfferNotFound):
			return response.NotFound(c, "Offer not found")
		case errors.Is(err, services.ErrNotOfferParty):
			return response.Forbidden(c, "Not a party to this offer")
		default:
			return response.InternalServerError(c, "Failed to get negotiation history")
		}
	}

	return response.Success(c, "Negotiation history retrieved successfully", fiber.Map{"history": history})
}

// Counter records the seller's counter terms
// @Summary Counter offer
// @Tags Offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Param body body services.CounterOfferRequest true "Counter terms"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /offers/{id}/counter [post]
func (h *OfferHandler) Counter(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid offer ID")
	}

	var req services.CounterOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	offer, err := h.offerService.Counter(c.Context(), userID, id, &req)
	if err != nil {
		return h.mapOfferActionError(c, err, "Failed to counter offer")
	}

	return response.Success(c, "Counter-offer sent successfully", fiber.Map{"offer": offer})
}

// Reject declines an offer
// @Summary Reject offer
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /offers/{id}/reject [post]
func (h *OfferHandler) Reject(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid offer ID")
	}

	offer, err := h.offerService.Reject(c.Context(), userID, id)
	if err != nil {
		return h.mapOfferActionError(c, err, "Failed to reject offer")
	}

	return response.Success(c, "Offer rejected", fiber.Map{"offer": offer})
}

// Accept accepts an offer and creates the deal
// @Summary Accept offer
// @Description Accept an offer; creates the deal transactionally. Safe to retry.
// @Tags Offers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /offers/{id}/accept [post]
func (h *OfferHandler) Accept(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid offer ID")
	}

	result, err := h.offerService.Accept(c.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			return response.UnprocessableEntity(c, "Offer quantity exceeds available quantity")
		default:
			return h.mapOfferActionError(c, err, "Failed to accept offer")
		}
	}

	return response.Success(c, "Offer accepted, deal created", fiber.Map{
		"offer": result.Offer,
		"deal":  result.Deal,
	})
}

// mapOfferActionError maps shared offer mutation errors to responses
func (h *OfferHandler) mapOfferActionError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrOfferNotFound):
		return response.NotFound(c, "Offer not found")
	case errors.Is(err, services.ErrNotOfferSeller):
		return response.Forbidden(c, "Only the seller may respond to this offer")
	case errors.Is(err, services.ErrOfferExpired):
		return response.Conflict(c, "Offer has expired")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}
