package handlers

import (
	"errors"
	"strconv"

	"farm-feed/internal/adapters/persistence/repositories"
	"farm-feed/internal/core/domain"
	"farm-feed/internal/core/services"
	"farm-feed/internal/pkg/pagination"
	"farm-feed/internal/pkg/response"
	"farm-feed/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ListingHandler handles listing endpoints
type ListingHandler struct {
	listingService *services.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// Create creates a listing
// @Summary Create listing
// @Description Create a listing; requires the sell capability and plan quota
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateListingRequest true "Listing data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /listings [post]
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	listing, err := h.listingService.Create(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapabilityMissing):
			return response.Forbidden(c, "Your account does not have the sell capability")
		case errors.Is(err, domain.ErrQuotaExceeded):
			return response.TooManyRequests(c, "Monthly listing quota reached for your plan")
		case errors.Is(err, services.ErrProductNotFound):
			return response.BadRequest(c, "Unknown product")
		default:
			return response.InternalServerError(c, "Failed to create listing")
		}
	}

	return response.Created(c, "Listing created successfully", fiber.Map{"listing": listing})
}

// List returns listings matching query filters
// @Summary List listings
// @Tags Listings
// @Produce json
// @Param product_id query string false "Product ID"
// @Param province query string false "Province"
// @Param max_price query number false "Max price per ton"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /listings [get]
func (h *ListingHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := &repositories.ListingFilter{
		Province:   c.Query("province"),
		OnlyActive: true,
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid product_id")
		}
		filter.ProductID = &id
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BadRequest(c, "Invalid max_price")
		}
		filter.MaxPrice = &maxPrice
	}

	listings, total, err := h.listingService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list listings")
	}

	return response.Success(c, "Listings retrieved successfully", pagination.NewResponse(listings, params, total))
}

// ListMine returns the authenticated seller's listings
// @Summary List my listings
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /listings/mine [get]
func (h *ListingHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	filter := &repositories.ListingFilter{SellerID: &userID}

	listings, total, err := h.listingService.List(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list listings")
	}

	return response.Success(c, "Listings retrieved successfully", pagination.NewResponse(listings, params, total))
}

// Get returns a listing
// @Summary Get listing
// @Tags Listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid listing ID")
	}

	listing, err := h.listingService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			return response.NotFound(c, "Listing not found")
		}
		return response.InternalServerError(c, "Failed to get listing")
	}

	return response.Success(c, "Listing retrieved successfully", fiber.Map{"listing": listing})
}

// Update modifies an owned listing
// @Summary Update listing
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param body body services.UpdateListingRequest true "Listing fields"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /listings/{id} [put]
func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid listing ID")
	}

	var req services.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	listing, err := h.listingService.Update(c.Context(), userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			return response.NotFound(c, "Listing not found")
		case errors.Is(err, services.ErrNotListingOwner):
			return response.Forbidden(c, "Only the listing owner may modify it")
		default:
			return response.InternalServerError(c, "Failed to update listing")
		}
	}

	return response.Success(c, "Listing updated successfully", fiber.Map{"listing": listing})
}

// Deactivate takes an owned listing off the market
// @Summary Deactivate listing
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /listings/{id} [delete]
func (h *ListingHandler) Deactivate(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid listing ID")
	}

	if err := h.listingService.Deactivate(c.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrListingNotFound):
			return response.NotFound(c, "Listing not found")
		case errors.Is(err, services.ErrNotListingOwner):
			return response.Forbidden(c, "Only the listing owner may modify it")
		default:
			return response.InternalServerError(c, "Failed to deactivate listing")
		}
	}

	return response.Success(c, "Listing deactivated successfully", nil)
}
