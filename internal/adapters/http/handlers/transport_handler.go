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

// TransportHandler handles transport request and quote endpoints
type TransportHandler struct {
	transportService *services.TransportService
}

// NewTransportHandler creates a new transport handler
func NewTransportHandler(transportService *services.TransportService) *TransportHandler {
	return &TransportHandler{transportService: transportService}
}

// CreateRequest posts a shipping need
// @Summary Create transport request
// @Tags Transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestRequest true "Request data"
// @Success 201 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /transport/requests [post]
func (h *TransportHandler) CreateRequest(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	request, err := h.transportService.CreateRequest(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuotaExceeded):
			return response.TooManyRequests(c, "Monthly transport request quota reached for your plan")
		case errors.Is(err, services.ErrDealNotFound):
			return response.BadRequest(c, "Linked deal not found")
		case errors.Is(err, services.ErrNotDealParty):
			return response.Forbidden(c, "Not a party to the linked deal")
		default:
			return response.InternalServerError(c, "Failed to create transport request")
		}
	}

	return response.Created(c, "Transport request created successfully", fiber.Map{"request": request})
}

// ListOpenRequests lists requests still accepting quotes
// @Summary List open transport requests
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /transport/requests [get]
func (h *TransportHandler) ListOpenRequests(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	requests, total, err := h.transportService.ListOpenRequests(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list transport requests")
	}

	return response.Success(c, "Transport requests retrieved successfully", pagination.NewResponse(requests, params, total))
}

// ListMyRequests lists the user's own requests
// @Summary List my transport requests
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /transport/requests/mine [get]
func (h *TransportHandler) ListMyRequests(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	requests, total, err := h.transportService.ListMyRequests(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list transport requests")
	}

	return response.Success(c, "Transport requests retrieved successfully", pagination.NewResponse(requests, params, total))
}

// GetRequest returns a request with its quotes
// @Summary Get transport request
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transport/requests/{id} [get]
func (h *TransportHandler) GetRequest(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.transportService.GetRequest(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			return response.NotFound(c, "Transport request not found")
		}
		return response.InternalServerError(c, "Failed to get transport request")
	}

	return response.Success(c, "Transport request retrieved successfully", fiber.Map{"request": request})
}

// CancelRequest cancels an own request
// @Summary Cancel transport request
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transport/requests/{id}/cancel [post]
func (h *TransportHandler) CancelRequest(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.transportService.CancelRequest(c.Context(), userID, id)
	if err != nil {
		return h.mapTransportError(c, err, "Failed to cancel transport request")
	}

	return response.Success(c, "Transport request cancelled", fiber.Map{"request": request})
}

// CreateQuote submits a transporter's bid
// @Summary Quote on transport request
// @Description Submit a quote; requires the transport capability
// @Tags Transport
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Param body body services.CreateQuoteRequest true "Quote data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transport/requests/{id}/quotes [post]
func (h *TransportHandler) CreateQuote(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var req services.CreateQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	quote, err := h.transportService.CreateQuote(c.Context(), userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapabilityMissing):
			return response.Forbidden(c, "Your account does not have the transport capability")
		case errors.Is(err, services.ErrOwnRequest):
			return response.UnprocessableEntity(c, "Cannot quote on your own request")
		case errors.Is(err, services.ErrAlreadyQuoted):
			return response.Conflict(c, "You have already quoted on this request")
		case errors.Is(err, services.ErrRequestClosed):
			return response.Conflict(c, "Request is no longer accepting quotes")
		default:
			return h.mapTransportError(c, err, "Failed to submit quote")
		}
	}

	return response.Created(c, "Quote submitted successfully", fiber.Map{"quote": quote})
}

// ListMyQuotes lists the transporter's quotes
// @Summary List my quotes
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /transport/quotes/mine [get]
func (h *TransportHandler) ListMyQuotes(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	quotes, total, err := h.transportService.ListMyQuotes(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list quotes")
	}

	return response.Success(c, "Quotes retrieved successfully", pagination.NewResponse(quotes, params, total))
}

// AcceptQuote selects the winning quote
// @Summary Accept transport quote
// @Description Accept one quote; all sibling quotes are rejected atomically
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quote ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transport/quotes/{id}/accept [post]
func (h *TransportHandler) AcceptQuote(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quote ID")
	}

	quote, err := h.transportService.AcceptQuote(c.Context(), userID, id)
	if err != nil {
		if errors.Is(err, services.ErrQuoteNotFound) {
			return response.NotFound(c, "Quote not found")
		}
		return h.mapTransportError(c, err, "Failed to accept quote")
	}

	return response.Success(c, "Quote accepted successfully", fiber.Map{"quote": quote})
}

// StartTransport marks the shipment as underway
// @Summary Start transport
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transport/requests/{id}/start [post]
func (h *TransportHandler) StartTransport(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.transportService.StartTransport(c.Context(), userID, id)
	if err != nil {
		return h.mapTransportError(c, err, "Failed to start transport")
	}

	return response.Success(c, "Transport started", fiber.Map{"request": request})
}

// CompleteTransport marks the shipment as delivered
// @Summary Complete transport
// @Tags Transport
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /transport/requests/{id}/complete [post]
func (h *TransportHandler) CompleteTransport(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.transportService.CompleteTransport(c.Context(), userID, id)
	if err != nil {
		return h.mapTransportError(c, err, "Failed to complete transport")
	}

	return response.Success(c, "Transport completed", fiber.Map{"request": request})
}

// mapTransportError maps shared transport errors to responses
func (h *TransportHandler) mapTransportError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return response.NotFound(c, "Transport request not found")
	case errors.Is(err, services.ErrNotRequester):
		return response.Forbidden(c, "Only the requester may manage this request")
	case errors.Is(err, services.ErrNotQuoteOwner):
		return response.Forbidden(c, "Only the selected transporter may perform this action")
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalServerError(c, fallback)
	}
}
