package handlers

import (
	"errors"

	"farm-feed/internal/core/services"
	"farm-feed/internal/pkg/pagination"
	"farm-feed/internal/pkg/response"
	"farm-feed/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles notification and deal messaging endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the user's notifications
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	notifications, total, err := h.notificationService.List(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, "Notifications retrieved successfully", pagination.NewResponse(notifications, params, total))
}

// UnreadCount returns the unread notification count
// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	count, err := h.notificationService.UnreadCount(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to count notifications")
	}

	return response.Success(c, "Unread count retrieved successfully", fiber.Map{"count": count})
}

// MarkRead marks one notification as read
// @Summary Mark notification as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkRead(c.Context(), userID, id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to mark notification as read")
	}

	return response.Success(c, "Notification marked as read", nil)
}

// MarkAllRead marks all notifications as read
// @Summary Mark all notifications as read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.notificationService.MarkAllRead(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to mark notifications as read")
	}

	return response.Success(c, "All notifications marked as read", nil)
}

// SendMessage sends a chat message within a deal
// @Summary Send deal message
// @Description Chat with the deal counterparty; requires a plan with chat access
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Param body body services.SendMessageRequest true "Message body"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /deals/{id}/messages [post]
func (h *NotificationHandler) SendMessage(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	var req services.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	message, err := h.notificationService.SendMessage(c.Context(), userID, dealID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotIncluded):
			return response.Forbidden(c, "Chat is not included in your plan")
		case errors.Is(err, services.ErrDealNotFound):
			return response.NotFound(c, "Deal not found")
		case errors.Is(err, services.ErrNotDealParty):
			return response.Forbidden(c, "Not a party to this deal")
		default:
			return response.InternalServerError(c, "Failed to send message")
		}
	}

	return response.Created(c, "Message sent successfully", fiber.Map{"message": message})
}

// ListMessages returns a deal's chat history
// @Summary List deal messages
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deal ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /deals/{id}/messages [get]
func (h *NotificationHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	dealID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid deal ID")
	}

	params := pagination.GetParams(c)
	messages, total, err := h.notificationService.ListMessages(c.Context(), userID, dealID, params.Offset, params.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDealNotFound):
			return response.NotFound(c, "Deal not found")
		case errors.Is(err, services.ErrNotDealParty):
			return response.Forbidden(c, "Not a party to this deal")
		default:
			return response.InternalServerError(c, "Failed to list messages")
		}
	}

	return response.Success(c, "Messages retrieved successfully", pagination.NewResponse(messages, params, total))
}
