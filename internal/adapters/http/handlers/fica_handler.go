package handlers

import (
	"errors"

	"farm-feed/internal/core/services"
	"farm-feed/internal/pkg/pagination"
	"farm-feed/internal/pkg/response"
	"farm-feed/internal/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// FicaHandler handles compliance document endpoints
type FicaHandler struct {
	ficaService *services.FicaService
}

// NewFicaHandler creates a new FICA handler
func NewFicaHandler(ficaService *services.FicaService) *FicaHandler {
	return &FicaHandler{ficaService: ficaService}
}

// Upload records an uploaded compliance document
// @Summary Upload FICA document
// @Description Record document metadata; the file itself lives in object storage
// @Tags FICA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UploadDocumentRequest true "Document metadata"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /fica/documents [post]
func (h *FicaHandler) Upload(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.UploadDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	doc, err := h.ficaService.Upload(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDocType) {
			return response.BadRequest(c, "Invalid document type")
		}
		return response.InternalServerError(c, "Failed to upload document")
	}

	return response.Created(c, "Document uploaded successfully", fiber.Map{"document": doc})
}

// ListMine lists the user's own documents
// @Summary List my FICA documents
// @Tags FICA
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /fica/documents [get]
func (h *FicaHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	docs, err := h.ficaService.ListMine(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list documents")
	}

	return response.Success(c, "Documents retrieved successfully", fiber.Map{"documents": docs})
}

// Report returns the user's compliance report
// @Summary Get compliance report
// @Tags FICA
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /fica/report [get]
func (h *FicaHandler) Report(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	report, err := h.ficaService.Report(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to build compliance report")
	}

	return response.Success(c, "Compliance report retrieved successfully", fiber.Map{"report": report})
}

// ListPending lists documents awaiting review
// @Summary List pending FICA documents
// @Tags FICA
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /fica/admin/pending [get]
func (h *FicaHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	docs, total, err := h.ficaService.ListPending(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending documents")
	}

	return response.Success(c, "Pending documents retrieved successfully", pagination.NewResponse(docs, params, total))
}

// Verify marks a document as verified
// @Summary Verify FICA document
// @Tags FICA
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fica/admin/documents/{id}/verify [post]
func (h *FicaHandler) Verify(c *fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	doc, err := h.ficaService.Verify(c.Context(), adminID, id)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to verify document")
	}

	return response.Success(c, "Document verified", fiber.Map{"document": doc})
}

// Reject marks a document as rejected with a reason
// @Summary Reject FICA document
// @Tags FICA
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param body body services.RejectDocumentRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fica/admin/documents/{id}/reject [post]
func (h *FicaHandler) Reject(c *fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	var req services.RejectDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validator.Validate(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	doc, err := h.ficaService.Reject(c.Context(), adminID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			return response.NotFound(c, "Document not found")
		case errors.Is(err, services.ErrRejectionReason):
			return response.BadRequest(c, "A rejection reason is required")
		default:
			return response.InternalServerError(c, "Failed to reject document")
		}
	}

	return response.Success(c, "Document rejected", fiber.Map{"document": doc})
}
