package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/leadpilot/lead-management-api/internal/errors"
	"github.com/leadpilot/lead-management-api/internal/middleware"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/leadpilot/lead-management-api/internal/services"
	"gorm.io/gorm"
)

// DocumentHandler coordinates document CRUD, the template catalog and
// template-driven generation.
type DocumentHandler struct {
	documentRepo    repository.DocumentRepository
	templateService *services.TemplateService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentRepo repository.DocumentRepository, templateService *services.TemplateService) *DocumentHandler {
	return &DocumentHandler{
		documentRepo:    documentRepo,
		templateService: templateService,
	}
}

func (h *DocumentHandler) getOwnedDocument(c *gin.Context, documentID, userID uint64) (*models.Document, bool) {
	document, err := h.documentRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Document not found")
		} else {
			apierrors.InternalError(c, "Failed to fetch document")
		}
		return nil, false
	}
	if document.UserID != userID {
		apierrors.NotFound(c, "Document not found")
		return nil, false
	}
	return document, true
}

// ListDocuments returns the current user's documents, optionally scoped to
// one lead via ?lead_id= (leadId also accepted).
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var leadID *uint64
	raw := c.Query("lead_id")
	if raw == "" {
		raw = c.Query("leadId")
	}
	if raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid lead_id")
			return
		}
		leadID = &id
	}

	documents, err := h.documentRepo.ListByUser(userID, leadID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// CreateDocument creates a document directly, without a template.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateDocumentRequest struct {
		Name    string  `json:"name" binding:"required"`
		Type    string  `json:"type"`
		Content string  `json:"content"`
		URL     string  `json:"url"`
		Status  string  `json:"status"`
		LeadID  *uint64 `json:"lead_id"`
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	docType := models.DocumentGeneric
	if req.Type != "" {
		docType = models.DocumentType(req.Type)
	}
	status := models.DocumentStatusDraft
	if req.Status != "" {
		status = models.DocumentStatus(req.Status)
	}

	document := &models.Document{
		Name:    req.Name,
		Type:    docType,
		Content: req.Content,
		URL:     req.URL,
		Status:  status,
		LeadID:  req.LeadID,
		UserID:  userID,
	}

	if err := h.documentRepo.Create(document); err != nil {
		apierrors.InternalError(c, "Failed to create document")
		return
	}

	c.JSON(http.StatusCreated, document)
}

// GetDocument returns one of the current user's documents.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	document, ok := h.getOwnedDocument(c, documentID, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, document)
}

// UpdateDocument applies a partial update to one of the current user's
// documents.
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	document, ok := h.getOwnedDocument(c, documentID, userID)
	if !ok {
		return
	}

	type UpdateDocumentRequest struct {
		Name    *string `json:"name"`
		Type    *string `json:"type"`
		Content *string `json:"content"`
		URL     *string `json:"url"`
		Status  *string `json:"status"`
		LeadID  *uint64 `json:"lead_id"`
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if req.Name != nil {
		document.Name = *req.Name
	}
	if req.Type != nil {
		document.Type = models.DocumentType(*req.Type)
	}
	if req.Content != nil {
		document.Content = *req.Content
	}
	if req.URL != nil {
		document.URL = *req.URL
	}
	if req.Status != nil {
		document.Status = models.DocumentStatus(*req.Status)
	}
	if req.LeadID != nil {
		document.LeadID = req.LeadID
	}

	if err := h.documentRepo.Update(document); err != nil {
		apierrors.InternalError(c, "Failed to update document")
		return
	}

	c.JSON(http.StatusOK, document)
}

// DeleteDocument soft deletes one of the current user's documents.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	documentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.getOwnedDocument(c, documentID, userID); !ok {
		return
	}

	if err := h.documentRepo.Delete(documentID); err != nil {
		apierrors.InternalError(c, "Failed to delete document")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListTemplates returns the template catalog.
func (h *DocumentHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.templateService.ListTemplates()})
}

// GetTemplate returns one catalog entry.
func (h *DocumentHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateService.GetTemplate(c.Param("id"))
	if err != nil {
		apierrors.NotFound(c, "Template not found")
		return
	}
	c.JSON(http.StatusOK, template)
}

// GenerateDocument resolves a template into a persisted draft document.
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type GenerateRequest struct {
		TemplateID   string            `json:"template_id" binding:"required"`
		LeadID       *uint64           `json:"lead_id"`
		CustomFields map[string]string `json:"custom_fields"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	document, err := h.templateService.GenerateDocument(c.Request.Context(), services.GenerateDocumentInput{
		TemplateID:   req.TemplateID,
		LeadID:       req.LeadID,
		UserID:       userID,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTemplateNotFound):
			apierrors.NotFound(c, "Template not found")
		case errors.Is(err, services.ErrLeadNotFound):
			apierrors.NotFound(c, "Lead not found")
		default:
			apierrors.InternalError(c, "Failed to generate document")
		}
		return
	}

	c.JSON(http.StatusCreated, document)
}
