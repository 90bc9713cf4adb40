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
	"github.com/leadpilot/lead-management-api/internal/utils"
	"gorm.io/gorm"
)

// LeadHandler coordinates lead CRUD and scoring endpoints.
type LeadHandler struct {
	leadRepo       repository.LeadRepository
	scoringService *services.ScoringService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadRepo repository.LeadRepository, scoringService *services.ScoringService) *LeadHandler {
	return &LeadHandler{
		leadRepo:       leadRepo,
		scoringService: scoringService,
	}
}

// parseIDParam reads a numeric path parameter. A false return means a 400
// response has already been written.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// getOwnedLead loads a lead and verifies it belongs to the caller. Foreign
// leads answer not-found, never forbidden.
func (h *LeadHandler) getOwnedLead(c *gin.Context, leadID, userID uint64) (*models.Lead, bool) {
	lead, err := h.leadRepo.FindByID(leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Lead not found")
		} else {
			apierrors.InternalError(c, "Failed to fetch lead")
		}
		return nil, false
	}
	if lead.UserID != userID {
		apierrors.NotFound(c, "Lead not found")
		return nil, false
	}
	return lead, true
}

// ListLeads returns the current user's leads with optional status/source
// filters and pagination.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.LeadFilter{
		UserID:   userID,
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if status := c.Query("status"); status != "" {
		s := models.LeadStatus(status)
		filter.Status = &s
	}
	if source := c.Query("source"); source != "" {
		s := models.LeadSource(source)
		filter.Source = &s
	}

	leads, total, err := h.leadRepo.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch leads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": leads,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateLead creates a new lead for the current user.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateLeadRequest struct {
		Name       string `json:"name" binding:"required"`
		Address    string `json:"address"`
		City       string `json:"city"`
		State      string `json:"state"`
		Zip        string `json:"zip"`
		Phone      string `json:"phone"`
		Email      string `json:"email"`
		Source     string `json:"source" binding:"required"`
		Status     string `json:"status"`
		Notes      string `json:"notes"`
		AmountOwed string `json:"amount_owed"`
	}

	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	status := models.LeadStatusNew
	if req.Status != "" {
		status = models.LeadStatus(req.Status)
	}

	lead := &models.Lead{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		Zip:        req.Zip,
		Phone:      req.Phone,
		Email:      req.Email,
		Source:     models.LeadSource(req.Source),
		Status:     status,
		Notes:      req.Notes,
		AmountOwed: req.AmountOwed,
		UserID:     userID,
	}

	if err := h.leadRepo.Create(lead); err != nil {
		apierrors.InternalError(c, "Failed to create lead")
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLead returns one of the current user's leads.
func (h *LeadHandler) GetLead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lead, ok := h.getOwnedLead(c, leadID, userID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLead applies a partial update to one of the current user's leads.
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lead, ok := h.getOwnedLead(c, leadID, userID)
	if !ok {
		return
	}

	type UpdateLeadRequest struct {
		Name            *string `json:"name"`
		Address         *string `json:"address"`
		City            *string `json:"city"`
		State           *string `json:"state"`
		Zip             *string `json:"zip"`
		Phone           *string `json:"phone"`
		Email           *string `json:"email"`
		Source          *string `json:"source"`
		Status          *string `json:"status"`
		Notes           *string `json:"notes"`
		AmountOwed      *string `json:"amount_owed"`
		MotivationScore *int    `json:"motivation_score"`
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Address != nil {
		lead.Address = *req.Address
	}
	if req.City != nil {
		lead.City = *req.City
	}
	if req.State != nil {
		lead.State = *req.State
	}
	if req.Zip != nil {
		lead.Zip = *req.Zip
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Source != nil {
		lead.Source = models.LeadSource(*req.Source)
	}
	if req.Status != nil {
		lead.Status = models.LeadStatus(*req.Status)
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.AmountOwed != nil {
		lead.AmountOwed = *req.AmountOwed
	}
	if req.MotivationScore != nil {
		if *req.MotivationScore < 1 || *req.MotivationScore > 100 {
			apierrors.BadRequest(c, "motivation_score must be between 1 and 100")
			return
		}
		lead.MotivationScore = req.MotivationScore
	}

	if err := h.leadRepo.Update(lead); err != nil {
		apierrors.InternalError(c, "Failed to update lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead soft deletes one of the current user's leads.
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, ok := h.getOwnedLead(c, leadID, userID); !ok {
		return
	}

	if err := h.leadRepo.Delete(leadID); err != nil {
		apierrors.InternalError(c, "Failed to delete lead")
		return
	}

	c.Status(http.StatusNoContent)
}

// ScoreLead computes and persists a motivation score for one lead.
func (h *LeadHandler) ScoreLead(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	leadID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lead, ok := h.getOwnedLead(c, leadID, userID)
	if !ok {
		return
	}

	result := h.scoringService.ScoreLead(c.Request.Context(), lead)
	lead.MotivationScore = &result.Score

	if err := h.leadRepo.Update(lead); err != nil {
		apierrors.InternalError(c, "Failed to save motivation score")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lead":   lead,
		"score":  result.Score,
		"result": result,
	})
}

// ScoreAdHoc scores lead attributes. When the caller references an existing
// lead by id the computed score is persisted onto it; inline fields are
// scored without touching the database.
func (h *LeadHandler) ScoreAdHoc(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type ScoreRequest struct {
		LeadID     *uint64 `json:"lead_id"`
		Source     string  `json:"source"`
		Status     string  `json:"status"`
		Notes      string  `json:"notes"`
		AmountOwed string  `json:"amount_owed"`
	}

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	var lead *models.Lead
	if req.LeadID != nil {
		owned, ok := h.getOwnedLead(c, *req.LeadID, userID)
		if !ok {
			return
		}
		lead = owned
	} else {
		lead = &models.Lead{
			Source:     models.LeadSource(req.Source),
			Status:     models.LeadStatus(req.Status),
			Notes:      req.Notes,
			AmountOwed: req.AmountOwed,
		}
	}

	result := h.scoringService.ScoreLead(c.Request.Context(), lead)

	if req.LeadID != nil {
		lead.MotivationScore = &result.Score
		if err := h.leadRepo.Update(lead); err != nil {
			apierrors.InternalError(c, "Failed to save motivation score")
			return
		}
	}

	c.JSON(http.StatusOK, result)
}
