package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/leadpilot/lead-management-api/internal/errors"
	"github.com/leadpilot/lead-management-api/internal/metrics"
	"github.com/leadpilot/lead-management-api/internal/middleware"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
	"github.com/leadpilot/lead-management-api/internal/services"
)

// WorkflowHandler coordinates workflow CRUD and execution endpoints.
type WorkflowHandler struct {
	workflowRepo    repository.WorkflowRepository
	workflowService *services.WorkflowService
}

// NewWorkflowHandler creates a new WorkflowHandler.
func NewWorkflowHandler(workflowRepo repository.WorkflowRepository, workflowService *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflowRepo:    workflowRepo,
		workflowService: workflowService,
	}
}

// ListWorkflows returns all of the current user's workflows.
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	workflows, err := h.workflowRepo.ListByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch workflows")
		return
	}

	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

// CreateWorkflow creates a new workflow for the current user.
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateWorkflowRequest struct {
		Name        string          `json:"name" binding:"required"`
		Description string          `json:"description"`
		Trigger     string          `json:"trigger"`
		Actions     []models.Action `json:"actions"`
		Active      *bool           `json:"active"`
	}

	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	trigger := models.WorkflowCustom
	if req.Trigger != "" {
		trigger = models.WorkflowType(req.Trigger)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	actions := models.Actions(req.Actions)
	if actions == nil {
		actions = models.Actions{}
	}

	workflow := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     trigger,
		Actions:     actions,
		Active:      active,
		UserID:      userID,
	}

	if err := h.workflowRepo.Create(workflow); err != nil {
		apierrors.InternalError(c, "Failed to create workflow")
		return
	}

	c.JSON(http.StatusCreated, workflow)
}

// GetWorkflow returns one of the current user's workflows.
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	workflow, err := h.workflowService.GetOwned(workflowID, userID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// UpdateWorkflow applies a partial update to one of the current user's
// workflows.
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	workflow, err := h.workflowService.GetOwned(workflowID, userID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	type UpdateWorkflowRequest struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Trigger     *string          `json:"trigger"`
		Actions     *[]models.Action `json:"actions"`
		Active      *bool            `json:"active"`
	}

	var req UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if req.Name != nil {
		workflow.Name = *req.Name
	}
	if req.Description != nil {
		workflow.Description = *req.Description
	}
	if req.Trigger != nil {
		workflow.Trigger = models.WorkflowType(*req.Trigger)
	}
	if req.Actions != nil {
		workflow.Actions = models.Actions(*req.Actions)
	}
	if req.Active != nil {
		workflow.Active = *req.Active
	}

	if err := h.workflowRepo.Update(workflow); err != nil {
		apierrors.InternalError(c, "Failed to update workflow")
		return
	}

	c.JSON(http.StatusOK, workflow)
}

// DeleteWorkflow soft deletes one of the current user's workflows.
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.workflowService.GetOwned(workflowID, userID); err != nil {
		respondWorkflowError(c, err)
		return
	}

	if err := h.workflowRepo.Delete(workflowID); err != nil {
		apierrors.InternalError(c, "Failed to delete workflow")
		return
	}

	c.Status(http.StatusNoContent)
}

// RunWorkflow executes a workflow against the current user's leads.
func (h *WorkflowHandler) RunWorkflow(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	workflowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.workflowService.RunWorkflow(c.Request.Context(), workflowID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNoLeads) {
			metrics.RecordWorkflowRun("unknown", "no_leads")
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": err.Error(),
			})
			return
		}
		respondWorkflowError(c, err)
		return
	}

	metrics.RecordWorkflowRun(string(result.Results.WorkflowType), "success")
	c.JSON(http.StatusOK, result)
}

func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkflowNotFound):
		apierrors.NotFound(c, "Workflow not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
