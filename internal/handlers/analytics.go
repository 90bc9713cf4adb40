package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leadpilot/lead-management-api/internal/dto"
	apierrors "github.com/leadpilot/lead-management-api/internal/errors"
	"github.com/leadpilot/lead-management-api/internal/middleware"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/repository"
)

// AnalyticsHandler aggregates pipeline counts for the dashboard.
type AnalyticsHandler struct {
	leadRepo     repository.LeadRepository
	workflowRepo repository.WorkflowRepository
	documentRepo repository.DocumentRepository
	jobRepo      repository.ScrapingJobRepository
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(
	leadRepo repository.LeadRepository,
	workflowRepo repository.WorkflowRepository,
	documentRepo repository.DocumentRepository,
	jobRepo repository.ScrapingJobRepository,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		leadRepo:     leadRepo,
		workflowRepo: workflowRepo,
		documentRepo: documentRepo,
		jobRepo:      jobRepo,
	}
}

// GetSummary returns the current user's pipeline summary.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	byStatus, err := h.leadRepo.CountByStatus(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate leads")
		return
	}
	bySource, err := h.leadRepo.CountBySource(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate leads")
		return
	}
	avgMotivation, err := h.leadRepo.AverageMotivationScore(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate leads")
		return
	}

	var totalLeads int64
	for _, count := range byStatus {
		totalLeads += count
	}

	totalWorkflows, err := h.workflowRepo.CountByUser(userID, false)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate workflows")
		return
	}
	activeWorkflows, err := h.workflowRepo.CountByUser(userID, true)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate workflows")
		return
	}
	totalDocuments, err := h.documentRepo.CountByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate documents")
		return
	}
	totalJobs, err := h.jobRepo.CountByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate scraping jobs")
		return
	}
	completedRuns, err := h.jobRepo.CountByStatus(userID, models.JobStatusCompleted)
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate scraping jobs")
		return
	}

	c.JSON(http.StatusOK, dto.AnalyticsSummary{
		TotalLeads:       totalLeads,
		LeadsByStatus:    byStatus,
		LeadsBySource:    bySource,
		AvgMotivation:    avgMotivation,
		TotalDocuments:   totalDocuments,
		TotalWorkflows:   totalWorkflows,
		TotalScrapeJobs:  totalJobs,
		ActiveWorkflows:  activeWorkflows,
		CompletedJobRuns: completedRuns,
	})
}
