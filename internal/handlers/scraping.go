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

// ScrapingHandler coordinates scraping job CRUD, execution, scheduling and
// result promotion.
type ScrapingHandler struct {
	jobRepo        repository.ScrapingJobRepository
	scraperService *services.ScraperService
}

// NewScrapingHandler creates a new ScrapingHandler.
func NewScrapingHandler(jobRepo repository.ScrapingJobRepository, scraperService *services.ScraperService) *ScrapingHandler {
	return &ScrapingHandler{
		jobRepo:        jobRepo,
		scraperService: scraperService,
	}
}

// ListJobs returns all of the current user's scraping jobs.
func (h *ScrapingHandler) ListJobs(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	jobs, err := h.jobRepo.ListByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch scraping jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// CreateJob creates a new scraping job for the current user.
func (h *ScrapingHandler) CreateJob(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateJobRequest struct {
		Name   string `json:"name" binding:"required"`
		Source string `json:"source" binding:"required"`
		URL    string `json:"url"`
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	job := &models.ScrapingJob{
		Name:    req.Name,
		Source:  models.LeadSource(req.Source),
		URL:     req.URL,
		Status:  models.JobStatusPending,
		Results: models.ScrapeResults{},
		UserID:  userID,
	}

	if err := h.jobRepo.Create(job); err != nil {
		apierrors.InternalError(c, "Failed to create scraping job")
		return
	}

	c.JSON(http.StatusCreated, job)
}

// GetJob returns one of the current user's scraping jobs.
func (h *ScrapingHandler) GetJob(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.scraperService.GetOwned(jobID, userID)
	if err != nil {
		respondScrapingError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// UpdateJob applies a partial update to one of the current user's jobs.
func (h *ScrapingHandler) UpdateJob(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.scraperService.GetOwned(jobID, userID)
	if err != nil {
		respondScrapingError(c, err)
		return
	}

	type UpdateJobRequest struct {
		Name   *string `json:"name"`
		Source *string `json:"source"`
		URL    *string `json:"url"`
	}

	var req UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	if req.Name != nil {
		job.Name = *req.Name
	}
	if req.Source != nil {
		job.Source = models.LeadSource(*req.Source)
	}
	if req.URL != nil {
		job.URL = *req.URL
	}

	if err := h.jobRepo.Update(job); err != nil {
		apierrors.InternalError(c, "Failed to update scraping job")
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob soft deletes one of the current user's jobs.
func (h *ScrapingHandler) DeleteJob(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.scraperService.GetOwned(jobID, userID); err != nil {
		respondScrapingError(c, err)
		return
	}

	if err := h.jobRepo.Delete(jobID); err != nil {
		apierrors.InternalError(c, "Failed to delete scraping job")
		return
	}

	c.Status(http.StatusNoContent)
}

// RunJob executes one scraping pass and returns the extracted results.
func (h *ScrapingHandler) RunJob(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	results, err := h.scraperService.RunJob(c.Request.Context(), jobID, userID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			apierrors.NotFound(c, "Scraping job not found")
			return
		}
		metrics.RecordScrapingRun("unknown", "failure")
		apierrors.InternalError(c, "Scraping run failed")
		return
	}

	job, err := h.scraperService.GetOwned(jobID, userID)
	if err != nil {
		respondScrapingError(c, err)
		return
	}

	metrics.RecordScrapingRun(string(job.Source), "success")
	c.JSON(http.StatusOK, gin.H{
		"job":     job,
		"results": results,
		"count":   len(results),
	})
}

// SetSchedule stores a validated cron schedule on the job.
func (h *ScrapingHandler) SetSchedule(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ScheduleRequest struct {
		Schedule string `json:"schedule" binding:"required"`
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	job, err := h.scraperService.SetSchedule(jobID, userID, req.Schedule)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSchedule) {
			apierrors.BadRequest(c, "Invalid schedule expression")
			return
		}
		respondScrapingError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// PromoteResult turns one scraped record into a real lead.
func (h *ScrapingHandler) PromoteResult(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resultID := c.Param("resultId")

	lead, err := h.scraperService.PromoteResult(jobID, resultID, userID)
	if err != nil {
		if errors.Is(err, services.ErrResultNotFound) {
			apierrors.NotFound(c, "Scraping result not found")
			return
		}
		respondScrapingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

func respondScrapingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		apierrors.NotFound(c, "Scraping job not found")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
