package repository

import (
	"github.com/leadpilot/lead-management-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// LeadFilter holds filtering options for listing leads
type LeadFilter struct {
	UserID   uint64
	Status   *models.LeadStatus
	Source   *models.LeadSource
	Page     int
	PageSize int
}

// LeadRepository defines the interface for lead data access
type LeadRepository interface {
	// Create creates a new lead
	Create(lead *models.Lead) error

	// FindByID finds a lead by ID
	FindByID(id uint64) (*models.Lead, error)

	// List retrieves a user's leads with filtering and pagination
	List(filter LeadFilter) ([]models.Lead, int64, error)

	// ListByUser retrieves all of a user's leads, newest first
	ListByUser(userID uint64) ([]models.Lead, error)

	// Update updates a lead
	Update(lead *models.Lead) error

	// Delete soft deletes a lead
	Delete(id uint64) error

	// CountByStatus counts a user's leads grouped by status
	CountByStatus(userID uint64) (map[string]int64, error)

	// CountBySource counts a user's leads grouped by source
	CountBySource(userID uint64) (map[string]int64, error)

	// AverageMotivationScore averages scored leads for a user
	AverageMotivationScore(userID uint64) (float64, error)
}

// WorkflowRepository defines the interface for workflow data access
type WorkflowRepository interface {
	Create(workflow *models.Workflow) error
	FindByID(id uint64) (*models.Workflow, error)
	ListByUser(userID uint64) ([]models.Workflow, error)
	Update(workflow *models.Workflow) error
	Delete(id uint64) error
	CountByUser(userID uint64, activeOnly bool) (int64, error)
}

// DocumentRepository defines the interface for document data access
type DocumentRepository interface {
	Create(document *models.Document) error
	FindByID(id uint64) (*models.Document, error)

	// ListByUser retrieves a user's documents, optionally scoped to one lead
	ListByUser(userID uint64, leadID *uint64) ([]models.Document, error)

	Update(document *models.Document) error
	Delete(id uint64) error
	CountByUser(userID uint64) (int64, error)
}

// ScrapingJobRepository defines the interface for scraping job data access
type ScrapingJobRepository interface {
	Create(job *models.ScrapingJob) error
	FindByID(id uint64) (*models.ScrapingJob, error)
	ListByUser(userID uint64) ([]models.ScrapingJob, error)
	Update(job *models.ScrapingJob) error
	Delete(id uint64) error
	CountByUser(userID uint64) (int64, error)
	CountByStatus(userID uint64, status models.JobStatus) (int64, error)
}
