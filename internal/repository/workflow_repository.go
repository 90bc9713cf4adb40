package repository

import (
	"github.com/leadpilot/lead-management-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkflowRepository is a GORM implementation of WorkflowRepository
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

func (r *GormWorkflowRepository) Create(workflow *models.Workflow) error {
	return r.db.Create(workflow).Error
}

func (r *GormWorkflowRepository) FindByID(id uint64) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := r.db.First(&workflow, id).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *GormWorkflowRepository) ListByUser(userID uint64) ([]models.Workflow, error) {
	var workflows []models.Workflow
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&workflows).Error; err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *GormWorkflowRepository) Update(workflow *models.Workflow) error {
	return r.db.Save(workflow).Error
}

func (r *GormWorkflowRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Workflow{}, id).Error
}

func (r *GormWorkflowRepository) CountByUser(userID uint64, activeOnly bool) (int64, error) {
	var count int64
	query := r.db.Model(&models.Workflow{}).Where("user_id = ?", userID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
