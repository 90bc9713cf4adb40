package repository

import (
	"github.com/leadpilot/lead-management-api/internal/models"
	"gorm.io/gorm"
)

// GormScrapingJobRepository is a GORM implementation of ScrapingJobRepository
type GormScrapingJobRepository struct {
	db *gorm.DB
}

// NewScrapingJobRepository creates a new ScrapingJobRepository
func NewScrapingJobRepository(db *gorm.DB) ScrapingJobRepository {
	return &GormScrapingJobRepository{db: db}
}

func (r *GormScrapingJobRepository) Create(job *models.ScrapingJob) error {
	return r.db.Create(job).Error
}

func (r *GormScrapingJobRepository) FindByID(id uint64) (*models.ScrapingJob, error) {
	var job models.ScrapingJob
	if err := r.db.First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *GormScrapingJobRepository) ListByUser(userID uint64) ([]models.ScrapingJob, error) {
	var jobs []models.ScrapingJob
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *GormScrapingJobRepository) Update(job *models.ScrapingJob) error {
	return r.db.Save(job).Error
}

func (r *GormScrapingJobRepository) Delete(id uint64) error {
	return r.db.Delete(&models.ScrapingJob{}, id).Error
}

func (r *GormScrapingJobRepository) CountByUser(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScrapingJob{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormScrapingJobRepository) CountByStatus(userID uint64, status models.JobStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.ScrapingJob{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}
