package repository

import (
	"github.com/leadpilot/lead-management-api/internal/models"
	"gorm.io/gorm"
)

// GormDocumentRepository is a GORM implementation of DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &GormDocumentRepository{db: db}
}

func (r *GormDocumentRepository) Create(document *models.Document) error {
	return r.db.Create(document).Error
}

func (r *GormDocumentRepository) FindByID(id uint64) (*models.Document, error) {
	var document models.Document
	if err := r.db.First(&document, id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// ListByUser retrieves a user's documents, optionally scoped to one lead
func (r *GormDocumentRepository) ListByUser(userID uint64, leadID *uint64) ([]models.Document, error) {
	var documents []models.Document
	query := r.db.Where("user_id = ?", userID)
	if leadID != nil {
		query = query.Where("lead_id = ?", *leadID)
	}
	if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *GormDocumentRepository) Update(document *models.Document) error {
	return r.db.Save(document).Error
}

func (r *GormDocumentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Document{}, id).Error
}

func (r *GormDocumentRepository) CountByUser(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Document{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
