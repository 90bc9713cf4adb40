package repository

import (
	"github.com/leadpilot/lead-management-api/internal/database"
	"github.com/leadpilot/lead-management-api/internal/models"
	"github.com/leadpilot/lead-management-api/internal/utils"
	"gorm.io/gorm"
)

// GormLeadRepository is a GORM implementation of LeadRepository
type GormLeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &GormLeadRepository{db: db}
}

// Create creates a new lead
func (r *GormLeadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

// FindByID finds a lead by ID
func (r *GormLeadRepository) FindByID(id uint64) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.First(&lead, id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// List retrieves a user's leads with filtering and pagination
func (r *GormLeadRepository) List(filter LeadFilter) ([]models.Lead, int64, error) {
	var leads []models.Lead

	query := r.db.Model(&models.Lead{}).Where("leads.user_id = ?", filter.UserID)

	if filter.Status != nil {
		query = query.Where("leads.status = ?", *filter.Status)
	}
	if filter.Source != nil {
		query = query.Where("leads.source = ?", *filter.Source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("leads.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// ListByUser retrieves all of a user's leads, newest first
func (r *GormLeadRepository) ListByUser(userID uint64) ([]models.Lead, error) {
	var leads []models.Lead
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// Update updates a lead
func (r *GormLeadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// Delete soft deletes a lead
func (r *GormLeadRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Lead{}, id).Error
}

type groupCount struct {
	GroupKey string `gorm:"column:group_key"`
	Count    int64  `gorm:"column:count"`
}

// CountByStatus counts a user's leads grouped by status
func (r *GormLeadRepository) CountByStatus(userID uint64) (map[string]int64, error) {
	return r.countGrouped(userID, "status")
}

// CountBySource counts a user's leads grouped by source
func (r *GormLeadRepository) CountBySource(userID uint64) (map[string]int64, error) {
	return r.countGrouped(userID, "source")
}

func (r *GormLeadRepository) countGrouped(userID uint64, column string) (map[string]int64, error) {
	var rows []groupCount
	err := r.db.Model(&models.Lead{}).
		Select(column+" AS group_key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupKey] = row.Count
	}
	return counts, nil
}

// AverageMotivationScore averages scored leads for a user.
// Unscored leads are excluded; zero leads average to zero.
func (r *GormLeadRepository) AverageMotivationScore(userID uint64) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Lead{}).
		Select("AVG(motivation_score)").
		Where("user_id = ? AND motivation_score IS NOT NULL", userID).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
