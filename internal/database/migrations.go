package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Lead indexes for per-user filtering and kanban views
		{"leads", "idx_leads_user_id", "user_id"},
		{"leads", "idx_leads_status", "status"},
		{"leads", "idx_leads_source", "source"},
		{"leads", "idx_leads_created_at", "created_at"},

		// Document lookups by lead
		{"documents", "idx_documents_user_id", "user_id"},
		{"documents", "idx_documents_lead_id", "lead_id"},

		// Workflow and scraping job listings
		{"workflows", "idx_workflows_user_id", "user_id"},
		{"scraping_jobs", "idx_scraping_jobs_user_id", "user_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
