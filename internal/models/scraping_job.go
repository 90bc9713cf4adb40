package models

import (
	"time"

	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ScrapeResult is one normalized record extracted by a scraping run.
// The ID is a generated uuid; promotion to a Lead looks records up by it,
// so it must be unique within one job's results.
type ScrapeResult struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Amount      string     `json:"amount,omitempty"`
	Date        string     `json:"date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Description string     `json:"description,omitempty"`
	Source      LeadSource `json:"source"`
}

type ScrapeResults []ScrapeResult

type ScrapingJob struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Source    LeadSource     `gorm:"type:varchar(50);not null" json:"source"`
	URL       string         `gorm:"type:varchar(512)" json:"url"`
	Status    JobStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Results   ScrapeResults  `gorm:"serializer:json" json:"results"`
	LastRun   *time.Time     `json:"last_run"`
	Schedule  string         `gorm:"type:varchar(100)" json:"schedule"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
