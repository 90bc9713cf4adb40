package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string         `gorm:"type:varchar(255)" json:"full_name"`
	Plan         string         `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Leads        []Lead        `gorm:"foreignKey:UserID" json:"-"`
	Workflows    []Workflow    `gorm:"foreignKey:UserID" json:"-"`
	Documents    []Document    `gorm:"foreignKey:UserID" json:"-"`
	ScrapingJobs []ScrapingJob `gorm:"foreignKey:UserID" json:"-"`
}
