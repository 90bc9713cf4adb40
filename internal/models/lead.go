package models

import (
	"time"

	"gorm.io/gorm"
)

type LeadSource string

const (
	SourceTaxDelinquent    LeadSource = "tax_delinquent"
	SourceProbate          LeadSource = "probate"
	SourceForeclosure      LeadSource = "foreclosure"
	SourceFSBO             LeadSource = "fsbo"
	SourceDivorce          LeadSource = "divorce"
	SourceVacant           LeadSource = "vacant"
	SourceCodeViolation    LeadSource = "code_violation"
	SourceTiredLandlord    LeadSource = "tired_landlord"
	SourceReferral         LeadSource = "referral"
	SourceWebsite          LeadSource = "website"
	SourceZillow           LeadSource = "zillow"
	SourceFacebook         LeadSource = "facebook"
	SourceGeneralMarketing LeadSource = "general_marketing"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusClosed    LeadStatus = "closed"
)

type Lead struct {
	ID              uint64         `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Address         string         `gorm:"type:varchar(255)" json:"address"`
	City            string         `gorm:"type:varchar(100)" json:"city"`
	State           string         `gorm:"type:varchar(50)" json:"state"`
	Zip             string         `gorm:"type:varchar(20)" json:"zip"`
	Phone           string         `gorm:"type:varchar(50)" json:"phone"`
	Email           string         `gorm:"type:varchar(255)" json:"email"`
	Source          LeadSource     `gorm:"type:varchar(50);not null" json:"source"`
	MotivationScore *int           `json:"motivation_score"`
	Status          LeadStatus     `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes"`
	AmountOwed      string         `gorm:"type:varchar(50)" json:"amount_owed"`
	UserID          uint64         `gorm:"not null;index" json:"user_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Documents []Document `gorm:"foreignKey:LeadID" json:"documents,omitempty"`
}
