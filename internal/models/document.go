package models

import (
	"time"

	"gorm.io/gorm"
)

type DocumentType string

const (
	DocumentContract DocumentType = "contract"
	DocumentOffer    DocumentType = "offer"
	DocumentLetter   DocumentType = "letter"
	DocumentGeneric  DocumentType = "document"
)

type DocumentStatus string

const (
	DocumentStatusDraft    DocumentStatus = "draft"
	DocumentStatusSent     DocumentStatus = "sent"
	DocumentStatusSigned   DocumentStatus = "signed"
	DocumentStatusRejected DocumentStatus = "rejected"
)

type Document struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Type      DocumentType   `gorm:"type:varchar(50);not null;default:'document'" json:"type"`
	Content   string         `gorm:"type:text" json:"content"`
	URL       string         `gorm:"type:varchar(512)" json:"url"`
	Status    DocumentStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	LeadID    *uint64        `gorm:"index" json:"lead_id"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Lead *Lead `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
}
