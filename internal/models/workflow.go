package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// WorkflowType doubles as the workflow's "trigger" field: the dispatcher
// interprets actions differently per type.
type WorkflowType string

const (
	WorkflowLeadQualifier   WorkflowType = "lead-qualifier"
	WorkflowOutreach        WorkflowType = "outreach-sequence"
	WorkflowContract        WorkflowType = "contract-generator"
	WorkflowScraper         WorkflowType = "scraper-workflow"
	WorkflowAdvancedScraper WorkflowType = "advanced-scraper-workflow"
	WorkflowCustom          WorkflowType = "custom"
)

type ActionType string

const (
	ActionFilter   ActionType = "filter"
	ActionDocument ActionType = "document"
	ActionScore    ActionType = "score"
	ActionScrape   ActionType = "scrape"
	ActionCreate   ActionType = "create"
	ActionEmail    ActionType = "email"
	ActionSMS      ActionType = "sms"
	ActionCall     ActionType = "call"
	ActionDelay    ActionType = "delay"
	ActionNotify   ActionType = "notify"
)

// Action is one step of a workflow. Config is caller-defined free-form JSON.
type Action struct {
	Type   ActionType     `json:"type"`
	Config map[string]any `json:"config"`
}

// Actions is stored as a JSON column. Anything that is not a JSON array
// deserializes to an empty list rather than failing the row load.
type Actions []Action

func (a *Actions) UnmarshalJSON(data []byte) error {
	var raw []Action
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = Actions{}
		return nil
	}
	*a = raw
	return nil
}

type Workflow struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Trigger     WorkflowType   `gorm:"type:varchar(50);not null;default:'custom'" json:"trigger"`
	Actions     Actions        `gorm:"serializer:json" json:"actions"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	LastRun     *time.Time     `json:"last_run"`
	UserID      uint64         `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
