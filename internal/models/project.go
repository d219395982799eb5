package models

import "time"

// Project statuses for energy-audit engagements.
const (
	ProjectPlanned    = "PLANNED"
	ProjectInProgress = "IN_PROGRESS"
	ProjectCompleted  = "COMPLETED"
)

type Project struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserID        uint   `gorm:"not null;index"`
	BuildingID    string `gorm:"size:36;index"`
	Name          string `gorm:"not null"`
	Description   string
	Status        string `gorm:"not null;default:'PLANNED'"`
	StartDate     time.Time
	AttachmentKey string // object key of the uploaded audit report, if any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
