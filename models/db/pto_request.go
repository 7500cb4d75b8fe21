package dbmodels

import (
	"pto-bot-backend/models"
	"time"
)

// PTORequest is keyed by the request identifier minted at confirmation
// time, not a DB-generated one, so retried submissions hit the same row.
type PTORequest struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	UserID       string `gorm:"type:varchar(36);index"`
	UserName     string
	StartDate    time.Time `gorm:"type:date"`
	EndDate      time.Time `gorm:"type:date"`
	BusinessDays int
	Reason       string
	Status       models.RequestStatus `gorm:"type:varchar(16);index"`
	ManagerID    string               `gorm:"type:varchar(36);index"`
	ManagerName  string

	// set only when the request reaches a terminal state
	ApproverID string `gorm:"type:varchar(36)"`
	DecidedAt  *time.Time

	// reference to the manager notification, for in-place updates
	MessageChannelID string `gorm:"type:varchar(36)"`
	MessageTS        string `gorm:"type:varchar(36)"`
}
