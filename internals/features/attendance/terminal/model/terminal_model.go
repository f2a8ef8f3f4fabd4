package model

import (
	"time"
)

type TerminalStatus string

const (
	TerminalOnline  TerminalStatus = "online"
	TerminalOffline TerminalStatus = "offline"
)

// TerminalModel — registry mesin biometrik (fingerprint/face) per serial.
type TerminalModel struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SerialNumber string         `gorm:"size:50;unique;not null" json:"serial_number"`
	Name         string         `gorm:"size:100" json:"name"`
	Location     string         `gorm:"size:100" json:"location"`
	Status       TerminalStatus `gorm:"type:varchar(10);not null;default:'offline'" json:"status"`
	LastSeenAt   *time.Time     `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TerminalModel) TableName() string {
	return "attendance_terminals"
}
