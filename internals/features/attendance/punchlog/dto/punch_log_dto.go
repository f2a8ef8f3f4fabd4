package dto

import (
	"time"

	"hadirku_backend/internals/features/attendance/punchlog/model"
)

// PunchImportItem — satu baris upload dari middleware mesin (jalur polled).
type PunchImportItem struct {
	TerminalSerial string `json:"terminal_serial" validate:"required,max=50"`
	DeviceUserID   int    `json:"device_user_id" validate:"required,min=1"`
	DeviceUserCode string `json:"device_user_code" validate:"max=30"`
	PunchTime      string `json:"punch_time" validate:"required"` // "2006-01-02 15:04:05"
	PunchState     string `json:"punch_state" validate:"omitempty,oneof=IN OUT UNKNOWN 0 1"`
	VerifyMethod   string `json:"verify_method"`
}

type PunchImportRequest struct {
	Items []PunchImportItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

type PunchImportResponse struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Rejected   int `json:"rejected"`
}

// ParseTime menerima format middleware ("2006-01-02 15:04:05") dalam timezone app.
func (i PunchImportItem) ParseTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", i.PunchTime, loc)
}

type PunchLogResponse struct {
	ID             uint    `json:"id"`
	TerminalSerial string  `json:"terminal_serial"`
	DeviceUserID   int     `json:"device_user_id"`
	DeviceUserCode string  `json:"device_user_code"`
	PunchTime      string  `json:"punch_time"`
	PunchState     string  `json:"punch_state"`
	VerifyMethod   string  `json:"verify_method"`
	Source         string  `json:"source"`
	SyncStatus     string  `json:"sync_status"`
	FailureReason  *string `json:"failure_reason,omitempty"`
	ReceivedAt     string  `json:"received_at"`
}

func ToPunchLogResponse(m model.PunchLogModel) PunchLogResponse {
	return PunchLogResponse{
		ID:             m.ID,
		TerminalSerial: m.TerminalSerial,
		DeviceUserID:   m.DeviceUserID,
		DeviceUserCode: m.DeviceUserCode,
		PunchTime:      m.PunchTime.Format("2006-01-02 15:04:05"),
		PunchState:     string(m.PunchState),
		VerifyMethod:   string(m.VerifyMethod),
		Source:         string(m.Source),
		SyncStatus:     string(m.SyncStatus),
		FailureReason:  m.FailureReason,
		ReceivedAt:     m.ReceivedAt.Format(time.RFC3339),
	}
}
