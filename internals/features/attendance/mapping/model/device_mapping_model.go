package model

import (
	"time"

	"github.com/google/uuid"
)

type EnrollmentStatus string

const (
	EnrollPending    EnrollmentStatus = "PENDING"
	EnrollInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollCompleted  EnrollmentStatus = "COMPLETED"
	EnrollFailed     EnrollmentStatus = "FAILED"
)

// DeviceMappingModel — satu-satunya penerjemah identitas mesin ↔ pegawai.
// Unique (terminal_serial, device_user_id): id user di mesin tidak boleh tabrakan.
// Unique (employee_id, terminal_serial): satu mapping per pegawai per mesin.
type DeviceMappingModel struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	CompanyID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_device_mappings_employee_terminal,priority:1" json:"employee_id"`
	TerminalSerial      string           `gorm:"size:50;not null;uniqueIndex:uq_device_mappings_employee_terminal,priority:2;uniqueIndex:uq_device_mappings_terminal_user,priority:1" json:"terminal_serial"`
	DeviceUserID        int              `gorm:"not null;uniqueIndex:uq_device_mappings_terminal_user,priority:2" json:"device_user_id"`
	DeviceUserCode      string           `gorm:"size:30;not null" json:"device_user_code"`
	EnrollmentStatus    EnrollmentStatus `gorm:"type:varchar(15);not null;default:'PENDING'" json:"enrollment_status"`
	FingerprintEnrolled bool             `gorm:"not null;default:false" json:"fingerprint_enrolled"`
	CreatedAt           time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DeviceMappingModel) TableName() string {
	return "device_mappings"
}
