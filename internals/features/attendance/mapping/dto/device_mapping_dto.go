package dto

import (
	"hadirku_backend/internals/features/attendance/mapping/model"
)

type RegisterMappingRequest struct {
	EmployeeID     string `json:"employee_id" validate:"required,uuid4"`
	TerminalSerial string `json:"terminal_serial" validate:"required,max=50"`
}

type ConfirmEnrollmentRequest struct {
	EmployeeID     string `json:"employee_id" validate:"required,uuid4"`
	TerminalSerial string `json:"terminal_serial" validate:"required,max=50"`
}

type UnmapRequest struct {
	EmployeeID     string `json:"employee_id" validate:"required,uuid4"`
	TerminalSerial string `json:"terminal_serial" validate:"max=50"` // kosong = semua terminal
}

type MappingResponse struct {
	ID                  uint   `json:"id"`
	CompanyID           string `json:"company_id"`
	EmployeeID          string `json:"employee_id"`
	TerminalSerial      string `json:"terminal_serial"`
	DeviceUserID        int    `json:"device_user_id"`
	DeviceUserCode      string `json:"device_user_code"`
	EnrollmentStatus    string `json:"enrollment_status"`
	FingerprintEnrolled bool   `json:"fingerprint_enrolled"`
}

func ToMappingResponse(m model.DeviceMappingModel) MappingResponse {
	return MappingResponse{
		ID:                  m.ID,
		CompanyID:           m.CompanyID.String(),
		EmployeeID:          m.EmployeeID.String(),
		TerminalSerial:      m.TerminalSerial,
		DeviceUserID:        m.DeviceUserID,
		DeviceUserCode:      m.DeviceUserCode,
		EnrollmentStatus:    string(m.EnrollmentStatus),
		FingerprintEnrolled: m.FingerprintEnrolled,
	}
}
