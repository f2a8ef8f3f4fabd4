package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
	helper "hadirku_backend/internals/helpers"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusPartial AttendanceStatus = "PARTIAL" // baru ada salah satu punch
)

type AttendanceSource string

const (
	SourceBiometric AttendanceSource = "BIOMETRIC"
	SourceManual    AttendanceSource = "MANUAL"
)

// AttendanceDailyModel — satu baris per (employee, tanggal). Dibuat di punch
// pertama, dimutasi oleh setiap merge berikutnya, tidak pernah dihapus pipeline.
type AttendanceDailyModel struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CompanyID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_daily_employee_date,priority:1" json:"employee_id"`
	AttendanceDate time.Time        `gorm:"type:date;not null;uniqueIndex:uq_attendance_daily_employee_date,priority:2" json:"attendance_date"`
	PunchInTime    *time.Time       `gorm:"type:timestamp" json:"punch_in_time,omitempty"`
	PunchOutTime   *time.Time       `gorm:"type:timestamp" json:"punch_out_time,omitempty"`
	Status         AttendanceStatus `gorm:"type:varchar(10);not null;default:'PARTIAL'" json:"status"`
	Source         AttendanceSource `gorm:"type:varchar(10);not null;default:'MANUAL'" json:"source"`
	DeviceSerial   string           `gorm:"size:50" json:"device_serial"`
	RawPayload     datatypes.JSON   `gorm:"type:jsonb" json:"raw_payload,omitempty"`
	WorkingHours   string           `gorm:"size:15" json:"working_hours"`
	BreakDuration  string           `gorm:"size:15" json:"break_duration"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AttendanceDailyModel) TableName() string {
	return "attendance_daily"
}

type MergeResult int

const (
	MergeApplied MergeResult = iota
	MergeIgnored             // event terlihat tapi sengaja diabaikan (bukan error)
)

// ApplyPunch — state machine merge per punch:
//   - IN: first-wins. IN kedua di hari yang sama diabaikan (mesin me-resend
//     event yang sama / pegawai scan dua kali), tetap dianggap PROCESSED.
//   - OUT: last-wins. Scan checkout terakhir yang otoritatif.
//   - UNKNOWN: ikut semantik OUT supaya encoding mesin yang ambigu tidak
//     menghilangkan data.
func (a *AttendanceDailyModel) ApplyPunch(state punchmodel.PunchState, at time.Time, deviceSerial string, raw datatypes.JSON) MergeResult {
	result := MergeApplied

	switch state {
	case punchmodel.PunchIn:
		if a.PunchInTime != nil {
			result = MergeIgnored
		} else {
			t := at
			a.PunchInTime = &t
		}
	default: // PunchOut, PunchUnknown
		t := at
		a.PunchOutTime = &t
	}

	if result == MergeApplied {
		a.Source = SourceBiometric
		a.DeviceSerial = deviceSerial
		if len(raw) > 0 {
			a.RawPayload = raw
		}
	}
	return result
}

// RecomputeDurations hitung ulang jam kerja & istirahat.
// working = (out - in) - istirahat, clamp ke 0 (clock skew / OUT sebelum IN).
func (a *AttendanceDailyModel) RecomputeDurations(lunch time.Duration) {
	if a.PunchInTime == nil || a.PunchOutTime == nil {
		a.Status = StatusPartial
		a.WorkingHours = helper.FormatWorkDuration(0)
		a.BreakDuration = helper.FormatWorkDuration(0)
		return
	}

	a.Status = StatusPresent

	span := a.PunchOutTime.Sub(*a.PunchInTime)
	if span < 0 {
		span = 0
	}
	brk := lunch
	if brk > span {
		brk = span
	}

	a.WorkingHours = helper.FormatWorkDuration(helper.WorkDuration(*a.PunchInTime, *a.PunchOutTime, lunch))
	a.BreakDuration = helper.FormatWorkDuration(brk)
}
