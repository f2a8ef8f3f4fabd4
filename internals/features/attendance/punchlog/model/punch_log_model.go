package model

import (
	"time"

	"gorm.io/datatypes"
)

// Status mentah transaksi absensi (lihat juga sync_queue pattern)
type SyncStatus string

const (
	SyncUnprocessed SyncStatus = "UNPROCESSED"
	SyncProcessed   SyncStatus = "PROCESSED"
	SyncFailed      SyncStatus = "FAILED"
)

type PunchState string

const (
	PunchIn      PunchState = "IN"
	PunchOut     PunchState = "OUT"
	PunchUnknown PunchState = "UNKNOWN"
)

type VerifyMethod string

const (
	VerifyFingerprint VerifyMethod = "FINGERPRINT"
	VerifyFace        VerifyMethod = "FACE"
	VerifyPalm        VerifyMethod = "PALM"
	VerifyCard        VerifyMethod = "CARD"
)

type PunchSource string

const (
	SourceLivePush PunchSource = "LIVE_PUSH"
	SourcePolled   PunchSource = "POLLED"
)

// Alasan karantina yang bisa di-retry otomatis
const FailReasonUnmapped = "UNMAPPED"

// PunchLogModel — log append-only semua punch mentah dari terminal.
// Immutable setelah insert kecuali sync_status + failure_reason.
// Unique (terminal_serial, device_user_id, punch_time) = dedup re-push di insert.
type PunchLogModel struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TerminalSerial string         `gorm:"size:50;not null;index;uniqueIndex:uq_punch_logs_event,priority:1" json:"terminal_serial"`
	DeviceUserID   int            `gorm:"not null;uniqueIndex:uq_punch_logs_event,priority:2" json:"device_user_id"`
	DeviceUserCode string         `gorm:"size:30" json:"device_user_code"`
	PunchTime      time.Time      `gorm:"type:timestamp;not null;uniqueIndex:uq_punch_logs_event,priority:3" json:"punch_time"`
	PunchState     PunchState     `gorm:"type:varchar(10);not null;default:'UNKNOWN'" json:"punch_state"`
	VerifyMethod   VerifyMethod   `gorm:"type:varchar(15);not null;default:'FINGERPRINT'" json:"verify_method"`
	Source         PunchSource    `gorm:"type:varchar(10);not null;default:'LIVE_PUSH'" json:"source"`
	SyncStatus     SyncStatus     `gorm:"type:varchar(15);not null;default:'UNPROCESSED';index" json:"sync_status"`
	FailureReason  *string        `gorm:"size:100" json:"failure_reason,omitempty"`
	RawPayload     datatypes.JSON `gorm:"type:jsonb" json:"raw_payload,omitempty"`
	ReceivedAt     time.Time      `gorm:"autoCreateTime" json:"received_at"`
}

func (PunchLogModel) TableName() string {
	return "attendance_punch_logs"
}

// Retryable: FAILED dengan alasan yang akan dicoba ulang scheduler
func (p *PunchLogModel) Retryable() bool {
	return p.SyncStatus == SyncFailed && p.FailureReason != nil && *p.FailureReason == FailReasonUnmapped
}

// ParsePunchState menormalkan kode state dari firmware (angka atau huruf).
// Kode tak dikenal jatuh ke UNKNOWN, bukan error — frame tetap disimpan.
func ParsePunchState(raw string) PunchState {
	switch raw {
	case "0", "I", "IN", "in", "CheckIn":
		return PunchIn
	case "1", "O", "OUT", "out", "CheckOut":
		return PunchOut
	default:
		return PunchUnknown
	}
}

// ParseVerifyMethod menormalkan kode metode verifikasi dari firmware.
func ParseVerifyMethod(raw string) VerifyMethod {
	switch raw {
	case "1", "FP", "FINGERPRINT", "fingerprint":
		return VerifyFingerprint
	case "15", "FACE", "face":
		return VerifyFace
	case "16", "PALM", "palm":
		return VerifyPalm
	case "2", "CARD", "card":
		return VerifyCard
	default:
		return VerifyFingerprint
	}
}
