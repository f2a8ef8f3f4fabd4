package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hadirku_backend/internals/features/attendance/punchlog/model"
)

// Store akses tabel attendance_punch_logs. Append-only: tidak ada update
// selain sync_status/failure_reason (itu urusan reconciliation engine).
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Insert simpan punch mentah; duplikat (re-push event fisik yang sama) ditekan
// lewat ON CONFLICT DO NOTHING dan dianggap sukses. Return false kalau duplikat.
func (s *Store) Insert(ctx context.Context, row *model.PunchLogModel) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "terminal_serial"}, {Name: "device_user_id"}, {Name: "punch_time"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type ListFilter struct {
	TerminalSerial string
	SyncStatus     string
	Limit          int
	Offset         int
}

// ListPage untuk endpoint monitoring log mentah (paginated).
func (s *Store) ListPage(ctx context.Context, f ListFilter) ([]model.PunchLogModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.PunchLogModel{})
	if f.TerminalSerial != "" {
		q = q.Where("terminal_serial = ?", f.TerminalSerial)
	}
	if f.SyncStatus != "" {
		q = q.Where("sync_status = ?", f.SyncStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PunchLogModel
	err := q.Order("punch_time DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error
	return rows, total, err
}

// BacklogCount = jumlah event yang belum direkonsiliasi.
func (s *Store) BacklogCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.PunchLogModel{}).
		Where("sync_status = ?", model.SyncUnprocessed).
		Count(&n).Error
	return n, err
}

// QuarantinedCount = event FAILED yang menunggu mapping (retry otomatis).
func (s *Store) QuarantinedCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&model.PunchLogModel{}).
		Where("sync_status = ? AND failure_reason = ?", model.SyncFailed, model.FailReasonUnmapped).
		Count(&n).Error
	return n, err
}

type TerminalActivity struct {
	TerminalSerial string    `json:"terminal_serial"`
	LastReceivedAt time.Time `json:"last_received_at"`
}

// LastActivityPerTerminal untuk status API (kapan tiap mesin terakhir kirim data).
func (s *Store) LastActivityPerTerminal(ctx context.Context) ([]TerminalActivity, error) {
	var rows []TerminalActivity
	err := s.DB.WithContext(ctx).Model(&model.PunchLogModel{}).
		Select("terminal_serial, MAX(received_at) AS last_received_at").
		Group("terminal_serial").
		Order("terminal_serial").
		Scan(&rows).Error
	return rows, err
}
