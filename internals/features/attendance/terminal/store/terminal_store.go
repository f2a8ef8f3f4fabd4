package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hadirku_backend/internals/features/attendance/terminal/model"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Touch upsert terminal by serial + set online & last_seen.
// Mesin yang belum terdaftar tetap dicatat (nama diisi admin belakangan).
func (s *Store) Touch(ctx context.Context, serial string) error {
	now := time.Now()
	row := model.TerminalModel{
		SerialNumber: serial,
		Status:       model.TerminalOnline,
		LastSeenAt:   &now,
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "serial_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "last_seen_at", "updated_at"}),
		}).
		Create(&row).Error
}

// MarkOffline dipanggil saat koneksi terminal putus.
func (s *Store) MarkOffline(ctx context.Context, serial string) error {
	return s.DB.WithContext(ctx).Model(&model.TerminalModel{}).
		Where("serial_number = ?", serial).
		Update("status", model.TerminalOffline).Error
}

func (s *Store) List(ctx context.Context) ([]model.TerminalModel, error) {
	var rows []model.TerminalModel
	err := s.DB.WithContext(ctx).Order("serial_number").Find(&rows).Error
	return rows, err
}
