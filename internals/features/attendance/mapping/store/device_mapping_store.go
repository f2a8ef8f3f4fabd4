package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hadirku_backend/internals/features/attendance/mapping/model"
)

// Store akses tabel device_mappings. Constraint unik ditegakkan DB, bukan
// in-process — listener/scheduler bisa jalan multi-instance.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// FindByPair: nil tanpa error kalau belum ada mapping.
func (s *Store) FindByPair(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (*model.DeviceMappingModel, error) {
	var row model.DeviceMappingModel
	err := s.DB.WithContext(ctx).
		First(&row, "employee_id = ? AND terminal_serial = ?", employeeID, terminalSerial).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByDevice resolve identitas device-side. Mesin kadang hanya melaporkan
// salah satu dari id numerik / kode, jadi dua-duanya dicoba.
func (s *Store) FindByDevice(ctx context.Context, terminalSerial string, deviceUserID int, deviceUserCode string) (*model.DeviceMappingModel, error) {
	q := s.DB.WithContext(ctx).Where("terminal_serial = ?", terminalSerial)
	switch {
	case deviceUserID > 0 && deviceUserCode != "":
		q = q.Where("device_user_id = ? OR device_user_code = ?", deviceUserID, deviceUserCode)
	case deviceUserID > 0:
		q = q.Where("device_user_id = ?", deviceUserID)
	case deviceUserCode != "":
		q = q.Where("device_user_code = ?", deviceUserCode)
	default:
		return nil, nil
	}

	var row model.DeviceMappingModel
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MaxDeviceUserID: 0 kalau terminal belum punya user.
func (s *Store) MaxDeviceUserID(ctx context.Context, terminalSerial string) (int, error) {
	var max int
	err := s.DB.WithContext(ctx).Model(&model.DeviceMappingModel{}).
		Where("terminal_serial = ?", terminalSerial).
		Select("COALESCE(MAX(device_user_id), 0)").
		Scan(&max).Error
	return max, err
}

// Create biarkan unique violation naik apa adanya — allocator di service
// yang memutuskan retry vs ErrAlreadyMapped.
func (s *Store) Create(ctx context.Context, row *model.DeviceMappingModel) error {
	return s.DB.WithContext(ctx).Create(row).Error
}

func (s *Store) Save(ctx context.Context, row *model.DeviceMappingModel) error {
	return s.DB.WithContext(ctx).Save(row).Error
}

func (s *Store) DeleteByPair(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("employee_id = ? AND terminal_serial = ?", employeeID, terminalSerial).
		Delete(&model.DeviceMappingModel{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteAllForEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Delete(&model.DeviceMappingModel{})
	return res.RowsAffected, res.Error
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.DeviceMappingModel, error) {
	var rows []model.DeviceMappingModel
	err := s.DB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("terminal_serial").
		Find(&rows).Error
	return rows, err
}
