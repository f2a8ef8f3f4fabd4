package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	daymodel "hadirku_backend/internals/features/attendance/daily/model"
	mappingmodel "hadirku_backend/internals/features/attendance/mapping/model"
	mappingstore "hadirku_backend/internals/features/attendance/mapping/store"
	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

// GormStore — implementasi Store di atas postgres.
type GormStore struct {
	DB       *gorm.DB
	Mappings *mappingstore.Store
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, Mappings: mappingstore.New(db)}
}

// kondisi event yang layak diproses: backlog murni + karantina UNMAPPED
func pendingScope(db *gorm.DB) *gorm.DB {
	return db.Where(
		"sync_status = ? OR (sync_status = ? AND failure_reason = ?)",
		punchmodel.SyncUnprocessed, punchmodel.SyncFailed, punchmodel.FailReasonUnmapped,
	)
}

func (s *GormStore) PendingSerials(ctx context.Context) ([]string, error) {
	var serials []string
	err := pendingScope(s.DB.WithContext(ctx).Model(&punchmodel.PunchLogModel{})).
		Distinct("terminal_serial").
		Order("terminal_serial").
		Pluck("terminal_serial", &serials).Error
	return serials, err
}

func (s *GormStore) FetchBatch(ctx context.Context, terminalSerial string, limit int) ([]punchmodel.PunchLogModel, error) {
	var rows []punchmodel.PunchLogModel
	err := pendingScope(s.DB.WithContext(ctx)).
		Where("terminal_serial = ?", terminalSerial).
		Order("punch_time ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) Resolve(ctx context.Context, terminalSerial string, deviceUserID int, deviceUserCode string) (*mappingmodel.DeviceMappingModel, error) {
	return s.Mappings.FindByDevice(ctx, terminalSerial, deviceUserID, deviceUserCode)
}

// ApplyEvent — upsert attendance_daily + tandai event PROCESSED dalam SATU
// transaksi. Baris hari di-lock FOR UPDATE supaya dua rekonsiliasi pada
// employee-day yang sama tidak saling menimpa; employee-day berbeda jalan paralel.
func (s *GormStore) ApplyEvent(ctx context.Context, ev punchmodel.PunchLogModel, m mappingmodel.DeviceMappingModel, date time.Time, lunch time.Duration) (daymodel.MergeResult, error) {
	var result daymodel.MergeResult

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var day daymodel.AttendanceDailyModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND attendance_date = ?", m.EmployeeID, date).
			First(&day).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			day = daymodel.AttendanceDailyModel{
				CompanyID:      m.CompanyID,
				EmployeeID:     m.EmployeeID,
				AttendanceDate: date,
			}
		} else if err != nil {
			return err
		}

		result = day.ApplyPunch(ev.PunchState, ev.PunchTime, ev.TerminalSerial, ev.RawPayload)
		day.RecomputeDurations(lunch)

		if err := tx.Save(&day).Error; err != nil {
			// tabrakan create hari yang sama → rollback; event tetap pending,
			// run berikutnya menemukan baris yang sudah ada
			return err
		}

		return tx.Model(&punchmodel.PunchLogModel{}).
			Where("id = ?", ev.ID).
			Updates(map[string]interface{}{
				"sync_status":    punchmodel.SyncProcessed,
				"failure_reason": nil,
			}).Error
	})
	return result, err
}

func (s *GormStore) MarkFailed(ctx context.Context, eventID uint, reason string) error {
	return s.DB.WithContext(ctx).Model(&punchmodel.PunchLogModel{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"sync_status":    punchmodel.SyncFailed,
			"failure_reason": reason,
		}).Error
}
