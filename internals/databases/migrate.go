package database

import (
	"log"

	dailymodel "hadirku_backend/internals/features/attendance/daily/model"
	mappingmodel "hadirku_backend/internals/features/attendance/mapping/model"
	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
	terminalmodel "hadirku_backend/internals/features/attendance/terminal/model"
)

// MigratePipeline migrasi tabel milik pipeline absensi saja.
// Tabel employees/companies milik service HR — bukan urusan kita.
func MigratePipeline() {
	if err := DB.AutoMigrate(
		&terminalmodel.TerminalModel{},
		&punchmodel.PunchLogModel{},
		&mappingmodel.DeviceMappingModel{},
		&dailymodel.AttendanceDailyModel{},
	); err != nil {
		log.Fatalf("❌ Gagal migrate tabel pipeline: %v", err)
	}
	log.Println("✅ Migrasi tabel pipeline selesai.")
}
