package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	punchstore "hadirku_backend/internals/features/attendance/punchlog/store"
	"hadirku_backend/internals/features/attendance/reconcile/scheduler"
	helper "hadirku_backend/internals/helpers"
)

type SyncController struct {
	Scheduler *scheduler.Scheduler
	PunchLogs *punchstore.Store
}

func NewSyncController(db *gorm.DB, sched *scheduler.Scheduler) *SyncController {
	return &SyncController{
		Scheduler: sched,
		PunchLogs: punchstore.New(db),
	}
}

// POST /api/a/attendance/sync/run — trigger manual (idempotent: kalau run lain
// sedang aktif, tidak memulai run kedua).
func (ctl *SyncController) RunNow(c *fiber.Ctx) error {
	sum, ran, err := ctl.Scheduler.TriggerNow(c.UserContext())
	if err != nil {
		// progress parsial tetap commit; laporkan apa adanya
		log.Println("[SYNC] Trigger manual berakhir dengan error:", err)
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Run rekonsiliasi berakhir dengan error", fiber.Map{
			"summary": sum,
			"error":   err.Error(),
		})
	}
	if !ran {
		return helper.SuccessWithCode(c, fiber.StatusAccepted, "Run rekonsiliasi sedang berjalan", fiber.Map{
			"ran":          false,
			"last_summary": sum,
		})
	}
	return helper.Success(c, "Run rekonsiliasi selesai", fiber.Map{
		"ran":     true,
		"summary": sum,
	})
}

// GET /api/a/attendance/sync/status — backlog, watermark, aktivitas per terminal.
func (ctl *SyncController) Status(c *fiber.Ctx) error {
	ctx := c.UserContext()

	backlog, err := ctl.PunchLogs.BacklogCount(ctx)
	if err != nil {
		log.Println("[ERROR] Gagal hitung backlog:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil status sinkronisasi")
	}
	quarantined, err := ctl.PunchLogs.QuarantinedCount(ctx)
	if err != nil {
		log.Println("[ERROR] Gagal hitung karantina:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil status sinkronisasi")
	}
	activity, err := ctl.PunchLogs.LastActivityPerTerminal(ctx)
	if err != nil {
		log.Println("[ERROR] Gagal ambil aktivitas terminal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil status sinkronisasi")
	}

	return helper.Success(c, "Status sinkronisasi", fiber.Map{
		"scheduler":         ctl.Scheduler.Status(),
		"backlog":           backlog,
		"quarantined":       quarantined,
		"terminal_activity": activity,
	})
}
