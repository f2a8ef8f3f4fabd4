package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	mappingcontroller "hadirku_backend/internals/features/attendance/mapping/controller"
	punchcontroller "hadirku_backend/internals/features/attendance/punchlog/controller"
	synccontroller "hadirku_backend/internals/features/attendance/reconcile/controller"
	"hadirku_backend/internals/features/attendance/reconcile/scheduler"
	terminalcontroller "hadirku_backend/internals/features/attendance/terminal/controller"
	middlewares "hadirku_backend/internals/middlewares"
	authMiddleware "hadirku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, sched *scheduler.Scheduler) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== ADMIN (JWT + role) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		authMiddleware.IsAdmin(),
	)

	// ===================== ATTENDANCE PIPELINE =====================
	log.Println("[INFO] Setting up attendance sync routes...")
	syncCtl := synccontroller.NewSyncController(db, sched)
	admin.Post("/attendance/sync/run", middlewares.SyncTriggerRateLimiter(), syncCtl.RunNow)
	admin.Get("/attendance/sync/status", syncCtl.Status)

	log.Println("[INFO] Setting up punch log routes...")
	punchCtl := punchcontroller.NewPunchLogController(db)
	admin.Get("/attendance/punch-logs", punchCtl.List)
	admin.Post("/attendance/punch-logs/import", punchCtl.Import)

	log.Println("[INFO] Setting up device mapping routes...")
	mapCtl := mappingcontroller.NewDeviceMappingController(db)
	admin.Post("/device-mappings", mapCtl.Register)
	admin.Post("/device-mappings/confirm", mapCtl.ConfirmEnrollment)
	admin.Delete("/device-mappings", mapCtl.Unmap)
	admin.Get("/device-mappings/employee/:id", mapCtl.ListByEmployee)

	log.Println("[INFO] Setting up terminal routes...")
	termCtl := terminalcontroller.NewTerminalController(db)
	admin.Get("/terminals", termCtl.List)
}
