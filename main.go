package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"hadirku_backend/internals/configs"
	database "hadirku_backend/internals/databases"
	punchstore "hadirku_backend/internals/features/attendance/punchlog/store"
	"hadirku_backend/internals/features/attendance/reconcile/scheduler"
	reconcile "hadirku_backend/internals/features/attendance/reconcile/service"
	terminalstore "hadirku_backend/internals/features/attendance/terminal/store"
	"hadirku_backend/internals/listener"
	middlewares "hadirku_backend/internals/middlewares"
	routes "hadirku_backend/internals/route"
)

func main() {
	configs.LoadEnv()
	pipelineCfg := configs.LoadPipelineConfig()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.MigratePipeline()
	database.WarmUpQueries()

	// ⏱ scheduler rekonsiliasi setelah DB siap
	engine := reconcile.NewEngine(
		reconcile.NewGormStore(database.DB),
		pipelineCfg.LunchBreak,
		pipelineCfg.SyncBatchSize,
	)
	sched := scheduler.New(engine, pipelineCfg.SyncInterval, pipelineCfg.SyncMaxRunTime)
	sched.Start()

	// 📡 listener push terminal biometrik
	termListener := listener.New(
		"0.0.0.0:"+pipelineCfg.ListenerPort,
		pipelineCfg.ListenerMaxConns,
		pipelineCfg.ListenerIdle,
		configs.AppLoc,
		punchstore.New(database.DB),
		terminalstore.New(database.DB),
	)
	if err := termListener.Start(); err != nil {
		log.Fatalf("❌ Terminal listener gagal start: %v", err)
	}

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, sched)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop scheduler + listener + HTTP + pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := termListener.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Listener shutdown: %v", err)
	}
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
