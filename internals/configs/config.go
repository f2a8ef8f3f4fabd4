package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string
	AppLoc    *time.Location
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}

	// Timezone perusahaan — timestamp mesin absensi dianggap wall-clock lokal
	tz := GetEnv("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("⚠️ APP_TIMEZONE %q tidak valid, fallback ke UTC", tz)
		loc = time.UTC
	}
	AppLoc = loc
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// =======================
// PIPELINE CONFIG
// =======================

// PipelineConfig menampung semua knob pipeline absensi biometrik.
// Dibaca sekali saat boot; default aman untuk single-instance.
type PipelineConfig struct {
	ListenerPort     string
	ListenerMaxConns int64
	ListenerIdle     time.Duration

	SyncInterval   time.Duration
	SyncBatchSize  int
	SyncMaxRunTime time.Duration

	LunchBreak time.Duration
}

func LoadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		ListenerPort:     GetEnv("LISTENER_PORT", "5005"),
		ListenerMaxConns: int64(GetEnvInt("LISTENER_MAX_CONNS", 64)),
		ListenerIdle:     time.Duration(GetEnvInt("LISTENER_IDLE_TIMEOUT_SECONDS", 300)) * time.Second,

		SyncInterval:   time.Duration(GetEnvInt("SYNC_INTERVAL_SECONDS", 30)) * time.Second,
		SyncBatchSize:  GetEnvInt("SYNC_BATCH_SIZE", 200),
		SyncMaxRunTime: time.Duration(GetEnvInt("SYNC_MAX_RUN_SECONDS", 120)) * time.Second,

		LunchBreak: time.Duration(GetEnvInt("LUNCH_BREAK_MINUTES", 60)) * time.Minute,
	}
}
