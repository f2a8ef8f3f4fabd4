package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"hadirku_backend/internals/features/attendance/reconcile/service"
)

// Runner — engine rekonsiliasi (atau stub di test).
type Runner interface {
	Run(ctx context.Context) (service.Summary, error)
}

// Scheduler menjalankan rekonsiliasi tiap interval + trigger manual.
// Dua run tidak pernah overlap (flag atomic); trigger saat run aktif
// tidak memulai run kedua.
type Scheduler struct {
	Runner     Runner
	Interval   time.Duration
	MaxRunTime time.Duration

	running atomic.Bool
	stop    chan struct{}
	stopped sync.Once

	mu          sync.Mutex
	lastRunAt   time.Time // watermark: run sukses terakhir
	lastSummary service.Summary
	lastErr     error
}

func New(runner Runner, interval, maxRunTime time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if maxRunTime <= 0 {
		maxRunTime = 2 * time.Minute
	}
	return &Scheduler{
		Runner:     runner,
		Interval:   interval,
		MaxRunTime: maxRunTime,
		stop:       make(chan struct{}),
	}
}

// Start loop periodik (non-blocking).
func (s *Scheduler) Start() {
	go func() {
		log.Printf("[SYNC] Scheduler jalan tiap %s", s.Interval)
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.runOnce(context.Background())
			case <-s.stop:
				log.Println("[SYNC] Scheduler berhenti")
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.stopped.Do(func() { close(s.stop) })
}

// TriggerNow — trigger manual dari API operator. ran=false kalau run lain
// sedang aktif (tidak double-run; summary terakhir yang dikembalikan).
func (s *Scheduler) TriggerNow(ctx context.Context) (service.Summary, bool, error) {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) (service.Summary, bool, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Lock()
		last := s.lastSummary
		s.mu.Unlock()
		return last, false, nil
	}
	defer s.running.Store(false)

	// lepas dari deadline request HTTP pemicu (cuma 5 detik) — satu-satunya
	// batas durasi run adalah MaxRunTime
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.MaxRunTime)
	defer cancel()

	start := time.Now()
	sum, err := s.Runner.Run(runCtx)

	s.mu.Lock()
	s.lastSummary = sum
	s.lastErr = err
	if err == nil {
		s.lastRunAt = start
	}
	s.mu.Unlock()

	if err != nil {
		// progress parsial sudah commit per-event; sisanya diambil run berikutnya
		log.Printf("[SYNC] Run berakhir dengan error setelah %s: %v (processed=%d skipped=%d failed=%d)",
			time.Since(start), err, sum.Processed, sum.Skipped, sum.Failed)
	} else if sum.Processed+sum.Skipped+sum.Failed > 0 {
		log.Printf("[SYNC] Run selesai %s: processed=%d skipped=%d failed=%d",
			time.Since(start), sum.Processed, sum.Skipped, sum.Failed)
	}
	return sum, true, err
}

// Snapshot status untuk API monitoring.
type Status struct {
	Running     bool            `json:"running"`
	LastRunAt   *time.Time      `json:"last_run_at,omitempty"`
	LastSummary service.Summary `json:"last_summary"`
	LastError   string          `json:"last_error,omitempty"`
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:     s.running.Load(),
		LastSummary: s.lastSummary,
	}
	if !s.lastRunAt.IsZero() {
		t := s.lastRunAt
		st.LastRunAt = &t
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}
