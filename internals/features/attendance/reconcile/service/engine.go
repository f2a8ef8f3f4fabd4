package service

import (
	"context"
	"log"
	"sort"
	"time"

	daymodel "hadirku_backend/internals/features/attendance/daily/model"
	mappingmodel "hadirku_backend/internals/features/attendance/mapping/model"
	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

// Store — kebutuhan engine terhadap persistence. ApplyEvent WAJIB atomik:
// upsert attendance_daily + tandai event PROCESSED dalam satu transaksi,
// supaya crash di tengah tidak meninggalkan dua tabel yang tidak konsisten.
type Store interface {
	// PendingSerials: terminal yang masih punya backlog (UNPROCESSED atau
	// FAILED/UNMAPPED yang boleh retry).
	PendingSerials(ctx context.Context) ([]string, error)
	// FetchBatch: batch event pending per terminal, urut punch_time ASC.
	FetchBatch(ctx context.Context, terminalSerial string, limit int) ([]punchmodel.PunchLogModel, error)
	Resolve(ctx context.Context, terminalSerial string, deviceUserID int, deviceUserCode string) (*mappingmodel.DeviceMappingModel, error)
	ApplyEvent(ctx context.Context, ev punchmodel.PunchLogModel, m mappingmodel.DeviceMappingModel, date time.Time, lunch time.Duration) (daymodel.MergeResult, error)
	MarkFailed(ctx context.Context, eventID uint, reason string) error
}

// Summary — hasil agregat satu run (dipakai trigger manual & status API).
type Summary struct {
	Processed int `json:"processed"` // merge diterapkan
	Skipped   int `json:"skipped"`   // terlihat tapi sengaja diabaikan (IN duplikat)
	Failed    int `json:"failed"`    // karantina / error per-event
}

// Engine mengubah punch mentah UNPROCESSED jadi mutasi attendance, exactly once.
type Engine struct {
	Store     Store
	Lunch     time.Duration
	BatchSize int
}

func NewEngine(store Store, lunch time.Duration, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Engine{Store: store, Lunch: lunch, BatchSize: batchSize}
}

// Run proses backlog sampai habis atau context selesai (deadline run scheduler).
// Kegagalan satu event tidak menggagalkan batch; progress parsial tetap commit.
//
// Batch di-fetch per terminal (index terminal_serial) tapi diproses sebagai
// SATU sweep gabungan yang diurutkan punch_time global: pegawai yang ter-map
// di dua mesin sekaligus tetap dapat urutan waktu yang benar, bukan urutan
// terminal.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	serials, err := e.Store.PendingSerials(ctx)
	if err != nil {
		return sum, err
	}

	// cache terminal yang sudah kering di run ini — optimasi fetch, bukan correctness
	drained := make(map[string]bool, len(serials))
	// event yang sudah dicoba di run ini tidak dicoba lagi (gagal → run berikutnya),
	// supaya event busuk tidak bikin run muter selamanya
	attempted := make(map[uint]bool)

	for {
		var sweep []punchmodel.PunchLogModel
		for _, serial := range serials {
			if drained[serial] {
				continue
			}
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}

			batch, err := e.Store.FetchBatch(ctx, serial, e.BatchSize)
			if err != nil {
				log.Printf("[SYNC ERROR] Gagal ambil batch terminal %s: %v", serial, err)
				drained[serial] = true
				continue
			}

			fresh := 0
			for _, ev := range batch {
				if !attempted[ev.ID] {
					sweep = append(sweep, ev)
					fresh++
				}
			}
			if fresh == 0 || len(batch) < e.BatchSize {
				drained[serial] = true
			}
		}
		if len(sweep) == 0 {
			return sum, nil
		}

		e.processBatch(ctx, sweep, attempted, &sum)
	}
}

// processBatch urutkan by punch_time (IN first-wins / OUT last-wins sensitif
// urutan dalam satu employee-day) lalu proses satu-satu.
func (e *Engine) processBatch(ctx context.Context, batch []punchmodel.PunchLogModel, attempted map[uint]bool, sum *Summary) {
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].PunchTime.Before(batch[j].PunchTime)
	})

	for _, ev := range batch {
		if ctx.Err() != nil {
			return
		}
		attempted[ev.ID] = true

		mapping, err := e.Store.Resolve(ctx, ev.TerminalSerial, ev.DeviceUserID, ev.DeviceUserCode)
		if err != nil {
			log.Printf("[SYNC ERROR] Resolve event %d gagal: %v", ev.ID, err)
			sum.Failed++
			continue
		}
		if mapping == nil {
			// karantina — dicoba lagi otomatis begitu mapping dibuat
			if err := e.Store.MarkFailed(ctx, ev.ID, punchmodel.FailReasonUnmapped); err != nil {
				log.Printf("[SYNC ERROR] Tandai UNMAPPED event %d gagal: %v", ev.ID, err)
			}
			sum.Failed++
			continue
		}

		// tanggal dari punch_time mesin, bukan waktu terima — upload telat
		// tetap mendarat di tanggal yang benar
		result, err := e.Store.ApplyEvent(ctx, ev, *mapping, DayOf(ev.PunchTime), e.Lunch)
		if err != nil {
			// event tetap UNPROCESSED, dicoba lagi run berikutnya
			log.Printf("[SYNC ERROR] Apply event %d gagal: %v", ev.ID, err)
			sum.Failed++
			continue
		}
		if result == daymodel.MergeIgnored {
			sum.Skipped++
		} else {
			sum.Processed++
		}
	}
}

// DayOf normalisasi timestamp punch ke tanggal kalender (jam 00:00).
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
