package listener

import (
	"bufio"
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"

	punchmodel "hadirku_backend/internals/features/attendance/punchlog/model"
)

// PunchStore — dipenuhi punchlog/store.Store. Listener TIDAK resolve pegawai
// dan TIDAK sentuh attendance: ingest tidak boleh nunggu join lambat.
type PunchStore interface {
	Insert(ctx context.Context, row *punchmodel.PunchLogModel) (bool, error)
}

// TerminalTracker — dipenuhi terminal/store.Store.
type TerminalTracker interface {
	Touch(ctx context.Context, serial string) error
	MarkOffline(ctx context.Context, serial string) error
}

// Listener menerima koneksi persistent dari terminal biometrik dan menulis
// frame push yang valid ke transaction log. Satu goroutine per koneksi,
// dibatasi semaphore; worker tidak berbagi state selain lewat store.
type Listener struct {
	Addr        string
	IdleTimeout time.Duration
	Loc         *time.Location

	Punches   PunchStore
	Terminals TerminalTracker

	sem  *semaphore.Weighted
	ln   net.Listener
	wg   sync.WaitGroup
	quit chan struct{}
	once sync.Once

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

func New(addr string, maxConns int64, idle time.Duration, loc *time.Location, punches PunchStore, terminals TerminalTracker) *Listener {
	if maxConns <= 0 {
		maxConns = 64
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Listener{
		Addr:        addr,
		IdleTimeout: idle,
		Loc:         loc,
		Punches:     punches,
		Terminals:   terminals,
		sem:         semaphore.NewWeighted(maxConns),
		quit:        make(chan struct{}),
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start buka port dan jalankan accept loop (non-blocking).
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return err
	}
	l.ln = ln
	log.Printf("✅ Terminal listener jalan di %s", ln.Addr())

	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Shutdown tutup port, putus koneksi terminal yang masih hidup, lalu tunggu
// semua worker selesai (atau ctx habis). Tanpa pemutusan paksa, worker bisa
// nyangkut di read sampai idle timeout — jauh lebih lama dari budget shutdown.
func (l *Listener) Shutdown(ctx context.Context) error {
	l.once.Do(func() { close(l.quit) })
	if l.ln != nil {
		_ = l.ln.Close()
	}

	l.connMu.Lock()
	for conn := range l.conns {
		_ = conn.Close()
	}
	l.connMu.Unlock()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.quit:
				return
			default:
			}
			log.Println("[LISTENER] Accept error:", err)
			continue
		}

		if !l.sem.TryAcquire(1) {
			// slot penuh — terminal diharapkan re-push atau jalur polled yang ambil
			log.Println("[LISTENER] Koneksi ditolak, slot penuh:", conn.RemoteAddr())
			_, _ = conn.Write([]byte("ERR busy\n"))
			_ = conn.Close()
			continue
		}

		l.track(conn)
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.sem.Release(1)
			defer l.untrack(conn)
			l.handleConn(conn)
		}()
	}
}

// handleConn — satu worker per terminal. Kegagalan koneksi ini tidak pernah
// merambat ke koneksi lain; drop cukup di-log dan slot dibebaskan.
func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)

	// handshake: "REG <serial>"
	l.extendDeadline(conn)
	if !scanner.Scan() {
		return
	}
	serial, err := ParseHandshake(scanner.Text())
	if err != nil {
		log.Printf("[LISTENER] Handshake ditolak dari %s: %q", conn.RemoteAddr(), scanner.Text())
		_, _ = conn.Write([]byte("ERR handshake\n"))
		return
	}

	if err := l.Terminals.Touch(context.Background(), serial); err != nil {
		log.Printf("[LISTENER] Gagal catat terminal %s: %v", serial, err)
	}
	_, _ = conn.Write([]byte("OK\n"))
	log.Printf("[LISTENER] Terminal %s terhubung dari %s", serial, conn.RemoteAddr())

	defer func() {
		if err := l.Terminals.MarkOffline(context.Background(), serial); err != nil {
			log.Printf("[LISTENER] Gagal tandai offline %s: %v", serial, err)
		}
		log.Printf("[LISTENER] Terminal %s terputus", serial)
	}()

	for {
		l.extendDeadline(conn)
		if !scanner.Scan() {
			return // koneksi putus / idle timeout
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		frame, err := ParseFrame(line, l.Loc)
		if err != nil {
			// frame rusak di-drop, koneksi tetap hidup
			log.Printf("[LISTENER] Frame rusak dari %s: %q", serial, line)
			_, _ = conn.Write([]byte("ERR frame\n"))
			continue
		}

		if err := l.ingest(serial, frame); err != nil {
			// storage lagi down — event tidak di-retry dari network layer;
			// terminal re-push atau jalur polled yang menyapu
			log.Printf("[LISTENER] Gagal simpan punch dari %s: %v", serial, err)
			_, _ = conn.Write([]byte("ERR store\n"))
			continue
		}
		_, _ = conn.Write([]byte("OK\n"))
	}
}

func (l *Listener) ingest(serial string, frame Frame) error {
	rawPayload, _ := sonic.Marshal(map[string]string{
		"terminal": serial,
		"frame":    frame.Raw,
	})

	row := punchmodel.PunchLogModel{
		TerminalSerial: serial,
		DeviceUserID:   frame.DeviceUserID,
		PunchTime:      frame.PunchTime,
		PunchState:     frame.State,
		VerifyMethod:   frame.Verify,
		Source:         punchmodel.SourceLivePush,
		SyncStatus:     punchmodel.SyncUnprocessed,
		RawPayload:     datatypes.JSON(rawPayload),
	}

	inserted, err := l.Punches.Insert(context.Background(), &row)
	if err != nil {
		return err
	}
	if !inserted {
		// re-push event fisik yang sama = sukses, lapisan dedup pertama
		log.Printf("[LISTENER] Duplikat ditekan: %s user=%d %s", serial, frame.DeviceUserID, frame.PunchTime.Format("15:04:05"))
	}
	return nil
}

func (l *Listener) track(conn net.Conn) {
	l.connMu.Lock()
	l.conns[conn] = struct{}{}
	l.connMu.Unlock()
}

func (l *Listener) untrack(conn net.Conn) {
	l.connMu.Lock()
	delete(l.conns, conn)
	l.connMu.Unlock()
}

func (l *Listener) extendDeadline(conn net.Conn) {
	if l.IdleTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(l.IdleTimeout))
	}
}
