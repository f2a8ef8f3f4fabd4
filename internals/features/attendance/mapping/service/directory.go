package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"hadirku_backend/internals/features/attendance/mapping/model"
	empmodel "hadirku_backend/internals/features/employees/model"
)

var (
	ErrAlreadyMapped   = errors.New("pegawai sudah terdaftar di terminal ini")
	ErrMappingNotFound = errors.New("mapping tidak ditemukan")
)

// Batas retry alokasi device_user_id kalau dua registrasi balapan di terminal
// yang sama (tabrakan ditangkap unique constraint, bukan lock in-process).
const maxAllocRetries = 5

// MappingStore — kebutuhan directory terhadap persistence (gorm di produksi,
// in-memory di test).
type MappingStore interface {
	FindByPair(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (*model.DeviceMappingModel, error)
	FindByDevice(ctx context.Context, terminalSerial string, deviceUserID int, deviceUserCode string) (*model.DeviceMappingModel, error)
	MaxDeviceUserID(ctx context.Context, terminalSerial string) (int, error)
	Create(ctx context.Context, row *model.DeviceMappingModel) error
	Save(ctx context.Context, row *model.DeviceMappingModel) error
	DeleteByPair(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (int64, error)
	DeleteAllForEmployee(ctx context.Context, employeeID uuid.UUID) (int64, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.DeviceMappingModel, error)
}

// EmployeeDirectory — kolaborator CRUD service; pipeline hanya baca.
type EmployeeDirectory interface {
	Find(employeeID uuid.UUID) (*empmodel.EmployeeModel, error)
	CompanyCode(companyID uuid.UUID) (string, error)
}

// Directory: otoritas tunggal penerjemah (terminal, user mesin) ↔ pegawai.
type Directory struct {
	Store     MappingStore
	Employees EmployeeDirectory

	// serialisasi alokasi per terminal dalam satu instance; antar instance
	// tetap dijaga unique constraint + retry
	allocMu sync.Map // terminalSerial → *sync.Mutex
}

func NewDirectory(store MappingStore, employees EmployeeDirectory) *Directory {
	return &Directory{Store: store, Employees: employees}
}

func (d *Directory) terminalLock(serial string) *sync.Mutex {
	mu, _ := d.allocMu.LoadOrStore(serial, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Resolve identitas device-side ke pegawai internal; nil = unmapped.
func (d *Directory) Resolve(ctx context.Context, terminalSerial string, deviceUserID int, deviceUserCode string) (*model.DeviceMappingModel, error) {
	return d.Store.FindByDevice(ctx, terminalSerial, deviceUserID, deviceUserCode)
}

// Register daftarkan pegawai ke terminal: alokasi device_user_id berikutnya
// (max+1, mulai dari 1) + kode deterministik, status PENDING sampai enrollment
// sidik jari dikonfirmasi.
func (d *Directory) Register(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (*model.DeviceMappingModel, error) {
	emp, err := d.Employees.Find(employeeID)
	if err != nil {
		return nil, err
	}

	if existing, err := d.Store.FindByPair(ctx, employeeID, terminalSerial); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrAlreadyMapped
	}

	companyCode, err := d.Employees.CompanyCode(emp.CompanyID)
	if err != nil {
		return nil, err
	}

	mu := d.terminalLock(terminalSerial)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < maxAllocRetries; attempt++ {
		max, err := d.Store.MaxDeviceUserID(ctx, terminalSerial)
		if err != nil {
			return nil, err
		}

		row := &model.DeviceMappingModel{
			CompanyID:        emp.CompanyID,
			EmployeeID:       employeeID,
			TerminalSerial:   terminalSerial,
			DeviceUserID:     max + 1,
			DeviceUserCode:   BuildDeviceUserCode(companyCode, emp.EmployeeNo, terminalSerial),
			EnrollmentStatus: model.EnrollPending,
		}

		err = d.Store.Create(ctx, row)
		if err == nil {
			log.Printf("[MAPPING] Pegawai %s terdaftar di %s sebagai device_user_id=%d", employeeID, terminalSerial, row.DeviceUserID)
			return row, nil
		}
		if isUniqueViolation(err, "uq_device_mappings_employee_terminal") {
			// balapan dengan registrasi pegawai yang sama
			return nil, ErrAlreadyMapped
		}
		if isUniqueViolation(err, "uq_device_mappings_terminal_user") {
			// id keburu dipakai registrasi lain → hitung ulang max dan coba lagi
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("alokasi device_user_id untuk terminal %s gagal setelah %d percobaan", terminalSerial, maxAllocRetries)
}

// ConfirmEnrollment PENDING→COMPLETED + fingerprint_enrolled. Idempotent:
// konfirmasi kedua kali adalah no-op sukses.
func (d *Directory) ConfirmEnrollment(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (*model.DeviceMappingModel, error) {
	row, err := d.Store.FindByPair(ctx, employeeID, terminalSerial)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrMappingNotFound
	}
	if row.EnrollmentStatus == model.EnrollCompleted && row.FingerprintEnrolled {
		return row, nil
	}

	row.EnrollmentStatus = model.EnrollCompleted
	row.FingerprintEnrolled = true
	if err := d.Store.Save(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Unmap hapus mapping pegawai dari satu terminal (atau semua, serial kosong).
// Wajib dipanggil sebelum record pegawai dihapus — mapping yatim tetap
// resolvable dan merusak rekonsiliasi berikutnya.
func (d *Directory) Unmap(ctx context.Context, employeeID uuid.UUID, terminalSerial string) (int64, error) {
	if terminalSerial == "" {
		return d.Store.DeleteAllForEmployee(ctx, employeeID)
	}
	n, err := d.Store.DeleteByPair(ctx, employeeID, terminalSerial)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrMappingNotFound
	}
	return n, nil
}

func (d *Directory) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]model.DeviceMappingModel, error) {
	return d.Store.ListByEmployee(ctx, employeeID)
}

// BuildDeviceUserCode — kode deterministik <kodeTenant><noPegawai>-<4 digit serial>.
func BuildDeviceUserCode(companyCode, employeeNo, terminalSerial string) string {
	suffix := terminalSerial
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	code := strings.ToUpper(companyCode + employeeNo + "-" + suffix)
	if len(code) > 30 {
		code = code[:30]
	}
	return code
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
