package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hadirku_backend/internals/features/attendance/mapping/model"
	empmodel "hadirku_backend/internals/features/employees/model"
	empservice "hadirku_backend/internals/features/employees/service"
)

// memStore meniru device_mappings + dua unique constraint-nya, termasuk
// bentuk error 23505 yang dilempar postgres.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	rows   []*model.DeviceMappingModel
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *memStore) FindByPair(_ context.Context, employeeID uuid.UUID, serial string) (*model.DeviceMappingModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.TerminalSerial == serial {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByDevice(_ context.Context, serial string, deviceUserID int, code string) (*model.DeviceMappingModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TerminalSerial != serial {
			continue
		}
		if (deviceUserID > 0 && r.DeviceUserID == deviceUserID) || (code != "" && r.DeviceUserCode == code) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) MaxDeviceUserID(_ context.Context, serial string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, r := range m.rows {
		if r.TerminalSerial == serial && r.DeviceUserID > max {
			max = r.DeviceUserID
		}
	}
	return max, nil
}

func (m *memStore) Create(_ context.Context, row *model.DeviceMappingModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.TerminalSerial == row.TerminalSerial && r.DeviceUserID == row.DeviceUserID {
			return uniqueViolation("uq_device_mappings_terminal_user")
		}
		if r.EmployeeID == row.EmployeeID && r.TerminalSerial == row.TerminalSerial {
			return uniqueViolation("uq_device_mappings_employee_terminal")
		}
	}
	m.nextID++
	row.ID = m.nextID
	cp := *row
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memStore) Save(_ context.Context, row *model.DeviceMappingModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.ID == row.ID {
			cp := *row
			m.rows[i] = &cp
			return nil
		}
	}
	return nil
}

func (m *memStore) DeleteByPair(_ context.Context, employeeID uuid.UUID, serial string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.EmployeeID == employeeID && r.TerminalSerial == serial {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memStore) DeleteAllForEmployee(_ context.Context, employeeID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if r.EmployeeID == employeeID {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memStore) ListByEmployee(_ context.Context, employeeID uuid.UUID) ([]model.DeviceMappingModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DeviceMappingModel
	for _, r := range m.rows {
		if r.EmployeeID == employeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeEmployees struct {
	byID map[uuid.UUID]*empmodel.EmployeeModel
}

func (f *fakeEmployees) Find(id uuid.UUID) (*empmodel.EmployeeModel, error) {
	emp, ok := f.byID[id]
	if !ok {
		return nil, empservice.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployees) CompanyCode(uuid.UUID) (string, error) {
	return "HK", nil
}

func newFixture(nEmployees int) (*Directory, []uuid.UUID) {
	emps := &fakeEmployees{byID: map[uuid.UUID]*empmodel.EmployeeModel{}}
	ids := make([]uuid.UUID, 0, nEmployees)
	companyID := uuid.New()
	for i := 0; i < nEmployees; i++ {
		id := uuid.New()
		emps.byID[id] = &empmodel.EmployeeModel{
			ID:         id,
			CompanyID:  companyID,
			EmployeeNo: "E" + id.String()[:4],
			IsActive:   true,
		}
		ids = append(ids, id)
	}
	return NewDirectory(&memStore{}, emps), ids
}

func TestRegisterAllocatesSequentialIDs(t *testing.T) {
	dir, ids := newFixture(3)
	ctx := context.Background()

	for i, id := range ids {
		row, err := dir.Register(ctx, id, "ZK-001")
		require.NoError(t, err)
		assert.Equal(t, i+1, row.DeviceUserID)
		assert.Equal(t, model.EnrollPending, row.EnrollmentStatus)
		assert.False(t, row.FingerprintEnrolled)
	}

	// terminal lain mulai lagi dari 1
	row, err := dir.Register(ctx, ids[0], "ZK-002")
	require.NoError(t, err)
	assert.Equal(t, 1, row.DeviceUserID)
}

func TestRegisterAlreadyMapped(t *testing.T) {
	dir, ids := newFixture(1)
	ctx := context.Background()

	_, err := dir.Register(ctx, ids[0], "ZK-001")
	require.NoError(t, err)

	_, err = dir.Register(ctx, ids[0], "ZK-001")
	assert.ErrorIs(t, err, ErrAlreadyMapped)
}

func TestRegisterUnknownEmployee(t *testing.T) {
	dir, _ := newFixture(0)
	_, err := dir.Register(context.Background(), uuid.New(), "ZK-001")
	assert.ErrorIs(t, err, empservice.ErrEmployeeNotFound)
}

func TestConcurrentRegisterAllocatorUniqueness(t *testing.T) {
	const n = 50
	dir, ids := newFixture(n)
	ctx := context.Background()

	type regResult struct {
		deviceUserID int
		err          error
	}

	var wg sync.WaitGroup
	results := make(chan regResult, n)
	for _, id := range ids {
		wg.Add(1)
		go func(empID uuid.UUID) {
			defer wg.Done()
			row, err := dir.Register(ctx, empID, "ZK-RACE")
			if err != nil {
				results <- regResult{err: err}
				return
			}
			results <- regResult{deviceUserID: row.DeviceUserID}
		}(id)
	}
	wg.Wait()
	close(results)

	// assert di goroutine test, bukan di worker
	var got []int
	for r := range results {
		require.NoError(t, r.err)
		got = append(got, r.deviceUserID)
	}
	sort.Ints(got)

	require.Len(t, got, n)
	for i, v := range got {
		// 50 id berbeda dan kontigu 1..50, tanpa tabrakan
		assert.Equal(t, i+1, v)
	}
}

func TestConfirmEnrollmentIdempotent(t *testing.T) {
	dir, ids := newFixture(1)
	ctx := context.Background()

	_, err := dir.Register(ctx, ids[0], "ZK-001")
	require.NoError(t, err)

	row, err := dir.ConfirmEnrollment(ctx, ids[0], "ZK-001")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollCompleted, row.EnrollmentStatus)
	assert.True(t, row.FingerprintEnrolled)

	// konfirmasi kedua: no-op sukses
	row2, err := dir.ConfirmEnrollment(ctx, ids[0], "ZK-001")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollCompleted, row2.EnrollmentStatus)
}

func TestConfirmEnrollmentNotFound(t *testing.T) {
	dir, _ := newFixture(0)
	_, err := dir.ConfirmEnrollment(context.Background(), uuid.New(), "ZK-001")
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestUnmap(t *testing.T) {
	dir, ids := newFixture(1)
	ctx := context.Background()

	_, err := dir.Register(ctx, ids[0], "ZK-001")
	require.NoError(t, err)
	_, err = dir.Register(ctx, ids[0], "ZK-002")
	require.NoError(t, err)

	n, err := dir.Unmap(ctx, ids[0], "ZK-001")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// serial kosong = hapus semua sisa mapping pegawai
	n, err = dir.Unmap(ctx, ids[0], "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = dir.Unmap(ctx, ids[0], "ZK-001")
	assert.ErrorIs(t, err, ErrMappingNotFound)
}

func TestResolve(t *testing.T) {
	dir, ids := newFixture(1)
	ctx := context.Background()

	row, err := dir.Register(ctx, ids[0], "ZK-001")
	require.NoError(t, err)

	// by device_user_id
	got, err := dir.Resolve(ctx, "ZK-001", row.DeviceUserID, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ids[0], got.EmployeeID)

	// by device_user_code saja
	got, err = dir.Resolve(ctx, "ZK-001", 0, row.DeviceUserCode)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ids[0], got.EmployeeID)

	// unmapped → nil, bukan error
	got, err = dir.Resolve(ctx, "ZK-001", 999, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBuildDeviceUserCode(t *testing.T) {
	assert.Equal(t, "HKE001-4567", BuildDeviceUserCode("HK", "E001", "ZK-1234567"))
	// deterministik
	assert.Equal(t,
		BuildDeviceUserCode("HK", "E001", "ZK-1234567"),
		BuildDeviceUserCode("HK", "E001", "ZK-1234567"))
	// dipotong ke 30 char
	long := BuildDeviceUserCode("COMPANYCODE", "EMPLOYEE-NUMBER-PANJANG-SEKALI", "SERIAL")
	assert.LessOrEqual(t, len(long), 30)
}
