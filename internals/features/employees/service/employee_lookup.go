package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hadirku_backend/internals/features/employees/model"
)

var ErrEmployeeNotFound = errors.New("employee tidak ditemukan")

// Lookup dipakai Device Mapping Directory untuk validasi pegawai sebelum register.
// Pipeline tidak pernah menulis tabel employees.
type Lookup struct {
	DB *gorm.DB
}

func NewLookup(db *gorm.DB) *Lookup {
	return &Lookup{DB: db}
}

// Find ambil pegawai aktif; ErrEmployeeNotFound kalau tidak ada / nonaktif.
func (l *Lookup) Find(employeeID uuid.UUID) (*model.EmployeeModel, error) {
	var emp model.EmployeeModel
	err := l.DB.First(&emp, "id = ? AND is_active = true", employeeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// CompanyCode ambil kode tenant untuk komposisi device user code.
func (l *Lookup) CompanyCode(companyID uuid.UUID) (string, error) {
	var company model.CompanyModel
	err := l.DB.First(&company, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}
	return company.Code, nil
}
