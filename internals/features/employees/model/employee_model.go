package model

import (
	"time"

	"github.com/google/uuid"
)

// CompanyModel merepresentasikan tenant di tabel companies
type CompanyModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Code      string    `gorm:"size:10;unique;not null" json:"code"` // prefix kode user di mesin
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

// EmployeeModel — baris minimal tabel employees; CRUD lengkapnya milik service HR,
// pipeline absensi hanya butuh eksistensi + kode pegawai.
type EmployeeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	EmployeeNo string    `gorm:"size:30;not null" json:"employee_no"`
	FullName   string    `gorm:"size:100;not null" json:"full_name"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EmployeeModel) TableName() string {
	return "employees"
}
