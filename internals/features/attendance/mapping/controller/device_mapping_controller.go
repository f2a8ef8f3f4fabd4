package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hadirku_backend/internals/features/attendance/mapping/dto"
	"hadirku_backend/internals/features/attendance/mapping/service"
	mappingstore "hadirku_backend/internals/features/attendance/mapping/store"
	empservice "hadirku_backend/internals/features/employees/service"
	helper "hadirku_backend/internals/helpers"
)

var validate = validator.New()

type DeviceMappingController struct {
	Directory *service.Directory
}

func NewDeviceMappingController(db *gorm.DB) *DeviceMappingController {
	return &DeviceMappingController{
		Directory: service.NewDirectory(mappingstore.New(db), empservice.NewLookup(db)),
	}
}

// POST /api/a/device-mappings — daftarkan pegawai ke terminal
func (ctl *DeviceMappingController) Register(c *fiber.Ctx) error {
	var req dto.RegisterMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	employeeID, _ := uuid.Parse(req.EmployeeID)

	row, err := ctl.Directory.Register(c.UserContext(), employeeID, req.TerminalSerial)
	switch {
	case errors.Is(err, service.ErrAlreadyMapped):
		return helper.Error(c, fiber.StatusConflict, "Pegawai sudah terdaftar di terminal ini")
	case errors.Is(err, empservice.ErrEmployeeNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Pegawai tidak ditemukan")
	case err != nil:
		log.Println("[ERROR] Register mapping gagal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mendaftarkan mapping")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Mapping berhasil dibuat", dto.ToMappingResponse(*row))
}

// POST /api/a/device-mappings/confirm — konfirmasi enrollment sidik jari (idempotent)
func (ctl *DeviceMappingController) ConfirmEnrollment(c *fiber.Ctx) error {
	var req dto.ConfirmEnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	employeeID, _ := uuid.Parse(req.EmployeeID)

	row, err := ctl.Directory.ConfirmEnrollment(c.UserContext(), employeeID, req.TerminalSerial)
	switch {
	case errors.Is(err, service.ErrMappingNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Mapping tidak ditemukan")
	case err != nil:
		log.Println("[ERROR] Konfirmasi enrollment gagal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal konfirmasi enrollment")
	}

	return helper.Success(c, "Enrollment dikonfirmasi", dto.ToMappingResponse(*row))
}

// DELETE /api/a/device-mappings — hapus mapping (terminal_serial kosong = semua)
func (ctl *DeviceMappingController) Unmap(c *fiber.Ctx) error {
	var req dto.UnmapRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	employeeID, _ := uuid.Parse(req.EmployeeID)

	n, err := ctl.Directory.Unmap(c.UserContext(), employeeID, req.TerminalSerial)
	switch {
	case errors.Is(err, service.ErrMappingNotFound):
		return helper.Error(c, fiber.StatusNotFound, "Mapping tidak ditemukan")
	case err != nil:
		log.Println("[ERROR] Unmap gagal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus mapping")
	}

	return helper.Success(c, "Mapping dihapus", fiber.Map{"deleted": n})
}

// GET /api/a/device-mappings/employee/:id
func (ctl *DeviceMappingController) ListByEmployee(c *fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Employee ID tidak valid")
	}

	rows, err := ctl.Directory.ListByEmployee(c.UserContext(), employeeID)
	if err != nil {
		log.Println("[ERROR] List mapping gagal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil mapping")
	}

	out := make([]dto.MappingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToMappingResponse(r))
	}
	return helper.Success(c, "Mapping pegawai berhasil diambil", fiber.Map{
		"total":    len(out),
		"mappings": out,
	})
}
