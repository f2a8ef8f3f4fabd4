package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	terminalstore "hadirku_backend/internals/features/attendance/terminal/store"
	helper "hadirku_backend/internals/helpers"
)

type TerminalController struct {
	Store *terminalstore.Store
}

func NewTerminalController(db *gorm.DB) *TerminalController {
	return &TerminalController{Store: terminalstore.New(db)}
}

// GET /api/a/terminals
func (ctl *TerminalController) List(c *fiber.Ctx) error {
	rows, err := ctl.Store.List(c.UserContext())
	if err != nil {
		log.Println("[ERROR] Gagal ambil daftar terminal:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil daftar terminal")
	}
	return helper.Success(c, "Daftar terminal berhasil diambil", fiber.Map{
		"total":     len(rows),
		"terminals": rows,
	})
}
