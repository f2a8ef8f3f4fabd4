package controller

import (
	"log"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hadirku_backend/internals/configs"
	"hadirku_backend/internals/features/attendance/punchlog/dto"
	"hadirku_backend/internals/features/attendance/punchlog/model"
	punchstore "hadirku_backend/internals/features/attendance/punchlog/store"
	helper "hadirku_backend/internals/helpers"
)

var validate = validator.New()

type PunchLogController struct {
	Store *punchstore.Store
}

func NewPunchLogController(db *gorm.DB) *PunchLogController {
	return &PunchLogController{Store: punchstore.New(db)}
}

// GET /api/a/attendance/punch-logs?terminal=&status=&page=&per_page=
func (ctl *PunchLogController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.Store.ListPage(c.UserContext(), punchstore.ListFilter{
		TerminalSerial: c.Query("terminal"),
		SyncStatus:     c.Query("status"),
		Limit:          paging.Limit,
		Offset:         paging.Offset,
	})
	if err != nil {
		log.Println("[ERROR] Gagal ambil punch logs:", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil punch logs")
	}

	out := make([]dto.PunchLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToPunchLogResponse(r))
	}

	return helper.SuccessWithPagination(c, "Punch logs berhasil diambil", out,
		helper.BuildPagination(paging, total, len(out)))
}

// POST /api/a/attendance/punch-logs/import — jalur polled (upload middleware mesin).
// Dedup sama persis dengan listener: duplikat dihitung, bukan error.
func (ctl *PunchLogController) Import(c *fiber.Ctx) error {
	var req dto.PunchImportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var resp dto.PunchImportResponse
	for _, item := range req.Items {
		punchAt, err := item.ParseTime(configs.AppLoc)
		if err != nil {
			resp.Rejected++
			continue
		}

		rawPayload, _ := sonic.Marshal(item)
		row := model.PunchLogModel{
			TerminalSerial: item.TerminalSerial,
			DeviceUserID:   item.DeviceUserID,
			DeviceUserCode: item.DeviceUserCode,
			PunchTime:      punchAt,
			PunchState:     model.ParsePunchState(item.PunchState),
			VerifyMethod:   model.ParseVerifyMethod(item.VerifyMethod),
			Source:         model.SourcePolled,
			SyncStatus:     model.SyncUnprocessed,
			RawPayload:     datatypes.JSON(rawPayload),
		}

		inserted, err := ctl.Store.Insert(c.UserContext(), &row)
		if err != nil {
			log.Println("[ERROR] Import punch gagal:", err)
			resp.Rejected++
			continue
		}
		if inserted {
			resp.Inserted++
		} else {
			resp.Duplicates++
		}
	}

	log.Printf("[IMPORT] %d masuk, %d duplikat, %d ditolak", resp.Inserted, resp.Duplicates, resp.Rejected)
	return helper.Success(c, "Import punch logs selesai", resp)
}
