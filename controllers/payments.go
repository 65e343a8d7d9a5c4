package controllers

import (
	"fmt"
	"time"
	"tutorlink_go/middleware"
	"tutorlink_go/services"
	"tutorlink_go/storage"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// PayTransaction settles one pending ledger line. Admin only.
func PayTransaction(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		PaymentMethod string `json:"payment_method" validate:"required,max=100"`
		Notes         string `json:"notes" validate:"max=2000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	txn, err := services.NewPaymentService().PaySingle(id, user.ID, req.PaymentMethod, req.Notes)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Transaction paid",
		"transaction": utils.ToTransactionDTO(*txn),
	})
}

// PayAllForTeacher settles every pending transaction for a teacher and
// resets their accrued counters. Admin only.
func PayAllForTeacher(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	teacherID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		PaymentMethod string `json:"payment_method" validate:"required,max=100"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	result, err := services.NewPaymentService().PayAllForTeacher(teacherID, user.ID, req.PaymentMethod)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"message":           "All pending transactions paid",
		"teacher":           utils.ToTeacherShort(*result.Teacher),
		"total_amount":      result.TotalAmount,
		"transaction_count": result.TransactionCount,
	})
}

// CreateAdjustment appends a manual ledger adjustment for a teacher.
func CreateAdjustment(c *fiber.Ctx) error {
	var req struct {
		TeacherID uint    `json:"teacher_id" validate:"required"`
		Amount    float64 `json:"amount" validate:"required,gt=0"`
		Type      string  `json:"type" validate:"required,oneof=bonus deduction manual_adjustment"`
		Notes     string  `json:"notes" validate:"required,max=2000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	txn, err := services.NewPaymentService().ManualAdjustment(req.TeacherID, req.Amount, req.Type, req.Notes)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"message":     "Adjustment recorded",
		"transaction": utils.ToTransactionDTO(*txn),
	})
}

// GetTeacherSummary returns the ledger projection for one teacher.
func GetTeacherSummary(c *fiber.Ctx) error {
	teacherID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	summary, err := services.NewPaymentService().SummaryForTeacher(teacherID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"summary": summary,
	})
}

// ListTransactions returns ledger lines with optional filters.
func ListTransactions(c *fiber.Ctx) error {
	teacherID := uint(c.QueryInt("teacher_id"))
	status := c.Query("status")
	limit := c.QueryInt("limit", 200)

	txns, err := services.NewPaymentService().ListTransactions(teacherID, status, limit)
	if err != nil {
		return serviceError(c, err)
	}

	dtos := make([]utils.TransactionDTO, 0, len(txns))
	for _, t := range txns {
		dtos = append(dtos, utils.ToTransactionDTO(t))
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"transactions": dtos,
		"count":        len(dtos),
	})
}

// ExportTransactions builds an xlsx of the filtered ledger. With ?upload=true
// the file is stored to S3 and the URL returned instead of the bytes.
func ExportTransactions(c *fiber.Ctx) error {
	teacherID := uint(c.QueryInt("teacher_id"))
	status := c.Query("status")

	txns, err := services.NewPaymentService().ListTransactions(teacherID, status, 0)
	if err != nil {
		return serviceError(c, err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close export workbook")
		}
	}()

	sheet := "Transactions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Reference", "Teacher ID", "Teacher", "Booking ID", "Amount", "Type", "Status", "Paid At", "Payment Method", "Notes", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, t := range txns {
		values := []interface{}{
			t.ID,
			t.Reference,
			t.TeacherID,
			fmt.Sprintf("%s %s", t.Teacher.FirstName, t.Teacher.LastName),
			nilableUint(t.BookingID),
			t.Amount,
			t.Type,
			t.Status,
			nilableTime(t.PaidAt),
			t.PaymentMethod,
			t.Notes,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return serviceError(c, err)
	}

	filename := fmt.Sprintf("payment_transactions_%s.xlsx", time.Now().Format("2006-01-02"))

	if c.QueryBool("upload") {
		storageSvc, err := storage.NewStorageService()
		if err != nil {
			return serviceError(c, err)
		}
		url, err := storageSvc.UploadBytes(buf.Bytes(), "exports/payments", filename)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"url":     url,
			"count":   len(txns),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

func nilableUint(v *uint) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func nilableTime(v *time.Time) interface{} {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02 15:04:05")
}
