package controllers

import (
	"fmt"
	"tutorlink_go/config"
	"tutorlink_go/services"

	"github.com/gofiber/fiber/v2"
)

// GetSessionArchives lists heartbeat archive metadata. Admin only.
func GetSessionArchives(c *fiber.Ctx) error {
	archives, err := services.NewSessionArchiveService().GetArchives()
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"archives": archives,
		"count":    len(archives),
	})
}

// DownloadSessionArchive streams one archive from S3. Admin only.
func DownloadSessionArchive(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	reader, filename, err := services.NewSessionArchiveService().DownloadArchive(id)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.SendStream(reader)
}

// TriggerArchiveMaintenance runs the flush + archive cycle on demand.
// Admin only; the nightly job does this automatically.
func TriggerArchiveMaintenance(c *fiber.Ctx) error {
	svc := services.NewSessionArchiveService()

	flushErr := svc.FlushCachedLogsToDatabase()
	archiveErr := svc.ArchiveOldSessions(config.AppConfig.ArchiveAfterDays)

	resp := fiber.Map{"success": flushErr == nil && archiveErr == nil}
	if flushErr != nil {
		resp["flush_error"] = flushErr.Error()
	}
	if archiveErr != nil {
		resp["archive_error"] = archiveErr.Error()
	}

	status := fiber.StatusOK
	if flushErr != nil || archiveErr != nil {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(resp)
}
