package controllers

import (
	"time"
	"tutorlink_go/database"
	"tutorlink_go/middleware"
	"tutorlink_go/models"
	"tutorlink_go/services"

	"github.com/gofiber/fiber/v2"
)

// ListNotifications returns the current user's notifications, newest first.
func ListNotifications(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	q := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC")
	if c.QueryBool("unread") {
		q = q.Where("`read` = ?", false)
	}

	limit := c.QueryInt("limit", 50)
	if limit > 200 {
		limit = 200
	}

	var notifications []models.Notification
	if err := q.Limit(limit).Find(&notifications).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// UnreadCount returns the number of unread notifications.
func UnreadCount(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", user.ID, false).
		Count(&count).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   count,
	})
}

// MarkNotificationRead marks one of the user's notifications as read.
func MarkNotificationRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var notification models.Notification
	if err := database.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "notification", ID: id})
	}

	if !notification.Read {
		now := time.Now()
		notification.Read = true
		notification.ReadAt = &now
		if err := database.DB.Save(&notification).Error; err != nil {
			return serviceError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"notification": notification,
	})
}

// MarkAllNotificationsRead marks every unread notification of the user.
func MarkAllNotificationsRead(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	now := time.Now()
	res := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", user.ID, false).
		Updates(map[string]interface{}{"read": true, "read_at": now})
	if res.Error != nil {
		return serviceError(c, res.Error)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"updated": res.RowsAffected,
	})
}
