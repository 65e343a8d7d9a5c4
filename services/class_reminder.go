package services

import (
	"context"
	"fmt"
	"time"

	"tutorlink_go/config"
	"tutorlink_go/database"
	"tutorlink_go/models"
	notifsvc "tutorlink_go/services/notifications"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// reminder offsets before class start, minutes
var reminderOffsets = []int{60, 30}

// SchedulerService runs the periodic jobs: class reminders, the stale
// session sweeper and the nightly archive.
type SchedulerService struct {
	cron    *cron.Cron
	notif   *notifsvc.Service
	archive *SessionArchiveService
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		cron:    cron.New(),
		notif:   notifsvc.NewService(),
		archive: NewSessionArchiveService(),
	}
}

// Start registers the jobs and starts the cron loop.
func (ss *SchedulerService) Start() {
	// Reminders are cheap and need minute-level resolution.
	if _, err := ss.cron.AddFunc("*/5 * * * *", ss.sendClassReminders); err != nil {
		logrus.WithError(err).Error("Failed to register reminder job")
	}

	// Sessions stuck in waiting/active long after the class window closed.
	if _, err := ss.cron.AddFunc("@hourly", ss.sweepStaleSessions); err != nil {
		logrus.WithError(err).Error("Failed to register stale session sweeper")
	}

	// Log flush + heartbeat archive off-peak.
	if _, err := ss.cron.AddFunc("0 3 * * *", ss.runArchive); err != nil {
		logrus.WithError(err).Error("Failed to register archive job")
	}

	ss.cron.Start()
	logrus.Info("Scheduler started")
}

// Stop halts the cron loop and waits for running jobs.
func (ss *SchedulerService) Stop() {
	ctx := ss.cron.Stop()
	<-ctx.Done()
	logrus.Info("Scheduler stopped")
}

// sendClassReminders notifies both parties of accepted bookings starting
// within the reminder offsets. Redis SETNX keys dedupe across ticks; if
// Redis is down, reminders are skipped rather than duplicated.
func (ss *SchedulerService) sendClassReminders() {
	db := database.GetDB()
	now := time.Now()

	for _, offset := range reminderOffsets {
		windowStart := now.Add(time.Duration(offset-5) * time.Minute)
		windowEnd := now.Add(time.Duration(offset) * time.Minute)

		var bookings []models.Booking
		if err := db.Preload("Teacher").Preload("Student").
			Where("status = ? AND scheduled_time > ? AND scheduled_time <= ?",
				models.BookingAccepted, windowStart, windowEnd).
			Find(&bookings).Error; err != nil {
			logrus.WithError(err).Error("Reminder query failed")
			continue
		}

		for _, b := range bookings {
			if !ss.claimReminder(b.ID, offset) {
				continue
			}

			title := fmt.Sprintf("Class starting in %d minutes", offset)
			message := fmt.Sprintf("%s at %s", b.ClassTitle, b.ScheduledTime.Format("15:04"))
			userIDs := []uint{b.Teacher.UserID, b.Student.UserID}

			if err := ss.notif.EnqueueOrCreate(userIDs, notifsvc.QueuedWithData(
				title, message, "info",
				map[string]any{"booking_id": b.ID, "scheduled_time": b.ScheduledTime},
			)); err != nil {
				logrus.WithError(err).WithField("booking_id", b.ID).Warn("Failed to send class reminder")
			}
		}
	}
}

// claimReminder returns true exactly once per (booking, offset).
func (ss *SchedulerService) claimReminder(bookingID uint, offset int) bool {
	rdb := database.GetRedisClient()
	if rdb == nil {
		return false
	}
	key := fmt.Sprintf("reminder:%d:%d", bookingID, offset)
	ok, err := rdb.SetNX(context.Background(), key, 1, 24*time.Hour).Result()
	if err != nil {
		logrus.WithError(err).Warn("Reminder dedupe check failed")
		return false
	}
	return ok
}

// sweepStaleSessions marks sessions incomplete when the class window plus a
// two hour grace has passed and neither completion nor early-end happened.
func (ss *SchedulerService) sweepStaleSessions() {
	db := database.GetDB()
	now := time.Now()

	var sessions []models.ClassroomSession
	if err := db.Preload("Booking").
		Where("status IN ?", []string{models.SessionWaiting, models.SessionActive}).
		Find(&sessions).Error; err != nil {
		logrus.WithError(err).Error("Stale session query failed")
		return
	}

	swept := 0
	for _, s := range sessions {
		deadline := s.Booking.ScheduledTime.
			Add(time.Duration(s.Booking.Duration) * time.Minute).
			Add(2 * time.Hour)
		if now.Before(deadline) {
			continue
		}

		ended := now
		s.Status = models.SessionIncomplete
		s.ClassEndedAt = &ended
		if err := db.Save(&s).Error; err != nil {
			logrus.WithError(err).WithField("session_id", s.ID).Error("Failed to sweep stale session")
			continue
		}
		swept++
	}
	if swept > 0 {
		logrus.Infof("Swept %d stale sessions to incomplete", swept)
	}
}

// runArchive flushes cached activity logs and archives old session heartbeats.
func (ss *SchedulerService) runArchive() {
	if err := ss.archive.FlushCachedLogsToDatabase(); err != nil {
		logrus.WithError(err).Warn("Cached log flush failed")
	}
	if err := ss.archive.ArchiveOldSessions(config.AppConfig.ArchiveAfterDays); err != nil {
		logrus.WithError(err).Warn("Session archive failed")
	}
}
