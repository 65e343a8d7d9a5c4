package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tutorlink_go/config"
	"tutorlink_go/database"
	"tutorlink_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionArchiveService flushes cached activity logs and archives heartbeat
// logs of finished classroom sessions to S3. Sessions themselves are never
// deleted; only their heartbeat blobs are offloaded.
type SessionArchiveService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
}

// ArchivedSession is the exported representation stored inside archives.
type ArchivedSession struct {
	SessionID         uint                    `json:"session_id"`
	BookingID         uint                    `json:"booking_id"`
	Status            string                  `json:"status"`
	TeacherActiveTime int                     `json:"teacher_active_time"`
	StudentActiveTime int                     `json:"student_active_time"`
	BothActiveTime    int                     `json:"both_active_time"`
	RequiredTime      int                     `json:"required_time"`
	ClassStartedAt    *time.Time              `json:"class_started_at"`
	ClassEndedAt      *time.Time              `json:"class_ended_at"`
	Heartbeats        []models.HeartbeatEntry `json:"heartbeats"`
}

func NewSessionArchiveService() *SessionArchiveService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &SessionArchiveService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedLogsToDatabase moves activity logs from the Redis cache to the
// database once they age out of the hot window.
func (sas *SessionArchiveService) FlushCachedLogsToDatabase() error {
	if sas.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoffTime := time.Now().Add(-24 * time.Hour)

	expiredLogs, err := sas.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoffTime.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get expired logs: %v", err)
	}

	var processedCount, errorCount int

	for _, logKey := range expiredLogs {
		logData, err := sas.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
			}
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Error("Failed to save cached log to database")
			errorCount++
			continue
		}

		pipeline := sas.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "logs:queue", logKey)
		if _, err = pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d cached logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// ArchiveOldSessions exports heartbeat logs of sessions that ended more than
// daysOld days ago to S3 and clears the heartbeat column afterwards.
func (sas *SessionArchiveService) ArchiveOldSessions(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum archive age is 7 days for safety")
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysOld)
	finished := []string{models.SessionCompleted, models.SessionEndedEarly, models.SessionIncomplete}

	batchSize := 1000
	var allSessions []ArchivedSession
	var sessionIDs []uint

	for offset := 0; ; offset += batchSize {
		var sessions []models.ClassroomSession

		err := database.DB.
			Where("status IN ? AND class_ended_at IS NOT NULL AND class_ended_at < ? AND heartbeats IS NOT NULL", finished, cutoffDate).
			Limit(batchSize).
			Offset(offset).
			Find(&sessions).Error
		if err != nil {
			return fmt.Errorf("failed to fetch sessions for archiving: %v", err)
		}
		if len(sessions) == 0 {
			break
		}

		for _, s := range sessions {
			archived := ArchivedSession{
				SessionID:         s.ID,
				BookingID:         s.BookingID,
				Status:            s.Status,
				TeacherActiveTime: s.TeacherActiveTime,
				StudentActiveTime: s.StudentActiveTime,
				BothActiveTime:    s.BothActiveTime,
				RequiredTime:      s.RequiredTime,
				ClassStartedAt:    s.ClassStartedAt,
				ClassEndedAt:      s.ClassEndedAt,
			}
			if !s.Heartbeats.IsNull() {
				var entries []models.HeartbeatEntry
				if err := json.Unmarshal(s.Heartbeats, &entries); err == nil {
					archived.Heartbeats = entries
				}
			}
			allSessions = append(allSessions, archived)
			sessionIDs = append(sessionIDs, s.ID)
		}
	}

	if len(allSessions) == 0 {
		logrus.Info("No sessions to archive")
		return nil
	}
	logrus.Infof("Archiving %d sessions ended before %s", len(allSessions), cutoffDate.Format("2006-01-02"))

	archiveFileName := fmt.Sprintf("session_heartbeats_%s.zip", cutoffDate.Format("2006-01-02"))
	zipBuffer, err := sas.createZipArchive(allSessions, archiveFileName)
	if err != nil {
		return fmt.Errorf("failed to create ZIP archive: %v", err)
	}

	s3Key := fmt.Sprintf("sessions/archived/%d/%02d/%s",
		cutoffDate.Year(),
		cutoffDate.Month(),
		archiveFileName)

	if err := sas.uploadToS3(s3Key, zipBuffer); err != nil {
		return fmt.Errorf("failed to upload archive to S3: %v", err)
	}

	logrus.Infof("Successfully uploaded archive to S3: %s", s3Key)

	// Clear heartbeat blobs but keep the session rows and counters.
	if err := database.DB.Model(&models.ClassroomSession{}).
		Where("id IN ?", sessionIDs).
		Update("heartbeats", nil).Error; err != nil {
		return fmt.Errorf("failed to clear archived heartbeats: %v", err)
	}

	archiveMetadata := models.SessionArchive{
		FileName:     archiveFileName,
		S3Key:        s3Key,
		StartDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      cutoffDate,
		SessionCount: len(allSessions),
		FileSize:     int64(zipBuffer.Len()),
		Status:       "completed",
	}
	if err := database.DB.Create(&archiveMetadata).Error; err != nil {
		logrus.WithError(err).Error("Failed to save archive metadata")
	}

	return nil
}

// createZipArchive packs the sessions as indented JSON plus a flat CSV of
// heartbeat entries.
func (sas *SessionArchiveService) createZipArchive(sessions []ArchivedSession, fileName string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	sessionsFile, err := zipWriter.Create("sessions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions file in ZIP: %v", err)
	}

	encoder := json.NewEncoder(sessionsFile)
	encoder.SetIndent("", "  ")

	payload := map[string]any{
		"export_date":    time.Now().UTC(),
		"session_count":  len(sessions),
		"format_version": "1.0",
		"sessions":       sessions,
	}
	if err := encoder.Encode(payload); err != nil {
		return nil, fmt.Errorf("failed to encode sessions to JSON: %v", err)
	}

	metadataFile, err := zipWriter.Create("metadata.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata file in ZIP: %v", err)
	}

	metadata := map[string]any{
		"file_name":      fileName,
		"created_at":     time.Now().UTC(),
		"session_count":  len(sessions),
		"schema_version": "1.0",
		"description":    "TutorLink Classroom Session Heartbeat Archive",
	}
	if err := json.NewEncoder(metadataFile).Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to encode metadata to JSON: %v", err)
	}

	csvFile, err := zipWriter.Create("heartbeats.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file in ZIP: %v", err)
	}

	csvFile.Write([]byte("Session ID,Booking ID,Role,Timestamp,Active Time\n"))
	for _, s := range sessions {
		for _, hb := range s.Heartbeats {
			line := fmt.Sprintf("%d,%d,%s,%s,%d\n",
				s.SessionID,
				s.BookingID,
				hb.Role,
				hb.Timestamp.Format("2006-01-02 15:04:05"),
				hb.ActiveTime,
			)
			csvFile.Write([]byte(line))
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ZIP writer: %v", err)
	}

	return buf, nil
}

func (sas *SessionArchiveService) uploadToS3(key string, data *bytes.Buffer) error {
	if sas.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(sas.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String("application/zip"),
	})

	return err
}

func (sas *SessionArchiveService) downloadFromS3(key string) (io.ReadCloser, error) {
	if sas.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(sas.awsConfig)
	bucketName := config.AppConfig.S3BucketName

	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}

	return result.Body, nil
}

// GetArchives lists archive metadata, newest first.
func (sas *SessionArchiveService) GetArchives() ([]models.SessionArchive, error) {
	var archives []models.SessionArchive
	if err := database.DB.Order("created_at DESC").Find(&archives).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve archives: %v", err)
	}
	return archives, nil
}

// DownloadArchive streams a stored archive from S3.
func (sas *SessionArchiveService) DownloadArchive(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.SessionArchive
	if err := database.DB.First(&archive, archiveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("archive not found")
		}
		return nil, "", fmt.Errorf("failed to retrieve archive: %v", err)
	}

	reader, err := sas.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download archive from S3: %v", err)
	}

	return reader, archive.FileName, nil
}
