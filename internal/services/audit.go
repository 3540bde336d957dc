package services

import (
	"encoding/json"
	"time"

	"github.com/bugtrail/bugtrail/internal/config"
	"github.com/bugtrail/bugtrail/internal/models"
	"github.com/bugtrail/bugtrail/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

var auditDB *gorm.DB

// InitAuditLogger wires the audit writer to the database. Must be called
// before any RecordAudit.
func InitAuditLogger(db *gorm.DB) {
	auditDB = db
}

// RecordAudit persists one audit entry. Failures are logged, never surfaced:
// auditing must not break the request path.
func RecordAudit(level, module, action, message string, userID *uint, ip, userAgent string, extra map[string]interface{}) {
	if auditDB == nil {
		return
	}

	extraJSON := ""
	if len(extra) > 0 {
		if data, err := json.Marshal(extra); err == nil {
			extraJSON = string(data)
		}
	}

	entry := models.AuditLog{
		Level:     level,
		Module:    module,
		Action:    action,
		Message:   message,
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Extra:     extraJSON,
	}

	if err := auditDB.Create(&entry).Error; err != nil {
		logger.Error().Err(err).Str("module", module).Str("action", action).Msg("failed to write audit log")
	}
}

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

type AuditListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Level    string `form:"level"`
	Module   string `form:"module"`
}

type AuditListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []models.AuditLog `json:"items"`
}

// List returns paginated audit entries, newest first.
func (s *AuditService) List(req *AuditListRequest) (*AuditListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.AuditLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.AuditLog
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return &AuditListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    logs,
	}, nil
}

// CleanupOldLogs deletes audit entries older than retentionDays. A
// non-positive retention disables cleanup.
func (s *AuditService) CleanupOldLogs(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

var housekeepingCron *cron.Cron

// StartHousekeeping schedules the periodic cleanup of old audit entries and
// expired refresh tokens.
func StartHousekeeping(db *gorm.DB, cfg *config.AuditConfig) error {
	audit := NewAuditService(db)

	c := cron.New()
	_, err := c.AddFunc(cfg.CleanupSchedule, func() {
		removed, err := audit.CleanupOldLogs(cfg.RetentionDays)
		if err != nil {
			logger.Error().Err(err).Msg("audit log cleanup failed")
		} else if removed > 0 {
			logger.Info().Int64("removed", removed).Msg("audit log cleanup done")
		}

		result := db.Where("expires_at < ? OR revoked_at IS NOT NULL", time.Now()).
			Delete(&models.RefreshToken{})
		if result.Error != nil {
			logger.Error().Err(result.Error).Msg("refresh token purge failed")
		} else if result.RowsAffected > 0 {
			logger.Info().Int64("removed", result.RowsAffected).Msg("expired refresh tokens purged")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	housekeepingCron = c
	logger.Info().Str("schedule", cfg.CleanupSchedule).Int("retention_days", cfg.RetentionDays).Msg("housekeeping scheduler started")
	return nil
}

// StopHousekeeping halts the scheduler, waiting for a running job to finish.
func StopHousekeeping() {
	if housekeepingCron != nil {
		ctx := housekeepingCron.Stop()
		<-ctx.Done()
		housekeepingCron = nil
	}
}
