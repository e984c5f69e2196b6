package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/metrics"
	"github.com/nguyentrg/threadnest/internal/models"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrStatusConflict  = errors.New("report status changed since it was read")
	ErrInvalidStatus   = errors.New("unrecognized report status")
	ErrReportFinalized = errors.New("report is already resolved")
	ErrInvalidAction   = errors.New("unsupported moderation action for target type")
)

// Status tokens accepted in AdvanceReportRequest.NewStatus. "upDate" moves
// the report one step forward; "pending" is the moderator override that
// returns any report to draft.
const (
	transitionAdvance = "upDate"
	transitionRevert  = "pending"
)

// Moderation action tags a reviewer may select.
const (
	actionSuspendAccount = "suspendAccount"
	actionHideThread     = "hideThread"
)

// ReportDetail is a report with its target resolved for the moderator view.
type ReportDetail struct {
	Report       models.Report  `json:"report"`
	TargetUser   *models.User   `json:"target_user,omitempty"`
	TargetThread *models.Thread `json:"target_thread,omitempty"`
}

// ReportService drives the report state machine: pending → reviewed →
// resolved, forward-only, except the explicit revert override. Remediation
// runs in the same transaction as the status write.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Create files a new pending report. Duplicate reports from the same user on
// the same content are allowed.
func (s *ReportService) Create(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	kind := models.ContentKind(req.ContentType)
	switch kind {
	case models.ContentUser, models.ContentThread:
		if req.ContentID == nil {
			return nil, fmt.Errorf("content_id is required for %s reports", kind)
		}
	case models.ContentSystem:
		// System reports target nothing.
	default:
		return nil, fmt.Errorf("unknown content type %q", req.ContentType)
	}

	if strings.TrimSpace(req.Reason) == "" {
		return nil, errors.New("reason field is required")
	}

	report := models.Report{
		ReporterID: reporterID,
		Content:    models.ContentRef{Kind: kind, ID: req.ContentID},
		Reason:     req.Reason,
		Status:     models.ReportPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// Advance moves a report through its lifecycle. The caller supplies the
// status it last read; if the stored status no longer matches, the call fails
// with ErrStatusConflict so two moderators cannot race on the same report.
// Any remediation selected at the reviewed step is applied in the same
// transaction and a missing target aborts the whole call.
func (s *ReportService) Advance(req *dto.AdvanceReportRequest) (*models.Report, error) {
	switch req.CurrentStatus {
	case models.ReportPending, models.ReportReviewed, models.ReportResolved:
	default:
		return nil, ErrInvalidStatus
	}

	var target string
	switch req.NewStatus {
	case transitionRevert:
		target = models.ReportPending
	case transitionAdvance:
		switch req.CurrentStatus {
		case models.ReportPending:
			target = models.ReportReviewed
		case models.ReportReviewed:
			target = models.ReportResolved
		default:
			return nil, ErrReportFinalized
		}
	default:
		return nil, ErrInvalidStatus
	}

	var report models.Report
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-fetch inside the transaction; the caller's copy may be stale.
		if err := tx.First(&report, "id = ?", req.ReportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}
		if report.Status != req.CurrentStatus {
			return ErrStatusConflict
		}

		updates := map[string]any{"status": target}

		if report.Status == models.ReportReviewed && req.Data != nil {
			applied, err := s.applyActions(tx, &report, req.Data)
			if err != nil {
				return err
			}
			updates["admin_note"] = req.Data.Note
			updates["admin_action"] = strings.Join(applied, ",")
		} else if req.Data != nil {
			updates["admin_note"] = req.Data.Note
		}

		// Conditional write is the real guard; the read-then-compare above
		// only produces a friendlier error.
		result := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", report.ID, req.CurrentStatus).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return tx.First(&report, "id = ?", report.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportTransitions.WithLabelValues(target).Inc()
	return &report, nil
}

// applyActions executes each selected remediation tag against the moderation
// target. Every action must land; the first failure aborts the transaction so
// the status never advances past remediation that did not happen.
func (s *ReportService) applyActions(tx *gorm.DB, report *models.Report, data *dto.ModerationData) ([]string, error) {
	kind := models.ContentKind(data.CurrentTargetType)
	targetID := data.CurrentTargetTypeID
	if kind == "" {
		kind = report.Content.Kind
		targetID = report.Content.ID
	}

	applied := make([]string, 0, len(data.SelectedAction))
	for _, action := range data.SelectedAction {
		switch {
		case kind == models.ContentUser && action == actionSuspendAccount:
			if targetID == nil {
				return nil, ErrUserNotFound
			}
			if err := suspendAccount(tx, *targetID); err != nil {
				return nil, err
			}

		case kind == models.ContentThread && action == actionHideThread:
			if targetID == nil {
				return nil, ErrThreadNotFound
			}
			result := tx.Model(&models.Thread{}).Where("id = ?", targetID).Update("is_hidden", true)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				return nil, ErrThreadNotFound
			}

		case kind == models.ContentThread && action == actionSuspendAccount:
			if targetID == nil {
				return nil, ErrThreadNotFound
			}
			var thread models.Thread
			if err := tx.First(&thread, "id = ?", targetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrThreadNotFound
				}
				return nil, err
			}
			if err := suspendAccount(tx, thread.AuthorID); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("%w: %s on %s", ErrInvalidAction, action, kind)
		}
		applied = append(applied, action)
	}
	return applied, nil
}

func suspendAccount(tx *gorm.DB, userID uuid.UUID) error {
	result := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("account_status", models.StatusTemporaryBan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// List returns reports newest first, optionally filtered by status.
func (s *ReportService) List(status string, page, limit int) ([]models.Report, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.db.Model(&models.Report{})
	if status != "" {
		switch status {
		case models.ReportPending, models.ReportReviewed, models.ReportResolved:
		default:
			return nil, 0, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := query.Preload("Reporter").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

// GetByID returns a report with its target resolved. A vanished target is
// fine here; the moderator view just shows the report without context.
func (s *ReportService) GetByID(reportID uuid.UUID) (*ReportDetail, error) {
	var report models.Report
	if err := s.db.Preload("Reporter").First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	detail := ReportDetail{Report: report}
	if report.Content.ID != nil {
		switch report.Content.Kind {
		case models.ContentUser:
			var user models.User
			if err := s.db.First(&user, "id = ?", report.Content.ID).Error; err == nil {
				detail.TargetUser = &user
			}
		case models.ContentThread:
			var thread models.Thread
			if err := s.db.Preload("Author").First(&thread, "id = ?", report.Content.ID).Error; err == nil {
				detail.TargetThread = &thread
			}
		}
	}
	return &detail, nil
}
