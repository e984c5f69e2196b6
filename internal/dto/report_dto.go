package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	ContentType string     `json:"content_type"`
	ContentID   *uuid.UUID `json:"content_id,omitempty"`
	Reason      string     `json:"reason"`
}

// ModerationData carries the remediation a moderator selected while reviewing
// a report. SelectedAction tags are applied independently; the target fields
// identify what the actions operate on.
type ModerationData struct {
	SelectedAction      []string   `json:"selected_action"`
	CurrentTargetType   string     `json:"current_target_type"`
	CurrentTargetTypeID *uuid.UUID `json:"current_target_type_id,omitempty"`
	Note                string     `json:"note"`
}

type AdvanceReportRequest struct {
	ReportID      uuid.UUID       `json:"report_id"`
	CurrentStatus string          `json:"current_status"`
	NewStatus     string          `json:"new_status"`
	Data          *ModerationData `json:"data,omitempty"`
}
