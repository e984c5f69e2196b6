package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nguyentrg/threadnest/internal/dto"
	"github.com/nguyentrg/threadnest/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestReport(t *testing.T, svc *ReportService, reporterID uuid.UUID, kind string, targetID *uuid.UUID) *models.Report {
	t.Helper()
	report, err := svc.Create(reporterID, &dto.CreateReportRequest{
		ContentType: kind,
		ContentID:   targetID,
		Reason:      "breaks the rules",
	})
	require.NoError(t, err)
	return report
}

func TestCreateReport(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.Equal(t, models.ContentUser, report.Content.Kind)

	// Duplicate reports are allowed.
	createTestReport(t, svc, alice.ID, "User", &bob.ID)
	var count int64
	require.NoError(t, db.Model(&models.Report{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateReportValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")

	_, err := svc.Create(alice.ID, &dto.CreateReportRequest{ContentType: "Potato", Reason: "x"})
	assert.Error(t, err)

	// User/Thread reports need a target.
	_, err = svc.Create(alice.ID, &dto.CreateReportRequest{ContentType: "Thread", Reason: "x"})
	assert.Error(t, err)

	// System reports do not.
	report, err := svc.Create(alice.ID, &dto.CreateReportRequest{ContentType: "System", Reason: "the app ate my draft"})
	require.NoError(t, err)
	assert.Nil(t, report.Content.ID)
}

func TestAdvanceHappyPath(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)

	updated, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportPending,
		NewStatus:     "upDate",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, updated.Status)

	updated, err = svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportReviewed,
		NewStatus:     "upDate",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, updated.Status)
}

func TestAdvanceStaleStatusConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportPending,
		NewStatus:     "upDate",
	})
	require.NoError(t, err)

	// Second moderator still holds the pending copy.
	_, err = svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportPending,
		NewStatus:     "upDate",
	})
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestAdvanceResolvedIsFinal(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportResolved).Error)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportResolved,
		NewStatus:     "upDate",
	})
	assert.ErrorIs(t, err, ErrReportFinalized)
}

func TestRevertToPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportResolved).Error)

	// The override works from any status, resolved included.
	updated, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportResolved,
		NewStatus:     "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, updated.Status)
}

func TestAdvanceInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      uuid.New(),
		CurrentStatus: "limbo",
		NewStatus:     "upDate",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      uuid.New(),
		CurrentStatus: models.ReportPending,
		NewStatus:     "sideways",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSuspendAccountAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	report := createTestReport(t, svc, alice.ID, "User", &bob.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportReviewed).Error)

	updated, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportReviewed,
		NewStatus:     "upDate",
		Data: &dto.ModerationData{
			SelectedAction:      []string{"suspendAccount"},
			CurrentTargetType:   "User",
			CurrentTargetTypeID: &bob.ID,
			Note:                "repeat offender",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, updated.Status)
	assert.Equal(t, "repeat offender", updated.AdminNote)
	assert.Equal(t, "suspendAccount", updated.AdminAction)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", bob.ID).Error)
	assert.Equal(t, models.StatusTemporaryBan, reloaded.AccountStatus)
}

func TestHideThreadAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, bob.ID, "offensive")
	report := createTestReport(t, svc, alice.ID, "Thread", &thread.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportReviewed).Error)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportReviewed,
		NewStatus:     "upDate",
		Data: &dto.ModerationData{
			SelectedAction:      []string{"hideThread"},
			CurrentTargetType:   "Thread",
			CurrentTargetTypeID: &thread.ID,
		},
	})
	require.NoError(t, err)

	var reloaded models.Thread
	require.NoError(t, db.First(&reloaded, "id = ?", thread.ID).Error)
	assert.True(t, reloaded.IsHidden)
}

func TestThreadSuspendBansAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, bob.ID, "offensive")
	report := createTestReport(t, svc, alice.ID, "Thread", &thread.ID)
	require.NoError(t, db.Model(report).Update("status", models.ReportReviewed).Error)

	updated, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportReviewed,
		NewStatus:     "upDate",
		Data: &dto.ModerationData{
			SelectedAction:      []string{"hideThread", "suspendAccount"},
			CurrentTargetType:   "Thread",
			CurrentTargetTypeID: &thread.ID,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hideThread,suspendAccount", updated.AdminAction)

	var author models.User
	require.NoError(t, db.First(&author, "id = ?", bob.ID).Error)
	assert.Equal(t, models.StatusTemporaryBan, author.AccountStatus)
}

func TestActionMissingTargetAbortsAdvance(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	vanished := uuid.New()
	report := createTestReport(t, svc, alice.ID, "User", &vanished)
	require.NoError(t, db.Model(report).Update("status", models.ReportReviewed).Error)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      report.ID,
		CurrentStatus: models.ReportReviewed,
		NewStatus:     "upDate",
		Data: &dto.ModerationData{
			SelectedAction:      []string{"suspendAccount"},
			CurrentTargetType:   "User",
			CurrentTargetTypeID: &vanished,
		},
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The status write rolled back with the failed action.
	var reloaded models.Report
	require.NoError(t, db.First(&reloaded, "id = ?", report.ID).Error)
	assert.Equal(t, models.ReportReviewed, reloaded.Status)
}

func TestAdvanceReportNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)

	_, err := svc.Advance(&dto.AdvanceReportRequest{
		ReportID:      uuid.New(),
		CurrentStatus: models.ReportPending,
		NewStatus:     "upDate",
	})
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestListReportsByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestReport(t, svc, alice.ID, "User", &bob.ID)
	second := createTestReport(t, svc, alice.ID, "User", &bob.ID)
	require.NoError(t, db.Model(second).Update("status", models.ReportResolved).Error)

	pending, total, err := svc.List(models.ReportPending, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)

	all, total, err := svc.List("", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, _, err = svc.List("limbo", 1, 20)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetReportResolvesTarget(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	thread := createTestThread(t, db, bob.ID, "reported")
	report := createTestReport(t, svc, alice.ID, "Thread", &thread.ID)

	detail, err := svc.GetByID(report.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.TargetThread)
	assert.Equal(t, thread.ID, detail.TargetThread.ID)
	assert.Nil(t, detail.TargetUser)

	// A vanished target is not an error for the detail view.
	require.NoError(t, db.Delete(&models.Thread{}, "id = ?", thread.ID).Error)
	detail, err = svc.GetByID(report.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.TargetThread)
}
