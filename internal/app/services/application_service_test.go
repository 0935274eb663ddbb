package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/pkg/apperrors"
)

var submittedAt = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newApplicationFixture() (*memStore, *ApplicationService) {
	m := newMemStore()
	svc := NewApplicationService(m, m.stores(), testLogger())
	svc.now = func() time.Time { return submittedAt }

	m.clusters[2] = &models.Cluster{ID: 2, Code: "CL2", Name: "Engineering"}
	m.clusters[3] = &models.Cluster{ID: 3, Code: "CL3", Name: "Computing, IT & Related"}
	m.requirements[2] = []models.ClusterSubjectRequirement{
		{ClusterID: 2, SubjectCode: "121", MinPoints: 10},
		{ClusterID: 2, SubjectCode: "232", MinPoints: 10},
	}
	m.requirements[3] = []models.ClusterSubjectRequirement{
		{ClusterID: 3, SubjectCode: "121", MinPoints: 9},
		{ClusterID: 3, SubjectCode: "565", MinPoints: 10, AlternativeGroup: ptr(1)},
		{ClusterID: 3, SubjectCode: "232", MinPoints: 10, AlternativeGroup: ptr(1)},
	}
	m.clusterMap[programmeCS] = []int64{2, 3}

	m.students[501] = true
	m.results[501] = []models.SubjectResult{
		{SubjectCode: "121", SubjectName: "Mathematics", Grade: "A", Points: ptr(12)},
		{SubjectCode: "232", SubjectName: "Physics", Grade: "A-", Points: ptr(11)},
		{SubjectCode: "565", SubjectName: "Computer Studies", Grade: "A", Points: ptr(12)},
	}
	m.students[502] = true
	m.results[502] = []models.SubjectResult{
		{SubjectCode: "121", SubjectName: "Mathematics", Grade: "C", Points: ptr(6)},
	}
	return m, svc
}

func TestSubmit_PicksBestEligibleCluster(t *testing.T) {
	m, svc := newApplicationFixture()

	app, err := svc.Submit(context.Background(), SubmitApplication{StudentID: 501, ProgrammeID: programmeCS, ChoiceOrder: 1})
	require.NoError(t, err)

	require.NotNil(t, app.ClusterID)
	assert.Equal(t, int64(3), *app.ClusterID)
	assert.Equal(t, 24.0, app.ClusterScore)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, submittedAt, app.ApplicationDate)
	assert.Equal(t, models.StatusPending, m.status(app.ID))
}

func TestSubmit_Rejections(t *testing.T) {
	m, svc := newApplicationFixture()

	tests := []struct {
		name string
		req  SubmitApplication
		want error
	}{
		{name: "choice order", req: SubmitApplication{StudentID: 501, ProgrammeID: programmeCS}, want: apperrors.ErrValidationFailed},
		{name: "student id", req: SubmitApplication{ProgrammeID: programmeCS, ChoiceOrder: 1}, want: apperrors.ErrValidationFailed},
		{name: "unknown student", req: SubmitApplication{StudentID: 999, ProgrammeID: programmeCS, ChoiceOrder: 1}, want: apperrors.ErrStudentNotFound},
		{name: "no cluster mapping", req: SubmitApplication{StudentID: 501, ProgrammeID: programmeMed, ChoiceOrder: 1}, want: apperrors.ErrMissingClusterMapping},
		{name: "not eligible", req: SubmitApplication{StudentID: 502, ProgrammeID: programmeCS, ChoiceOrder: 1}, want: apperrors.ErrNotEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, m.apps)
}

func TestSubmit_DuplicateApplication(t *testing.T) {
	_, svc := newApplicationFixture()
	req := SubmitApplication{StudentID: 501, ProgrammeID: programmeCS, ChoiceOrder: 1}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSubmitThenAutoPlace(t *testing.T) {
	m, svc := newApplicationFixture()
	m.addOffering(1, 100, programmeCS, 1, 0)

	app, err := svc.Submit(context.Background(), SubmitApplication{StudentID: 501, ProgrammeID: programmeCS, ChoiceOrder: 1})
	require.NoError(t, err)

	scheduler := NewPlacementService(m, m.stores(), PlacementOptions{Rescore: true}, nil, testLogger())
	placements, err := scheduler.RunAutoPlacement(context.Background(), testYear)
	require.NoError(t, err)
	require.Len(t, placements, 1)
	assert.Equal(t, app.ID, placements[0].ApplicationID)
	assert.Equal(t, models.StatusPlaced, m.status(app.ID))
}

func TestUpdateStatus(t *testing.T) {
	m, svc := newApplicationFixture()
	m.addApplication(1, 501, programmeCS, 30, models.StatusPending)
	m.addApplication(2, 502, programmeCS, 30, models.StatusPlaced)
	m.addApplication(3, 503, programmeCS, 30, models.StatusPending)

	updated, err := svc.UpdateStatus(context.Background(), 1, models.StatusWithdrawn)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithdrawn, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), 1, models.StatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(context.Background(), 2, models.StatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	assert.Equal(t, models.StatusPlaced, m.status(2))

	_, err = svc.UpdateStatus(context.Background(), 3, models.StatusPlaced)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
	assert.Equal(t, models.StatusPending, m.status(3))

	_, err = svc.UpdateStatus(context.Background(), 42, models.StatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestApplicationReads(t *testing.T) {
	m, svc := newApplicationFixture()
	m.addApplication(1, 501, programmeCS, 30, models.StatusPending)
	m.addApplication(2, 501, programmeMed, 20, models.StatusNotPlaced)
	m.addApplication(3, 502, programmeCS, 10, models.StatusPending)

	pending := models.StatusPending
	list, total, err := svc.ListApplications(context.Background(), models.ApplicationFilter{Status: &pending, Page: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	byStudent, err := svc.ListStudentApplications(context.Background(), 501)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	got, err := svc.GetApplication(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(502), got.StudentID)

	_, err = svc.GetApplication(context.Background(), 77)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestEvaluateStudent(t *testing.T) {
	_, svc := newApplicationFixture()

	eval, err := svc.EvaluateStudent(context.Background(), 501, 2)
	require.NoError(t, err)
	assert.Equal(t, "CL2", eval.Code)
	assert.True(t, eval.Result.Eligible)
	assert.Equal(t, 23.0, eval.Result.Score)

	eval, err = svc.EvaluateStudent(context.Background(), 502, 3)
	require.NoError(t, err)
	assert.False(t, eval.Result.Eligible)

	_, err = svc.EvaluateStudent(context.Background(), 501, 9)
	assert.ErrorIs(t, err, apperrors.ErrClusterNotFound)

	_, err = svc.EvaluateStudent(context.Background(), 999, 3)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
