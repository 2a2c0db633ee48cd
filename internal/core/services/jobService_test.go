package services

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

func newJobFixture(t *testing.T) (*JobService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewJobService(&fakeJobRepo{store: store}, nopLogger{}, validator.New())
	return svc, store
}

func TestCreateJob_Defaults(t *testing.T) {
	svc, _ := newJobFixture(t)

	job := &domain.Job{
		UserID:       uuid.New(),
		CustomerName: "Sam Okafor",
		WorkRequired: "Replace chain and cassette",
		Status:       domain.JobCompleted, // ignored
	}

	created, err := svc.CreateJob(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, created.Status)
	assert.False(t, created.DateIn.IsZero())
	assert.NotEqual(t, uuid.Nil, created.JobID)
}

func TestCreateJob_ValidationFailure(t *testing.T) {
	svc, store := newJobFixture(t)

	_, err := svc.CreateJob(context.Background(), &domain.Job{
		UserID:       uuid.New(),
		CustomerName: "Sam Okafor",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
	assert.Empty(t, store.jobs)
}

func TestCreateJobFromSheet(t *testing.T) {
	svc, _ := newJobFixture(t)
	userID := uuid.New()

	sheet := &domain.JobSheetData{
		CustomerName:  "Sam Okafor",
		CustomerPhone: "+49 151 7654321",
		BikeModel:     "Cube Attain",
		WorkRequired:  "True rear wheel",
		LaborCost:     30,
		TotalCost:     42.5,
		DateDue:       "2026-09-15",
	}

	job, err := svc.CreateJobFromSheet(context.Background(), userID.String(), sheet)
	require.NoError(t, err)
	assert.Equal(t, userID, job.UserID)
	assert.Equal(t, "Sam Okafor", job.CustomerName)
	assert.Equal(t, "Cube Attain", job.BikeModel)
	assert.Equal(t, 42.5, job.TotalCost)
	assert.Equal(t, domain.JobPending, job.Status)
	require.NotNil(t, job.DateDue)
	assert.Equal(t, "2026-09-15", job.DateDue.Format("2006-01-02"))
}

func TestCreateJobFromSheet_BadDateIsDropped(t *testing.T) {
	svc, _ := newJobFixture(t)

	sheet := &domain.JobSheetData{
		CustomerName: "Sam Okafor",
		WorkRequired: "Bleed brakes",
		DateDue:      "next tuesday",
	}

	job, err := svc.CreateJobFromSheet(context.Background(), uuid.NewString(), sheet)
	require.NoError(t, err)
	assert.Nil(t, job.DateDue)
}

func TestChangeJobStatus_Workflow(t *testing.T) {
	svc, _ := newJobFixture(t)

	created, err := svc.CreateJob(context.Background(), &domain.Job{
		UserID:       uuid.New(),
		CustomerName: "Sam Okafor",
		WorkRequired: "Service fork",
	})
	require.NoError(t, err)
	id := created.JobID.String()

	updated, err := svc.ChangeJobStatus(context.Background(), id, domain.JobInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.JobInProgress, updated.Status)

	// Re-queue back to pending is allowed.
	updated, err = svc.ChangeJobStatus(context.Background(), id, domain.JobPending)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, updated.Status)

	updated, err = svc.ChangeJobStatus(context.Background(), id, domain.JobCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, updated.Status)

	// Completed is terminal.
	_, err = svc.ChangeJobStatus(context.Background(), id, domain.JobInProgress)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestChangeJobStatus_UnknownStatus(t *testing.T) {
	svc, _ := newJobFixture(t)

	created, err := svc.CreateJob(context.Background(), &domain.Job{
		UserID:       uuid.New(),
		CustomerName: "Sam Okafor",
		WorkRequired: "Service fork",
	})
	require.NoError(t, err)

	_, err = svc.ChangeJobStatus(context.Background(), created.JobID.String(), domain.JobStatus("cancelled"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetJobsByUserID(t *testing.T) {
	svc, _ := newJobFixture(t)
	owner := uuid.New()

	for _, name := range []string{"First", "Second"} {
		_, err := svc.CreateJob(context.Background(), &domain.Job{
			UserID:       owner,
			CustomerName: name,
			WorkRequired: "Tune-up",
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateJob(context.Background(), &domain.Job{
		UserID:       uuid.New(),
		CustomerName: "Other",
		WorkRequired: "Tune-up",
	})
	require.NoError(t, err)

	jobs, err := svc.GetJobsByUserID(context.Background(), owner.String())
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	all, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
