package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
)

type JobService struct {
	jobRepo  ports.JobRepository
	logger   ports.LoggerPort
	validate *validator.Validate
}

func NewJobService(
	jobRepo ports.JobRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *JobService {
	return &JobService{
		jobRepo:  jobRepo,
		logger:   logger,
		validate: validate,
	}
}

func (s *JobService) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if err := s.validate.Struct(job); err != nil {
		s.logger.Error("Job validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if job.JobID == uuid.Nil {
		job.JobID = uuid.New()
	}
	job.Status = domain.JobPending
	if job.DateIn.IsZero() {
		job.DateIn = time.Now().UTC()
	}

	created, err := s.jobRepo.CreateJob(ctx, job)
	if err != nil {
		s.logger.Error("Failed to create job", map[string]interface{}{
			"error":   err.Error(),
			"user_id": job.UserID,
		})
		return nil, err
	}

	s.logger.Info("Job created successfully", map[string]interface{}{
		"job_id":  created.JobID,
		"user_id": created.UserID,
	})

	return created, nil
}

// CreateJobFromSheet builds a pending job from scanned job-sheet data.
// DateDue is parsed leniently: an unparseable date is dropped, not fatal,
// because the sheet scan already validated the required fields.
func (s *JobService) CreateJobFromSheet(ctx context.Context, userID string, sheet *domain.JobSheetData) (*domain.Job, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	job := &domain.Job{
		JobID:         uuid.New(),
		UserID:        userUUID,
		CustomerName:  sheet.CustomerName,
		CustomerPhone: sheet.CustomerPhone,
		BikeModel:     sheet.BikeModel,
		WorkRequired:  sheet.WorkRequired,
		LaborCost:     sheet.LaborCost,
		TotalCost:     sheet.TotalCost,
	}

	if sheet.DateDue != "" {
		if due, err := time.Parse("2006-01-02", sheet.DateDue); err == nil {
			job.DateDue = &due
		} else {
			s.logger.Warn("Unparseable due date on job sheet", map[string]interface{}{
				"date_due": sheet.DateDue,
			})
		}
	}

	return s.CreateJob(ctx, job)
}

func (s *JobService) GetJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job ID: %w", err)
	}

	job, err := s.jobRepo.GetJobByID(ctx, jobUUID)
	if err != nil {
		s.logger.Error("Failed to get job", map[string]interface{}{
			"error":  err.Error(),
			"job_id": jobID,
		})
		return nil, err
	}

	return job, nil
}

func (s *JobService) GetJobsByUserID(ctx context.Context, userID string) ([]*domain.Job, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	jobs, err := s.jobRepo.GetJobsByUserID(ctx, userUUID)
	if err != nil {
		s.logger.Error("Failed to get jobs", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	return jobs, nil
}

func (s *JobService) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	jobs, err := s.jobRepo.ListJobs(ctx)
	if err != nil {
		s.logger.Error("Failed to list jobs", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return jobs, nil
}

func (s *JobService) UpdateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	updated, err := s.jobRepo.UpdateJob(ctx, job)
	if err != nil {
		s.logger.Error("Failed to update job", map[string]interface{}{
			"error":  err.Error(),
			"job_id": job.JobID,
		})
		return nil, err
	}

	s.logger.Info("Job updated successfully", map[string]interface{}{
		"job_id": job.JobID,
	})

	return updated, nil
}

// ChangeJobStatus applies the staff dropdown selection, guarded by the
// workflow transitions.
func (s *JobService) ChangeJobStatus(ctx context.Context, jobID string, to domain.JobStatus) (*domain.Job, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, to)
	}

	job, err := s.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !job.Status.CanTransitionTo(to) {
		s.logger.Warn("Rejected job status transition", map[string]interface{}{
			"job_id": jobID,
			"from":   string(job.Status),
			"to":     string(to),
		})
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, job.Status, to)
	}

	job.Status = to
	updated, err := s.jobRepo.UpdateJob(ctx, job)
	if err != nil {
		s.logger.Error("Failed to change job status", map[string]interface{}{
			"error":  err.Error(),
			"job_id": jobID,
			"to":     string(to),
		})
		return nil, err
	}

	s.logger.Info("Job status changed", map[string]interface{}{
		"job_id": jobID,
		"to":     string(to),
	})

	return updated, nil
}

func (s *JobService) DeleteJob(ctx context.Context, jobID string) error {
	jobUUID, err := uuid.Parse(jobID)
	if err != nil {
		return fmt.Errorf("invalid job ID: %w", err)
	}

	if err := s.jobRepo.DeleteJob(ctx, jobUUID); err != nil {
		s.logger.Error("Failed to delete job", map[string]interface{}{
			"error":  err.Error(),
			"job_id": jobID,
		})
		return err
	}

	s.logger.Info("Job deleted successfully", map[string]interface{}{
		"job_id": jobID,
	})

	return nil
}
