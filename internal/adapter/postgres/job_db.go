package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `job_id, user_id, customer_name, customer_phone, bike_model, date_in, date_due,
	work_required, work_done, labor_cost, total_cost, status, created_at, updated_at`

func scanJob(row interface{ Scan(...interface{}) error }) (*domain.Job, error) {
	job := &domain.Job{}
	err := row.Scan(
		&job.JobID,
		&job.UserID,
		&job.CustomerName,
		&job.CustomerPhone,
		&job.BikeModel,
		&job.DateIn,
		&job.DateDue,
		&job.WorkRequired,
		&job.WorkDone,
		&job.LaborCost,
		&job.TotalCost,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	query := `INSERT INTO jobs (job_id, user_id, customer_name, customer_phone, bike_model, date_in, date_due,
		work_required, work_done, labor_cost, total_cost, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING job_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		job.JobID,
		job.UserID,
		job.CustomerName,
		job.CustomerPhone,
		job.BikeModel,
		job.DateIn,
		job.DateDue,
		job.WorkRequired,
		job.WorkDone,
		job.LaborCost,
		job.TotalCost,
		job.Status,
	).Scan(
		&job.JobID,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("user does not exist")
			default:
				return nil, err
			}
		}
		return nil, err
	}

	return job, nil
}

func (r *JobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	job, err := scanJob(r.db.QueryRowContext(ctx, query, jobID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return job, nil
}

func (r *JobRepository) GetJobsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id = $1 ORDER BY date_in DESC`
	return r.queryJobs(ctx, query, userID)
}

func (r *JobRepository) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY date_in DESC`
	return r.queryJobs(ctx, query)
}

func (r *JobRepository) queryJobs(ctx context.Context, query string, args ...interface{}) ([]*domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.Job

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *JobRepository) UpdateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	query := `UPDATE jobs
		SET
			customer_name = COALESCE(NULLIF($1, ''), customer_name),
			customer_phone = COALESCE(NULLIF($2, ''), customer_phone),
			bike_model = COALESCE(NULLIF($3, ''), bike_model),
			date_due = COALESCE($4, date_due),
			work_required = COALESCE(NULLIF($5, ''), work_required),
			work_done = COALESCE(NULLIF($6, ''), work_done),
			labor_cost = COALESCE(NULLIF($7, 0.0), labor_cost),
			total_cost = COALESCE(NULLIF($8, 0.0), total_cost),
			status = COALESCE(NULLIF($9, ''), status),
			updated_at = CURRENT_TIMESTAMP
		WHERE job_id = $10
		RETURNING ` + jobColumns

	updated, err := scanJob(r.db.QueryRowContext(ctx, query,
		job.CustomerName,
		job.CustomerPhone,
		job.BikeModel,
		job.DateDue,
		job.WorkRequired,
		job.WorkDone,
		job.LaborCost,
		job.TotalCost,
		string(job.Status),
		job.JobID,
	))

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error updating job: %w", err)
	}

	return updated, nil
}

func (r *JobRepository) DeleteJob(ctx context.Context, jobID uuid.UUID) error {
	query := `DELETE FROM jobs WHERE job_id = $1`

	result, err := r.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
