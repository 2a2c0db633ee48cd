package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

// Job is a workshop repair order, created from manual entry or from a
// scanned job sheet.
type Job struct {
	JobID         uuid.UUID  `json:"job_id"`
	UserID        uuid.UUID  `json:"user_id"`
	CustomerName  string     `json:"customer_name" validate:"required,max=200"`
	CustomerPhone string     `json:"customer_phone" validate:"max=30"`
	BikeModel     string     `json:"bike_model" validate:"max=200"`
	DateIn        time.Time  `json:"date_in"`
	DateDue       *time.Time `json:"date_due,omitempty"`
	WorkRequired  string     `json:"work_required" validate:"required"`
	WorkDone      string     `json:"work_done,omitempty"`
	LaborCost     float64    `json:"labor_cost" validate:"min=0"`
	TotalCost     float64    `json:"total_cost" validate:"min=0"`
	Status        JobStatus  `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobPending, JobInProgress, JobCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows the staff dropdown moves: forward through the
// workflow, or back from in_progress to pending when work is re-queued.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobPending:
		return next == JobInProgress || next == JobCompleted
	case JobInProgress:
		return next == JobPending || next == JobCompleted
	case JobCompleted:
		return false
	}
	return false
}
