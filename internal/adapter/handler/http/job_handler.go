package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/access"
	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
	"github.com/wheelhaus/bikeshop-service/internal/core/services"
)

type JobHandler struct {
	jobService *services.JobService
	extractor  ports.SheetExtractor
	logger     ports.LoggerPort
	metrics    ports.MetricsPort
}

type JobRequest struct {
	CustomerName  string  `json:"customer_name" binding:"required" example:"Sam Okafor"`
	CustomerPhone string  `json:"customer_phone,omitempty" example:"+49 151 7654321"`
	BikeModel     string  `json:"bike_model,omitempty" example:"Cube Attain"`
	DateDue       string  `json:"date_due,omitempty" example:"2026-09-15"`
	WorkRequired  string  `json:"work_required" binding:"required" example:"Replace brake pads, true rear wheel"`
	LaborCost     float64 `json:"labor_cost,omitempty" example:"45"`
	TotalCost     float64 `json:"total_cost,omitempty" example:"78.50"`
}

type UpdateJob struct {
	CustomerName  *string  `json:"customer_name,omitempty"`
	CustomerPhone *string  `json:"customer_phone,omitempty"`
	BikeModel     *string  `json:"bike_model,omitempty"`
	WorkRequired  *string  `json:"work_required,omitempty"`
	WorkDone      *string  `json:"work_done,omitempty"`
	LaborCost     *float64 `json:"labor_cost,omitempty"`
	TotalCost     *float64 `json:"total_cost,omitempty"`
}

type ChangeJobStatusRequest struct {
	Status string `json:"status" binding:"required" example:"in_progress"`
}

type ScanJobSheetRequest struct {
	Image    string `json:"image" binding:"required" example:"<base64>"`
	MimeType string `json:"mime_type,omitempty" example:"image/jpeg"`
	Create   bool   `json:"create,omitempty"`
}

type JobResponse struct {
	JobID         uuid.UUID  `json:"job_id"`
	UserID        uuid.UUID  `json:"user_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	BikeModel     string     `json:"bike_model,omitempty"`
	DateIn        time.Time  `json:"date_in"`
	DateDue       *time.Time `json:"date_due,omitempty"`
	WorkRequired  string     `json:"work_required"`
	WorkDone      string     `json:"work_done,omitempty"`
	LaborCost     float64    `json:"labor_cost"`
	TotalCost     float64    `json:"total_cost"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

type ScanJobSheetResponse struct {
	Sheet *domain.JobSheetData `json:"sheet"`
	Job   *JobResponse         `json:"job,omitempty"`
}

func toJobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		JobID:         job.JobID,
		UserID:        job.UserID,
		CustomerName:  job.CustomerName,
		CustomerPhone: job.CustomerPhone,
		BikeModel:     job.BikeModel,
		DateIn:        job.DateIn,
		DateDue:       job.DateDue,
		WorkRequired:  job.WorkRequired,
		WorkDone:      job.WorkDone,
		LaborCost:     job.LaborCost,
		TotalCost:     job.TotalCost,
		Status:        string(job.Status),
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

func NewJobHandler(
	jobService *services.JobService,
	extractor ports.SheetExtractor,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		extractor:  extractor,
		logger:     logger,
		metrics:    metrics,
	}
}

// @Summary Create job
// @Description Open a repair job from manual entry
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body JobRequest true "Job data"
// @Success 201 {object} JobResponse "Job created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessJob(payload, &domain.Job{}, access.ActionCreate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create job", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	job := &domain.Job{
		UserID:        payload.UserID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		BikeModel:     req.BikeModel,
		WorkRequired:  req.WorkRequired,
		LaborCost:     req.LaborCost,
		TotalCost:     req.TotalCost,
	}
	if req.DateDue != "" {
		due, err := time.Parse("2006-01-02", req.DateDue)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid date_due, expected YYYY-MM-DD")
			return
		}
		job.DateDue = &due
	}

	created, err := h.jobService.CreateJob(c.Request.Context(), job)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create job")
		return
	}

	c.JSON(http.StatusCreated, toJobResponse(created))
}

// @Summary Scan job sheet
// @Description Extract job fields from a photographed job sheet; optionally create the job directly
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ScanJobSheetRequest true "Base64 image"
// @Success 200 {object} ScanJobSheetResponse "Extracted sheet"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 502 {object} errorResponse "Extraction failed, retry"
// @Router /jobs/scan [post]
func (h *JobHandler) ScanJobSheet(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.extractor == nil {
		newErrorResponse(c, http.StatusServiceUnavailable, "Job sheet scanning is not configured")
		return
	}

	var req ScanJobSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid base64 image")
		return
	}

	sheet, err := h.extractor.ExtractJobSheet(c.Request.Context(), image, req.MimeType)
	if err != nil {
		h.logger.Error("Job sheet extraction failed", map[string]interface{}{
			"error":   err.Error(),
			"user_id": payload.UserID,
		})
		newErrorResponse(c, http.StatusBadGateway, "Could not read job sheet, please retry")
		return
	}

	response := ScanJobSheetResponse{Sheet: sheet}

	if req.Create {
		job, err := h.jobService.CreateJobFromSheet(c.Request.Context(), payload.UserID.String(), sheet)
		if err != nil {
			newErrorResponse(c, http.StatusInternalServerError, "Failed to create job from sheet")
			return
		}
		jobResp := toJobResponse(job)
		response.Job = &jobResp
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get job
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobResponse "Job found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	job, err := h.jobService.GetJobByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Job not found")
		return
	}

	if err := access.CanAccessJob(payload, job, access.ActionRead); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	c.JSON(http.StatusOK, toJobResponse(job))
}

// @Summary List jobs
// @Description Own jobs for users, all jobs for admins
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Success 200 {object} JobListResponse "Jobs"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var (
		jobs []*domain.Job
		err  error
	)
	if payload.Role == domain.Admin {
		jobs, err = h.jobService.ListJobs(c.Request.Context())
	} else {
		jobs, err = h.jobService.GetJobsByUserID(c.Request.Context(), payload.UserID.String())
	}
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get jobs")
		return
	}

	infos := make([]JobResponse, len(jobs))
	for i, job := range jobs {
		infos[i] = toJobResponse(job)
	}

	c.JSON(http.StatusOK, JobListResponse{Jobs: infos, Count: len(infos)})
}

// @Summary Update job
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body UpdateJob true "Fields to update"
// @Success 200 {object} JobResponse "Job updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existing, err := h.jobService.GetJobByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Job not found")
		return
	}

	if err := access.CanAccessJob(payload, existing, access.ActionUpdate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req UpdateJob
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	job := &domain.Job{
		JobID:  existing.JobID,
		UserID: existing.UserID,
	}
	if req.CustomerName != nil {
		job.CustomerName = *req.CustomerName
	}
	if req.CustomerPhone != nil {
		job.CustomerPhone = *req.CustomerPhone
	}
	if req.BikeModel != nil {
		job.BikeModel = *req.BikeModel
	}
	if req.WorkRequired != nil {
		job.WorkRequired = *req.WorkRequired
	}
	if req.WorkDone != nil {
		job.WorkDone = *req.WorkDone
	}
	if req.LaborCost != nil {
		job.LaborCost = *req.LaborCost
	}
	if req.TotalCost != nil {
		job.TotalCost = *req.TotalCost
	}

	updated, err := h.jobService.UpdateJob(c.Request.Context(), job)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Update failed")
		return
	}

	c.JSON(http.StatusOK, toJobResponse(updated))
}

// @Summary Change job status
// @Description Workflow dropdown: pending, in_progress, completed
// @Tags jobs
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body ChangeJobStatusRequest true "Target status"
// @Success 200 {object} JobResponse "Status changed"
// @Failure 400 {object} errorResponse "Invalid transition"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /jobs/{id}/status [put]
func (h *JobHandler) ChangeJobStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existing, err := h.jobService.GetJobByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Job not found")
		return
	}

	if err := access.CanAccessJob(payload, existing, access.ActionUpdate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req ChangeJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.jobService.ChangeJobStatus(c.Request.Context(), c.Param("id"), domain.JobStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			newErrorResponse(c, http.StatusBadRequest, "Invalid status transition")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Status change failed")
		return
	}

	c.JSON(http.StatusOK, toJobResponse(updated))
}

// @Summary Delete job
// @Tags jobs
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} successResponse "Job deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existing, err := h.jobService.GetJobByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Job not found")
		return
	}

	if err := access.CanAccessJob(payload, existing, access.ActionDelete); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.jobService.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Job deleted successfully"})
}
