package http

import (
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

type BikeHandler struct {
	bikeService *services.BikeService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

type BikeRequest struct {
	Brand        string   `json:"brand" binding:"required" example:"Trek"`
	Model        string   `json:"model" binding:"required" example:"Marlin 7"`
	SerialNumber string   `json:"serial_number" binding:"required" example:"WTU123456789"`
	Year         int      `json:"year,omitempty" example:"2024"`
	Color        string   `json:"color,omitempty" example:"matte black"`
	Type         string   `json:"type" binding:"required" example:"mtb"`
	Size         string   `json:"size,omitempty" example:"M"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
}

type UpdateBike struct {
	Brand        *string `json:"brand,omitempty" example:"Trek"`
	Model        *string `json:"model,omitempty" example:"Marlin 8"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Year         *int    `json:"year,omitempty" example:"2024"`
	Color        *string `json:"color,omitempty" example:"red"`
	Type         *string `json:"type,omitempty" example:"road"`
	Size         *string `json:"size,omitempty" example:"L"`
}

type ChangeBikeStatusRequest struct {
	Status string `json:"status" binding:"required" example:"maintenance"`
}

type BikeResponse struct {
	BikeID       uuid.UUID  `json:"bike_id"`
	UserID       uuid.UUID  `json:"user_id"`
	ClientID     *uuid.UUID `json:"client_id,omitempty"`
	Brand        string     `json:"brand"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	Year         int        `json:"year"`
	Color        string     `json:"color"`
	Type         string     `json:"type"`
	Size         string     `json:"size"`
	Status       string     `json:"status"`
	PhotoURLs    []string   `json:"photo_urls,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type BikeListResponse struct {
	Bikes []BikeResponse `json:"bikes"`
	Count int            `json:"count"`
}

func toBikeResponse(bike *domain.Bike) BikeResponse {
	return BikeResponse{
		BikeID:       bike.BikeID,
		UserID:       bike.UserID,
		ClientID:     bike.ClientID,
		Brand:        bike.Brand,
		Model:        bike.Model,
		SerialNumber: bike.SerialNumber,
		Year:         bike.Year,
		Color:        bike.Color,
		Type:         string(bike.Type),
		Size:         bike.Size,
		Status:       string(bike.Status),
		PhotoURLs:    bike.PhotoURLs,
		CreatedAt:    bike.CreatedAt,
		UpdatedAt:    bike.UpdatedAt,
	}
}

func toBikeListResponse(bikes []*domain.Bike) BikeListResponse {
	infos := make([]BikeResponse, len(bikes))
	for i, bike := range bikes {
		infos[i] = toBikeResponse(bike)
	}
	return BikeListResponse{Bikes: infos, Count: len(infos)}
}

func NewBikeHandler(
	bikeService *services.BikeService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *BikeHandler {
	return &BikeHandler{
		bikeService: bikeService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Create bike
// @Description Add a bike to the floor (admin only)
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body BikeRequest true "Bike data"
// @Success 201 {object} BikeResponse "Bike created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes [post]
func (h *BikeHandler) CreateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessBike(payload, &domain.Bike{}, access.ActionCreate); err != nil {
		h.logger.Warn("Access denied to create bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req BikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike := &domain.Bike{
		UserID:       payload.UserID,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Year:         req.Year,
		Color:        req.Color,
		Type:         domain.BikeType(req.Type),
		Size:         req.Size,
		PhotoURLs:    req.PhotoURLs,
	}

	createdBike, err := h.bikeService.CreateBike(c.Request.Context(), bike)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create bike")
		return
	}

	c.JSON(http.StatusCreated, toBikeResponse(createdBike))
}

// @Summary List available bikes
// @Description Storefront listing of every bike currently for sale
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} BikeListResponse "Available bikes"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /bikes [get]
func (h *BikeHandler) GetAvailableBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikes, err := h.bikeService.GetAvailableBikes(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get bikes")
		return
	}

	c.JSON(http.StatusOK, toBikeListResponse(bikes))
}

// @Summary Get my bikes
// @Description Bikes owned by the authenticated user
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Success 200 {object} BikeListResponse "User's bikes"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /bikes/my [get]
func (h *BikeHandler) GetMyBikes(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bikes, err := h.bikeService.GetBikesByUserID(c.Request.Context(), payload.UserID.String())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get bikes")
		return
	}

	c.JSON(http.StatusOK, toBikeListResponse(bikes))
}

// @Summary Get bike
// @Description A bike is readable when it is available, owned by the requester, or the requester is admin
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} BikeResponse "Bike found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Bike not found"
// @Router /bikes/{id} [get]
func (h *BikeHandler) GetBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	bike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if err := access.CanAccessBike(payload, bike, access.ActionRead); err != nil {
		h.logger.Warn("Access denied to bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(bike))
}

// @Summary Update bike
// @Description Update bike fields (owner or admin)
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body UpdateBike true "Fields to update"
// @Success 200 {object} BikeResponse "Bike updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes/{id} [put]
func (h *BikeHandler) UpdateBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existingBike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if err := access.CanAccessBike(payload, existingBike, access.ActionUpdate); err != nil {
		h.logger.Warn("Access denied to update bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   existingBike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req UpdateBike
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update bike", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	bike := &domain.Bike{
		BikeID: existingBike.BikeID,
		UserID: existingBike.UserID,
	}
	if req.Brand != nil {
		bike.Brand = *req.Brand
	}
	if req.Model != nil {
		bike.Model = *req.Model
	}
	if req.SerialNumber != nil {
		bike.SerialNumber = *req.SerialNumber
	}
	if req.Year != nil {
		bike.Year = *req.Year
	}
	if req.Color != nil {
		bike.Color = *req.Color
	}
	if req.Type != nil {
		bike.Type = domain.BikeType(*req.Type)
	}
	if req.Size != nil {
		bike.Size = *req.Size
	}

	updatedBike, err := h.bikeService.UpdateBike(c.Request.Context(), bike)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Update failed")
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(updatedBike))
}

// @Summary Change bike status
// @Description Move a bike through its lifecycle (available/maintenance; selling goes through purchases)
// @Tags bikes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Bike ID"
// @Param request body ChangeBikeStatusRequest true "Target status"
// @Success 200 {object} BikeResponse "Status changed"
// @Failure 400 {object} errorResponse "Invalid transition"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes/{id}/status [put]
func (h *BikeHandler) ChangeBikeStatus(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existingBike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if err := access.CanAccessBike(payload, existingBike, access.ActionUpdate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req ChangeBikeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	// Selling is not a direct status edit; it must go through a purchase.
	if domain.BikeStatus(req.Status) == domain.StatusSold {
		newErrorResponse(c, http.StatusBadRequest, "Bikes are sold through purchases")
		return
	}

	bike, err := h.bikeService.ChangeBikeStatus(c.Request.Context(), bikeID, domain.BikeStatus(req.Status))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			newErrorResponse(c, http.StatusBadRequest, "Invalid status transition")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Status change failed")
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(bike))
}

// @Summary Delete bike
// @Description Remove a bike (owner or admin)
// @Tags bikes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Bike ID"
// @Success 200 {object} successResponse "Bike deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /bikes/{id} [delete]
func (h *BikeHandler) DeleteBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	bikeID := c.Param("id")

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	existingBike, err := h.bikeService.GetBikeByID(c.Request.Context(), bikeID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Bike not found")
		return
	}

	if err := access.CanAccessBike(payload, existingBike, access.ActionDelete); err != nil {
		h.logger.Warn("Access denied to delete bike", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"bike_owner":   existingBike.UserID.String(),
			"bike_id":      bikeID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.bikeService.DeleteBike(c.Request.Context(), bikeID); err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Bike deleted successfully"})
}
