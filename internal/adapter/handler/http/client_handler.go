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

type ClientHandler struct {
	clientService *services.ClientService
	logger        ports.LoggerPort
	metrics       ports.MetricsPort
}

type ClientRequest struct {
	Name        string   `json:"name" binding:"required" example:"Jordan Rivera"`
	Phone       string   `json:"phone" binding:"required" example:"+49 151 1234567"`
	Email       string   `json:"email,omitempty" example:"jordan@example.com"`
	BikeSerials []string `json:"bike_serials,omitempty"`
}

type UpdateClient struct {
	Name        *string  `json:"name,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Email       *string  `json:"email,omitempty"`
	BikeSerials []string `json:"bike_serials,omitempty"`
}

type ClientResponse struct {
	ClientID    uuid.UUID `json:"client_id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	BikeSerials []string  `json:"bike_serials,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Count   int              `json:"count"`
}

func toClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ClientID:    client.ClientID,
		Name:        client.Name,
		Phone:       client.Phone,
		Email:       client.Email,
		BikeSerials: client.BikeSerials,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

func NewClientHandler(
	clientService *services.ClientService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
		metrics:       metrics,
	}
}

// @Summary Create client
// @Description Add a customer record (admin only)
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ClientRequest true "Client data"
// @Success 201 {object} ClientResponse "Client created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessClient(payload, access.ActionCreate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create client", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	client := &domain.Client{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		BikeSerials: req.BikeSerials,
	}

	created, err := h.clientService.CreateClient(c.Request.Context(), client)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, toClientResponse(created))
}

// @Summary Get client
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} ClientResponse "Client found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Client not found"
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessClient(payload, access.ActionRead); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	client, err := h.clientService.GetClientByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Client not found")
		return
	}

	c.JSON(http.StatusOK, toClientResponse(client))
}

// @Summary List clients
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ClientListResponse "Clients"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessClient(payload, access.ActionRead); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list clients")
		return
	}

	infos := make([]ClientResponse, len(clients))
	for i, client := range clients {
		infos[i] = toClientResponse(client)
	}

	c.JSON(http.StatusOK, ClientListResponse{Clients: infos, Count: len(infos)})
}

// @Summary Update client
// @Description Edit a customer record (admin only)
// @Tags clients
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param request body UpdateClient true "Fields to update"
// @Success 200 {object} ClientResponse "Client updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessClient(payload, access.ActionUpdate); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid client ID")
		return
	}

	var req UpdateClient
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update client", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	client := &domain.Client{
		ClientID:    clientID,
		BikeSerials: req.BikeSerials,
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}

	updated, err := h.clientService.UpdateClient(c.Request.Context(), client)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Client not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Update failed")
		return
	}

	c.JSON(http.StatusOK, toClientResponse(updated))
}

// @Summary Delete client
// @Description Remove a customer and clear their bike associations in one transaction (admin only)
// @Tags clients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} successResponse "Client deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Client not found"
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := access.CanAccessClient(payload, access.ActionDelete); err != nil {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Client not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Delete failed")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Client deleted successfully"})
}
