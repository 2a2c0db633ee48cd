package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
	"github.com/wheelhaus/bikeshop-service/internal/core/services"
)

type PurchaseHandler struct {
	purchaseService *services.PurchaseService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

type PurchaseRequest struct {
	BikeID  string  `json:"bike_id" binding:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Price   float64 `json:"price" binding:"required" example:"899.99"`
	Payment string  `json:"payment" binding:"required" example:"card"`
}

type PurchaseResponse struct {
	PurchaseID uuid.UUID `json:"purchase_id"`
	BikeID     uuid.UUID `json:"bike_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	BikeBrand  string    `json:"bike_brand"`
	BikeModel  string    `json:"bike_model"`
	BikeSerial string    `json:"bike_serial"`
	BuyerName  string    `json:"buyer_name"`
	Price      float64   `json:"price"`
	Payment    string    `json:"payment"`
	SaleDate   time.Time `json:"sale_date"`
	CreatedAt  time.Time `json:"created_at"`
}

type PurchaseListResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
	Count     int                `json:"count"`
}

func toPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{
		PurchaseID: p.PurchaseID,
		BikeID:     p.BikeID,
		BuyerID:    p.BuyerID,
		BikeBrand:  p.BikeBrand,
		BikeModel:  p.BikeModel,
		BikeSerial: p.BikeSerial,
		BuyerName:  p.BuyerName,
		Price:      p.Price,
		Payment:    string(p.Payment),
		SaleDate:   p.SaleDate,
		CreatedAt:  p.CreatedAt,
	}
}

func NewPurchaseHandler(
	purchaseService *services.PurchaseService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
		metrics:         metrics,
	}
}

// @Summary Purchase a bike
// @Description Buy an available bike; the sale, the status flip and the buyer attribution land atomically
// @Tags purchases
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body PurchaseRequest true "Purchase data"
// @Success 201 {object} PurchaseResponse "Purchase completed"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 409 {object} errorResponse "Bike not available"
// @Router /purchases [post]
func (h *PurchaseHandler) PurchaseBike(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in purchase", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	payment := domain.PaymentMethod(req.Payment)
	if !payment.Valid() {
		newErrorResponse(c, http.StatusBadRequest, "Invalid payment method")
		return
	}

	purchase, err := h.purchaseService.PurchaseBike(
		c.Request.Context(),
		payload.UserID.String(),
		req.BikeID,
		req.Price,
		payment,
	)
	if err != nil {
		if errors.Is(err, domain.ErrBikeNotAvailable) {
			newErrorResponse(c, http.StatusConflict, "Bike is not available")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			newErrorResponse(c, http.StatusNotFound, "Bike not found")
			return
		}
		newErrorResponse(c, http.StatusInternalServerError, "Purchase failed")
		return
	}

	c.JSON(http.StatusCreated, toPurchaseResponse(purchase))
}

// @Summary Get purchase
// @Description A buyer sees their own purchases; admins see all
// @Tags purchases
// @Security BearerAuth
// @Produce json
// @Param id path string true "Purchase ID"
// @Success 200 {object} PurchaseResponse "Purchase found"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Purchase not found"
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	purchase, err := h.purchaseService.GetPurchaseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Purchase not found")
		return
	}

	if payload.Role != domain.Admin && payload.UserID != purchase.BuyerID {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	c.JSON(http.StatusOK, toPurchaseResponse(purchase))
}

// @Summary List my purchases
// @Tags purchases
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PurchaseListResponse "Purchases"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /purchases/my [get]
func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	purchases, err := h.purchaseService.GetPurchasesByBuyerID(c.Request.Context(), payload.UserID.String())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get purchases")
		return
	}

	c.JSON(http.StatusOK, toPurchaseList(purchases))
}

// @Summary List all purchases
// @Description Sales history for the whole shop (admin only)
// @Tags purchases
// @Security BearerAuth
// @Produce json
// @Success 200 {object} PurchaseListResponse "Purchases"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /purchases [get]
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if payload.Role != domain.Admin {
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return
	}

	purchases, err := h.purchaseService.ListPurchases(c.Request.Context())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list purchases")
		return
	}

	c.JSON(http.StatusOK, toPurchaseList(purchases))
}

func toPurchaseList(purchases []*domain.Purchase) PurchaseListResponse {
	infos := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		infos[i] = toPurchaseResponse(p)
	}
	return PurchaseListResponse{Purchases: infos, Count: len(infos)}
}
