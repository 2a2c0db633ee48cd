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

type PurchaseService struct {
	purchaseRepo ports.PurchaseRepository
	bikeRepo     ports.BikeRepository
	userRepo     ports.UserRepository
	logger       ports.LoggerPort
	validate     *validator.Validate
	cache        ports.CachePort
}

func NewPurchaseService(
	purchaseRepo ports.PurchaseRepository,
	bikeRepo ports.BikeRepository,
	userRepo ports.UserRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		bikeRepo:     bikeRepo,
		userRepo:     userRepo,
		logger:       logger,
		validate:     validate,
		cache:        cache,
	}
}

// PurchaseBike sells a bike to the given buyer. The availability check here is
// advisory (fast failure before opening a transaction); the repository repeats
// it as a conditional write inside the transaction, so two buyers racing past
// this point still end with exactly one sale.
func (s *PurchaseService) PurchaseBike(
	ctx context.Context,
	buyerID string,
	bikeID string,
	price float64,
	payment domain.PaymentMethod,
) (*domain.Purchase, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, fmt.Errorf("invalid buyer ID: %w", err)
	}
	bikeUUID, err := uuid.Parse(bikeID)
	if err != nil {
		return nil, fmt.Errorf("invalid bike ID: %w", err)
	}

	bike, err := s.bikeRepo.GetBikeByID(ctx, bikeUUID)
	if err != nil {
		s.logger.Error("Failed to get bike for purchase", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
		return nil, err
	}

	if bike.Status != domain.StatusAvailable {
		s.logger.Warn("Purchase attempt on unavailable bike", map[string]interface{}{
			"bike_id": bikeID,
			"status":  string(bike.Status),
		})
		return nil, domain.ErrBikeNotAvailable
	}

	buyer, err := s.userRepo.GetUserByID(ctx, buyerUUID)
	if err != nil {
		s.logger.Error("Failed to get buyer for purchase", map[string]interface{}{
			"error":    err.Error(),
			"buyer_id": buyerID,
		})
		return nil, err
	}

	purchase := &domain.Purchase{
		PurchaseID: uuid.New(),
		BikeID:     bike.BikeID,
		BuyerID:    buyer.UserID,
		BikeBrand:  bike.Brand,
		BikeModel:  bike.Model,
		BikeSerial: bike.SerialNumber,
		BuyerName:  buyer.Name,
		Price:      price,
		Payment:    payment,
		SaleDate:   time.Now().UTC(),
	}

	if err := s.validate.Struct(purchase); err != nil {
		s.logger.Error("Purchase validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	created, err := s.purchaseRepo.PurchaseBike(ctx, purchase)
	if err != nil {
		s.logger.Error("Purchase transaction failed", map[string]interface{}{
			"error":    err.Error(),
			"bike_id":  bikeID,
			"buyer_id": buyerID,
		})
		return nil, err
	}

	cacheKey := fmt.Sprintf("bike:%s", bikeID)
	if err := s.cache.Delete(cacheKey); err != nil {
		s.logger.Warn("Failed to invalidate bike cache", map[string]interface{}{
			"error":   err.Error(),
			"bike_id": bikeID,
		})
	}

	s.logger.Info("Purchase completed", map[string]interface{}{
		"purchase_id": created.PurchaseID,
		"bike_id":     bikeID,
		"buyer_id":    buyerID,
		"price":       price,
	})

	return created, nil
}

func (s *PurchaseService) GetPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	purchaseUUID, err := uuid.Parse(purchaseID)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase ID: %w", err)
	}

	purchase, err := s.purchaseRepo.GetPurchaseByID(ctx, purchaseUUID)
	if err != nil {
		s.logger.Error("Failed to get purchase", map[string]interface{}{
			"error":       err.Error(),
			"purchase_id": purchaseID,
		})
		return nil, err
	}

	return purchase, nil
}

func (s *PurchaseService) GetPurchasesByBuyerID(ctx context.Context, buyerID string) ([]*domain.Purchase, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, fmt.Errorf("invalid buyer ID: %w", err)
	}

	purchases, err := s.purchaseRepo.GetPurchasesByBuyerID(ctx, buyerUUID)
	if err != nil {
		s.logger.Error("Failed to get purchases", map[string]interface{}{
			"error":    err.Error(),
			"buyer_id": buyerID,
		})
		return nil, err
	}

	return purchases, nil
}

func (s *PurchaseService) ListPurchases(ctx context.Context) ([]*domain.Purchase, error) {
	purchases, err := s.purchaseRepo.ListPurchases(ctx)
	if err != nil {
		s.logger.Error("Failed to list purchases", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return purchases, nil
}
