package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wheelhaus/bikeshop-service/internal/core/domain"
	"github.com/wheelhaus/bikeshop-service/internal/core/ports"
)

type ClientService struct {
	clientRepo ports.ClientRepository
	logger     ports.LoggerPort
	validate   *validator.Validate
}

func NewClientService(
	clientRepo ports.ClientRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
		validate:   validate,
	}
}

func (s *ClientService) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := s.validate.Struct(client); err != nil {
		s.logger.Error("Client validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if client.ClientID == uuid.Nil {
		client.ClientID = uuid.New()
	}

	created, err := s.clientRepo.CreateClient(ctx, client)
	if err != nil {
		s.logger.Error("Failed to create client", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Client created successfully", map[string]interface{}{
		"client_id": created.ClientID,
	})

	return created, nil
}

func (s *ClientService) GetClientByID(ctx context.Context, clientID string) (*domain.Client, error) {
	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID: %w", err)
	}

	client, err := s.clientRepo.GetClientByID(ctx, clientUUID)
	if err != nil {
		s.logger.Error("Failed to get client", map[string]interface{}{
			"error":     err.Error(),
			"client_id": clientID,
		})
		return nil, err
	}

	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.clientRepo.ListClients(ctx)
	if err != nil {
		s.logger.Error("Failed to list clients", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return clients, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	updated, err := s.clientRepo.UpdateClient(ctx, client)
	if err != nil {
		s.logger.Error("Failed to update client", map[string]interface{}{
			"error":     err.Error(),
			"client_id": client.ClientID,
		})
		return nil, err
	}

	s.logger.Info("Client updated successfully", map[string]interface{}{
		"client_id": client.ClientID,
	})

	return updated, nil
}

// DeleteClient removes the client record and clears the client's bike
// associations in one transaction, so a partial cascade cannot be left behind.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	clientUUID, err := uuid.Parse(clientID)
	if err != nil {
		return fmt.Errorf("invalid client ID: %w", err)
	}

	if err := s.clientRepo.DeleteClientCascade(ctx, clientUUID); err != nil {
		s.logger.Error("Failed to delete client", map[string]interface{}{
			"error":     err.Error(),
			"client_id": clientID,
		})
		return err
	}

	s.logger.Info("Client deleted with cascade", map[string]interface{}{
		"client_id": clientID,
	})

	return nil
}
