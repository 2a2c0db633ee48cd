package ports

import "github.com/wheelhaus/bikeshop-service/internal/core/domain"

type TokenService interface {
	IssueTokens(user *domain.User) (access string, refresh string, err error)
	IssueResetToken(user *domain.User) (string, error)
	VerifyToken(token string) (*domain.TokenPayload, error)
}
