package port

import (
	"context"

	"appraisal-portal/internal/core/domain"
)

// TokenValidatorPort проверяет токены, выпущенные внешним провайдером аутентификации.
type TokenValidatorPort interface {
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
}
