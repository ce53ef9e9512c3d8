package token_adapter

import (
	"context"
	"errors"
	"fmt"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenValidator проверяет HS256-токены сервиса аутентификации общим ключом.
type TokenValidator struct {
	signingKey []byte
}

func NewTokenValidator(signingKey string) (*TokenValidator, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenValidator{signingKey: []byte(signingKey)}, nil
}

// jwtCustomClaims - формат claims сервиса аутентификации.
type jwtCustomClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken проверяет подпись и срок действия и возвращает claims.
func (v *TokenValidator) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	validatorLogger := logger.WithFields(port.Fields{
		"component": "TokenValidator",
		"method":    "ValidateToken",
	})

	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			validatorLogger.Warn("Token has expired", nil)
		} else {
			validatorLogger.Warn("Invalid token format or signature", port.Fields{"reason": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		validatorLogger.Error("Token was parsed without error, but claims type assertion failed", nil, nil)
		return nil, domain.ErrTokenInvalid
	}
	if claims.UserID == uuid.Nil || claims.Role == "" {
		validatorLogger.Warn("Token has no user id or role", nil)
		return nil, domain.ErrTokenInvalid
	}

	validatorLogger.Debug("Token validated successfully.", port.Fields{
		"user_id": claims.UserID.String(),
		"role":    claims.Role,
	})
	return &domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
