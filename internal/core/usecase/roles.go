package usecase

import (
	"context"
	"fmt"
	"strings"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"
)

type ListRolesUseCase struct {
	roles port.RoleRepositoryPort
}

func NewListRolesUseCase(roles port.RoleRepositoryPort) *ListRolesUseCase {
	return &ListRolesUseCase{roles: roles}
}

func (uc *ListRolesUseCase) Execute(ctx context.Context) ([]domain.Role, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListRoles"})

	ucLogger.Info("Use case started", nil)

	roles, err := uc.roles.List(ctx)
	if err != nil {
		ucLogger.Error("Failed to list roles", err, nil)
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(roles)})
	return roles, nil
}

type CreateRoleUseCase struct {
	roles port.RoleRepositoryPort
}

func NewCreateRoleUseCase(roles port.RoleRepositoryPort) *CreateRoleUseCase {
	return &CreateRoleUseCase{roles: roles}
}

func (uc *CreateRoleUseCase) Execute(ctx context.Context, name, description string) (*domain.Role, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CreateRole",
		"role":     name,
	})

	ucLogger.Info("Use case started", nil)

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, &domain.ValidationError{Fields: domain.ValidationErrors{"name": "Role name is required"}}
	}

	role := &domain.Role{Name: name, Description: strings.TrimSpace(description)}
	if err := uc.roles.Create(ctx, role); err != nil {
		ucLogger.Error("Failed to create role", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"role_id": role.ID})
	return role, nil
}
