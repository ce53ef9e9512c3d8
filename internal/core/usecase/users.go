package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

const minPasswordLength = 8

type CreateUserUseCase struct {
	users port.UserRepositoryPort
	roles port.RoleRepositoryPort
}

func NewCreateUserUseCase(users port.UserRepositoryPort, roles port.RoleRepositoryPort) *CreateUserUseCase {
	return &CreateUserUseCase{users: users, roles: roles}
}

func (uc *CreateUserUseCase) Execute(ctx context.Context, email, fullName, password, role string) (*domain.User, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CreateUser",
		"email":    email,
		"role":     role,
	})

	ucLogger.Info("Use case started", nil)

	email = strings.ToLower(strings.TrimSpace(email))
	errs := make(domain.ValidationErrors)
	if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Email is not valid"
	}
	if len(password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	if errs.HasErrors() {
		return nil, &domain.ValidationError{Fields: errs}
	}

	if role != "" {
		if err := ensureRoleExists(ctx, uc.roles, role); err != nil {
			ucLogger.Warn("Requested role does not exist", port.Fields{"error": err.Error()})
			return nil, err
		}
	}

	user, err := domain.NewUser(email, strings.TrimSpace(fullName), password, role)
	if err != nil {
		ucLogger.Error("Failed to create user entity", err, nil)
		return nil, fmt.Errorf("failed to create user entity: %w", err)
	}

	if err := uc.users.Create(ctx, user); err != nil {
		ucLogger.Error("Failed to save user", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"user_id": user.ID})
	return user, nil
}

func ensureRoleExists(ctx context.Context, roles port.RoleRepositoryPort, role string) error {
	ok, err := roles.Exists(ctx, role)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRoleNotFound, role)
	}
	return nil
}

type ListUsersUseCase struct {
	users port.UserRepositoryPort
}

func NewListUsersUseCase(users port.UserRepositoryPort) *ListUsersUseCase {
	return &ListUsersUseCase{users: users}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]domain.User, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "ListUsers"})

	ucLogger.Info("Use case started", nil)

	users, err := uc.users.List(ctx)
	if err != nil {
		ucLogger.Error("Failed to list users", err, nil)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(users)})
	return users, nil
}

type AssignRoleUseCase struct {
	users port.UserRepositoryPort
	roles port.RoleRepositoryPort
}

func NewAssignRoleUseCase(users port.UserRepositoryPort, roles port.RoleRepositoryPort) *AssignRoleUseCase {
	return &AssignRoleUseCase{users: users, roles: roles}
}

func (uc *AssignRoleUseCase) Execute(ctx context.Context, userID uuid.UUID, role string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "AssignRole",
		"user_id":  userID,
		"role":     role,
	})

	ucLogger.Info("Use case started", nil)

	if err := ensureRoleExists(ctx, uc.roles, role); err != nil {
		ucLogger.Warn("Role check failed", port.Fields{"error": err.Error()})
		return err
	}
	if err := uc.users.UpdateRole(ctx, userID, role); err != nil {
		ucLogger.Error("Failed to update user role", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}

type DeleteUserUseCase struct {
	users port.UserRepositoryPort
}

func NewDeleteUserUseCase(users port.UserRepositoryPort) *DeleteUserUseCase {
	return &DeleteUserUseCase{users: users}
}

func (uc *DeleteUserUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "DeleteUser",
		"user_id":  userID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.users.Delete(ctx, userID); err != nil {
		ucLogger.Error("Failed to delete user", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
