package rest

import (
	"net/http"
	"net/mail"
	"strings"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/port/usecases_port"
)

const minPasswordLength = 8

// AdminHandler - управление пользователями и ролями (только для admin)
type AdminHandler struct {
	createUserUC usecases_port.CreateUserUseCasePort
	listUsersUC  usecases_port.ListUsersUseCasePort
	assignRoleUC usecases_port.AssignRoleUseCasePort
	deleteUserUC usecases_port.DeleteUserUseCasePort
	listRolesUC  usecases_port.ListRolesUseCasePort
	createRoleUC usecases_port.CreateRoleUseCasePort
}

func NewAdminHandler(
	createUserUC usecases_port.CreateUserUseCasePort,
	listUsersUC usecases_port.ListUsersUseCasePort,
	assignRoleUC usecases_port.AssignRoleUseCasePort,
	deleteUserUC usecases_port.DeleteUserUseCasePort,
	listRolesUC usecases_port.ListRolesUseCasePort,
	createRoleUC usecases_port.CreateRoleUseCasePort,
) *AdminHandler {
	return &AdminHandler{
		createUserUC: createUserUC,
		listUsersUC:  listUsersUC,
		assignRoleUC: assignRoleUC,
		deleteUserUC: deleteUserUC,
		listRolesUC:  listRolesUC,
		createRoleUC: createRoleUC,
	}
}

// ListUsers обрабатывает GET /api/v1/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListUsers"})

	users, err := h.listUsersUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve users")
		return
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// CreateUser обрабатывает POST /api/v1/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateUser"})

	var req CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := map[string]string{}
	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "invalid email"
	}
	if len(req.Password) < minPasswordLength {
		fields["password"] = "password is too short"
	}
	if len(fields) > 0 {
		RespondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Fields: fields})
		return
	}

	user, err := h.createUserUC.Execute(r.Context(), req.Email, strings.TrimSpace(req.FullName), req.Password, strings.TrimSpace(req.Role))
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create user")
		return
	}

	logger.Info("User created", port.Fields{"user_id": user.ID.String()})
	RespondWithJSON(w, http.StatusCreated, toUserResponse(*user))
}

// AssignRole обрабатывает PUT /api/v1/users/{userID}/role
func (h *AdminHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":        "AssignRole",
		"target_user_id": userID.String(),
	})

	var req AssignRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		WriteJSONError(w, http.StatusBadRequest, "role is required")
		return
	}

	if err := h.assignRoleUC.Execute(r.Context(), userID, strings.TrimSpace(req.Role)); err != nil {
		writeUseCaseError(w, logger, err, "Failed to assign role")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser обрабатывает DELETE /api/v1/users/{userID}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":        "DeleteUser",
		"target_user_id": userID.String(),
	})

	if claims := contextkeys.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == userID {
		WriteJSONError(w, http.StatusBadRequest, "You cannot delete yourself")
		return
	}

	if err := h.deleteUserUC.Execute(r.Context(), userID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRoles обрабатывает GET /api/v1/roles
func (h *AdminHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListRoles"})

	roles, err := h.listRolesUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve roles")
		return
	}
	resp := make([]RoleResponse, len(roles))
	for i, role := range roles {
		resp[i] = toRoleResponse(role)
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// CreateRole обрабатывает POST /api/v1/roles
func (h *AdminHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateRole"})

	var req CreateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.createRoleUC.Execute(r.Context(), req.Name, req.Description)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create role")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toRoleResponse(*role))
}
