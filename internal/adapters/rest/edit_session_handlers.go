package rest

import (
	"errors"
	"net/http"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// EditSessionHandler - REST-поверхность формы редактирования объекта.
// Сессия принадлежит пользователю из токена, чужие сессии не видны.
type EditSessionHandler struct {
	startUC   usecases_port.StartEditSessionUseCasePort
	getUC     usecases_port.GetEditSessionUseCasePort
	applyUC   usecases_port.ApplyEditOpsUseCasePort
	submitUC  usecases_port.SubmitEditSessionUseCasePort
	discardUC usecases_port.DiscardEditSessionUseCasePort
}

func NewEditSessionHandler(
	startUC usecases_port.StartEditSessionUseCasePort,
	getUC usecases_port.GetEditSessionUseCasePort,
	applyUC usecases_port.ApplyEditOpsUseCasePort,
	submitUC usecases_port.SubmitEditSessionUseCasePort,
	discardUC usecases_port.DiscardEditSessionUseCasePort,
) *EditSessionHandler {
	return &EditSessionHandler{
		startUC:   startUC,
		getUC:     getUC,
		applyUC:   applyUC,
		submitUC:  submitUC,
		discardUC: discardUC,
	}
}

// sessionRequest достает владельца из токена и id сессии из URL
func sessionRequest(w http.ResponseWriter, r *http.Request) (sessionID, ownerID uuid.UUID, ok bool) {
	claims := contextkeys.ClaimsFromContext(r.Context())
	if claims == nil {
		WriteJSONError(w, http.StatusUnauthorized, "User is not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := parseUUIDParam(r, "sessionID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, claims.UserID, true
}

// StartSession обрабатывает POST /api/v1/properties/{propertyID}/edit-sessions
func (h *EditSessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	claims := contextkeys.ClaimsFromContext(r.Context())
	if claims == nil {
		WriteJSONError(w, http.StatusUnauthorized, "User is not authenticated")
		return
	}
	propertyID, err := parseInt64Param(r, "propertyID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"handler": "StartSession", "property_id": propertyID})

	sessionID, view, err := h.startUC.Execute(r.Context(), propertyID, claims.UserID)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to start edit session")
		return
	}

	handlerLogger.Info("Edit session started", port.Fields{"session_id": sessionID.String()})
	RespondWithJSON(w, http.StatusCreated, toEditSessionResponse(sessionID.String(), view))
}

// GetSession обрабатывает GET /api/v1/edit-sessions/{sessionID}
func (h *EditSessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ownerID, ok := sessionRequest(w, r)
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "GetSession",
		"session_id": sessionID.String(),
	})

	view, err := h.getUC.Execute(r.Context(), sessionID, ownerID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve edit session")
		return
	}
	RespondWithJSON(w, http.StatusOK, toEditSessionResponse(sessionID.String(), view))
}

// ApplyOps обрабатывает PATCH /api/v1/edit-sessions/{sessionID}.
// Пакет применяется до первой ошибки; уже примененные правки остаются в сессии.
func (h *EditSessionHandler) ApplyOps(w http.ResponseWriter, r *http.Request) {
	sessionID, ownerID, ok := sessionRequest(w, r)
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "ApplyOps",
		"session_id": sessionID.String(),
	})

	var req ApplyEditOpsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Ops) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "ops must not be empty")
		return
	}

	ops := make([]editor.Op, len(req.Ops))
	for i, op := range req.Ops {
		ops[i] = op.toDomain()
	}

	view, err := h.applyUC.Execute(r.Context(), sessionID, ownerID, ops)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			WriteJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		// ошибка в самой операции (неизвестное поле, чужая оценка, вне диапазона)
		logger.Warn("Edit operation rejected", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, toEditSessionResponse(sessionID.String(), view))
}

// SubmitSession обрабатывает POST /api/v1/edit-sessions/{sessionID}/submit
func (h *EditSessionHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ownerID, ok := sessionRequest(w, r)
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "SubmitSession",
		"session_id": sessionID.String(),
	})

	saved, err := h.submitUC.Execute(r.Context(), sessionID, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrSaveFailed) {
			logger.Error("Edit session save failed, edits kept", err, nil)
			WriteJSONError(w, http.StatusBadGateway, "Failed to save changes, edits are kept and can be resubmitted")
			return
		}
		writeUseCaseError(w, logger, err, "Failed to submit edit session")
		return
	}

	logger.Info("Edit session submitted", port.Fields{"property_id": saved.ID})
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*saved))
}

// DiscardSession обрабатывает DELETE /api/v1/edit-sessions/{sessionID}
func (h *EditSessionHandler) DiscardSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ownerID, ok := sessionRequest(w, r)
	if !ok {
		return
	}
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "DiscardSession",
		"session_id": sessionID.String(),
	})

	if err := h.discardUC.Execute(r.Context(), sessionID, ownerID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to discard edit session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
