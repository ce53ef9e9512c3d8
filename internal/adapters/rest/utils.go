package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100

	isoDateLayout = "2006-01-02"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeUseCaseError переводит ошибку use case в HTTP-ответ.
// Неизвестные ошибки логируются и отдаются как 500 с fallback-сообщением.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error, fallback string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		RespondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: vErr.Error(), Fields: vErr.Fields})
	case errors.Is(err, domain.ErrPropertyNotFound),
		errors.Is(err, domain.ErrValuationNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailInUse), errors.Is(err, domain.ErrRoleExists):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrEmptyImport),
		errors.Is(err, domain.ErrTooManyRows),
		errors.Is(err, domain.ErrUnsupportedFormat):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(fallback, err, nil)
		WriteJSONError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON читает тело запроса. Числа остаются json.Number, чтобы не терять точность сумм.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseInt64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// parsePagination читает page и per_page; некорректные значения заменяются значениями по умолчанию
func parsePagination(query url.Values) (page, perPage int) {
	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(query.Get("per_page"))
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}
	return page, perPage
}

func parseString(query url.Values, key string) string {
	return strings.TrimSpace(query.Get(key))
}

func parseInt64Ptr(query url.Values, key string) (*int64, error) {
	s := strings.TrimSpace(query.Get(key))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &v, nil
}

func parseFloat(query url.Values, key string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(query.Get(key)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

// parseFilters собирает фильтры списка объектов (и экспорта) из query-параметров
func parseFilters(query url.Values) (domain.PropertyFilters, error) {
	filters := domain.PropertyFilters{
		Query:          parseString(query, "q"),
		PropertiesType: parseString(query, "properties_type"),
		ObjectType:     parseString(query, "object_type"),
		ValuationFrom:  parseString(query, "valuation_from"),
		ValuationTo:    parseString(query, "valuation_to"),
	}
	for _, key := range []string{"valuation_from", "valuation_to"} {
		if v := query.Get(key); v != "" && !isISODate(v) {
			return filters, fmt.Errorf("invalid %s, expected YYYY-MM-DD", key)
		}
	}

	var err error
	if filters.MinTotalValue, err = parseInt64Ptr(query, "min_total_value"); err != nil {
		return filters, err
	}
	if filters.MaxTotalValue, err = parseInt64Ptr(query, "max_total_value"); err != nil {
		return filters, err
	}
	return filters, nil
}

func isISODate(s string) bool {
	_, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	return err == nil
}
