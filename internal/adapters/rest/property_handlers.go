package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"appraisal-portal/internal/contextkeys"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/pagination"
	"appraisal-portal/internal/core/port"
	"appraisal-portal/internal/core/port/usecases_port"
)

// максимальный размер загружаемого файла импорта
const maxImportUploadBytes = 20 << 20

type PropertyHandler struct {
	createUC          usecases_port.CreatePropertyUseCasePort
	listUC            usecases_port.ListPropertiesUseCasePort
	getUC             usecases_port.GetPropertyUseCasePort
	deleteUC          usecases_port.DeletePropertyUseCasePort
	deleteValuationUC usecases_port.DeleteValuationUseCasePort
	importUC          usecases_port.ImportPropertiesUseCasePort
	exportUC          usecases_port.ExportPropertiesUseCasePort
	markersUC         usecases_port.GetMapMarkersUseCasePort
}

func NewPropertyHandler(
	createUC usecases_port.CreatePropertyUseCasePort,
	listUC usecases_port.ListPropertiesUseCasePort,
	getUC usecases_port.GetPropertyUseCasePort,
	deleteUC usecases_port.DeletePropertyUseCasePort,
	deleteValuationUC usecases_port.DeleteValuationUseCasePort,
	importUC usecases_port.ImportPropertiesUseCasePort,
	exportUC usecases_port.ExportPropertiesUseCasePort,
	markersUC usecases_port.GetMapMarkersUseCasePort,
) *PropertyHandler {
	return &PropertyHandler{
		createUC:          createUC,
		listUC:            listUC,
		getUC:             getUC,
		deleteUC:          deleteUC,
		deleteValuationUC: deleteValuationUC,
		importUC:          importUC,
		exportUC:          exportUC,
		markersUC:         markersUC,
	}
}

// CreateProperty обрабатывает POST /api/v1/properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateProperty"})

	var req CreatePropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	property, err := req.toDomain()
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create property")
		return
	}

	created, err := h.createUC.Execute(r.Context(), property)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to create property")
		return
	}

	logger.Info("Property created", port.Fields{"property_id": created.ID})
	RespondWithJSON(w, http.StatusCreated, toPropertyResponse(*created))
}

// ListProperties обрабатывает GET /api/v1/properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	query := r.URL.Query()
	page, perPage := parsePagination(query)
	filters, err := parseFilters(query)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "ListProperties",
		"page":     page,
		"per_page": perPage,
		"filters":  filters,
	})
	handlerLogger.Debug("Processing request to list properties", nil)

	result, err := h.listUC.Execute(r.Context(), filters, page, perPage)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to retrieve properties")
		return
	}

	RespondWithJSON(w, http.StatusOK, toPaginatedPropertiesResponse(result))
}

// GetProperty обрабатывает GET /api/v1/properties/{propertyID}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	id, err := parseInt64Param(r, "propertyID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"handler": "GetProperty", "property_id": id})

	property, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to retrieve property")
		return
	}
	RespondWithJSON(w, http.StatusOK, toPropertyResponse(*property))
}

// DeleteProperty обрабатывает DELETE /api/v1/properties/{propertyID}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	id, err := parseInt64Param(r, "propertyID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"handler": "DeleteProperty", "property_id": id})

	if err := h.deleteUC.Execute(r.Context(), id); err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to delete property")
		return
	}
	handlerLogger.Info("Property deleted", nil)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteValuation обрабатывает DELETE /api/v1/valuations/{valuationID}
func (h *PropertyHandler) DeleteValuation(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	id, err := parseInt64Param(r, "valuationID")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid valuation ID")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"handler": "DeleteValuation", "valuation_id": id})

	if err := h.deleteValuationUC.Execute(r.Context(), id); err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to delete valuation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportProperties обрабатывает POST /api/v1/properties/import (multipart: file, mapping, properties_type)
func (h *PropertyHandler) ImportProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ImportProperties"})

	r.Body = http.MaxBytesReader(w, r.Body, maxImportUploadBytes)
	if err := r.ParseMultipartForm(maxImportUploadBytes); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	req := domain.ImportRequest{
		FileName:       filepath.Base(header.Filename),
		Mapping:        map[string]string{},
		PropertiesType: strings.TrimSpace(r.FormValue("properties_type")),
	}
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Mapping); err != nil {
			WriteJSONError(w, http.StatusBadRequest, "Invalid mapping, expected JSON object column -> field")
			return
		}
	}
	if claims := contextkeys.ClaimsFromContext(r.Context()); claims != nil {
		userID := claims.UserID
		req.UserID = &userID
	}

	logger.Info("Import started", port.Fields{"file_name": req.FileName, "size": header.Size})

	report, err := h.importUC.Execute(r.Context(), req, file)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to import properties")
		return
	}
	RespondWithJSON(w, http.StatusOK, toImportReportResponse(report))
}

// ExportProperties обрабатывает GET /api/v1/properties/export
func (h *PropertyHandler) ExportProperties(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ExportProperties"})

	filters, err := parseFilters(r.URL.Query())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	// пишем в буфер, чтобы при ошибке еще можно было ответить JSON
	var buf bytes.Buffer
	rows, err := h.exportUC.Execute(r.Context(), filters, &buf)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to export properties")
		return
	}

	fileName := fmt.Sprintf("properties_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("X-Total-Count", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("Failed to write export response", err, nil)
	}
}

// GetMapMarkers обрабатывает GET /api/v1/map/markers?north=&south=&east=&west=&zoom=
func (h *PropertyHandler) GetMapMarkers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	var bounds domain.Bounds
	var err error
	for _, p := range []struct {
		key string
		dst *float64
	}{
		{"north", &bounds.North},
		{"south", &bounds.South},
		{"east", &bounds.East},
		{"west", &bounds.West},
	} {
		if *p.dst, err = parseFloat(query, p.key); err != nil {
			WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if bounds.South > bounds.North {
		WriteJSONError(w, http.StatusBadRequest, "south must not be greater than north")
		return
	}

	zoom, err := strconv.Atoi(query.Get("zoom"))
	if err != nil || zoom < 0 {
		WriteJSONError(w, http.StatusBadRequest, "invalid zoom")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"handler": "GetMapMarkers", "zoom": zoom})

	view, err := h.markersUC.Execute(r.Context(), bounds, zoom)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to retrieve map markers")
		return
	}
	RespondWithJSON(w, http.StatusOK, toMapViewResponse(view))
}

// GetPagination обрабатывает GET /api/v1/pagination?total_pages=&page=
func GetPagination(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	totalPages, err := strconv.Atoi(query.Get("total_pages"))
	if err != nil || totalPages < 1 {
		WriteJSONError(w, http.StatusBadRequest, "total_pages must be a positive integer")
		return
	}
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 || page > totalPages {
		WriteJSONError(w, http.StatusBadRequest, "page must be between 1 and total_pages")
		return
	}
	RespondWithJSON(w, http.StatusOK, PaginationResponse{
		TotalPages: totalPages,
		Page:       page,
		Pages:      pagination.NewWindow(totalPages, page, nil).Buttons(),
	})
}
