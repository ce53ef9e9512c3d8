package rest

import (
	"time"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/numfmt"
	"appraisal-portal/internal/core/pagination"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Объекты ---

type LocationDTO struct {
	ID        int64  `json:"id,omitempty"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Address   string `json:"address"`
}

type ValuationDTO struct {
	ID            int64  `json:"id,omitempty"`
	PropertyID    int64  `json:"property_id,omitempty"`
	ValuationDate string `json:"valuation_date"`
	LandValue     int64  `json:"land_value"`
	BuildingValue int64  `json:"building_value"`
	TotalValue    int64  `json:"total_value"`
	ReportNumber  string `json:"report_number"`
	Appraiser     string `json:"appraiser"`
}

type PropertyResponse struct {
	ID             int64          `json:"id"`
	Debitur        string         `json:"debitur"`
	LandArea       float64        `json:"land_area"`
	BuildingArea   float64        `json:"building_area"`
	PhoneNumber    string         `json:"phone_number"`
	PropertiesType string         `json:"properties_type"`
	ObjectType     string         `json:"object_type"`
	Location       LocationDTO    `json:"location"`
	Valuations     []ValuationDTO `json:"valuations"`
	CreatedAt      *time.Time     `json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
}

// ValuationInput - оценка в запросе создания. Суммы принимаются числом или строкой ("Rp 1.250.000").
type ValuationInput struct {
	ValuationDate string      `json:"valuation_date"`
	LandValue     interface{} `json:"land_value"`
	BuildingValue interface{} `json:"building_value"`
	TotalValue    interface{} `json:"total_value"`
	ReportNumber  string      `json:"report_number"`
	Appraiser     string      `json:"appraiser"`
}

type CreatePropertyRequest struct {
	Debitur        string           `json:"debitur"`
	LandArea       interface{}      `json:"land_area"`
	BuildingArea   interface{}      `json:"building_area"`
	PhoneNumber    string           `json:"phone_number"`
	PropertiesType string           `json:"properties_type"`
	ObjectType     string           `json:"object_type"`
	Location       LocationDTO      `json:"location"`
	Valuations     []ValuationInput `json:"valuations"`
}

type PropertyListItemResponse struct {
	ID                int64     `json:"id"`
	Debitur           string    `json:"debitur"`
	PropertiesType    string    `json:"properties_type"`
	ObjectType        string    `json:"object_type"`
	PhoneNumber       string    `json:"phone_number"`
	LandArea          float64   `json:"land_area"`
	BuildingArea      float64   `json:"building_area"`
	Address           string    `json:"address"`
	Latitude          string    `json:"latitude"`
	Longitude         string    `json:"longitude"`
	ValuationsCount   int       `json:"valuations_count"`
	LastValuationDate string    `json:"last_valuation_date"`
	LastTotalValue    int64     `json:"last_total_value"`
	LastReportNumber  string    `json:"last_report_number"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type PaginatedPropertiesResponse struct {
	Data       []PropertyListItemResponse `json:"properties"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	PerPage    int                        `json:"per_page"`
	TotalPages int                        `json:"total_pages"`
	Pages      []pagination.Button        `json:"pages"`
}

type PaginationResponse struct {
	TotalPages int                 `json:"total_pages"`
	Page       int                 `json:"page"`
	Pages      []pagination.Button `json:"pages"`
}

// --- Сессии редактирования ---

type EditOpRequest struct {
	Kind        string      `json:"kind"`
	ValuationID int64       `json:"valuation_id,omitempty"`
	Index       int         `json:"index,omitempty"`
	Field       string      `json:"field,omitempty"`
	Value       interface{} `json:"value,omitempty"`
}

type ApplyEditOpsRequest struct {
	Ops []EditOpRequest `json:"ops"`
}

type EntityUpdateDTO struct {
	ID      int64                  `json:"id"`
	Changes map[string]interface{} `json:"changes"`
}

type EditDiffDTO struct {
	PropertyUpdate   *EntityUpdateDTO  `json:"property_update"`
	ValuationUpdates []EntityUpdateDTO `json:"valuation_updates"`
	NewValuations    []ValuationDTO    `json:"new_valuations"`
}

type EditSessionResponse struct {
	SessionID     string            `json:"session_id"`
	Merged        PropertyResponse  `json:"merged"`
	NewValuations []ValuationDTO    `json:"new_valuations"`
	Diff          EditDiffDTO       `json:"diff"`
	Errors        map[string]string `json:"errors"`
	Dirty         bool              `json:"dirty"`
}

// --- Карта ---

type MapMarkerResponse struct {
	PropertyID     int64   `json:"property_id"`
	LocationID     int64   `json:"location_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Geohash        string  `json:"geohash"`
	Address        string  `json:"address"`
	Debitur        string  `json:"debitur"`
	PropertiesType string  `json:"properties_type"`
	LastTotalValue int64   `json:"last_total_value"`
}

type MarkerClusterResponse struct {
	Geohash     string  `json:"geohash"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Count       int     `json:"count"`
	PropertyIDs []int64 `json:"property_ids,omitempty"`
}

type MapViewResponse struct {
	Clustered bool                    `json:"clustered"`
	Precision uint                    `json:"precision,omitempty"`
	Markers   []MapMarkerResponse     `json:"markers"`
	Clusters  []MarkerClusterResponse `json:"clusters"`
}

// --- Импорт ---

type ImportRowErrorResponse struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

type ImportReportResponse struct {
	FileName        string                   `json:"file_name"`
	TotalRows       int                      `json:"total_rows"`
	Imported        int                      `json:"imported"`
	Failed          int                      `json:"failed"`
	CreatedIDs      []int64                  `json:"created_ids"`
	Errors          []ImportRowErrorResponse `json:"errors"`
	UnmappedColumns []string                 `json:"unmapped_columns"`
}

// --- Уведомления и дашборд ---

type NotificationResponse struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	PropertyID *int64     `json:"property_id,omitempty"`
	Broadcast  bool       `json:"broadcast"`
	CreatedAt  time.Time  `json:"created_at"`
	ReadAt     *time.Time `json:"read_at"`
}

type PaginatedNotificationsResponse struct {
	Data        []NotificationResponse `json:"notifications"`
	Total       int64                  `json:"total"`
	UnreadCount int64                  `json:"unread_count"`
	Page        int                    `json:"page"`
	PerPage     int                    `json:"per_page"`
}

type LatestValuationResponse struct {
	ValuationID   int64  `json:"valuation_id"`
	PropertyID    int64  `json:"property_id"`
	Debitur       string `json:"debitur"`
	ValuationDate string `json:"valuation_date"`
	TotalValue    int64  `json:"total_value"`
	Appraiser     string `json:"appraiser"`
}

type DashboardResponse struct {
	TotalProperties     int64                     `json:"total_properties"`
	PropertiesByType    map[string]int64          `json:"properties_by_type"`
	TotalValuations     int64                     `json:"total_valuations"`
	SumTotalValue       int64                     `json:"sum_total_value"`
	LatestValuations    []LatestValuationResponse `json:"latest_valuations"`
	UnreadNotifications int64                     `json:"unread_notifications"`
}

// --- Пользователи и роли ---

type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AssignRoleRequest struct {
	Role string `json:"role"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RoleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// --- Маппинг ---

// toDomain разбирает числа в местном формате ("120,5"). Нечисловая площадь - ошибка валидации.
func (req CreatePropertyRequest) toDomain() (domain.Property, error) {
	errs := domain.ValidationErrors{}
	landArea, ok := numfmt.ParseNumber(req.LandArea)
	if !ok {
		errs[domain.FieldLandArea] = "must be a number"
	}
	buildingArea, ok := numfmt.ParseNumber(req.BuildingArea)
	if !ok {
		errs[domain.FieldBuildingArea] = "must be a number"
	}
	if errs.HasErrors() {
		return domain.Property{}, &domain.ValidationError{Fields: errs}
	}

	p := domain.Property{
		Debitur:        req.Debitur,
		LandArea:       landArea,
		BuildingArea:   buildingArea,
		PhoneNumber:    req.PhoneNumber,
		PropertiesType: req.PropertiesType,
		ObjectType:     req.ObjectType,
		Location: domain.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			Address:   req.Location.Address,
		},
		Valuations: make([]domain.Valuation, 0, len(req.Valuations)),
	}
	for _, v := range req.Valuations {
		p.Valuations = append(p.Valuations, domain.Valuation{
			ValuationDate: v.ValuationDate,
			LandValue:     numfmt.ParseAmount(v.LandValue),
			BuildingValue: numfmt.ParseAmount(v.BuildingValue),
			TotalValue:    numfmt.ParseAmount(v.TotalValue),
			ReportNumber:  v.ReportNumber,
			Appraiser:     v.Appraiser,
		})
	}
	return p, nil
}

func toValuationDTO(v domain.Valuation) ValuationDTO {
	return ValuationDTO{
		ID:            v.ID,
		PropertyID:    v.PropertyID,
		ValuationDate: v.ValuationDate,
		LandValue:     v.LandValue,
		BuildingValue: v.BuildingValue,
		TotalValue:    v.TotalValue,
		ReportNumber:  v.ReportNumber,
		Appraiser:     v.Appraiser,
	}
}

func toValuationDTOs(valuations []domain.Valuation) []ValuationDTO {
	out := make([]ValuationDTO, len(valuations))
	for i, v := range valuations {
		out[i] = toValuationDTO(v)
	}
	return out
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:             p.ID,
		Debitur:        p.Debitur,
		LandArea:       p.LandArea,
		BuildingArea:   p.BuildingArea,
		PhoneNumber:    p.PhoneNumber,
		PropertiesType: p.PropertiesType,
		ObjectType:     p.ObjectType,
		Location: LocationDTO{
			ID:        p.Location.ID,
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
			Address:   p.Location.Address,
		},
		Valuations: toValuationDTOs(p.Valuations),
	}
	if !p.CreatedAt.IsZero() {
		resp.CreatedAt = &p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = &p.UpdatedAt
	}
	return resp
}

func toPaginatedPropertiesResponse(result *domain.PaginatedProperties) PaginatedPropertiesResponse {
	totalPages := pagination.TotalPages(result.TotalCount, result.ItemsPerPage)
	currentPage := result.CurrentPage
	if currentPage > totalPages {
		currentPage = totalPages
	}
	resp := PaginatedPropertiesResponse{
		Data:       make([]PropertyListItemResponse, len(result.Items)),
		Total:      result.TotalCount,
		Page:       result.CurrentPage,
		PerPage:    result.ItemsPerPage,
		TotalPages: totalPages,
		Pages:      pagination.Compute(totalPages, currentPage),
	}
	for i, item := range result.Items {
		resp.Data[i] = PropertyListItemResponse{
			ID:                item.ID,
			Debitur:           item.Debitur,
			PropertiesType:    item.PropertiesType,
			ObjectType:        item.ObjectType,
			PhoneNumber:       item.PhoneNumber,
			LandArea:          item.LandArea,
			BuildingArea:      item.BuildingArea,
			Address:           item.Address,
			Latitude:          item.Latitude,
			Longitude:         item.Longitude,
			ValuationsCount:   item.ValuationsCount,
			LastValuationDate: item.LastValuationDate,
			LastTotalValue:    item.LastTotalValue,
			LastReportNumber:  item.LastReportNumber,
			UpdatedAt:         item.UpdatedAt,
		}
	}
	return resp
}

func (o EditOpRequest) toDomain() editor.Op {
	return editor.Op{
		Kind:        o.Kind,
		ValuationID: o.ValuationID,
		Index:       o.Index,
		Field:       o.Field,
		Value:       o.Value,
	}
}

func toEditSessionResponse(sessionID string, view *editor.View) EditSessionResponse {
	resp := EditSessionResponse{
		SessionID:     sessionID,
		Merged:        toPropertyResponse(view.Merged),
		NewValuations: toValuationDTOs(view.NewValuations),
		Diff: EditDiffDTO{
			ValuationUpdates: make([]EntityUpdateDTO, len(view.Diff.ValuationUpdates)),
			NewValuations:    toValuationDTOs(view.Diff.NewValuations),
		},
		Errors: map[string]string(view.Errors),
		Dirty:  view.Dirty,
	}
	if resp.Errors == nil {
		resp.Errors = map[string]string{}
	}
	if u := view.Diff.PropertyUpdate; u != nil {
		resp.Diff.PropertyUpdate = &EntityUpdateDTO{ID: u.ID, Changes: u.Changes}
	}
	for i, u := range view.Diff.ValuationUpdates {
		resp.Diff.ValuationUpdates[i] = EntityUpdateDTO{ID: u.ID, Changes: u.Changes}
	}
	return resp
}

func toMapViewResponse(view *domain.MapView) MapViewResponse {
	resp := MapViewResponse{
		Clustered: view.Clustered,
		Precision: view.Precision,
		Markers:   make([]MapMarkerResponse, 0, len(view.Markers)),
		Clusters:  make([]MarkerClusterResponse, 0, len(view.Clusters)),
	}
	for _, m := range view.Markers {
		resp.Markers = append(resp.Markers, MapMarkerResponse{
			PropertyID:     m.PropertyID,
			LocationID:     m.LocationID,
			Latitude:       m.Latitude,
			Longitude:      m.Longitude,
			Geohash:        m.Geohash,
			Address:        m.Address,
			Debitur:        m.Debitur,
			PropertiesType: m.PropertiesType,
			LastTotalValue: m.LastTotalValue,
		})
	}
	for _, c := range view.Clusters {
		resp.Clusters = append(resp.Clusters, MarkerClusterResponse{
			Geohash:     c.Geohash,
			Latitude:    c.Latitude,
			Longitude:   c.Longitude,
			Count:       c.Count,
			PropertyIDs: c.PropertyIDs,
		})
	}
	return resp
}

func toImportReportResponse(report *domain.ImportReport) ImportReportResponse {
	resp := ImportReportResponse{
		FileName:        report.FileName,
		TotalRows:       report.TotalRows,
		Imported:        report.Imported,
		Failed:          len(report.Errors),
		CreatedIDs:      report.CreatedIDs,
		Errors:          make([]ImportRowErrorResponse, len(report.Errors)),
		UnmappedColumns: report.UnmappedColumns,
	}
	if resp.CreatedIDs == nil {
		resp.CreatedIDs = []int64{}
	}
	if resp.UnmappedColumns == nil {
		resp.UnmappedColumns = []string{}
	}
	for i, e := range report.Errors {
		resp.Errors[i] = ImportRowErrorResponse{Row: e.Row, Fields: e.Fields, Reason: e.Reason}
	}
	return resp
}

func toNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID.String(),
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		PropertyID: n.PropertyID,
		Broadcast:  n.UserID == nil,
		CreatedAt:  n.CreatedAt,
		ReadAt:     n.ReadAt,
	}
}

func toDashboardResponse(stats *domain.DashboardStats) DashboardResponse {
	resp := DashboardResponse{
		TotalProperties:     stats.TotalProperties,
		PropertiesByType:    stats.PropertiesByType,
		TotalValuations:     stats.TotalValuations,
		SumTotalValue:       stats.SumTotalValue,
		LatestValuations:    make([]LatestValuationResponse, len(stats.LatestValuations)),
		UnreadNotifications: stats.UnreadNotifications,
	}
	if resp.PropertiesByType == nil {
		resp.PropertiesByType = map[string]int64{}
	}
	for i, lv := range stats.LatestValuations {
		resp.LatestValuations[i] = LatestValuationResponse(lv)
	}
	return resp
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toRoleResponse(r domain.Role) RoleResponse {
	return RoleResponse(r)
}
