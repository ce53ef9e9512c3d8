package rest

import (
	"context"
	"io"
	"sync"

	"appraisal-portal/internal/adapters/notifier"
	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

var (
	adminID     = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	appraiserID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields port.Fields)             {}
func (nopLogger) Warn(msg string, fields port.Fields)             {}
func (nopLogger) Error(msg string, err error, fields port.Fields) {}
func (nopLogger) Debug(msg string, fields port.Fields)            {}
func (l nopLogger) WithFields(fields port.Fields) port.LoggerPort { return l }

type fakeValidator struct{}

func (fakeValidator) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	switch token {
	case "admin-token":
		return &domain.Claims{UserID: adminID, Email: "admin@example.com", Role: domain.RoleAdmin}, nil
	case "appraiser-token":
		return &domain.Claims{UserID: appraiserID, Email: "budi@example.com", Role: domain.RoleAppraiser}, nil
	}
	return nil, domain.ErrTokenInvalid
}

// fakeUseCases реализует все порты use case, нужные обработчикам
type fakeUseCases struct {
	property   *domain.Property
	created    domain.Property
	listResult *domain.PaginatedProperties
	listArgs   struct {
		filters       domain.PropertyFilters
		page, perPage int
	}
	importReq    domain.ImportRequest
	importBody   string
	exportCSV    string
	mapView      *domain.MapView
	view         *editor.View
	appliedOps   []editor.Op
	dashboard    *domain.DashboardStats
	notes        *domain.PaginatedNotifications
	readCalls    []uuid.UUID
	users        []domain.User
	roles        []domain.Role
	deletedUsers []uuid.UUID
	err          error
}

type createPropertyUC struct{ f *fakeUseCases }

func (u *createPropertyUC) Execute(ctx context.Context, p domain.Property) (*domain.Property, error) {
	if u.f.err != nil {
		return nil, u.f.err
	}
	u.f.created = p
	p.ID = 7
	return &p, nil
}

type listPropertiesUC struct{ f *fakeUseCases }

func (u *listPropertiesUC) Execute(ctx context.Context, filters domain.PropertyFilters, page, perPage int) (*domain.PaginatedProperties, error) {
	u.f.listArgs.filters = filters
	u.f.listArgs.page = page
	u.f.listArgs.perPage = perPage
	return u.f.listResult, u.f.err
}

type getPropertyUC struct{ f *fakeUseCases }

func (u *getPropertyUC) Execute(ctx context.Context, id int64) (*domain.Property, error) {
	if u.f.property == nil || u.f.property.ID != id {
		return nil, domain.ErrPropertyNotFound
	}
	return u.f.property, nil
}

type deleteUC struct{ f *fakeUseCases }

func (u *deleteUC) Execute(ctx context.Context, id int64) error { return u.f.err }

type importUC struct{ f *fakeUseCases }

func (u *importUC) Execute(ctx context.Context, req domain.ImportRequest, file io.Reader) (*domain.ImportReport, error) {
	body, _ := io.ReadAll(file)
	u.f.importReq = req
	u.f.importBody = string(body)
	if u.f.err != nil {
		return nil, u.f.err
	}
	return &domain.ImportReport{
		FileName:   req.FileName,
		TotalRows:  2,
		Imported:   1,
		CreatedIDs: []int64{10},
		Errors:     []domain.ImportRowError{{Row: 2, Fields: domain.ValidationErrors{"debitur": "required"}}},
	}, nil
}

type exportUC struct{ f *fakeUseCases }

func (u *exportUC) Execute(ctx context.Context, filters domain.PropertyFilters, w io.Writer) (int, error) {
	if u.f.err != nil {
		return 0, u.f.err
	}
	_, err := io.WriteString(w, u.f.exportCSV)
	return 1, err
}

type markersUC struct{ f *fakeUseCases }

func (u *markersUC) Execute(ctx context.Context, bounds domain.Bounds, zoom int) (*domain.MapView, error) {
	return u.f.mapView, u.f.err
}

type startSessionUC struct{ f *fakeUseCases }

func (u *startSessionUC) Execute(ctx context.Context, propertyID int64, ownerID uuid.UUID) (uuid.UUID, *editor.View, error) {
	if u.f.err != nil {
		return uuid.Nil, nil, u.f.err
	}
	return uuid.MustParse("33333333-3333-3333-3333-333333333333"), u.f.view, nil
}

type getSessionUC struct{ f *fakeUseCases }

func (u *getSessionUC) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*editor.View, error) {
	return u.f.view, u.f.err
}

type applyOpsUC struct{ f *fakeUseCases }

func (u *applyOpsUC) Execute(ctx context.Context, sessionID, ownerID uuid.UUID, ops []editor.Op) (*editor.View, error) {
	u.f.appliedOps = ops
	if u.f.err != nil {
		return nil, u.f.err
	}
	return u.f.view, nil
}

type submitUC struct{ f *fakeUseCases }

func (u *submitUC) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) (*domain.Property, error) {
	if u.f.err != nil {
		return nil, u.f.err
	}
	return u.f.property, nil
}

type discardUC struct{ f *fakeUseCases }

func (u *discardUC) Execute(ctx context.Context, sessionID, ownerID uuid.UUID) error { return u.f.err }

type listNotificationsUC struct{ f *fakeUseCases }

func (u *listNotificationsUC) Execute(ctx context.Context, userID uuid.UUID, page, perPage int) (*domain.PaginatedNotifications, error) {
	return u.f.notes, u.f.err
}

type markReadUC struct{ f *fakeUseCases }

func (u *markReadUC) Execute(ctx context.Context, notificationID, userID uuid.UUID) error {
	u.f.readCalls = append(u.f.readCalls, notificationID)
	return u.f.err
}

type dashboardUC struct{ f *fakeUseCases }

func (u *dashboardUC) Execute(ctx context.Context, userID uuid.UUID) (*domain.DashboardStats, error) {
	return u.f.dashboard, u.f.err
}

type createUserUC struct{ f *fakeUseCases }

func (u *createUserUC) Execute(ctx context.Context, email, fullName, password, role string) (*domain.User, error) {
	if u.f.err != nil {
		return nil, u.f.err
	}
	return &domain.User{ID: uuid.New(), Email: email, FullName: fullName, Role: role}, nil
}

type listUsersUC struct{ f *fakeUseCases }

func (u *listUsersUC) Execute(ctx context.Context) ([]domain.User, error) { return u.f.users, u.f.err }

type assignRoleUC struct{ f *fakeUseCases }

func (u *assignRoleUC) Execute(ctx context.Context, userID uuid.UUID, role string) error { return u.f.err }

type deleteUserUC struct{ f *fakeUseCases }

func (u *deleteUserUC) Execute(ctx context.Context, userID uuid.UUID) error {
	u.f.deletedUsers = append(u.f.deletedUsers, userID)
	return u.f.err
}

type listRolesUC struct{ f *fakeUseCases }

func (u *listRolesUC) Execute(ctx context.Context) ([]domain.Role, error) { return u.f.roles, u.f.err }

type createRoleUC struct{ f *fakeUseCases }

func (u *createRoleUC) Execute(ctx context.Context, name, description string) (*domain.Role, error) {
	if u.f.err != nil {
		return nil, u.f.err
	}
	return &domain.Role{ID: 3, Name: name, Description: description}, nil
}

// fakeHub отдает один канал на всех клиентов
type fakeHub struct {
	mu      sync.Mutex
	ch      notifier.ClientChannel
	added   chan struct{}
	removed int
}

func newFakeHub() *fakeHub {
	return &fakeHub{ch: make(notifier.ClientChannel, 4), added: make(chan struct{}, 1)}
}

func (h *fakeHub) AddClient(userID string) notifier.ClientChannel {
	h.added <- struct{}{}
	return h.ch
}

func (h *fakeHub) RemoveClient(userID string, ch notifier.ClientChannel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed++
}

func newTestHandlers(f *fakeUseCases, hub SSEHub) Handlers {
	return Handlers{
		Properties: NewPropertyHandler(
			&createPropertyUC{f}, &listPropertiesUC{f}, &getPropertyUC{f}, &deleteUC{f}, &deleteUC{f},
			&importUC{f}, &exportUC{f}, &markersUC{f},
		),
		EditSessions: NewEditSessionHandler(
			&startSessionUC{f}, &getSessionUC{f}, &applyOpsUC{f}, &submitUC{f}, &discardUC{f},
		),
		Notifications: NewNotificationHandler(&listNotificationsUC{f}, &markReadUC{f}, &dashboardUC{f}, hub),
		Admin: NewAdminHandler(
			&createUserUC{f}, &listUsersUC{f}, &assignRoleUC{f}, &deleteUserUC{f}, &listRolesUC{f}, &createRoleUC{f},
		),
	}
}
