package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"

	"github.com/google/uuid"
)

// fakePropertyRepo хранит объекты в памяти и записывает вызовы сохранения правок.
type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[int64]domain.Property
	nextID     int64
	markers    []domain.MapMarker
	export     []domain.PropertyListItem

	calls []string
	// failOn - имя вызова, который вернет ошибку ("property", "valuation:12", "create")
	failOn    string
	createErr error
}

func newFakePropertyRepo(props ...domain.Property) *fakePropertyRepo {
	r := &fakePropertyRepo{properties: make(map[int64]domain.Property), nextID: 100}
	for _, p := range props {
		r.properties[p.ID] = p.Clone()
	}
	return r
}

func (r *fakePropertyRepo) Create(ctx context.Context, p *domain.Property) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return 0, r.createErr
	}
	r.nextID++
	cp := p.Clone()
	cp.ID = r.nextID
	r.properties[cp.ID] = cp
	r.calls = append(r.calls, "create")
	return cp.ID, nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.properties[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	cp := p.Clone()
	return &cp, nil
}

func (r *fakePropertyRepo) List(ctx context.Context, f domain.PropertyFilters, limit, offset int) (*domain.PaginatedProperties, error) {
	return &domain.PaginatedProperties{TotalCount: int64(len(r.properties)), CurrentPage: offset/limit + 1, ItemsPerPage: limit}, nil
}

func (r *fakePropertyRepo) ListForExport(ctx context.Context, f domain.PropertyFilters, limit int) ([]domain.PropertyListItem, error) {
	return r.export, nil
}

func (r *fakePropertyRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.properties[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	delete(r.properties, id)
	return nil
}

func (r *fakePropertyRepo) DeleteValuation(ctx context.Context, id int64) error {
	return nil
}

func (r *fakePropertyRepo) FindMarkers(ctx context.Context, b domain.Bounds, limit int) ([]domain.MapMarker, error) {
	out := make([]domain.MapMarker, len(r.markers))
	copy(out, r.markers)
	return out, nil
}

func (r *fakePropertyRepo) UpdateProperty(ctx context.Context, id int64, changes domain.ChangeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "property")
	if r.failOn == "property" {
		return errors.New("db down")
	}
	p := r.properties[id]
	editor.ApplyPropertyChanges(&p, changes)
	r.properties[id] = p
	return nil
}

func (r *fakePropertyRepo) UpdateValuation(ctx context.Context, id int64, changes domain.ChangeSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := fmt.Sprintf("valuation:%d", id)
	r.calls = append(r.calls, name)
	if r.failOn == name {
		return errors.New("db down")
	}
	for pid, p := range r.properties {
		for i := range p.Valuations {
			if p.Valuations[i].ID == id {
				editor.ApplyValuationChanges(&p.Valuations[i], changes)
				r.properties[pid] = p
				return nil
			}
		}
	}
	return domain.ErrValuationNotFound
}

func (r *fakePropertyRepo) CreateValuations(ctx context.Context, valuations []domain.Valuation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "create_valuations")
	if r.failOn == "create_valuations" {
		return errors.New("db down")
	}
	for _, v := range valuations {
		p := r.properties[v.PropertyID]
		r.nextID++
		v.ID = r.nextID
		p.Valuations = append(p.Valuations, v)
		r.properties[v.PropertyID] = p
	}
	return nil
}

// fakeSessionStore - сессии без срока жизни.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*fakeSession
}

type fakeSession struct {
	owner uuid.UUID
	r     *editor.Reconciler
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*fakeSession)}
}

func (s *fakeSessionStore) Create(ctx context.Context, owner uuid.UUID, base domain.Property) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.sessions[id] = &fakeSession{owner: owner, r: editor.New(base)}
	return id, nil
}

func (s *fakeSessionStore) With(ctx context.Context, id, owner uuid.UUID, fn func(r *editor.Reconciler) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return domain.ErrSessionNotFound
	}
	return fn(sess.r)
}

func (s *fakeSessionStore) Delete(ctx context.Context, id, owner uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type fakePublisher struct {
	saved    []domain.ValuationSavedEvent
	imported []domain.ImportCompletedEvent
	err      error
}

func (p *fakePublisher) PublishValuationSaved(ctx context.Context, e domain.ValuationSavedEvent) error {
	p.saved = append(p.saved, e)
	return p.err
}

func (p *fakePublisher) PublishImportCompleted(ctx context.Context, e domain.ImportCompletedEvent) error {
	p.imported = append(p.imported, e)
	return p.err
}

type fakeSheetReader struct {
	sheet *domain.Sheet
	err   error
}

func (f *fakeSheetReader) Read(fileName string, r io.Reader) (*domain.Sheet, error) {
	return f.sheet, f.err
}

type fakeNotificationRepo struct {
	saved  []domain.Notification
	unread int64
	err    error
}

func (f *fakeNotificationRepo) Save(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *n)
	return nil
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedNotifications, error) {
	return &domain.PaginatedNotifications{Items: f.saved, TotalCount: int64(len(f.saved))}, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return f.err
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return f.unread, f.err
}

type fakeNotifier struct {
	sent []domain.Notification
}

func (f *fakeNotifier) Notify(n domain.Notification) {
	f.sent = append(f.sent, n)
}

type fakeStatsRepo struct {
	stats domain.DashboardStats
}

func (f *fakeStatsRepo) GetDashboardStats(ctx context.Context, latestLimit int) (*domain.DashboardStats, error) {
	s := f.stats
	return &s, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return domain.ErrEmailInUse
		}
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	f.users[id] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeRoleRepo struct {
	roles []domain.Role
}

func (f *fakeRoleRepo) List(ctx context.Context) ([]domain.Role, error) {
	return f.roles, nil
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *domain.Role) error {
	for _, r := range f.roles {
		if r.Name == role.Name {
			return domain.ErrRoleExists
		}
	}
	role.ID = int64(len(f.roles) + 1)
	f.roles = append(f.roles, *role)
	return nil
}

func (f *fakeRoleRepo) Exists(ctx context.Context, name string) (bool, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}
