package memory

import (
	"context"
	"sync"
	"time"

	"appraisal-portal/internal/core/domain"
	"appraisal-portal/internal/core/editor"
	"appraisal-portal/internal/core/port"

	"github.com/google/uuid"
)

type editSession struct {
	mu       sync.Mutex
	ownerID  uuid.UUID
	rec      *editor.Reconciler
	lastSeen time.Time
}

// EditSessionStore держит открытые сессии редактирования в памяти процесса.
// Операции одной сессии выполняются последовательно, разные сессии не блокируют друг друга.
type EditSessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*editSession
	ttl      time.Duration
	now      func() time.Time
	logger   port.LoggerPort
}

func NewEditSessionStore(ttl time.Duration, logger port.LoggerPort) *EditSessionStore {
	return &EditSessionStore{
		sessions: make(map[uuid.UUID]*editSession),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.WithFields(port.Fields{"component": "EditSessionStore"}),
	}
}

func (s *EditSessionStore) Create(ctx context.Context, ownerID uuid.UUID, base domain.Property) (uuid.UUID, error) {
	id := uuid.New()
	sess := &editSession{
		ownerID:  ownerID,
		rec:      editor.New(base),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return id, nil
}

// With вызывает fn под замком сессии. Чужая или истекшая сессия не отличается от отсутствующей.
func (s *EditSessionStore) With(ctx context.Context, id, ownerID uuid.UUID, fn func(r *editor.Reconciler) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || sess.ownerID != ownerID {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	if s.expired(sess, now) {
		return domain.ErrSessionNotFound
	}
	sess.lastSeen = now
	return fn(sess.rec)
}

func (s *EditSessionStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.ownerID != ownerID {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *EditSessionStore) expired(sess *editSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

// Sweep удаляет сессии, к которым не обращались дольше ttl. Возвращает число удаленных.
func (s *EditSessionStore) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		// занятую сессию не трогаем, ее проверит следующий проход
		if !sess.mu.TryLock() {
			continue
		}
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}

// Len - число открытых сессий
func (s *EditSessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run периодически вызывает Sweep, пока не отменен ctx.
func (s *EditSessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Info("Edit session sweeper started", port.Fields{"interval": interval.String(), "ttl": s.ttl.String()})
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Edit session sweeper stopped", nil)
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.logger.Info("Expired edit sessions removed", port.Fields{"removed": removed, "open": s.Len()})
			}
		}
	}
}
