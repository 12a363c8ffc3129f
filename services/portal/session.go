package portal

import (
	"context"
	"sync"
	"time"

	sessionRepo "github.com/SNS-EUGENE/sto-mediacenter-sub001/database/repository/session"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/models"

	"go.uber.org/zap"
)

// SessionStore owns the authenticated portal session. The in-memory copy is
// authoritative while the process is alive; the durable copy is a cold-start
// fallback only.
type SessionStore interface {
	Set(session *models.PortalSession)
	Current() *models.PortalSession
	IsValid() bool
	Invalidate()
	// Persist writes the current session through to durable storage.
	// Best-effort: a persistence failure is logged and never fails login.
	Persist(ctx context.Context)
	// LoadFromDurableStore seeds the in-memory session from storage at
	// startup. An expired or missing stored session leaves the store empty.
	LoadFromDurableStore(ctx context.Context) error
}

// DefaultSessionStore is the production implementation.
type DefaultSessionStore struct {
	mu      sync.RWMutex
	current *models.PortalSession

	repo   sessionRepo.Repository
	logger *zap.Logger
}

func NewDefaultSessionStore(repo sessionRepo.Repository, logger *zap.Logger) *DefaultSessionStore {
	return &DefaultSessionStore{repo: repo, logger: logger}
}

func (s *DefaultSessionStore) Set(session *models.PortalSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = session
}

func (s *DefaultSessionStore) Current() *models.PortalSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// IsValid is true iff a session exists and has not expired.
func (s *DefaultSessionStore) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Valid(time.Now())
}

func (s *DefaultSessionStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

func (s *DefaultSessionStore) Persist(ctx context.Context) {
	session := s.Current()
	if session == nil || s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, session); err != nil {
		s.logger.Warn("failed to persist portal session, continuing with in-memory copy",
			zap.Error(err))
	}
}

func (s *DefaultSessionStore) LoadFromDurableStore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	session, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if !session.Valid(time.Now()) {
		if session != nil {
			s.logger.Info("stored portal session has expired, login required")
		}
		return nil
	}
	s.Set(session)
	s.logger.Info("recovered portal session from durable store",
		zap.Time("expiresAt", session.ExpiresAt))
	return nil
}
