// Package rom manages ROM sessions on top of file-backed dataspaces.
//
// A session owns exactly one dataspace. The dataspace refers back to its
// session by ID only, and closing the session releases the host descriptor
// behind the dataspace capability.
package rom

import (
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/romd/internal/domain/dataspace"
	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/capability"
	"github.com/GriffinCanCode/AgentOS/romd/internal/shared/id"
)

var ErrSessionNotFound = errors.New("session not found")

// Constructor builds file-backed dataspaces from session arguments.
type Constructor interface {
	Construct(args string) (*dataspace.Component, error)
}

// Releaser releases the descriptor behind a capability.
type Releaser interface {
	Release(c capability.Capability) error
}

// Gauge tracks the number of open sessions.
type Gauge interface {
	Set(float64)
}

// Session is an open ROM session.
type Session struct {
	ID        id.SessionID
	Dataspace *dataspace.Component
	OpenedAt  time.Time
}

// Service opens and closes ROM sessions.
type Service struct {
	constructor Constructor
	releaser    Releaser
	logger      *zap.Logger
	gauge       Gauge

	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
}

// NewService creates a session service.
func NewService(constructor Constructor, releaser Releaser, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		constructor: constructor,
		releaser:    releaser,
		logger:      logger.Named("rom"),
		sessions:    make(map[id.SessionID]*Session),
	}
}

// WithGauge reports the session count to g
func (s *Service) WithGauge(g Gauge) *Service {
	s.gauge = g
	return s
}

// Open constructs the dataspace named by args and records a new session
// owning it. Failures are always dataspace.ErrServiceDenied.
func (s *Service) Open(args string) (*Session, error) {
	ds, err := s.constructor.Construct(args)
	if err != nil {
		return nil, err
	}

	sid := id.NewSessionID()
	sess := &Session{
		ID:        sid,
		Dataspace: ds.WithOwner(dataspace.OwnerID(sid)),
		OpenedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[sid] = sess
	s.updateGauge()
	s.mu.Unlock()

	s.logger.Info("ROM session opened",
		zap.String("session", sid.String()),
		zap.String("filename", ds.Filename().String()),
		zap.Uint64("size", ds.Size()),
	)
	return sess, nil
}

// Get returns an open session.
func (s *Service) Get(sid id.SessionID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sid]
	return sess, ok
}

// Dataspace returns the dataspace of an open session.
func (s *Service) Dataspace(sid id.SessionID) (*dataspace.Component, error) {
	sess, ok := s.Get(sid)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Dataspace, nil
}

// List returns all open sessions, oldest first.
func (s *Service) List() []*Session {
	s.mu.RLock()
	list := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].OpenedAt.Equal(list[j].OpenedAt) {
			return list[i].OpenedAt.Before(list[j].OpenedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close ends a session and releases its dataspace.
func (s *Service) Close(sid id.SessionID) error {
	s.mu.Lock()
	sess, ok := s.sessions[sid]
	if ok {
		delete(s.sessions, sid)
		s.updateGauge()
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	if err := s.releaser.Release(sess.Dataspace.Capability()); err != nil {
		s.logger.Error("failed to release dataspace",
			zap.String("session", sid.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("ROM session closed", zap.String("session", sid.String()))
	return nil
}

// CloseAll ends every open session.
func (s *Service) CloseAll() error {
	var errs []error
	for _, sess := range s.List() {
		if err := s.Close(sess.ID); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// updateGauge must be called with mu held.
func (s *Service) updateGauge() {
	if s.gauge != nil {
		s.gauge.Set(float64(len(s.sessions)))
	}
}
