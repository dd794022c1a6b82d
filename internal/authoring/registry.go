package authoring

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Flow is the behaviour shared by both flow kinds.
type Flow interface {
	Kind() Kind
	Step() Step
	Cancel()
}

// Session is one in-progress flow owned by an artist and bound to a song.
// Callers hold the session lock while acting on the flow.
type Session struct {
	ID       string
	ArtistID string
	SongID   string

	mu   sync.Mutex
	flow Flow
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Flow returns the session's flow. The caller must hold the lock.
func (s *Session) Flow() Flow { return s.flow }

// SplitSet returns the split-set flow, or nil for a conditional session.
func (s *Session) SplitSet() *SplitSetFlow {
	f, _ := s.flow.(*SplitSetFlow)
	return f
}

// Conditional returns the conditional flow, or nil for a split-set session.
func (s *Session) Conditional() *ConditionalFlow {
	f, _ := s.flow.(*ConditionalFlow)
	return f
}

// Registry keeps sessions in memory. A session that sees no activity for the
// configured TTL expires and its flow is cancelled.
type Registry struct {
	sessions *cache.Cache
	logger   *slog.Logger
}

// NewRegistry returns a registry whose sessions expire after ttl of inactivity.
func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		sessions: cache.New(ttl, ttl/2),
		logger:   logger,
	}
	r.sessions.OnEvicted(r.evicted)
	return r
}

func (r *Registry) evicted(id string, v interface{}) {
	s, ok := v.(*Session)
	if !ok {
		return
	}
	s.Lock()
	step := s.flow.Step()
	s.flow.Cancel()
	s.Unlock()
	r.logger.Debug("authoring session closed",
		"session_id", id,
		"song_id", s.SongID,
		"kind", s.flow.Kind(),
		"step", step,
	)
}

// Start registers flow under a new session id.
func (r *Registry) Start(artistID, songID string, flow Flow) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		ArtistID: artistID,
		SongID:   songID,
		flow:     flow,
	}
	r.sessions.Set(s.ID, s, cache.DefaultExpiration)
	r.logger.Debug("authoring session started", "session_id", s.ID, "song_id", songID, "kind", flow.Kind())
	return s
}

// Get returns the session and extends its lifetime. Sessions owned by another
// artist are reported as not found.
func (r *Registry) Get(artistID, id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	if s.ArtistID != artistID {
		return nil, ErrSessionNotFound
	}
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Close removes the session, cancelling its flow if it is still open.
func (r *Registry) Close(id string) {
	r.sessions.Delete(id)
}

// Cancel closes a session owned by artistID.
func (r *Registry) Cancel(artistID, id string) error {
	if _, err := r.Get(artistID, id); err != nil {
		return err
	}
	r.Close(id)
	return nil
}

// Len is the number of live sessions, including expired ones not yet swept.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
