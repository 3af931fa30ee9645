package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownChat     = errors.New("unknown chat id")
	ErrUnknownAsset    = errors.New("unknown asset id")
	ErrTooManySessions = errors.New("too many active sessions")
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one recorded message in a session's history
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is one ongoing conversation bound to a single asset
type Session struct {
	ID      string
	AssetID string
	Turns   []Turn
}

// SessionStore holds conversation sessions. Implementations must be safe
// for concurrent use.
type SessionStore interface {
	// Create mints a new session bound to the asset
	Create(ctx context.Context, assetID string) (Session, error)
	// Get returns a copy of the session, or ErrUnknownChat
	Get(ctx context.Context, id string) (Session, error)
	// AppendTurns appends all given turns to the session's history in one
	// operation, so a message exchange records both turns or neither
	AppendTurns(ctx context.Context, id string, turns ...Turn) error
	// Len returns the number of live sessions
	Len() int
}

const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1024
)

type sessionEntry struct {
	session    Session
	lastActive time.Time
}

// InMemorySessionStore is a mutex-guarded process-local store with TTL
// expiry and a capacity bound. Expired entries are swept lazily on every
// create and lookup.
type InMemorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func NewInMemorySessionStore(ttl time.Duration, maxSessions int) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}

	return &InMemorySessionStore{
		sessions:    make(map[string]*sessionEntry),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

func (s *InMemorySessionStore) Create(ctx context.Context, assetID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if len(s.sessions) >= s.maxSessions {
		return Session{}, ErrTooManySessions
	}

	session := Session{
		ID:      uuid.New().String(),
		AssetID: assetID,
	}
	s.sessions[session.ID] = &sessionEntry{
		session:    session,
		lastActive: s.now(),
	}

	return session, nil
}

func (s *InMemorySessionStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.getLocked(id)
	if err != nil {
		return Session{}, err
	}

	entry.lastActive = s.now()
	return copySession(entry.session), nil
}

func (s *InMemorySessionStore) AppendTurns(ctx context.Context, id string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.getLocked(id)
	if err != nil {
		return err
	}

	entry.session.Turns = append(entry.session.Turns, turns...)
	entry.lastActive = s.now()
	return nil
}

func (s *InMemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	return len(s.sessions)
}

// getLocked resolves a live entry, treating expired ones as unknown
func (s *InMemorySessionStore) getLocked(id string) (*sessionEntry, error) {
	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownChat
	}
	if s.expired(entry) {
		delete(s.sessions, id)
		return nil, ErrUnknownChat
	}
	return entry, nil
}

func (s *InMemorySessionStore) expired(entry *sessionEntry) bool {
	return s.now().Sub(entry.lastActive) > s.ttl
}

func (s *InMemorySessionStore) sweepLocked() {
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
		}
	}
}

func copySession(session Session) Session {
	turns := make([]Turn, len(session.Turns))
	copy(turns, session.Turns)
	session.Turns = turns
	return session
}
