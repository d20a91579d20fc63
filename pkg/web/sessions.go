package web

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

// ControllerFactory builds and initializes the controller of a new shopper session
type ControllerFactory func(ctx context.Context, sessionID string, notifier storefront.Notifier) *storefront.Controller

const (
	DefaultIdleTimeout = 2 * time.Hour
	DefaultMaxSessions = 10000
)

type session struct {
	controller *storefront.Controller
	inbox      *Inbox
	ready      chan struct{} // closed once controller is set
	lastSeen   time.Time     // guarded by Sessions.mu
}

// Sessions maps shopper session ids to their controllers. Sessions idle for
// longer than the idle timeout are dropped, and the least recently seen one
// is dropped when the cap is reached. Persisted scopes are keyed by id, so a
// returning cookie rebinds to its token, user and cart on the Redis and
// Postgres backends.
type Sessions struct {
	factory     ControllerFactory
	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// SessionsOption customizes Sessions
type SessionsOption func(*Sessions)

func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) { s.idleTimeout = d }
}

func WithMaxSessions(n int) SessionsOption {
	return func(s *Sessions) { s.maxSessions = n }
}

func withSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(factory ControllerFactory, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		factory:     factory,
		idleTimeout: DefaultIdleTimeout,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session for id, creating it when id is unknown or malformed.
// The returned id is the one the client must keep using. Only callers asking
// for the same new id wait for its controller to initialize.
func (s *Sessions) Get(ctx context.Context, id string) (string, *session) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	s.mu.Lock()
	now := s.now()
	if sess, ok := s.sessions[id]; ok && now.Sub(sess.lastSeen) <= s.idleTimeout {
		sess.lastSeen = now
		s.mu.Unlock()
		<-sess.ready
		return id, sess
	}
	s.evictLocked(now)
	sess := &session{inbox: NewInbox(inboxSize), ready: make(chan struct{}), lastSeen: now}
	s.sessions[id] = sess
	s.mu.Unlock()

	// The session outlives this request, so its initial fetch must not be cut short with it.
	sess.controller = s.factory(context.WithoutCancel(ctx), id, sess.inbox)
	close(sess.ready)
	return id, sess
}

// evictLocked drops idle sessions, then the least recently seen ones until a
// new session fits under the cap.
func (s *Sessions) evictLocked(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idleTimeout {
			delete(s.sessions, id)
		}
	}
	for s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		var oldestID string
		var oldest time.Time
		for id, sess := range s.sessions {
			if oldestID == "" || sess.lastSeen.Before(oldest) {
				oldestID, oldest = id, sess.lastSeen
			}
		}
		delete(s.sessions, oldestID)
	}
}

// Len reports the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// NewControllerFactory wires each session to its own API client and its own
// storage namespace, then initializes the controller. A catalog failure at
// this point is logged and the session still starts.
func NewControllerFactory(apiBaseURL string, timeout time.Duration, stores *storage.Factory, opts ...storefront.Option) ControllerFactory {
	return func(ctx context.Context, sessionID string, notifier storefront.Notifier) *storefront.Controller {
		scopes := stores.Scopes(sessionID)
		client := api.NewClient(apiBaseURL, scopes.Token, api.WithTimeout(timeout))

		ctrlOpts := append([]storefront.Option{storefront.WithNotifier(notifier)}, opts...)
		ctrl := storefront.New(client, scopes, ctrlOpts...)
		if err := ctrl.Initialize(ctx); err != nil {
			log.Printf("Session %s started without a catalog: %v", sessionID, err)
		}
		return ctrl
	}
}
