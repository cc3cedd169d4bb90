package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/utils"
	pkgjwt "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/jwt"
)

// SessionContextKey is the key used to store the web session in Gin context
const SessionContextKey = "web_session"

// touchInterval bounds how often a session's sliding expiry is written
const touchInterval = time.Minute

// DeviceMeta describes where a new session was opened from
type DeviceMeta struct {
	Device utils.DeviceInfo
	IP     string
}

// SessionInfo is one of a user's active browser sessions
type SessionInfo struct {
	ID          string    `json:"id"`
	DeviceType  string    `json:"deviceType"`
	DeviceLabel string    `json:"deviceLabel"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
	Current     bool      `json:"current"`
}

// SessionBackend stores web sessions
type SessionBackend interface {
	Create(ctx context.Context, meta DeviceMeta, expiresAt time.Time) (uuid.UUID, error)
	Active(ctx context.Context, id uuid.UUID) (bool, error)
	Storage(id uuid.UUID) session.Storage
	Touch(ctx context.Context, id uuid.UUID, expiresAt time.Time) error
	ListForUser(ctx context.Context, userID string) ([]SessionInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// WebSession is what handlers get for the current browser
type WebSession struct {
	ID     string
	Store  *session.Store
	Toasts *notify.Queue
}

// SessionOptions configures a SessionManager
type SessionOptions struct {
	CookieName   string
	CookieSecure bool
	Store        session.Options
	Logger       *logrus.Logger
}

type cachedSession struct {
	store     *session.Store
	lastSeen  time.Time
	lastTouch time.Time
}

// SessionManager binds a session.Store to every browser through a signed
// cookie. Stores are cached in process and rebuilt from the backend after a
// restart.
type SessionManager struct {
	backend SessionBackend
	jwt     *pkgjwt.Service
	client  *api.Client
	hub     *notify.Hub
	opts    SessionOptions
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*cachedSession
	onLogout []func(sessionID string)
}

// NewSessionManager creates a session manager
func NewSessionManager(backend SessionBackend, jwtService *pkgjwt.Service, client *api.Client, hub *notify.Hub, opts SessionOptions) *SessionManager {
	if opts.CookieName == "" {
		opts.CookieName = "homerent_session"
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Store.Logger == nil {
		opts.Store.Logger = opts.Logger
	}
	return &SessionManager{
		backend:  backend,
		jwt:      jwtService,
		client:   client,
		hub:      hub,
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*cachedSession),
	}
}

// OnLogout registers fn to run whenever a browser session signs out
func (m *SessionManager) OnLogout(fn func(sessionID string)) {
	m.mu.Lock()
	m.onLogout = append(m.onLogout, fn)
	m.mu.Unlock()
}

// Handler attaches the browser's session to the request, opening a new
// anonymous one when the cookie is missing, invalid or expired
func (m *SessionManager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, ok := m.resume(c)
		if !ok {
			var err error
			id, err = m.open(c)
			if err != nil {
				m.logger.WithError(err).Error("Failed to open web session")
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"error":   "session_unavailable",
					"message": "Could not start your session. Please try again.",
					"code":    "SESSION_UNAVAILABLE",
				})
				c.Abort()
				return
			}
		}

		store, touch := m.storeFor(ctx, id)
		if touch {
			m.touch(c, id, store)
		}

		c.Set(SessionContextKey, &WebSession{
			ID:     id.String(),
			Store:  store,
			Toasts: m.hub.For(id.String()),
		})
		c.Next()
	}
}

func (m *SessionManager) resume(c *gin.Context) (uuid.UUID, bool) {
	cookie, err := c.Cookie(m.opts.CookieName)
	if err != nil || cookie == "" {
		return uuid.Nil, false
	}

	claims, err := m.jwt.ValidateSessionToken(cookie)
	if err != nil {
		m.logger.WithError(err).Debug("Ignoring invalid session cookie")
		return uuid.Nil, false
	}

	m.mu.Lock()
	_, cached := m.sessions[claims.SessionID]
	m.mu.Unlock()
	if cached {
		return claims.SessionID, true
	}

	active, err := m.backend.Active(c.Request.Context(), claims.SessionID)
	if err != nil {
		m.logger.WithError(err).WithField("session_id", claims.SessionID).Warn("Failed to look up web session")
		return uuid.Nil, false
	}
	return claims.SessionID, active
}

func (m *SessionManager) open(c *gin.Context) (uuid.UUID, error) {
	meta := DeviceMeta{
		Device: utils.ParseUserAgent(c.GetHeader("User-Agent")),
		IP:     utils.GetRealIP(c),
	}
	id, err := m.backend.Create(c.Request.Context(), meta, m.now().Add(m.jwt.SessionExpiry()))
	if err != nil {
		return uuid.Nil, err
	}
	if err := m.IssueCookie(c, id.String(), nil); err != nil {
		return uuid.Nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"session_id": id,
		"device":     meta.Device.Label(),
		"ip":         meta.IP,
	}).Debug("Opened web session")
	return id, nil
}

// storeFor returns the cached store for id, building and initialising it on
// first use. touch reports whether the sliding expiry is due.
func (m *SessionManager) storeFor(ctx context.Context, id uuid.UUID) (*session.Store, bool) {
	now := m.now()

	m.mu.Lock()
	entry, ok := m.sessions[id]
	if ok {
		entry.lastSeen = now
		touch := now.Sub(entry.lastTouch) >= touchInterval
		if touch {
			entry.lastTouch = now
		}
		m.mu.Unlock()
		return entry.store, touch
	}
	m.mu.Unlock()

	store := session.New(m.client, m.backend.Storage(id), m.opts.Store)
	if err := store.Init(ctx); err != nil {
		m.logger.WithError(err).WithField("session_id", id).Warn("Failed to restore web session")
	}
	sid := id.String()
	store.OnLogout(func() { m.loggedOut(sid) })

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have raced us here
	if existing, ok := m.sessions[id]; ok {
		existing.lastSeen = now
		return existing.store, false
	}
	m.sessions[id] = &cachedSession{store: store, lastSeen: now, lastTouch: now}
	return store, false
}

func (m *SessionManager) touch(c *gin.Context, id uuid.UUID, store *session.Store) {
	expiresAt := m.now().Add(m.jwt.SessionExpiry())
	if err := m.backend.Touch(c.Request.Context(), id, expiresAt); err != nil {
		m.logger.WithError(err).WithField("session_id", id).Warn("Failed to extend web session")
		return
	}
	if err := m.IssueCookie(c, id.String(), store.User()); err != nil {
		m.logger.WithError(err).Warn("Failed to refresh session cookie")
	}
}

// IssueCookie writes a fresh session cookie. user may be nil.
func (m *SessionManager) IssueCookie(c *gin.Context, sessionID string, user *models.User) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return err
	}

	var userID, role string
	if user != nil {
		userID, role = user.ID, string(user.Role)
	}
	token, err := m.jwt.GenerateSessionToken(id, userID, role)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.opts.CookieName, token, int(m.jwt.SessionExpiry().Seconds()), "/", "", m.opts.CookieSecure, true)
	return nil
}

// ListForUser returns the user's active sessions, flagging currentID
func (m *SessionManager) ListForUser(ctx context.Context, userID, currentID string) ([]SessionInfo, error) {
	list, err := m.backend.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Current = list[i].ID == currentID
	}
	return list, nil
}

// Revoke ends another browser session of the same user
func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return err
	}
	if err := m.backend.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.loggedOut(sessionID)
	return nil
}

func (m *SessionManager) loggedOut(sessionID string) {
	m.mu.Lock()
	hooks := append([]func(string){}, m.onLogout...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(sessionID)
	}
}

// CloseIdle forgets cached stores not used for maxIdle. They are rebuilt from
// the backend on the next request.
func (m *SessionManager) CloseIdle(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	var dropped []uuid.UUID
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			dropped = append(dropped, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range dropped {
		m.hub.Drop(id.String())
	}
	return len(dropped)
}

// Len returns the number of cached stores
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// GetWebSession retrieves the web session from Gin context
func GetWebSession(c *gin.Context) (*WebSession, bool) {
	value, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, false
	}

	ws, ok := value.(*WebSession)
	return ws, ok
}

// MustGetWebSession retrieves the web session or panics (use only after Handler)
func MustGetWebSession(c *gin.Context) *WebSession {
	ws, ok := GetWebSession(c)
	if !ok {
		panic("web session not found - ensure SessionManager.Handler is applied")
	}
	return ws
}

// GuardState reads the guard state of the request's session
func GuardState(c *gin.Context) guard.State {
	ws, ok := GetWebSession(c)
	if !ok {
		return guard.State{}
	}
	return guard.StateOf(ws.Store)
}

// Require guards a route group with req
func Require(req guard.Requirement) gin.HandlerFunc {
	return guard.Middleware(req, GuardState)
}
