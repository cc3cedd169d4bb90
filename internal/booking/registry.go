package booking

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
)

// Registry owns the open flows of every browser session. A session has at
// most one flow per house.
type Registry struct {
	cfg    Config
	logger logrus.FieldLogger

	mu    sync.Mutex
	flows map[string]map[string]*Flow // session id -> flow id -> flow
}

// NewRegistry creates a registry whose flows use cfg
func NewRegistry(cfg Config) *Registry {
	cfg.defaults()
	return &Registry{
		cfg:    cfg,
		logger: cfg.Logger,
		flows:  make(map[string]map[string]*Flow),
	}
}

// Open starts a flow for houseID, closing any earlier flow the session had
// open for the same house
func (r *Registry) Open(sessionID string, client *api.Client, houseID string, n notify.Notifier, onAuthFailure func(error)) *Flow {
	cfg := r.cfg
	cfg.Logger = r.logger.WithField("session_id", sessionID)
	if n != nil {
		cfg.Notifier = n
	}
	cfg.OnAuthFailure = onAuthFailure
	flow := NewFlow(client, houseID, cfg)

	var replaced []*Flow
	r.mu.Lock()
	byID, ok := r.flows[sessionID]
	if !ok {
		byID = make(map[string]*Flow)
		r.flows[sessionID] = byID
	}
	for id, f := range byID {
		if f.HouseID() == houseID {
			replaced = append(replaced, f)
			delete(byID, id)
		}
	}
	byID[flow.ID()] = flow
	r.mu.Unlock()

	for _, f := range replaced {
		f.Close()
	}
	return flow
}

// Get returns the session's flow by id
func (r *Registry) Get(sessionID, flowID string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[sessionID][flowID]
	return f, ok
}

// List returns the session's open flows
func (r *Registry) List(sessionID string) []*Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Flow, 0, len(r.flows[sessionID]))
	for _, f := range r.flows[sessionID] {
		out = append(out, f)
	}
	return out
}

// CloseFlow closes and forgets one flow
func (r *Registry) CloseFlow(sessionID, flowID string) bool {
	r.mu.Lock()
	f, ok := r.flows[sessionID][flowID]
	if ok {
		delete(r.flows[sessionID], flowID)
		if len(r.flows[sessionID]) == 0 {
			delete(r.flows, sessionID)
		}
	}
	r.mu.Unlock()

	if ok {
		f.Close()
	}
	return ok
}

// CloseSession closes every flow of a session, e.g. on logout
func (r *Registry) CloseSession(sessionID string) int {
	r.mu.Lock()
	byID := r.flows[sessionID]
	delete(r.flows, sessionID)
	r.mu.Unlock()

	for _, f := range byID {
		f.Close()
	}
	return len(byID)
}

// CloseIdle closes flows whose last activity is older than maxIdle, and
// forgets flows that were already closed
func (r *Registry) CloseIdle(maxIdle time.Duration) int {
	cutoff := r.cfg.Now().Add(-maxIdle)

	var stale []*Flow
	r.mu.Lock()
	for sessionID, byID := range r.flows {
		for id, f := range byID {
			if !f.IsOpen() || f.LastActivity().Before(cutoff) {
				stale = append(stale, f)
				delete(byID, id)
			}
		}
		if len(byID) == 0 {
			delete(r.flows, sessionID)
		}
	}
	r.mu.Unlock()

	for _, f := range stale {
		f.Close()
	}
	return len(stale)
}

// CloseAll closes every flow, used on shutdown
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	all := r.flows
	r.flows = make(map[string]map[string]*Flow)
	r.mu.Unlock()

	n := 0
	for _, byID := range all {
		for _, f := range byID {
			f.Close()
			n++
		}
	}
	return n
}

// Len returns the number of tracked flows
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, byID := range r.flows {
		n += len(byID)
	}
	return n
}
