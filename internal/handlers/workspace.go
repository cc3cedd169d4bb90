package handlers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/admin"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/listings"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/payout"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/rent"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/support"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/visits"
)

// workspace is the view state one browser session keeps between requests.
// Every part talks to the API with the session's token.
type workspace struct {
	ws       *middleware.WebSession
	logger   logrus.FieldLogger
	alerter  notify.Alerter
	validate *validation.Validator

	mu        sync.Mutex
	lastUsed  time.Time
	rentFlow  *rent.Flow
	approvals *rent.Approvals
	desk      *support.Desk
	board     *visits.Board
	listings  *listings.Service
	payout    *payout.Setup
	users     *admin.UsersView
	houses    *admin.HousesView
	payments  *admin.PaymentsView
	tickets   *admin.SupportView
}

func (w *workspace) rentCfg() rent.Config {
	return rent.Config{Logger: w.logger, Notifier: w.ws.Toasts, Alerter: w.alerter}
}

func (w *workspace) adminDeps() admin.Deps {
	return admin.Deps{Client: w.ws.Store.Client(), Notifier: w.ws.Toasts, Logger: w.logger}
}

// Rent returns the tenant's open rent flow, starting a fresh one after close
func (w *workspace) Rent() *rent.Flow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rentFlow == nil || !w.rentFlow.Snapshot().Open {
		w.rentFlow = rent.NewFlow(w.ws.Store.Client(), w.rentCfg())
	}
	return w.rentFlow
}

// CloseRent clears the rent flow's payment state
func (w *workspace) CloseRent() {
	w.mu.Lock()
	f := w.rentFlow
	w.rentFlow = nil
	w.mu.Unlock()
	if f != nil {
		f.Close()
	}
}

func (w *workspace) Approvals() *rent.Approvals {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.approvals == nil {
		w.approvals = rent.NewApprovals(w.ws.Store.Client(), w.rentCfg())
	}
	return w.approvals
}

func (w *workspace) Desk() *support.Desk {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.desk == nil {
		w.desk = support.NewDesk(w.ws.Store.Client(), support.Config{
			Logger:    w.logger,
			Notifier:  w.ws.Toasts,
			Validator: w.validate,
		})
	}
	return w.desk
}

func (w *workspace) Visits() *visits.Board {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.board == nil {
		w.board = visits.NewBoard(w.ws.Store.Client(), visits.Config{
			Logger:   w.logger,
			Notifier: w.ws.Toasts,
		})
	}
	return w.board
}

func (w *workspace) Listings() *listings.Service {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.listings == nil {
		w.listings = listings.NewService(w.ws.Store.Client(), listings.Config{
			Logger:    w.logger,
			Notifier:  w.ws.Toasts,
			Validator: w.validate,
		})
	}
	return w.listings
}

func (w *workspace) Payout() *payout.Setup {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.payout == nil {
		w.payout = payout.NewSetup(w.ws.Store, w.ws.Toasts, w.logger)
	}
	return w.payout
}

func (w *workspace) Users() *admin.UsersView {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.users == nil {
		w.users = admin.NewUsersView(w.adminDeps())
	}
	return w.users
}

func (w *workspace) Houses() *admin.HousesView {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.houses == nil {
		w.houses = admin.NewHousesView(w.adminDeps())
	}
	return w.houses
}

func (w *workspace) Payments() *admin.PaymentsView {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.payments == nil {
		w.payments = admin.NewPaymentsView(w.adminDeps())
	}
	return w.payments
}

func (w *workspace) Tickets() *admin.SupportView {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tickets == nil {
		w.tickets = admin.NewSupportView(w.adminDeps())
	}
	return w.tickets
}

func (w *workspace) close() {
	w.CloseRent()
}

// Workspaces keeps one workspace per browser session
type Workspaces struct {
	logger   *logrus.Logger
	alerter  notify.Alerter
	validate *validation.Validator
	now      func() time.Time

	mu     sync.Mutex
	spaces map[string]*workspace
}

// NewWorkspaces creates an empty set
func NewWorkspaces(logger *logrus.Logger, alerter notify.Alerter, v *validation.Validator) *Workspaces {
	if alerter == nil {
		alerter = notify.NoopAlerter{}
	}
	if v == nil {
		v = validation.New()
	}
	return &Workspaces{
		logger:   logger,
		alerter:  alerter,
		validate: v,
		now:      time.Now,
		spaces:   make(map[string]*workspace),
	}
}

// get returns the session's workspace, creating it on first use
func (s *Workspaces) get(ws *middleware.WebSession) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.spaces[ws.ID]
	if !ok || w.ws.Store != ws.Store {
		if ok {
			go w.close()
		}
		w = &workspace{
			ws:       ws,
			logger:   s.logger.WithField("session_id", ws.ID),
			alerter:  s.alerter,
			validate: s.validate,
		}
		s.spaces[ws.ID] = w
	}
	w.lastUsed = s.now()
	return w
}

// Drop discards the session's workspace, e.g. on logout
func (s *Workspaces) Drop(sessionID string) {
	s.mu.Lock()
	w, ok := s.spaces[sessionID]
	delete(s.spaces, sessionID)
	s.mu.Unlock()
	if ok {
		w.close()
	}
}

// CloseIdle discards workspaces not used for maxIdle
func (s *Workspaces) CloseIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*workspace
	for id, w := range s.spaces {
		if w.lastUsed.Before(cutoff) {
			stale = append(stale, w)
			delete(s.spaces, id)
		}
	}
	s.mu.Unlock()

	for _, w := range stale {
		w.close()
	}
	return len(stale)
}

// Len returns the number of live workspaces
func (s *Workspaces) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spaces)
}

// base is embedded by handlers that work on a session's workspace
type base struct {
	spaces *Workspaces
	logger *logrus.Logger
}

func (b base) space(c *gin.Context) (*middleware.WebSession, *workspace) {
	ws := middleware.MustGetWebSession(c)
	return ws, b.spaces.get(ws)
}

func (b base) fail(c *gin.Context, err error) {
	respondError(c, b.logger, err)
}
