// Package booking drives the tenant's booking payment: create the booking,
// show the UPI QR, poll its status until it settles, and cancel.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	pkgvalidator "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/validator"
)

// DefaultPollInterval is how often an open flow asks for the booking status
const DefaultPollInterval = 3500 * time.Millisecond

var (
	ErrFlowClosed           = errors.New("booking flow is closed")
	ErrNoBooking            = errors.New("no booking in this flow")
	ErrAlreadyStarted       = errors.New("booking already started")
	ErrConfirmationRequired = errors.New("cancellation must be confirmed")
	ErrBookingSettled       = errors.New("booking has already settled")
	ErrInvalidAmount        = errors.New("booking amount must be greater than zero")
)

// Phase is where the flow is from the tenant's point of view
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseConflict Phase = "conflict" // an active booking already exists
	PhasePaying   Phase = "paying"   // booking created, status being polled
	PhaseSettled  Phase = "settled"  // terminal status observed
	PhaseClosed   Phase = "closed"
)

// Snapshot is a copy of the flow's visible state
type Snapshot struct {
	FlowID            string               `json:"flowId"`
	HouseID           string               `json:"houseId"`
	Phase             Phase                `json:"phase"`
	BookingID         string               `json:"bookingId,omitempty"`
	ConflictBookingID string               `json:"conflictBookingId,omitempty"`
	Amount            decimal.Decimal      `json:"amount"`
	UPILink           string               `json:"upiLink,omitempty"`
	Payee             *models.Payee        `json:"payee,omitempty"`
	Status            models.BookingStatus `json:"status,omitempty"`
	UTR               string               `json:"utr,omitempty"`
	Polling           bool                 `json:"polling"`
	LastError         string               `json:"lastError,omitempty"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// CanCancel reports whether there is a booking the tenant may cancel
func (s Snapshot) CanCancel() bool {
	switch s.Phase {
	case PhaseConflict:
		return s.ConflictBookingID != ""
	case PhasePaying:
		return s.BookingID != ""
	}
	return false
}

// Config tunes a flow
type Config struct {
	PollInterval time.Duration
	Logger       logrus.FieldLogger
	Notifier     notify.Notifier
	// OnAuthFailure runs when a request is rejected for auth reasons.
	// Polling stops first.
	OnAuthFailure func(err error)
	Now           func() time.Time
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	if c.Notifier == nil {
		c.Notifier = notify.Discard{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Flow is one open booking payment interaction for a house. It owns at most
// one poller goroutine.
type Flow struct {
	id      string
	houseID string
	client  *api.Client
	cfg     Config
	logger  logrus.FieldLogger

	mu       sync.Mutex
	snap     Snapshot
	open     bool
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	watchers map[chan Snapshot]struct{}
	touched  time.Time
}

// NewFlow opens a flow for houseID
func NewFlow(client *api.Client, houseID string, cfg Config) *Flow {
	cfg.defaults()
	id := uuid.NewString()
	f := &Flow{
		id:       id,
		houseID:  houseID,
		client:   client,
		cfg:      cfg,
		logger:   cfg.Logger.WithFields(logrus.Fields{"flow_id": id, "house_id": houseID}),
		open:     true,
		watchers: make(map[chan Snapshot]struct{}),
	}
	f.snap = Snapshot{FlowID: id, HouseID: houseID, Phase: PhaseIdle, UpdatedAt: cfg.Now()}
	f.touched = cfg.Now()
	return f
}

// ID returns the flow id
func (f *Flow) ID() string {
	return f.id
}

// HouseID returns the house the flow books
func (f *Flow) HouseID() string {
	return f.houseID
}

// Snapshot returns the current state
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// LastActivity is when the tenant last acted on the flow or it last changed
func (f *Flow) LastActivity() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// IsOpen reports whether Close has not run yet
func (f *Flow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Initiate creates the booking. An existing active booking is not an error:
// the flow moves to PhaseConflict carrying its id so it can be cancelled.
func (f *Flow) Initiate(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return Snapshot{}, ErrFlowClosed
	}
	if f.snap.Phase == PhasePaying || f.snap.Phase == PhaseSettled {
		snap := f.snap
		f.mu.Unlock()
		return snap, ErrAlreadyStarted
	}
	houseID := f.snap.HouseID
	f.touched = f.cfg.Now()
	f.mu.Unlock()

	intent, err := f.client.CreateBooking(ctx, houseID)
	if err != nil {
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Status == http.StatusBadRequest && apiErr.BookingID != "" {
			return f.enterConflict(apiErr)
		}
		return f.fail(err, "Could not start the booking.")
	}

	if !intent.Amount.IsPositive() {
		f.cfg.Notifier.Error("This listing has no valid booking amount.")
		return f.Snapshot(), ErrInvalidAmount
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return Snapshot{}, ErrFlowClosed
	}

	payee := intent.Payee
	f.snap.Phase = PhasePaying
	f.snap.BookingID = intent.BookingID
	f.snap.ConflictBookingID = ""
	f.snap.Amount = intent.Amount
	f.snap.UPILink = intent.UPILink
	f.snap.Payee = &payee
	f.snap.Status = models.BookingStatusCreated
	f.snap.LastError = ""
	f.startPollingLocked()
	f.changedLocked()

	f.logger.WithFields(logrus.Fields{
		"booking_id": intent.BookingID,
		"amount":     intent.Amount.String(),
	}).Info("Booking created, polling status")

	return f.snap, nil
}

func (f *Flow) enterConflict(apiErr *api.APIError) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return Snapshot{}, ErrFlowClosed
	}

	f.snap.Phase = PhaseConflict
	f.snap.ConflictBookingID = apiErr.BookingID
	f.snap.LastError = ""
	f.changedLocked()

	msg := apiErr.Message
	if msg == "" {
		msg = "You already have an active booking for this house."
	}
	f.cfg.Notifier.Info(msg)
	f.logger.WithField("booking_id", apiErr.BookingID).Info("Active booking already exists")
	return f.snap, nil
}

// MarkAsPaid tells the server the tenant has paid. The UTR is optional.
// Polling continues until the booking settles.
func (f *Flow) MarkAsPaid(ctx context.Context, utr string) (Snapshot, error) {
	cleanUTR, err := pkgvalidator.ValidateOptionalUTR(utr)
	if err != nil {
		return f.Snapshot(), validation.Errors{"utr": err.Error()}
	}

	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return Snapshot{}, ErrFlowClosed
	}
	if f.snap.BookingID == "" || f.snap.Phase != PhasePaying {
		f.mu.Unlock()
		return f.Snapshot(), ErrNoBooking
	}
	bookingID := f.snap.BookingID
	f.touched = f.cfg.Now()
	f.mu.Unlock()

	resp, err := f.client.MarkBookingPaid(ctx, bookingID, cleanUTR)
	if err != nil {
		return f.fail(err, "Could not mark the booking as paid.")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return Snapshot{}, ErrFlowClosed
	}
	status := models.BookingStatusPaid
	if resp != nil && resp.Status != "" {
		status = resp.Status
	}
	f.snap.Status = status
	f.snap.UTR = cleanUTR
	f.snap.LastError = ""
	f.changedLocked()
	if status.IsTerminal() {
		f.settleLocked(status)
	} else {
		f.cfg.Notifier.Success("Payment marked as paid. We will confirm it shortly.")
	}
	return f.snap, nil
}

// CheckStatus polls once on demand. It never starts a second timer.
func (f *Flow) CheckStatus(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return Snapshot{}, ErrFlowClosed
	}
	if f.snap.BookingID == "" {
		f.mu.Unlock()
		return f.Snapshot(), ErrNoBooking
	}
	bookingID := f.snap.BookingID
	gen := f.gen
	f.touched = f.cfg.Now()
	f.mu.Unlock()

	resp, err := f.client.BookingStatus(ctx, bookingID)
	if !f.applyStatus(gen, resp, err) {
		return Snapshot{}, ErrFlowClosed
	}
	if err != nil {
		return f.Snapshot(), err
	}
	return f.Snapshot(), nil
}

// Cancel cancels the conflicting or the just-created booking. It needs the
// tenant's confirmation. On success the flow is closed.
func (f *Flow) Cancel(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	target := f.snap.BookingID
	if f.snap.Phase == PhaseConflict {
		target = f.snap.ConflictBookingID
	}
	if f.snap.Phase == PhaseSettled {
		f.mu.Unlock()
		return ErrBookingSettled
	}
	f.touched = f.cfg.Now()
	f.mu.Unlock()

	if target == "" {
		return ErrNoBooking
	}

	if err := f.client.CancelBooking(ctx, target); err != nil {
		_, ferr := f.fail(err, "Could not cancel the booking.")
		return ferr
	}

	f.cfg.Notifier.Info("Booking cancelled.")
	f.logger.WithField("booking_id", target).Info("Booking cancelled")
	f.Close()
	return nil
}

// Close stops polling, clears payment state and ends every watch. When it
// returns the poller goroutine has exited. Calling it again is a no-op.
func (f *Flow) Close() {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return
	}
	f.open = false
	f.gen++
	done := f.stopPollingLocked()

	f.snap = Snapshot{
		FlowID:    f.id,
		HouseID:   f.houseID,
		Phase:     PhaseClosed,
		UpdatedAt: f.cfg.Now(),
	}
	for ch := range f.watchers {
		close(ch)
		delete(f.watchers, ch)
	}
	f.mu.Unlock()

	if done != nil {
		<-done
	}
	f.logger.Debug("Booking flow closed")
}

// Watch streams snapshots, starting with the current one. Slow readers only
// see the latest. The channel is closed when the flow closes or stop is called.
func (f *Flow) Watch() (updates <-chan Snapshot, stop func()) {
	ch := make(chan Snapshot, 1)

	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	ch <- f.snap
	f.watchers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.watchers[ch]; ok {
				delete(f.watchers, ch)
				close(ch)
			}
		})
	}
}

func (f *Flow) startPollingLocked() {
	if f.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.gen++
	f.cancel = cancel
	f.done = make(chan struct{})
	f.snap.Polling = true
	go f.pollLoop(ctx, f.gen, f.snap.BookingID, f.done)
}

// stopPollingLocked cancels the poller and returns a channel closed once the
// goroutine exits
func (f *Flow) stopPollingLocked() chan struct{} {
	if f.cancel == nil {
		return nil
	}
	f.cancel()
	f.cancel = nil
	f.gen++
	done := f.done
	f.done = nil
	f.snap.Polling = false
	return done
}

func (f *Flow) pollLoop(ctx context.Context, gen uint64, bookingID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.mu.Lock()
			current := gen == f.gen
			f.mu.Unlock()
			if !current {
				return
			}

			// One request at a time; ticks that fire meanwhile are dropped.
			// Cancelling ctx aborts the request, so Close waits for it.
			resp, err := f.client.BookingStatus(ctx, bookingID)
			if ctx.Err() != nil {
				return
			}
			f.applyStatus(gen, resp, err)
		}
	}
}

// applyStatus applies a poll result if the flow is still open and gen is
// current. It reports whether the result was applied.
func (f *Flow) applyStatus(gen uint64, resp *models.BookingStatusResponse, err error) bool {
	f.mu.Lock()
	if !f.open || gen != f.gen {
		f.mu.Unlock()
		f.logger.Debug("Discarding stale booking status")
		return false
	}

	if err != nil {
		if api.IsAuthFailure(err) {
			f.stopPollingLocked()
			f.snap.LastError = api.MessageOf(err, "Session expired")
			f.changedLocked()
			f.mu.Unlock()
			if f.cfg.OnAuthFailure != nil {
				f.cfg.OnAuthFailure(err)
			}
			return true
		}
		f.snap.LastError = api.MessageOf(err, "Could not check the booking status.")
		f.changedLocked()
		f.mu.Unlock()
		f.logger.WithError(err).Warn("Booking status poll failed")
		return true
	}
	defer f.mu.Unlock()

	f.snap.LastError = ""
	if resp.Status == "" || resp.Status == f.snap.Status {
		return true
	}

	f.snap.Status = resp.Status
	if resp.UTR != "" {
		f.snap.UTR = resp.UTR
	}
	f.changedLocked()

	if resp.Status.IsTerminal() {
		f.settleLocked(resp.Status)
	}
	return true
}

func (f *Flow) settleLocked(status models.BookingStatus) {
	f.stopPollingLocked()
	f.snap.Phase = PhaseSettled
	f.changedLocked()

	f.logger.WithFields(logrus.Fields{
		"booking_id": f.snap.BookingID,
		"status":     status,
	}).Info("Booking settled")

	switch status {
	case models.BookingStatusTransferred:
		f.cfg.Notifier.Success("Payment received! Your booking is confirmed.")
	case models.BookingStatusFailed:
		f.cfg.Notifier.Error("Payment failed. Please try again.")
	case models.BookingStatusExpired:
		f.cfg.Notifier.Error("The payment window expired. Please start a new booking.")
	case models.BookingStatusCancelled:
		f.cfg.Notifier.Info("This booking was cancelled.")
	}
}

// changedLocked stamps the snapshot and pushes it to watchers
func (f *Flow) changedLocked() {
	f.snap.UpdatedAt = f.cfg.Now()
	f.touched = f.snap.UpdatedAt
	for ch := range f.watchers {
		select {
		case ch <- f.snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- f.snap
		}
	}
}

func (f *Flow) fail(err error, fallback string) (Snapshot, error) {
	if api.IsAuthFailure(err) && f.cfg.OnAuthFailure != nil {
		f.cfg.OnAuthFailure(err)
	}
	msg := api.MessageOf(err, fallback)
	f.cfg.Notifier.Error(msg)

	f.mu.Lock()
	if f.open {
		f.snap.LastError = msg
		f.changedLocked()
	}
	snap := f.snap
	f.mu.Unlock()

	return snap, fmt.Errorf("%s: %w", fallback, err)
}
