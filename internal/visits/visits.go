// Package visits schedules house viewings between tenants and landlords.
package visits

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

var ErrNotPending = errors.New("visit request is no longer pending")

// Config wires the board's collaborators
type Config struct {
	Logger   logrus.FieldLogger
	Notifier notify.Notifier
	Now      func() time.Time
}

func (c *Config) defaults() {
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

// Board holds the visit requests one user sees: their own as a tenant, or
// those on their houses as a landlord.
type Board struct {
	client *api.Client
	cfg    Config

	mu     sync.Mutex
	visits []models.VisitRequest
}

// NewBoard creates an empty board
func NewBoard(client *api.Client, cfg Config) *Board {
	cfg.defaults()
	return &Board{client: client, cfg: cfg}
}

// Visits returns a copy of the loaded requests
func (b *Board) Visits() []models.VisitRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.VisitRequest{}, b.visits...)
}

func (b *Board) replace(visits []models.VisitRequest) []models.VisitRequest {
	b.mu.Lock()
	b.visits = visits
	b.mu.Unlock()
	return b.Visits()
}

// patch swaps in the server's copy of a request
func (b *Board) patch(v *models.VisitRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.visits {
		if b.visits[i].ID == v.ID {
			b.visits[i] = *v
			return
		}
	}
	b.visits = append([]models.VisitRequest{*v}, b.visits...)
}

func (b *Board) get(id string) (models.VisitRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, v := range b.visits {
		if v.ID == id {
			return v, true
		}
	}
	return models.VisitRequest{}, false
}

// Request asks the landlord for a viewing window
func (b *Board) Request(ctx context.Context, houseID string, start, end time.Time, note string) (*models.VisitRequest, error) {
	verrs := validation.Errors{}
	houseID = strings.TrimSpace(houseID)
	if houseID == "" {
		verrs.Add("houseId", "Select a house")
	}
	checkSlot(verrs, "requestedStart", "requestedEnd", start, end, b.cfg.Now())
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	visit, err := b.client.RequestVisit(ctx, api.VisitInput{
		HouseID:        houseID,
		RequestedStart: start,
		RequestedEnd:   end,
		Note:           strings.TrimSpace(note),
	})
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not request the visit."))
		return nil, fmt.Errorf("failed to request visit: %w", err)
	}
	b.patch(visit)
	b.cfg.Notifier.Success("Visit requested. The landlord will confirm a time.")
	return visit, nil
}

// checkSlot requires a window that starts in the future and ends after it starts
func checkSlot(verrs validation.Errors, startField, endField string, start, end, now time.Time) {
	switch {
	case start.IsZero():
		verrs.Add(startField, "Pick a start time")
	case !start.After(now):
		verrs.Add(startField, "Start time must be in the future")
	}
	switch {
	case end.IsZero():
		verrs.Add(endField, "Pick an end time")
	case !start.IsZero() && !end.After(start):
		verrs.Add(endField, "End time must be after the start time")
	}
}

// Mine loads the tenant's requests
func (b *Board) Mine(ctx context.Context) ([]models.VisitRequest, error) {
	visits, err := b.client.MyVisits(ctx)
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not load your visits."))
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return b.replace(visits), nil
}

// ForLandlord loads requests on the landlord's houses
func (b *Board) ForLandlord(ctx context.Context) ([]models.VisitRequest, error) {
	visits, err := b.client.LandlordVisits(ctx)
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not load visit requests."))
		return nil, fmt.Errorf("failed to list landlord visits: %w", err)
	}
	return b.replace(visits), nil
}

func (b *Board) requirePending(id string) error {
	if v, ok := b.get(id); ok && v.Status != models.VisitStatusPending {
		return ErrNotPending
	}
	return nil
}

// Accept confirms a request. A non-nil finalSlot proposes a different time.
func (b *Board) Accept(ctx context.Context, id string, finalSlot *models.Slot, note string) (*models.VisitRequest, error) {
	if err := b.requirePending(id); err != nil {
		return nil, err
	}
	if finalSlot != nil {
		verrs := validation.Errors{}
		checkSlot(verrs, "finalSlot.start", "finalSlot.end", finalSlot.Start, finalSlot.End, b.cfg.Now())
		if err := verrs.Err(); err != nil {
			return nil, err
		}
	}

	visit, err := b.client.AcceptVisit(ctx, id, finalSlot, strings.TrimSpace(note))
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not accept the visit."))
		return nil, fmt.Errorf("failed to accept visit %s: %w", id, err)
	}
	b.patch(visit)
	b.cfg.Notifier.Success("Visit confirmed.")
	return visit, nil
}

// Reject declines a request
func (b *Board) Reject(ctx context.Context, id, note string) (*models.VisitRequest, error) {
	if err := b.requirePending(id); err != nil {
		return nil, err
	}
	visit, err := b.client.RejectVisit(ctx, id, strings.TrimSpace(note))
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not decline the visit."))
		return nil, fmt.Errorf("failed to reject visit %s: %w", id, err)
	}
	b.patch(visit)
	b.cfg.Notifier.Info("Visit declined.")
	return visit, nil
}

// Cancel withdraws the tenant's request
func (b *Board) Cancel(ctx context.Context, id string) (*models.VisitRequest, error) {
	if v, ok := b.get(id); ok && (v.Status == models.VisitStatusCancelled || v.Status == models.VisitStatusRejected) {
		return nil, ErrNotPending
	}
	visit, err := b.client.CancelVisit(ctx, id)
	if err != nil {
		b.cfg.Notifier.Error(api.MessageOf(err, "Could not cancel the visit."))
		return nil, fmt.Errorf("failed to cancel visit %s: %w", id, err)
	}
	b.patch(visit)
	b.cfg.Notifier.Info("Visit cancelled.")
	return visit, nil
}
