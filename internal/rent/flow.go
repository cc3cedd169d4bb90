// Package rent covers monthly rent: the tenant's initiate and submit-proof
// flow, and the landlord's approval drill-down.
package rent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	pkgvalidator "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/validator"
)

var (
	ErrFlowClosed     = errors.New("rent payment flow is closed")
	ErrNoPayment      = errors.New("no rent payment to submit proof for")
	ErrInvalidAmount  = errors.New("rent amount must be greater than zero")
	ErrNotAnImage     = errors.New("payment proof must be an image")
	ErrAlreadyDecided = errors.New("rent payment has already been decided")
)

// Config wires a flow's collaborators
type Config struct {
	Logger   logrus.FieldLogger
	Notifier notify.Notifier
	Alerter  notify.Alerter
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
	if c.Alerter == nil {
		c.Alerter = notify.NoopAlerter{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Snapshot is the visible state of the tenant's rent flow
type Snapshot struct {
	HouseID           string            `json:"houseId,omitempty"`
	Period            string            `json:"period,omitempty"`
	PaymentID         string            `json:"paymentId,omitempty"`
	ExistingPaymentID string            `json:"existingPaymentId,omitempty"`
	Amount            decimal.Decimal   `json:"amount"`
	UPILink           string            `json:"upiLink,omitempty"`
	Payee             *models.Payee     `json:"payee,omitempty"`
	Status            models.RentStatus `json:"status,omitempty"`
	ProofURL          string            `json:"proofUrl,omitempty"`
	History           []PeriodGroup     `json:"history"`
	Open              bool              `json:"open"`
}

// Flow is the tenant's rent payment for one (house, period). Settlement
// needs the landlord's manual approval, so nothing is polled.
type Flow struct {
	client *api.Client
	cfg    Config
	logger logrus.FieldLogger

	mu   sync.Mutex
	snap Snapshot
}

// NewFlow creates an open, empty flow
func NewFlow(client *api.Client, cfg Config) *Flow {
	cfg.defaults()
	return &Flow{
		client: client,
		cfg:    cfg,
		logger: cfg.Logger,
		snap:   Snapshot{Open: true, History: []PeriodGroup{}},
	}
}

// Snapshot returns the current state
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Initiate opens the rent record for (houseID, period). If one already exists
// for that month the flow records its id, refreshes history and returns no error.
func (f *Flow) Initiate(ctx context.Context, houseID, period string) (Snapshot, error) {
	verrs := validation.Errors{}
	houseID = strings.TrimSpace(houseID)
	if houseID == "" {
		verrs.Add("houseId", "Select a house")
	}
	cleanPeriod, err := pkgvalidator.ValidatePeriod(period)
	if err != nil {
		verrs.Add("period", err.Error())
	}
	if err := verrs.Err(); err != nil {
		return f.Snapshot(), err
	}

	if !f.isOpen() {
		return Snapshot{}, ErrFlowClosed
	}

	intent, err := f.client.InitiateRent(ctx, houseID, cleanPeriod)
	if err != nil {
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Status == http.StatusBadRequest && apiErr.PaymentID != "" {
			return f.alreadyInitiated(ctx, houseID, cleanPeriod, apiErr)
		}
		msg := api.MessageOf(err, "Could not start the rent payment.")
		f.cfg.Notifier.Error(msg)
		return f.Snapshot(), fmt.Errorf("failed to initiate rent: %w", err)
	}

	if !intent.Amount.IsPositive() {
		f.cfg.Notifier.Error("The rent amount for this house is not set.")
		return f.Snapshot(), ErrInvalidAmount
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.snap.Open {
		return Snapshot{}, ErrFlowClosed
	}
	payee := intent.Payee
	f.snap.HouseID = houseID
	f.snap.Period = nonEmpty(intent.Period, cleanPeriod)
	f.snap.PaymentID = intent.PaymentID
	f.snap.ExistingPaymentID = ""
	f.snap.Amount = intent.Amount
	f.snap.UPILink = intent.UPILink
	f.snap.Payee = &payee
	f.snap.Status = models.RentStatusInitiated

	f.logger.WithFields(logrus.Fields{
		"payment_id": intent.PaymentID,
		"house_id":   houseID,
		"period":     f.snap.Period,
	}).Info("Rent payment initiated")
	return f.snap, nil
}

func (f *Flow) alreadyInitiated(ctx context.Context, houseID, period string, apiErr *api.APIError) (Snapshot, error) {
	f.mu.Lock()
	if !f.snap.Open {
		f.mu.Unlock()
		return Snapshot{}, ErrFlowClosed
	}
	f.snap.HouseID = houseID
	f.snap.Period = period
	f.snap.PaymentID = apiErr.PaymentID
	f.snap.ExistingPaymentID = apiErr.PaymentID
	f.mu.Unlock()

	f.cfg.Notifier.Info(nonEmpty(apiErr.Message, "Rent for this month has already been initiated."))

	if _, err := f.RefreshHistory(ctx); err != nil {
		f.logger.WithError(err).Warn("Failed to refresh rent history")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.snap.History {
		for _, p := range g.Payments {
			if p.ID == apiErr.PaymentID {
				f.snap.Status = p.Status
				f.snap.Amount = p.Amount
				f.snap.ProofURL = p.ProofURL
			}
		}
	}
	return f.snap, nil
}

// UploadProof uploads a payment screenshot and returns its URL
func (f *Flow) UploadProof(ctx context.Context, file api.UploadFile) (string, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return "", ErrNotAnImage
	}
	up, err := f.client.UploadPaymentProof(ctx, file)
	if err != nil {
		f.cfg.Notifier.Error(api.MessageOf(err, "Could not upload the screenshot."))
		return "", fmt.Errorf("failed to upload payment proof: %w", err)
	}

	f.mu.Lock()
	f.snap.ProofURL = up.URL
	f.mu.Unlock()
	return up.URL, nil
}

// SubmitProof sends the tenant's UTR and optional screenshot URL for the
// landlord to review
func (f *Flow) SubmitProof(ctx context.Context, utr, proofURL string) (Snapshot, error) {
	cleanUTR, err := pkgvalidator.ValidateUTR(utr)
	if err != nil {
		return f.Snapshot(), validation.Errors{"utr": err.Error()}
	}

	f.mu.Lock()
	if !f.snap.Open {
		f.mu.Unlock()
		return Snapshot{}, ErrFlowClosed
	}
	paymentID := f.snap.PaymentID
	period := f.snap.Period
	if proofURL == "" {
		proofURL = f.snap.ProofURL
	}
	f.mu.Unlock()

	if paymentID == "" {
		return f.Snapshot(), ErrNoPayment
	}

	payment, err := f.client.SubmitRentProof(ctx, paymentID, cleanUTR, proofURL)
	if err != nil {
		f.cfg.Notifier.Error(api.MessageOf(err, "Could not submit payment proof."))
		return f.Snapshot(), fmt.Errorf("failed to submit rent proof: %w", err)
	}

	f.mu.Lock()
	status := models.RentStatusPaymentSubmitted
	if payment != nil && payment.Status != "" {
		status = payment.Status
	}
	f.snap.Status = status
	f.snap.ProofURL = proofURL
	f.mu.Unlock()

	f.cfg.Notifier.Success("Payment proof submitted. Your landlord will review it.")

	alert := fmt.Sprintf("Rent proof submitted\nPayment: %s\nPeriod: %s\nUTR: %s", paymentID, period, cleanUTR)
	if err := f.cfg.Alerter.Alert(ctx, alert); err != nil {
		f.logger.WithError(err).Warn("Failed to send rent proof alert")
	}

	if _, err := f.RefreshHistory(ctx); err != nil {
		f.logger.WithError(err).Warn("Failed to refresh rent history")
	}
	return f.Snapshot(), nil
}

// RefreshHistory reloads the tenant's rent records grouped by period
func (f *Flow) RefreshHistory(ctx context.Context) ([]PeriodGroup, error) {
	payments, err := f.client.MyRentPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rent history: %w", err)
	}
	groups := GroupByPeriod(payments)

	f.mu.Lock()
	if f.snap.Open {
		f.snap.History = groups
	}
	f.mu.Unlock()
	return groups, nil
}

// Close clears the payment state. Calling it again is a no-op.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = Snapshot{Open: false, History: []PeriodGroup{}}
}

func (f *Flow) isOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Open
}

// PeriodGroup is every record of one month
type PeriodGroup struct {
	Period   string        `json:"period"`
	Label    string        `json:"label"`
	Payments []PaymentView `json:"payments"`
}

// PaymentView is a record with its status pill
type PaymentView struct {
	models.RentPayment
	Pill Pill `json:"pill"`
}

// Pill is how a status is shown
type Pill struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// PillFor returns the pill of a rent status
func PillFor(status models.RentStatus) Pill {
	switch status {
	case models.RentStatusInitiated:
		return Pill{"Awaiting payment", "neutral"}
	case models.RentStatusPaymentSubmitted:
		return Pill{"Under review", "warning"}
	case models.RentStatusApproved:
		return Pill{"Approved", "success"}
	case models.RentStatusRejected:
		return Pill{"Rejected", "danger"}
	case models.RentStatusCancelled:
		return Pill{"Cancelled", "muted"}
	}
	return Pill{string(status), "neutral"}
}

// GroupByPeriod groups records by month, newest month first. Within a month
// records keep newest first.
func GroupByPeriod(payments []models.RentPayment) []PeriodGroup {
	byPeriod := make(map[string][]PaymentView)
	for _, p := range payments {
		byPeriod[p.Period] = append(byPeriod[p.Period], PaymentView{RentPayment: p, Pill: PillFor(p.Status)})
	}

	periods := make([]string, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	groups := make([]PeriodGroup, 0, len(periods))
	for _, period := range periods {
		views := byPeriod[period]
		sort.SliceStable(views, func(i, j int) bool {
			return createdAt(views[i].RentPayment).After(createdAt(views[j].RentPayment))
		})
		groups = append(groups, PeriodGroup{Period: period, Label: periodLabel(period), Payments: views})
	}
	return groups
}

func createdAt(p models.RentPayment) time.Time {
	if p.CreatedAt == nil {
		return time.Time{}
	}
	return *p.CreatedAt
}

func periodLabel(period string) string {
	t, err := time.Parse(pkgvalidator.PeriodLayout, period)
	if err != nil {
		return period
	}
	return t.Format("January 2006")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
