package rent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// Decision is a landlord's verdict on a submitted payment
type Decision struct {
	PaymentID string
	Status    models.RentStatus // approved or rejected
	Note      string
	At        time.Time
}

// ApplyDecision patches the record with d's id. It returns the new history
// and the status the record had before, or "" if it was not found.
func ApplyDecision(history []models.RentPayment, d Decision) ([]models.RentPayment, models.RentStatus) {
	out := make([]models.RentPayment, len(history))
	copy(out, history)

	for i := range out {
		if out[i].ID != d.PaymentID {
			continue
		}
		prev := out[i].Status
		at := d.At
		out[i].Status = d.Status
		switch d.Status {
		case models.RentStatusApproved:
			out[i].ApprovedAt = &at
		case models.RentStatusRejected:
			out[i].RejectedAt = &at
			out[i].RejectionNote = d.Note
		}
		return out, prev
	}
	return out, ""
}

// DecrementPending lowers the pending count of the folder matching the
// tenant (and house, when the folder carries one) by exactly one
func DecrementPending(folders []models.RentFolder, tenantID, houseID string) []models.RentFolder {
	out := make([]models.RentFolder, len(folders))
	copy(out, folders)

	for i := range out {
		if out[i].TenantID != tenantID {
			continue
		}
		if out[i].HouseID != "" && houseID != "" && out[i].HouseID != houseID {
			continue
		}
		if out[i].PendingCount > 0 {
			out[i].PendingCount--
		}
		break
	}
	return out
}

// ApprovalsView is the landlord's two-level rent view: one folder per tenant,
// then the selected tenant's history
type ApprovalsView struct {
	Folders  []models.RentFolder  `json:"folders"`
	Selected string               `json:"selectedTenantId,omitempty"`
	History  []models.RentPayment `json:"history"`
}

// Approvals holds the landlord's drill-down state. Decisions are patched in
// place after the server acknowledges them; nothing is refetched.
type Approvals struct {
	client *api.Client
	cfg    Config
	logger logrus.FieldLogger

	mu       sync.Mutex
	folders  []models.RentFolder
	selected string
	history  []models.RentPayment
}

// NewApprovals creates an empty view
func NewApprovals(client *api.Client, cfg Config) *Approvals {
	cfg.defaults()
	return &Approvals{client: client, cfg: cfg, logger: cfg.Logger}
}

// View returns a copy of the current state
func (a *Approvals) View() ApprovalsView {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := ApprovalsView{
		Folders:  append([]models.RentFolder{}, a.folders...),
		Selected: a.selected,
		History:  append([]models.RentPayment{}, a.history...),
	}
	return v
}

// LoadFolders fetches one folder per tenant
func (a *Approvals) LoadFolders(ctx context.Context) ([]models.RentFolder, error) {
	folders, err := a.client.RentFolders(ctx)
	if err != nil {
		a.cfg.Notifier.Error(api.MessageOf(err, "Could not load tenants."))
		return nil, fmt.Errorf("failed to load rent folders: %w", err)
	}

	a.mu.Lock()
	a.folders = folders
	a.mu.Unlock()
	return folders, nil
}

// SelectFolder fetches the tenant's full history
func (a *Approvals) SelectFolder(ctx context.Context, tenantID string) ([]models.RentPayment, error) {
	history, err := a.client.TenantRentHistory(ctx, tenantID)
	if err != nil {
		a.cfg.Notifier.Error(api.MessageOf(err, "Could not load payment history."))
		return nil, fmt.Errorf("failed to load rent history for %s: %w", tenantID, err)
	}

	a.mu.Lock()
	a.selected = tenantID
	a.history = history
	a.mu.Unlock()
	return history, nil
}

// Back returns to the folder list
func (a *Approvals) Back() {
	a.mu.Lock()
	a.selected = ""
	a.history = nil
	a.mu.Unlock()
}

// Approve confirms a submitted payment
func (a *Approvals) Approve(ctx context.Context, paymentID string) error {
	if err := a.checkPending(paymentID); err != nil {
		return err
	}
	if err := a.client.ApproveRent(ctx, paymentID); err != nil {
		a.cfg.Notifier.Error(api.MessageOf(err, "Could not approve the payment."))
		return fmt.Errorf("failed to approve rent payment: %w", err)
	}

	a.apply(Decision{PaymentID: paymentID, Status: models.RentStatusApproved, At: a.cfg.Now()})
	a.cfg.Notifier.Success("Payment approved.")
	return nil
}

// Reject rejects a submitted payment. The note is optional.
func (a *Approvals) Reject(ctx context.Context, paymentID, note string) error {
	if err := a.checkPending(paymentID); err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if err := a.client.RejectRent(ctx, paymentID, note); err != nil {
		a.cfg.Notifier.Error(api.MessageOf(err, "Could not reject the payment."))
		return fmt.Errorf("failed to reject rent payment: %w", err)
	}

	a.apply(Decision{PaymentID: paymentID, Status: models.RentStatusRejected, Note: note, At: a.cfg.Now()})
	a.cfg.Notifier.Info("Payment rejected.")
	return nil
}

// checkPending refuses decisions on records the view already shows as decided
func (a *Approvals) checkPending(paymentID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.history {
		if p.ID == paymentID && (p.Status == models.RentStatusApproved || p.Status == models.RentStatusRejected) {
			return ErrAlreadyDecided
		}
	}
	return nil
}

func (a *Approvals) apply(d Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var houseID string
	for _, p := range a.history {
		if p.ID == d.PaymentID {
			houseID = p.HouseID
		}
	}

	var prev models.RentStatus
	a.history, prev = ApplyDecision(a.history, d)
	if prev == models.RentStatusPaymentSubmitted {
		a.folders = DecrementPending(a.folders, a.selected, houseID)
	}

	a.logger.WithFields(logrus.Fields{
		"payment_id": d.PaymentID,
		"status":     d.Status,
		"previous":   prev,
	}).Info("Rent decision applied")
}
