package admin

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
	pkgvalidator "github.com/Kiran6976/Houserent-Frontend-sub000/pkg/validator"
)

// Deps are shared by every view
type Deps struct {
	Client   *api.Client
	Notifier notify.Notifier
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

func (d *Deps) defaults() {
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Logger = l
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// report sends a failed action to the toast channel and wraps err
func (d *Deps) report(err error, action, fallback string) error {
	d.Notifier.Error(api.MessageOf(err, fallback))
	d.Logger.WithError(err).WithField("action", action).Warn("Admin action failed")
	return fmt.Errorf("%s: %w", action, err)
}

// ============================================================================
// USERS
// ============================================================================

// UserFilter narrows the users list. Zero values match everything.
type UserFilter struct {
	Role     models.Role
	Verified *bool
	Search   string
}

// Match reports whether u passes the filter
func (f UserFilter) Match(u models.User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Verified != nil && u.Verified() != *f.Verified {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	return true
}

// UsersView moderates accounts
type UsersView struct {
	deps Deps
	list *List[models.User]
}

// NewUsersView creates an empty users view
func NewUsersView(deps Deps) *UsersView {
	deps.defaults()
	return &UsersView{deps: deps, list: NewList(func(u models.User) string { return u.ID })}
}

// Load fetches every account
func (v *UsersView) Load(ctx context.Context) error {
	users, err := v.deps.Client.AdminUsers(ctx)
	if err != nil {
		return v.deps.report(err, "load users", "Could not load users.")
	}
	v.list.Replace(users)
	return nil
}

// Loaded reports whether the list has been fetched
func (v *UsersView) Loaded() bool {
	return v.list.Loaded()
}

// Visible returns the accounts matching f
func (v *UsersView) Visible(f UserFilter) []models.User {
	return v.list.Filter(f.Match)
}

// Verify marks a landlord verified
func (v *UsersView) Verify(ctx context.Context, id string) error {
	if err := v.deps.Client.VerifyUser(ctx, id); err != nil {
		return v.deps.report(err, "verify user", "Could not verify the user.")
	}
	verified := true
	v.list.Patch(id, func(u *models.User) { u.IsVerified = &verified })
	v.deps.Notifier.Success("User verified.")
	return nil
}

// Unverify revokes a landlord's verification
func (v *UsersView) Unverify(ctx context.Context, id string) error {
	if err := v.deps.Client.UnverifyUser(ctx, id); err != nil {
		return v.deps.report(err, "unverify user", "Could not unverify the user.")
	}
	verified := false
	v.list.Patch(id, func(u *models.User) { u.IsVerified = &verified })
	v.deps.Notifier.Info("User unverified.")
	return nil
}

// Delete removes an account
func (v *UsersView) Delete(ctx context.Context, id string) error {
	if err := v.deps.Client.DeleteUser(ctx, id); err != nil {
		return v.deps.report(err, "delete user", "Could not delete the user.")
	}
	v.list.Remove(id)
	v.deps.Notifier.Success("User deleted.")
	return nil
}

// ============================================================================
// HOUSES
// ============================================================================

// HousesView moderates listings
type HousesView struct {
	deps Deps
	list *List[models.House]
}

// NewHousesView creates an empty houses view
func NewHousesView(deps Deps) *HousesView {
	deps.defaults()
	return &HousesView{deps: deps, list: NewList(func(h models.House) string { return h.ID })}
}

// Load fetches every listing
func (v *HousesView) Load(ctx context.Context) error {
	houses, err := v.deps.Client.AdminHouses(ctx)
	if err != nil {
		return v.deps.report(err, "load houses", "Could not load listings.")
	}
	v.list.Replace(houses)
	return nil
}

// Loaded reports whether the list has been fetched
func (v *HousesView) Loaded() bool {
	return v.list.Loaded()
}

// Visible returns listings with status, or all when status is empty
func (v *HousesView) Visible(status models.HouseStatus) []models.House {
	return v.list.Filter(func(h models.House) bool { return status == "" || h.Status == status })
}

// Approve publishes a listing
func (v *HousesView) Approve(ctx context.Context, id string) error {
	if err := v.deps.Client.ApproveHouse(ctx, id); err != nil {
		return v.deps.report(err, "approve house", "Could not approve the listing.")
	}
	v.list.Patch(id, func(h *models.House) {
		h.Status = models.HouseStatusApproved
		h.RejectionReason = ""
	})
	v.deps.Notifier.Success("Listing approved.")
	return nil
}

// Reject rejects a listing with a reason
func (v *HousesView) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validation.Errors{"reason": "This field is required"}
	}
	if err := v.deps.Client.RejectHouse(ctx, id, reason); err != nil {
		return v.deps.report(err, "reject house", "Could not reject the listing.")
	}
	v.list.Patch(id, func(h *models.House) {
		h.Status = models.HouseStatusRejected
		h.RejectionReason = reason
	})
	v.deps.Notifier.Info("Listing rejected.")
	return nil
}

// Delete removes a listing
func (v *HousesView) Delete(ctx context.Context, id string) error {
	if err := v.deps.Client.AdminDeleteHouse(ctx, id); err != nil {
		return v.deps.report(err, "delete house", "Could not delete the listing.")
	}
	v.list.Remove(id)
	v.deps.Notifier.Success("Listing deleted.")
	return nil
}

// ============================================================================
// PAYMENTS (booking fees)
// ============================================================================

// PaymentsView reviews booking payments and pays landlords out
type PaymentsView struct {
	deps Deps
	list *List[models.Booking]
}

// NewPaymentsView creates an empty payments view
func NewPaymentsView(deps Deps) *PaymentsView {
	deps.defaults()
	return &PaymentsView{deps: deps, list: NewList(func(b models.Booking) string { return b.ID })}
}

// Load fetches every booking
func (v *PaymentsView) Load(ctx context.Context) error {
	bookings, err := v.deps.Client.AdminBookings(ctx)
	if err != nil {
		return v.deps.report(err, "load bookings", "Could not load payments.")
	}
	v.list.Replace(bookings)
	return nil
}

// Loaded reports whether the list has been fetched
func (v *PaymentsView) Loaded() bool {
	return v.list.Loaded()
}

// Visible returns bookings with status, or all when status is empty
func (v *PaymentsView) Visible(status models.BookingStatus) []models.Booking {
	return v.list.Filter(func(b models.Booking) bool { return status == "" || b.Status == status })
}

// Approve confirms the tenant's payment
func (v *PaymentsView) Approve(ctx context.Context, id string) error {
	if err := v.deps.Client.ApproveBooking(ctx, id); err != nil {
		return v.deps.report(err, "approve booking", "Could not approve the payment.")
	}
	now := v.deps.Now()
	v.list.Patch(id, func(b *models.Booking) {
		b.Status = models.BookingStatusApproved
		b.AdminDecision = "approved"
		b.DecidedAt = &now
	})
	v.deps.Notifier.Success("Payment approved.")
	return nil
}

// Reject rejects the payment with a reason
func (v *PaymentsView) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return validation.Errors{"reason": "This field is required"}
	}
	if err := v.deps.Client.RejectBooking(ctx, id, reason); err != nil {
		return v.deps.report(err, "reject booking", "Could not reject the payment.")
	}
	now := v.deps.Now()
	v.list.Patch(id, func(b *models.Booking) {
		b.Status = models.BookingStatusRejected
		b.AdminDecision = "rejected"
		b.AdminNote = reason
		b.DecidedAt = &now
	})
	v.deps.Notifier.Info("Payment rejected.")
	return nil
}

// PayViaUPI builds the upi://pay deep link that pays the landlord the
// booking amount
func (v *PaymentsView) PayViaUPI(id string) (string, error) {
	b, ok := v.list.Get(id)
	if !ok {
		return "", fmt.Errorf("booking %s not loaded", id)
	}
	if b.Status != models.BookingStatusApproved {
		return "", fmt.Errorf("booking %s is %s; only approved bookings can be paid out", id, b.Status)
	}
	if b.Payee == nil || b.Payee.UPIID == "" {
		return "", fmt.Errorf("landlord has no UPI ID on file")
	}
	return UPILink(*b.Payee, b.Amount.StringFixed(2), "HomeRent booking "+b.ID), nil
}

// UPILink builds a upi://pay deep link
func UPILink(payee models.Payee, amount, note string) string {
	q := url.Values{}
	q.Set("pa", payee.UPIID)
	if payee.Name != "" {
		q.Set("pn", payee.Name)
	}
	q.Set("am", amount)
	q.Set("cu", "INR")
	if note != "" {
		q.Set("tn", note)
	}
	return "upi://pay?" + q.Encode()
}

// MarkTransferred records the payout with its bank UTR
func (v *PaymentsView) MarkTransferred(ctx context.Context, id, utr string) error {
	cleanUTR, err := pkgvalidator.ValidateUTR(utr)
	if err != nil {
		return validation.Errors{"utr": err.Error()}
	}
	if err := v.deps.Client.MarkBookingTransferred(ctx, id, cleanUTR); err != nil {
		return v.deps.report(err, "mark transferred", "Could not mark the payout as transferred.")
	}
	now := v.deps.Now()
	v.list.Patch(id, func(b *models.Booking) {
		b.Status = models.BookingStatusTransferred
		b.PayoutTxnID = cleanUTR
		b.PayoutAt = &now
	})
	v.deps.Notifier.Success("Payout marked as transferred.")
	return nil
}

// ============================================================================
// SUPPORT
// ============================================================================

// SupportView answers tickets
type SupportView struct {
	deps Deps
	list *List[models.SupportTicket]
}

// NewSupportView creates an empty support view
func NewSupportView(deps Deps) *SupportView {
	deps.defaults()
	return &SupportView{deps: deps, list: NewList(func(t models.SupportTicket) string { return t.ID })}
}

// Load fetches every ticket
func (v *SupportView) Load(ctx context.Context) error {
	tickets, err := v.deps.Client.AdminTickets(ctx)
	if err != nil {
		return v.deps.report(err, "load tickets", "Could not load tickets.")
	}
	v.list.Replace(tickets)
	return nil
}

// Loaded reports whether the list has been fetched
func (v *SupportView) Loaded() bool {
	return v.list.Loaded()
}

// Visible returns tickets with status, or all when status is empty
func (v *SupportView) Visible(status models.TicketStatus) []models.SupportTicket {
	return v.list.Filter(func(t models.SupportTicket) bool { return status == "" || t.Status == status })
}

// Reply posts an admin message on a ticket
func (v *SupportView) Reply(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return validation.Errors{"text": "This field is required"}
	}
	msg, err := v.deps.Client.ReplyTicket(ctx, id, models.MessageInput{Text: text})
	if err != nil {
		return v.deps.report(err, "reply ticket", "Could not send the reply.")
	}
	v.list.Patch(id, func(t *models.SupportTicket) {
		if msg != nil {
			t.Messages = append(t.Messages, *msg)
			at := msg.CreatedAt
			t.LastMessageAt = &at
		}
	})
	v.deps.Notifier.Success("Reply sent.")
	return nil
}

// SetStatus moves a ticket through its lifecycle
func (v *SupportView) SetStatus(ctx context.Context, id string, status models.TicketStatus) error {
	if !status.IsValid() {
		return validation.Errors{"status": "Unknown status"}
	}
	if err := v.deps.Client.SetTicketStatus(ctx, id, status); err != nil {
		return v.deps.report(err, "set ticket status", "Could not update the ticket.")
	}
	v.list.Patch(id, func(t *models.SupportTicket) { t.Status = status })
	v.deps.Notifier.Success("Ticket updated.")
	return nil
}
