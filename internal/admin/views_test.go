package admin

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api/apitest"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testDeps(srv *apitest.Server) (Deps, *notify.Queue) {
	q := notify.NewQueue(10)
	return Deps{
		Client:   srv.APIClient("admin-token"),
		Notifier: q,
		Now:      func() time.Time { return fixedNow },
	}, q
}

func TestUsersView(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/admin/users", http.StatusOK, []map[string]interface{}{
		{"id": "u1", "name": "Asha", "email": "asha@example.com", "role": "landlord", "isVerified": false},
		{"id": "u2", "name": "Ravi", "email": "ravi@example.com", "role": "tenant"},
		{"id": "u3", "name": "Kiran", "email": "kiran@example.com", "role": "landlord", "isVerified": true},
	})
	srv.Reply(http.MethodPut, "/api/admin/users/{id}/verify", http.StatusOK, nil)
	srv.Reply(http.MethodDelete, "/api/admin/users/{id}", http.StatusOK, nil)

	deps, q := testDeps(srv)
	v := NewUsersView(deps)
	require.NoError(t, v.Load(context.Background()))

	unverified := false
	pendingLandlords := UserFilter{Role: models.RoleLandlord, Verified: &unverified}
	assert.Len(t, v.Visible(pendingLandlords), 1)
	assert.Len(t, v.Visible(UserFilter{Search: "RAVI"}), 1)

	require.NoError(t, v.Verify(context.Background(), "u1"))
	assert.Empty(t, v.Visible(pendingLandlords))
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/api/admin/users"), "patched locally, not refetched")

	require.NoError(t, v.Delete(context.Background(), "u2"))
	assert.Len(t, v.Visible(UserFilter{}), 2)

	toasts := q.Drain()
	require.Len(t, toasts, 2)
	assert.Equal(t, "User verified.", toasts[0].Message)
}

func TestUsersView_FailedActionLeavesListAlone(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/admin/users", http.StatusOK, []map[string]interface{}{
		{"id": "u1", "name": "Asha", "role": "landlord", "isVerified": false},
	})
	srv.Reply(http.MethodPut, "/api/admin/users/{id}/verify", http.StatusInternalServerError, map[string]string{"message": "Database unavailable"})

	deps, q := testDeps(srv)
	v := NewUsersView(deps)
	require.NoError(t, v.Load(context.Background()))

	err := v.Verify(context.Background(), "u1")
	require.Error(t, err)

	u, _ := v.list.Get("u1")
	assert.False(t, u.Verified())
	toasts := q.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.KindError, toasts[0].Kind)
	assert.Equal(t, "Database unavailable", toasts[0].Message)
}

func TestHousesView(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/admin/houses", http.StatusOK, []map[string]interface{}{
		{"id": "h1", "title": "2BHK Baner", "status": "pending", "rent": 18000},
		{"id": "h2", "title": "1RK Kothrud", "status": "pending", "rent": 8000},
		{"id": "h3", "title": "Villa", "status": "approved", "rent": 90000},
	})
	srv.Reply(http.MethodPut, "/api/admin/houses/{id}/approve", http.StatusOK, nil)
	srv.Reply(http.MethodPut, "/api/admin/houses/{id}/reject", http.StatusOK, nil)
	srv.Reply(http.MethodDelete, "/api/admin/houses/{id}", http.StatusOK, nil)

	deps, _ := testDeps(srv)
	v := NewHousesView(deps)
	require.NoError(t, v.Load(context.Background()))
	assert.Len(t, v.Visible(models.HouseStatusPending), 2)

	t.Run("approve", func(t *testing.T) {
		require.NoError(t, v.Approve(context.Background(), "h1"))
		assert.Len(t, v.Visible(models.HouseStatusApproved), 2)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		err := v.Reject(context.Background(), "h2", "   ")
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "reason")
		assert.Equal(t, 0, srv.Calls(http.MethodPut, "/api/admin/houses/{id}/reject"))
	})

	t.Run("reject", func(t *testing.T) {
		require.NoError(t, v.Reject(context.Background(), "h2", "Photos missing"))
		h, _ := v.list.Get("h2")
		assert.Equal(t, models.HouseStatusRejected, h.Status)
		assert.Equal(t, "Photos missing", h.RejectionReason)

		var body map[string]string
		require.NoError(t, srv.LastBody(http.MethodPut, "/api/admin/houses/{id}/reject", &body))
		assert.Equal(t, "Photos missing", body["reason"])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, v.Delete(context.Background(), "h3"))
		_, ok := v.list.Get("h3")
		assert.False(t, ok)
	})
}

func paymentsServer(t *testing.T) *apitest.Server {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/admin/bookings", http.StatusOK, []map[string]interface{}{
		{"id": "b1", "houseId": "h1", "amount": 5000, "status": "paid", "utr": "UTR000111222333"},
		{"id": "b2", "houseId": "h2", "amount": 2500.5, "status": "approved",
			"payee": map[string]string{"name": "Asha Rao", "upiId": "asha@okaxis"}},
		{"id": "b3", "houseId": "h3", "amount": 3000, "status": "approved"},
	})
	srv.Reply(http.MethodPost, "/api/admin/bookings/{id}/approve", http.StatusOK, nil)
	srv.Reply(http.MethodPost, "/api/admin/bookings/{id}/reject", http.StatusOK, nil)
	srv.Reply(http.MethodPost, "/api/admin/bookings/{id}/mark-transferred", http.StatusOK, nil)
	return srv
}

func TestPaymentsView_ApproveAndReject(t *testing.T) {
	srv := paymentsServer(t)
	deps, _ := testDeps(srv)
	v := NewPaymentsView(deps)
	require.NoError(t, v.Load(context.Background()))

	require.NoError(t, v.Approve(context.Background(), "b1"))
	b, _ := v.list.Get("b1")
	assert.Equal(t, models.BookingStatusApproved, b.Status)
	require.NotNil(t, b.DecidedAt)
	assert.Equal(t, fixedNow, *b.DecidedAt)

	require.NoError(t, v.Reject(context.Background(), "b3", "Payment not received"))
	b, _ = v.list.Get("b3")
	assert.Equal(t, models.BookingStatusRejected, b.Status)
	assert.Equal(t, "Payment not received", b.AdminNote)
}

func TestPaymentsView_PayViaUPI(t *testing.T) {
	srv := paymentsServer(t)
	deps, _ := testDeps(srv)
	v := NewPaymentsView(deps)
	require.NoError(t, v.Load(context.Background()))

	t.Run("approved booking with payee", func(t *testing.T) {
		link, err := v.PayViaUPI("b2")
		require.NoError(t, err)

		u, err := url.Parse(link)
		require.NoError(t, err)
		assert.Equal(t, "upi", u.Scheme)
		q := u.Query()
		assert.Equal(t, "asha@okaxis", q.Get("pa"))
		assert.Equal(t, "Asha Rao", q.Get("pn"))
		assert.Equal(t, "2500.50", q.Get("am"))
		assert.Equal(t, "INR", q.Get("cu"))
		assert.Equal(t, "HomeRent booking b2", q.Get("tn"))
	})

	t.Run("not yet approved", func(t *testing.T) {
		_, err := v.PayViaUPI("b1")
		assert.Error(t, err)
	})

	t.Run("no payee on file", func(t *testing.T) {
		_, err := v.PayViaUPI("b3")
		assert.Error(t, err)
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := v.PayViaUPI("nope")
		assert.Error(t, err)
	})
}

func TestPaymentsView_MarkTransferred(t *testing.T) {
	srv := paymentsServer(t)
	deps, q := testDeps(srv)
	v := NewPaymentsView(deps)
	require.NoError(t, v.Load(context.Background()))

	t.Run("missing UTR is rejected locally", func(t *testing.T) {
		err := v.MarkTransferred(context.Background(), "b2", "  ")
		errs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, errs, "utr")
		assert.Equal(t, 0, srv.Calls(http.MethodPost, "/api/admin/bookings/{id}/mark-transferred"))
	})

	t.Run("records the payout", func(t *testing.T) {
		require.NoError(t, v.MarkTransferred(context.Background(), "b2", " utr998877665544 "))

		b, _ := v.list.Get("b2")
		assert.Equal(t, models.BookingStatusTransferred, b.Status)
		assert.Equal(t, "UTR998877665544", b.PayoutTxnID)
		require.NotNil(t, b.PayoutAt)

		var body map[string]string
		require.NoError(t, srv.LastBody(http.MethodPost, "/api/admin/bookings/{id}/mark-transferred", &body))
		assert.Equal(t, "UTR998877665544", body["utr"])

		toasts := q.Drain()
		require.NotEmpty(t, toasts)
		assert.Equal(t, notify.KindSuccess, toasts[len(toasts)-1].Kind)
	})
}

func TestSupportView(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/admin/support/tickets", http.StatusOK, []map[string]interface{}{
		{"id": "t1", "subject": "Refund", "category": "payment", "status": "open"},
		{"id": "t2", "subject": "Login", "category": "account", "status": "closed"},
	})
	srv.Reply(http.MethodPost, "/api/admin/support/tickets/{id}/reply", http.StatusOK, map[string]interface{}{
		"id": "m1", "ticketId": "t1", "senderRole": "admin", "text": "Looking into it", "createdAt": fixedNow,
	})
	srv.Reply(http.MethodPut, "/api/admin/support/tickets/{id}/status", http.StatusOK, nil)

	deps, _ := testDeps(srv)
	v := NewSupportView(deps)
	require.NoError(t, v.Load(context.Background()))
	assert.Len(t, v.Visible(models.TicketStatusOpen), 1)

	require.NoError(t, v.Reply(context.Background(), "t1", "Looking into it"))
	tk, _ := v.list.Get("t1")
	require.Len(t, tk.Messages, 1)
	assert.Equal(t, models.SenderAdmin, tk.Messages[0].SenderRole)

	require.NoError(t, v.SetStatus(context.Background(), "t1", models.TicketStatusResolved))
	tk, _ = v.list.Get("t1")
	assert.Equal(t, models.TicketStatusResolved, tk.Status)

	assert.Error(t, v.SetStatus(context.Background(), "t1", "archived"))
	assert.Error(t, v.Reply(context.Background(), "t1", ""))
}
