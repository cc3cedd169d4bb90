package booking

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api/apitest"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

const (
	createPath = "/api/bookings/create"
	statusPath = "/api/bookings/{id}/status"
	tick       = 5 * time.Millisecond
)

func intentBody() map[string]interface{} {
	return map[string]interface{}{
		"bookingId": "b1",
		"amount":    5000,
		"upiLink":   "upi://pay?pa=x@bank&pn=Landlord&am=5000&cu=INR",
		"payee":     map[string]string{"upiId": "x@bank"},
	}
}

func newTestFlow(t *testing.T, srv *apitest.Server, interval time.Duration) (*Flow, *notify.Queue) {
	t.Helper()
	q := notify.NewQueue(10)
	f := NewFlow(srv.APIClient("tok"), "h1", Config{PollInterval: interval, Notifier: q})
	t.Cleanup(f.Close)
	return f, q
}

func waitPhase(t *testing.T, f *Flow, phase Phase) {
	t.Helper()
	require.Eventually(t, func() bool { return f.Snapshot().Phase == phase }, 2*time.Second, tick)
}

// Book Now on a 5000 booking amount: create, poll twice, transferred, success
// toast, no more polls.
func TestFlow_EndToEndTransferred(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Sequence(http.MethodGet, statusPath,
		apitest.Response{Status: http.StatusOK, Body: map[string]string{"status": "qr_created"}},
		apitest.Response{Status: http.StatusOK, Body: map[string]string{"status": "transferred"}},
	)

	f, q := newTestFlow(t, srv, tick)

	snap, err := f.Initiate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhasePaying, snap.Phase)
	assert.Equal(t, "b1", snap.BookingID)
	assert.True(t, snap.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "x@bank", snap.Payee.UPIID)
	assert.True(t, snap.Polling)

	png, err := f.QRCode(128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))

	waitPhase(t, f, PhaseSettled)
	snap = f.Snapshot()
	assert.Equal(t, models.BookingStatusTransferred, snap.Status)
	assert.False(t, snap.Polling)
	assert.Equal(t, 2, srv.Calls(http.MethodGet, statusPath))

	time.Sleep(10 * tick)
	assert.Equal(t, 2, srv.Calls(http.MethodGet, statusPath), "polling must stop after a terminal status")

	toasts := q.Drain()
	require.NotEmpty(t, toasts)
	assert.Equal(t, notify.KindSuccess, toasts[len(toasts)-1].Kind)
}

func TestFlow_TerminalStatusesStopPolling(t *testing.T) {
	tests := []struct {
		status models.BookingStatus
		kind   notify.Kind
	}{
		{models.BookingStatusFailed, notify.KindError},
		{models.BookingStatusExpired, notify.KindError},
		{models.BookingStatusCancelled, notify.KindInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			srv := apitest.New(t)
			srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
			srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": string(tt.status)})

			f, q := newTestFlow(t, srv, tick)
			_, err := f.Initiate(context.Background())
			require.NoError(t, err)

			waitPhase(t, f, PhaseSettled)
			calls := srv.Calls(http.MethodGet, statusPath)
			time.Sleep(10 * tick)
			assert.Equal(t, calls, srv.Calls(http.MethodGet, statusPath))

			toasts := q.Drain()
			require.NotEmpty(t, toasts)
			assert.Equal(t, tt.kind, toasts[len(toasts)-1].Kind)
		})
	}
}

func TestFlow_Conflict(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusBadRequest, map[string]string{
		"message":   "Active booking exists",
		"bookingId": "b-old",
	})
	srv.Reply(http.MethodPost, "/api/bookings/{id}/cancel", http.StatusOK, map[string]string{"message": "ok"})

	f, q := newTestFlow(t, srv, tick)

	snap, err := f.Initiate(context.Background())
	require.NoError(t, err, "a conflict is not fatal")
	assert.Equal(t, PhaseConflict, snap.Phase)
	assert.Equal(t, "b-old", snap.ConflictBookingID)
	assert.Empty(t, snap.BookingID)
	assert.False(t, snap.Polling)
	assert.True(t, snap.CanCancel())

	time.Sleep(10 * tick)
	assert.Equal(t, 1, srv.Calls(http.MethodPost, createPath), "no retry")
	assert.Equal(t, 0, srv.Calls(http.MethodGet, statusPath))
	assert.Equal(t, notify.KindInfo, q.Drain()[0].Kind)

	assert.ErrorIs(t, f.Cancel(context.Background(), false), ErrConfirmationRequired)
	assert.Equal(t, 0, srv.Calls(http.MethodPost, "/api/bookings/{id}/cancel"))

	require.NoError(t, f.Cancel(context.Background(), true))
	assert.Equal(t, 1, srv.Calls(http.MethodPost, "/api/bookings/{id}/cancel"))
	assert.False(t, f.IsOpen())
	assert.Equal(t, PhaseClosed, f.Snapshot().Phase)
}

func TestFlow_CancelCreatedBooking(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": "qr_created"})
	var cancelled string
	srv.On(http.MethodPost, "/api/bookings/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		cancelled = strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/bookings/"), "/cancel")
		apitest.WriteJSON(w, http.StatusOK, nil)
	})

	f, _ := newTestFlow(t, srv, tick)
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.Cancel(context.Background(), true))
	assert.Equal(t, "b1", cancelled)

	snap := f.Snapshot()
	assert.Equal(t, PhaseClosed, snap.Phase)
	assert.Empty(t, snap.BookingID)
	assert.Empty(t, snap.UPILink)
	assert.False(t, snap.Polling)

	// an aborted request may still reach the server just after Close
	time.Sleep(2 * tick)
	calls := srv.Calls(http.MethodGet, statusPath)
	time.Sleep(10 * tick)
	assert.Equal(t, calls, srv.Calls(http.MethodGet, statusPath))
}

func TestFlow_CloseReleasesTimer(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": "qr_created"})

	for i := 0; i < 20; i++ {
		f := NewFlow(srv.APIClient("tok"), "h1", Config{PollInterval: tick})
		if i%2 == 0 {
			_, err := f.Initiate(context.Background())
			require.NoError(t, err)
			time.Sleep(2 * tick)
		}
		f.Close()
		f.Close()

		snap := f.Snapshot()
		assert.Equal(t, PhaseClosed, snap.Phase)
		assert.False(t, snap.Polling)
		assert.Empty(t, snap.BookingID)
		assert.Empty(t, snap.UPILink)
		assert.Nil(t, snap.Payee)

		_, err := f.Initiate(context.Background())
		assert.ErrorIs(t, err, ErrFlowClosed)
	}

	time.Sleep(2 * tick)
	calls := srv.Calls(http.MethodGet, statusPath)
	time.Sleep(10 * tick)
	assert.Equal(t, calls, srv.Calls(http.MethodGet, statusPath), "no poller outlives its flow")
}

func TestFlow_CloseAbortsPollInFlight(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())

	var mu sync.Mutex
	closed := false
	lateRequests := 0
	entered := make(chan struct{}, 1)
	srv.On(http.MethodGet, statusPath, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if closed {
			lateRequests++
		}
		mu.Unlock()

		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		apitest.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
	})

	q := notify.NewQueue(10)
	f := NewFlow(srv.APIClient("tok"), "h1", Config{PollInterval: tick, Notifier: q})
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)
	q.Drain()

	<-entered
	start := time.Now()
	f.Close()
	assert.Less(t, time.Since(start), time.Second, "Close aborts the pending request")

	mu.Lock()
	closed = true
	mu.Unlock()

	time.Sleep(10 * tick)
	mu.Lock()
	assert.Equal(t, 0, lateRequests)
	mu.Unlock()
	assert.Equal(t, PhaseClosed, f.Snapshot().Phase)
	assert.Empty(t, q.Drain(), "the aborted poll raises no toast")
}

func TestFlow_StaleResponseDiscarded(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	srv.On(http.MethodGet, statusPath, func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		apitest.WriteJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
	})

	q := notify.NewQueue(10)
	f := NewFlow(srv.APIClient("tok"), "h1", Config{PollInterval: time.Hour, Notifier: q})
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)
	q.Drain()

	var wg sync.WaitGroup
	var checkErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, checkErr = f.CheckStatus(context.Background())
	}()

	<-entered
	f.Close()
	close(release)
	wg.Wait()

	assert.ErrorIs(t, checkErr, ErrFlowClosed)
	assert.Equal(t, PhaseClosed, f.Snapshot().Phase)
	assert.Empty(t, f.Snapshot().Status)
	assert.Empty(t, q.Drain(), "a discarded result raises no toast")
}

func TestFlow_CheckStatusDoesNotAddTimer(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": "paid"})

	f, _ := newTestFlow(t, srv, time.Hour)
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		snap, err := f.CheckStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPaid, snap.Status)
	}

	time.Sleep(10 * tick)
	assert.Equal(t, 3, srv.Calls(http.MethodGet, statusPath))
}

func TestFlow_MarkAsPaid(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": "qr_created"})
	srv.Reply(http.MethodPost, "/api/bookings/{id}/mark-paid", http.StatusOK, map[string]string{"status": "paid"})

	f, _ := newTestFlow(t, srv, time.Hour)
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	t.Run("Invalid UTR never reaches the server", func(t *testing.T) {
		_, err := f.MarkAsPaid(context.Background(), "12-34")
		verrs, ok := validation.AsErrors(err)
		require.True(t, ok)
		assert.Contains(t, verrs, "utr")
		assert.Equal(t, 0, srv.Calls(http.MethodPost, "/api/bookings/{id}/mark-paid"))
	})

	t.Run("Optional UTR is sent upper-cased", func(t *testing.T) {
		snap, err := f.MarkAsPaid(context.Background(), "axis123456789012")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPaid, snap.Status)
		assert.Equal(t, PhasePaying, snap.Phase)
		assert.True(t, snap.Polling, "polling continues after mark-paid")

		var body map[string]string
		require.NoError(t, srv.LastBody(http.MethodPost, "/api/bookings/{id}/mark-paid", &body))
		assert.Equal(t, "AXIS123456789012", body["utr"])
	})

	t.Run("Without UTR", func(t *testing.T) {
		_, err := f.MarkAsPaid(context.Background(), "")
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, srv.LastBody(http.MethodPost, "/api/bookings/{id}/mark-paid", &body))
		assert.NotContains(t, body, "utr")
	})
}

func TestFlow_AuthFailureStopsPolling(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusUnauthorized, map[string]string{"code": api.CodeTokenExpired})

	var got error
	var mu sync.Mutex
	f := NewFlow(srv.APIClient("tok"), "h1", Config{
		PollInterval: tick,
		OnAuthFailure: func(err error) {
			mu.Lock()
			got = err
			mu.Unlock()
		},
	})
	t.Cleanup(f.Close)

	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !f.Snapshot().Polling }, 2*time.Second, tick)
	mu.Lock()
	assert.True(t, api.IsAuthFailure(got))
	mu.Unlock()

	calls := srv.Calls(http.MethodGet, statusPath)
	time.Sleep(10 * tick)
	assert.Equal(t, calls, srv.Calls(http.MethodGet, statusPath))
}

func TestFlow_TransientPollErrorKeepsPolling(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Sequence(http.MethodGet, statusPath,
		apitest.Response{Status: http.StatusBadGateway, Body: map[string]string{"message": "upstream"}},
		apitest.Response{Status: http.StatusOK, Body: map[string]string{"status": "transferred"}},
	)

	f, _ := newTestFlow(t, srv, tick)
	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	waitPhase(t, f, PhaseSettled)
	assert.Empty(t, f.Snapshot().LastError)
}

func TestFlow_Watch(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, createPath, http.StatusOK, intentBody())
	srv.Reply(http.MethodGet, statusPath, http.StatusOK, map[string]string{"status": "transferred"})

	f := NewFlow(srv.APIClient("tok"), "h1", Config{PollInterval: tick})
	updates, stop := f.Watch()
	defer stop()

	first := <-updates
	assert.Equal(t, PhaseIdle, first.Phase)

	_, err := f.Initiate(context.Background())
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for settled := false; !settled; {
		select {
		case snap := <-updates:
			settled = snap.Phase == PhaseSettled
		case <-deadline:
			t.Fatal("no settled snapshot")
		}
	}

	f.Close()
	for range updates {
	}
}

func TestFlow_InitiateErrors(t *testing.T) {
	t.Run("Server error is reported", func(t *testing.T) {
		srv := apitest.New(t)
		srv.Reply(http.MethodPost, createPath, http.StatusBadRequest, map[string]string{"message": "House not available"})
		f, q := newTestFlow(t, srv, tick)

		snap, err := f.Initiate(context.Background())
		require.Error(t, err)
		assert.Equal(t, PhaseIdle, snap.Phase)
		assert.Equal(t, "House not available", snap.LastError)
		assert.Equal(t, notify.KindError, q.Drain()[0].Kind)
	})

	t.Run("Zero amount does not start polling", func(t *testing.T) {
		srv := apitest.New(t)
		body := intentBody()
		body["amount"] = 0
		srv.Reply(http.MethodPost, createPath, http.StatusOK, body)
		f, _ := newTestFlow(t, srv, tick)

		_, err := f.Initiate(context.Background())
		assert.True(t, errors.Is(err, ErrInvalidAmount))
		assert.False(t, f.Snapshot().Polling)
	})
}
