package visits

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api/apitest"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

var now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func testBoard(srv *apitest.Server) *Board {
	return NewBoard(srv.APIClient("tok"), Config{Now: func() time.Time { return now }})
}

func TestBoard_RequestValidates(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		fields []string
	}{
		{"start in the past", now.Add(-time.Hour), now.Add(time.Hour), []string{"requestedStart"}},
		{"end before start", now.Add(3 * time.Hour), now.Add(2 * time.Hour), []string{"requestedEnd"}},
		{"end equals start", now.Add(3 * time.Hour), now.Add(3 * time.Hour), []string{"requestedEnd"}},
		{"both missing", time.Time{}, time.Time{}, []string{"requestedStart", "requestedEnd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			_, err := testBoard(srv).Request(context.Background(), "h1", tt.start, tt.end, "")
			errs, ok := validation.AsErrors(err)
			require.True(t, ok)
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
			}
			assert.Len(t, errs, len(tt.fields))
			assert.Equal(t, 0, srv.Calls(http.MethodPost, "/api/visits"))
		})
	}
}

func TestBoard_Request(t *testing.T) {
	srv := apitest.New(t)
	start, end := now.Add(24*time.Hour), now.Add(25*time.Hour)
	srv.Reply(http.MethodPost, "/api/visits", http.StatusCreated, map[string]interface{}{
		"id": "v1", "houseId": "h1", "status": "pending", "requestedStart": start, "requestedEnd": end,
	})

	b := testBoard(srv)
	visit, err := b.Request(context.Background(), "h1", start, end, " evening please ")
	require.NoError(t, err)
	assert.Equal(t, models.VisitStatusPending, visit.Status)
	assert.Len(t, b.Visits(), 1)

	var body map[string]interface{}
	require.NoError(t, srv.LastBody(http.MethodPost, "/api/visits", &body))
	assert.Equal(t, "evening please", body["note"])
	assert.Equal(t, "h1", body["houseId"])
}

func TestBoard_LandlordDecisions(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/visits/landlord", http.StatusOK, []map[string]interface{}{
		{"id": "v1", "houseId": "h1", "status": "pending"},
		{"id": "v2", "houseId": "h1", "status": "pending"},
		{"id": "v3", "houseId": "h2", "status": "rejected"},
	})
	slot := models.Slot{Start: now.Add(48 * time.Hour), End: now.Add(49 * time.Hour)}
	srv.Reply(http.MethodPost, "/api/visits/{id}/accept", http.StatusOK, map[string]interface{}{
		"id": "v1", "houseId": "h1", "status": "accepted", "finalSlot": slot,
	})
	srv.Reply(http.MethodPost, "/api/visits/{id}/reject", http.StatusOK, map[string]interface{}{
		"id": "v2", "houseId": "h1", "status": "rejected", "landlordNote": "House let out",
	})

	b := testBoard(srv)
	_, err := b.ForLandlord(context.Background())
	require.NoError(t, err)

	t.Run("accept with a different slot", func(t *testing.T) {
		v, err := b.Accept(context.Background(), "v1", &slot, "")
		require.NoError(t, err)
		require.NotNil(t, v.FinalSlot)

		var body map[string]interface{}
		require.NoError(t, srv.LastBody(http.MethodPost, "/api/visits/{id}/accept", &body))
		assert.Contains(t, body, "finalSlot")
	})

	t.Run("accept with slot in the past", func(t *testing.T) {
		past := models.Slot{Start: now.Add(-2 * time.Hour), End: now.Add(-time.Hour)}
		_, err := b.Accept(context.Background(), "v2", &past, "")
		_, ok := validation.AsErrors(err)
		assert.True(t, ok)
	})

	t.Run("reject", func(t *testing.T) {
		_, err := b.Reject(context.Background(), "v2", "House let out")
		require.NoError(t, err)
	})

	t.Run("already decided", func(t *testing.T) {
		_, err := b.Accept(context.Background(), "v3", nil, "")
		assert.ErrorIs(t, err, ErrNotPending)
		_, err = b.Reject(context.Background(), "v1", "")
		assert.ErrorIs(t, err, ErrNotPending)
	})

	statuses := map[string]models.VisitStatus{}
	for _, v := range b.Visits() {
		statuses[v.ID] = v.Status
	}
	assert.Equal(t, map[string]models.VisitStatus{
		"v1": models.VisitStatusAccepted,
		"v2": models.VisitStatusRejected,
		"v3": models.VisitStatusRejected,
	}, statuses)
	assert.Equal(t, 1, srv.Calls(http.MethodGet, "/api/visits/landlord"))
}

func TestBoard_Cancel(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/visits/my", http.StatusOK, []map[string]interface{}{
		{"id": "v1", "status": "accepted"},
		{"id": "v2", "status": "cancelled"},
	})
	srv.Reply(http.MethodPost, "/api/visits/{id}/cancel", http.StatusOK, map[string]interface{}{"id": "v1", "status": "cancelled"})

	b := testBoard(srv)
	_, err := b.Mine(context.Background())
	require.NoError(t, err)

	v, err := b.Cancel(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, models.VisitStatusCancelled, v.Status)

	_, err = b.Cancel(context.Background(), "v2")
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, 1, srv.Calls(http.MethodPost, "/api/visits/{id}/cancel"))
}
