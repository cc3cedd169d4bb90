package apitest

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
)

func TestRequireToken(t *testing.T) {
	t.Run("Unscripted route rejects a foreign token", func(t *testing.T) {
		srv := New(t)
		srv.RequireToken("fresh")

		_, err := srv.APIClient("stale").MyBookings(context.Background())
		apiErr, ok := api.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, api.CodeInvalidToken, apiErr.Code)
		assert.True(t, api.IsAuthFailure(err))
	})

	t.Run("Scripted route rejects a foreign token", func(t *testing.T) {
		srv := New(t)
		srv.RequireToken("fresh")
		srv.Reply(http.MethodGet, "/api/bookings/my", http.StatusOK, []interface{}{})

		_, err := srv.APIClient("stale").MyBookings(context.Background())
		assert.True(t, api.IsAuthFailure(err))
		assert.Equal(t, 0, srv.Calls(http.MethodGet, "/api/bookings/my"))

		_, err = srv.APIClient("fresh").MyBookings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, srv.Calls(http.MethodGet, "/api/bookings/my"))
	})

	t.Run("Missing header", func(t *testing.T) {
		srv := New(t)
		srv.RequireToken("fresh")

		_, err := srv.APIClient("").Me(context.Background())
		apiErr, ok := api.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, api.CodeMissingAuthHeader, apiErr.Code)
	})

	t.Run("Unscripted route without token checks is not found", func(t *testing.T) {
		srv := New(t)

		_, err := srv.APIClient("any").MyBookings(context.Background())
		apiErr, ok := api.AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.False(t, api.IsAuthFailure(err))
	})
}
