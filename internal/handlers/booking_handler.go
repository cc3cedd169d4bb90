package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/booking"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/middleware"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// BookingHandler handles the tenant booking payment flow
type BookingHandler struct {
	base
	registry *booking.Registry
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(spaces *Workspaces, registry *booking.Registry, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{base: base{spaces: spaces, logger: logger}, registry: registry}
}

// MarkPaidRequest carries the bank reference of a completed UPI transfer
type MarkPaidRequest struct {
	UTR string `json:"utr"`
}

// CancelRequest confirms a cancellation
type CancelRequest struct {
	Confirmed bool `json:"confirmed"`
}

func (h *BookingHandler) flow(c *gin.Context) (*middleware.WebSession, *booking.Flow, bool) {
	ws := middleware.MustGetWebSession(c)
	f, ok := h.registry.Get(ws.ID, c.Param("flowId"))
	if !ok {
		notFound(c, "Booking flow not found")
		return ws, nil, false
	}
	return ws, f, true
}

// Book handles POST /tenant/houses/:id/book
func (h *BookingHandler) Book(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	f := h.registry.Open(ws.ID, ws.Store.Client(), c.Param("id"), ws.Toasts, authFailureHook(ws.Store))
	snap, err := f.Initiate(c.Request.Context())
	if err != nil {
		h.registry.CloseFlow(ws.ID, f.ID())
		h.fail(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"session_id": ws.ID,
		"flow_id":    f.ID(),
		"house_id":   f.HouseID(),
		"phase":      snap.Phase,
	}).Info("Booking flow opened")

	c.JSON(http.StatusCreated, gin.H{"flow": snap})
}

// List handles GET /tenant/booking-flows
func (h *BookingHandler) List(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	flows := h.registry.List(ws.ID)
	snaps := make([]booking.Snapshot, 0, len(flows))
	for _, f := range flows {
		snaps = append(snaps, f.Snapshot())
	}
	c.JSON(http.StatusOK, gin.H{"flows": snaps})
}

// Get handles GET /tenant/booking-flows/:flowId
func (h *BookingHandler) Get(c *gin.Context) {
	_, f, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"flow": f.Snapshot()})
}

// Events handles GET /tenant/booking-flows/:flowId/events as a server-sent
// event stream of snapshots. The stream ends when the flow closes.
func (h *BookingHandler) Events(c *gin.Context) {
	_, f, ok := h.flow(c)
	if !ok {
		return
	}

	updates, stop := f.Watch()
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, open := <-updates:
			if !open {
				c.SSEvent("closed", gin.H{"flowId": f.ID()})
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// QRCode handles GET /tenant/booking-flows/:flowId/qr.png
func (h *BookingHandler) QRCode(c *gin.Context) {
	_, f, ok := h.flow(c)
	if !ok {
		return
	}

	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxQRSize {
			size = n
		}
	}

	png, err := f.QRCode(size)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// MarkPaid handles POST /tenant/booking-flows/:flowId/mark-paid
func (h *BookingHandler) MarkPaid(c *gin.Context) {
	_, f, ok := h.flow(c)
	if !ok {
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	snap, err := f.MarkAsPaid(c.Request.Context(), req.UTR)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flow": snap})
}

// Check handles POST /tenant/booking-flows/:flowId/check
func (h *BookingHandler) Check(c *gin.Context) {
	_, f, ok := h.flow(c)
	if !ok {
		return
	}

	snap, err := f.CheckStatus(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flow": snap})
}

// Cancel handles POST /tenant/booking-flows/:flowId/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	ws, f, ok := h.flow(c)
	if !ok {
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	if err := f.Cancel(c.Request.Context(), req.Confirmed); err != nil {
		h.fail(c, err)
		return
	}
	h.registry.CloseFlow(ws.ID, f.ID())
	c.Status(http.StatusNoContent)
}

// Close handles DELETE /tenant/booking-flows/:flowId
func (h *BookingHandler) Close(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	if !h.registry.CloseFlow(ws.ID, c.Param("flowId")) {
		notFound(c, "Booking flow not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// MyBookings handles GET /tenant/bookings
func (h *BookingHandler) MyBookings(c *gin.Context) {
	ws := middleware.MustGetWebSession(c)

	bookings, err := ws.Store.Client().MyBookings(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
