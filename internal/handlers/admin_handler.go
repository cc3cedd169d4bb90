package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/admin"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// AdminHandler handles the admin console
type AdminHandler struct {
	base
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(spaces *Workspaces, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{base{spaces: spaces, logger: logger}}
}

// MarkTransferredRequest records a payout's bank reference
type MarkTransferredRequest struct {
	UTR string `json:"utr"`
}

// ReplyRequest is an admin reply on a ticket
type ReplyRequest struct {
	Text string `json:"text"`
}

// TicketStatusRequest moves a ticket through its lifecycle
type TicketStatusRequest struct {
	Status models.TicketStatus `json:"status"`
}

// refresh reloads a list when the caller asks for it or it was never loaded
func refresh(c *gin.Context, loaded bool) bool {
	return !loaded || c.Query("refresh") == "true"
}

func bindOptional(c *gin.Context, out interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		invalidBody(c)
		return false
	}
	return true
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	_, w := h.space(c)

	overview, err := admin.LoadOverview(c.Request.Context(), w.adminDeps())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ============================================================================
// USERS
// ============================================================================

// Users handles GET /admin/users?role=&verified=&q=
func (h *AdminHandler) Users(c *gin.Context) {
	_, w := h.space(c)
	view := w.Users()

	if refresh(c, view.Loaded()) {
		if err := view.Load(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}

	filter := admin.UserFilter{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("q"),
	}
	if raw := c.Query("verified"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Verified = &v
		}
	}
	c.JSON(http.StatusOK, gin.H{"users": view.Visible(filter)})
}

// VerifyUser handles POST /admin/users/:id/verify
func (h *AdminHandler) VerifyUser(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Users().Verify(c.Request.Context(), c.Param("id")))
}

// UnverifyUser handles POST /admin/users/:id/unverify
func (h *AdminHandler) UnverifyUser(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Users().Unverify(c.Request.Context(), c.Param("id")))
}

// DeleteUser handles DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Users().Delete(c.Request.Context(), c.Param("id")))
}

// ============================================================================
// HOUSES
// ============================================================================

// Houses handles GET /admin/houses?status=
func (h *AdminHandler) Houses(c *gin.Context) {
	_, w := h.space(c)
	view := w.Houses()

	if refresh(c, view.Loaded()) {
		if err := view.Load(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"houses": view.Visible(models.HouseStatus(c.Query("status")))})
}

// ApproveHouse handles POST /admin/houses/:id/approve
func (h *AdminHandler) ApproveHouse(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Houses().Approve(c.Request.Context(), c.Param("id")))
}

// RejectHouse handles POST /admin/houses/:id/reject
func (h *AdminHandler) RejectHouse(c *gin.Context) {
	_, w := h.space(c)

	var req RejectRequest
	if !bindOptional(c, &req) {
		return
	}
	h.done(c, w.Houses().Reject(c.Request.Context(), c.Param("id"), req.text()))
}

// DeleteHouse handles DELETE /admin/houses/:id
func (h *AdminHandler) DeleteHouse(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Houses().Delete(c.Request.Context(), c.Param("id")))
}

// ============================================================================
// PAYMENTS
// ============================================================================

// Payments handles GET /admin/payments?status=
func (h *AdminHandler) Payments(c *gin.Context) {
	_, w := h.space(c)
	view := w.Payments()

	if refresh(c, view.Loaded()) {
		if err := view.Load(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": view.Visible(models.BookingStatus(c.Query("status")))})
}

// ApprovePayment handles POST /admin/payments/:id/approve
func (h *AdminHandler) ApprovePayment(c *gin.Context) {
	_, w := h.space(c)
	h.done(c, w.Payments().Approve(c.Request.Context(), c.Param("id")))
}

// RejectPayment handles POST /admin/payments/:id/reject
func (h *AdminHandler) RejectPayment(c *gin.Context) {
	_, w := h.space(c)

	var req RejectRequest
	if !bindOptional(c, &req) {
		return
	}
	h.done(c, w.Payments().Reject(c.Request.Context(), c.Param("id"), req.text()))
}

// PayoutLink handles GET /admin/payments/:id/upi
func (h *AdminHandler) PayoutLink(c *gin.Context) {
	_, w := h.space(c)

	link, err := w.Payments().PayViaUPI(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
			Code:    "PAYOUT_UNAVAILABLE",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// MarkTransferred handles POST /admin/payments/:id/transferred
func (h *AdminHandler) MarkTransferred(c *gin.Context) {
	_, w := h.space(c)

	var req MarkTransferredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	h.done(c, w.Payments().MarkTransferred(c.Request.Context(), c.Param("id"), req.UTR))
}

// ============================================================================
// SUPPORT
// ============================================================================

// Tickets handles GET /admin/support?status=
func (h *AdminHandler) Tickets(c *gin.Context) {
	_, w := h.space(c)
	view := w.Tickets()

	if refresh(c, view.Loaded()) {
		if err := view.Load(c.Request.Context()); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"tickets": view.Visible(models.TicketStatus(c.Query("status")))})
}

// ReplyTicket handles POST /admin/support/:id/reply
func (h *AdminHandler) ReplyTicket(c *gin.Context) {
	_, w := h.space(c)

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	h.done(c, w.Tickets().Reply(c.Request.Context(), c.Param("id"), req.Text))
}

// SetTicketStatus handles POST /admin/support/:id/status
func (h *AdminHandler) SetTicketStatus(c *gin.Context) {
	_, w := h.space(c)

	var req TicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}
	h.done(c, w.Tickets().SetStatus(c.Request.Context(), c.Param("id"), req.Status))
}

func (h *AdminHandler) done(c *gin.Context, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
