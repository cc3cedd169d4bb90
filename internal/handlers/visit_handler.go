package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// VisitHandler handles house viewing requests
type VisitHandler struct {
	base
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(spaces *Workspaces, logger *logrus.Logger) *VisitHandler {
	return &VisitHandler{base{spaces: spaces, logger: logger}}
}

// VisitRequestBody asks for a viewing window
type VisitRequestBody struct {
	HouseID        string    `json:"houseId"`
	RequestedStart time.Time `json:"requestedStart"`
	RequestedEnd   time.Time `json:"requestedEnd"`
	Note           string    `json:"note"`
}

// AcceptVisitRequest confirms a visit, optionally at a different time
type AcceptVisitRequest struct {
	FinalSlot *models.Slot `json:"finalSlot"`
	Note      string       `json:"note"`
}

// Request handles POST /tenant/visits
func (h *VisitHandler) Request(c *gin.Context) {
	_, w := h.space(c)

	var req VisitRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	visit, err := w.Visits().Request(c.Request.Context(), req.HouseID, req.RequestedStart, req.RequestedEnd, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"visit": visit})
}

// Mine handles GET /tenant/visits
func (h *VisitHandler) Mine(c *gin.Context) {
	_, w := h.space(c)

	visits, err := w.Visits().Mine(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// Cancel handles POST /tenant/visits/:id/cancel
func (h *VisitHandler) Cancel(c *gin.Context) {
	_, w := h.space(c)

	visit, err := w.Visits().Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// ForLandlord handles GET /landlord/visits
func (h *VisitHandler) ForLandlord(c *gin.Context) {
	_, w := h.space(c)

	visits, err := w.Visits().ForLandlord(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visits": visits})
}

// Accept handles POST /landlord/visits/:id/accept
func (h *VisitHandler) Accept(c *gin.Context) {
	_, w := h.space(c)

	var req AcceptVisitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c)
			return
		}
	}

	visit, err := w.Visits().Accept(c.Request.Context(), c.Param("id"), req.FinalSlot, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit": visit})
}

// Reject handles POST /landlord/visits/:id/reject
func (h *VisitHandler) Reject(c *gin.Context) {
	_, w := h.space(c)

	var req RejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c)
			return
		}
	}

	visit, err := w.Visits().Reject(c.Request.Context(), c.Param("id"), req.text())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visit": visit})
}
