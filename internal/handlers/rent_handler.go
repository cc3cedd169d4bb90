package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RentHandler handles monthly rent payments for tenants and their approval by landlords
type RentHandler struct {
	base
}

// NewRentHandler creates a new rent handler
func NewRentHandler(spaces *Workspaces, logger *logrus.Logger) *RentHandler {
	return &RentHandler{base{spaces: spaces, logger: logger}}
}

// InitiateRentRequest opens the rent record for a month (period is YYYY-MM)
type InitiateRentRequest struct {
	HouseID string `json:"houseId"`
	Period  string `json:"period"`
}

// SubmitProofRequest sends the transfer reference and optional screenshot
type SubmitProofRequest struct {
	UTR      string `json:"utr"`
	ProofURL string `json:"proofUrl"`
}

// RejectRequest carries an optional reason shown to the other party
type RejectRequest struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

func (r RejectRequest) text() string {
	return firstNonEmpty(r.Note, r.Reason)
}

// ============================================================================
// TENANT
// ============================================================================

// Overview handles GET /tenant/rent
func (h *RentHandler) Overview(c *gin.Context) {
	_, w := h.space(c)

	f := w.Rent()
	if _, err := f.RefreshHistory(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rent": f.Snapshot()})
}

// Initiate handles POST /tenant/rent/initiate
func (h *RentHandler) Initiate(c *gin.Context) {
	_, w := h.space(c)

	var req InitiateRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	snap, err := w.Rent().Initiate(c.Request.Context(), req.HouseID, req.Period)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rent": snap})
}

// UploadProof handles POST /tenant/rent/proof (multipart field "file")
func (h *RentHandler) UploadProof(c *gin.Context) {
	_, w := h.space(c)

	file, err := formFile(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}

	url, err := w.Rent().UploadProof(c.Request.Context(), file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// SubmitProof handles POST /tenant/rent/submit
func (h *RentHandler) SubmitProof(c *gin.Context) {
	_, w := h.space(c)

	var req SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	snap, err := w.Rent().SubmitProof(c.Request.Context(), req.UTR, req.ProofURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rent": snap})
}

// Close handles DELETE /tenant/rent
func (h *RentHandler) Close(c *gin.Context) {
	_, w := h.space(c)
	w.CloseRent()
	c.Status(http.StatusNoContent)
}

// ============================================================================
// LANDLORD
// ============================================================================

// Folders handles GET /landlord/rent
func (h *RentHandler) Folders(c *gin.Context) {
	_, w := h.space(c)

	a := w.Approvals()
	a.Back()
	if _, err := a.LoadFolders(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.View())
}

// Tenant handles GET /landlord/rent/tenants/:tenantId
func (h *RentHandler) Tenant(c *gin.Context) {
	_, w := h.space(c)

	a := w.Approvals()
	if _, err := a.SelectFolder(c.Request.Context(), c.Param("tenantId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.View())
}

// Approve handles POST /landlord/rent/payments/:id/approve
func (h *RentHandler) Approve(c *gin.Context) {
	_, w := h.space(c)

	a := w.Approvals()
	if err := a.Approve(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.View())
}

// Reject handles POST /landlord/rent/payments/:id/reject
func (h *RentHandler) Reject(c *gin.Context) {
	_, w := h.space(c)

	var req RejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c)
			return
		}
	}

	a := w.Approvals()
	if err := a.Reject(c.Request.Context(), c.Param("id"), req.text()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a.View())
}
