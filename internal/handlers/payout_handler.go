package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// PayoutHandler links a verified landlord's settlement account
type PayoutHandler struct {
	base
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(spaces *Workspaces, logger *logrus.Logger) *PayoutHandler {
	return &PayoutHandler{base{spaces: spaces, logger: logger}}
}

// CreateAccount handles POST /landlord/payout-account
func (h *PayoutHandler) CreateAccount(c *gin.Context) {
	ws, w := h.space(c)

	if ws.Store.User().HasPayoutAccount() {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: "A payout account is already linked.",
			Code:    "PAYOUT_ACCOUNT_EXISTS",
		})
		return
	}

	var in models.PayoutAccountInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c)
		return
	}

	acct, err := w.Payout().CreateAccount(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account": acct, "user": ws.Store.User()})
}
