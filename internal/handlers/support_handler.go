package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/support"
)

// SupportHandler handles the signed-in user's support desk
type SupportHandler struct {
	base
}

// NewSupportHandler creates a new support handler
func NewSupportHandler(spaces *Workspaces, logger *logrus.Logger) *SupportHandler {
	return &SupportHandler{base{spaces: spaces, logger: logger}}
}

// SendMessageRequest is a reply on the selected thread
type SendMessageRequest struct {
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments"`
}

// supportView decorates each message with the side it renders on
type supportView struct {
	support.View
	Sides map[string]string `json:"sides,omitempty"`
}

func (h *SupportHandler) respond(c *gin.Context, status int, view support.View) {
	ws, _ := h.space(c)
	out := supportView{View: view}
	if view.Selected != nil {
		role := models.Role("")
		if u := ws.Store.User(); u != nil {
			role = u.Role
		}
		out.Sides = make(map[string]string, len(view.Selected.Messages))
		for _, m := range view.Selected.Messages {
			out.Sides[m.ID] = support.Side(m.SenderRole, role)
		}
	}
	c.JSON(status, out)
}

// Load handles GET /support
func (h *SupportHandler) Load(c *gin.Context) {
	_, w := h.space(c)

	view, err := w.Desk().Load(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, view)
}

// Select handles GET /support/tickets/:id
func (h *SupportHandler) Select(c *gin.Context) {
	_, w := h.space(c)

	view, err := w.Desk().Select(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, view)
}

// Create handles POST /support/tickets. When an active ticket already exists
// it is opened instead and the answer is 409 carrying that thread.
func (h *SupportHandler) Create(c *gin.Context) {
	_, w := h.space(c)

	var in models.NewTicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		invalidBody(c)
		return
	}

	view, err := w.Desk().Create(c.Request.Context(), in)
	switch {
	case errors.Is(err, support.ErrActiveTicketExists):
		h.respond(c, http.StatusConflict, view)
	case err != nil:
		h.fail(c, err)
	default:
		h.respond(c, http.StatusCreated, view)
	}
}

// Send handles POST /support/messages
func (h *SupportHandler) Send(c *gin.Context) {
	_, w := h.space(c)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	view, err := w.Desk().Send(c.Request.Context(), req.Text, req.Attachments)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, view)
}

// UploadAttachment handles POST /support/attachments (multipart field "file")
func (h *SupportHandler) UploadAttachment(c *gin.Context) {
	_, w := h.space(c)

	file, err := formFile(c, "file")
	if err != nil {
		h.fail(c, err)
		return
	}

	att, err := w.Desk().UploadAttachment(c.Request.Context(), file)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachment": att, "category": support.Category(att)})
}
