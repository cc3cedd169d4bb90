// Package support is the user side of support ticketing plus the helpers
// both sides use to render threads.
package support

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

var (
	ErrActiveTicketExists = errors.New("an active support ticket already exists")
	ErrNoTicketSelected   = errors.New("no support ticket selected")
	ErrTicketClosed       = errors.New("support ticket is closed")
)

// MsgActiveTicket is shown when a second ticket is attempted
const MsgActiveTicket = "You already have an open ticket. Continue the conversation there."

// Config wires a desk's collaborators
type Config struct {
	Logger    logrus.FieldLogger
	Notifier  notify.Notifier
	Validator *validation.Validator
}

func (c *Config) defaults() {
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	if c.Notifier == nil {
		c.Notifier = notify.Discard{}
	}
	if c.Validator == nil {
		c.Validator = validation.New()
	}
}

// View is what the support page renders
type View struct {
	Tickets  []models.SupportTicket `json:"tickets"`
	Selected *models.SupportTicket  `json:"selected,omitempty"`
}

// Desk holds a user's tickets and the open thread
type Desk struct {
	client *api.Client
	cfg    Config

	mu       sync.Mutex
	tickets  []models.SupportTicket
	selected *models.SupportTicket
}

// NewDesk creates an empty desk
func NewDesk(client *api.Client, cfg Config) *Desk {
	cfg.defaults()
	return &Desk{client: client, cfg: cfg}
}

// View returns a copy of the current state
func (d *Desk) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := View{Tickets: append([]models.SupportTicket{}, d.tickets...)}
	if d.selected != nil {
		sel := *d.selected
		sel.Messages = append([]models.SupportMessage(nil), d.selected.Messages...)
		v.Selected = &sel
	}
	return v
}

// Load fetches the user's tickets
func (d *Desk) Load(ctx context.Context) (View, error) {
	tickets, err := d.client.MyTickets(ctx)
	if err != nil {
		d.cfg.Notifier.Error(api.MessageOf(err, "Could not load your tickets."))
		return d.View(), fmt.Errorf("failed to load tickets: %w", err)
	}
	d.mu.Lock()
	d.tickets = tickets
	d.mu.Unlock()
	return d.View(), nil
}

// ActiveTicket returns the first ticket that is not closed
func (d *Desk) ActiveTicket() (models.SupportTicket, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return activeIn(d.tickets)
}

func activeIn(tickets []models.SupportTicket) (models.SupportTicket, bool) {
	for _, t := range tickets {
		if t.Status.IsActive() {
			return t, true
		}
	}
	return models.SupportTicket{}, false
}

// Select opens a ticket's thread
func (d *Desk) Select(ctx context.Context, id string) (View, error) {
	ticket, err := d.client.GetTicket(ctx, id)
	if err != nil {
		d.cfg.Notifier.Error(api.MessageOf(err, "Could not open the ticket."))
		return d.View(), fmt.Errorf("failed to load ticket %s: %w", id, err)
	}
	SortThread(ticket.Messages)

	d.mu.Lock()
	d.selected = ticket
	for i := range d.tickets {
		if d.tickets[i].ID == ticket.ID {
			d.tickets[i].Status = ticket.Status
			d.tickets[i].LastMessageAt = ticket.LastMessageAt
		}
	}
	d.mu.Unlock()
	return d.View(), nil
}

// Create opens a new ticket. At most one active ticket per user is allowed;
// when one exists it is selected instead and ErrActiveTicketExists returned.
func (d *Desk) Create(ctx context.Context, in models.NewTicketInput) (View, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := d.cfg.Validator.Struct(in); err != nil {
		return d.View(), err
	}

	if active, ok := d.ActiveTicket(); ok {
		d.cfg.Notifier.Info(MsgActiveTicket)
		view, err := d.Select(ctx, active.ID)
		if err != nil {
			return view, err
		}
		return view, ErrActiveTicketExists
	}

	ticket, err := d.client.CreateTicket(ctx, in)
	if err != nil {
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Status == http.StatusConflict && apiErr.ActiveTicketID != "" {
			return d.recoverActive(ctx, apiErr.ActiveTicketID)
		}
		d.cfg.Notifier.Error(api.MessageOf(err, "Could not create the ticket."))
		return d.View(), fmt.Errorf("failed to create ticket: %w", err)
	}

	SortThread(ticket.Messages)
	d.mu.Lock()
	d.tickets = append([]models.SupportTicket{*ticket}, d.tickets...)
	d.selected = ticket
	d.mu.Unlock()

	d.cfg.Logger.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"category":  ticket.Category,
	}).Info("Support ticket created")
	d.cfg.Notifier.Success("Ticket created. Our team will reply soon.")
	return d.View(), nil
}

// recoverActive handles the server telling us another ticket is still
// active: reload the list and open that ticket.
func (d *Desk) recoverActive(ctx context.Context, activeID string) (View, error) {
	d.cfg.Notifier.Info(MsgActiveTicket)
	if _, err := d.Load(ctx); err != nil {
		return d.View(), err
	}
	view, err := d.Select(ctx, activeID)
	if err != nil {
		return view, err
	}
	return view, ErrActiveTicketExists
}

// Send posts a message on the selected thread
func (d *Desk) Send(ctx context.Context, text string, attachments []models.Attachment) (View, error) {
	d.mu.Lock()
	sel := d.selected
	d.mu.Unlock()
	if sel == nil {
		return d.View(), ErrNoTicketSelected
	}
	if !sel.Status.IsActive() {
		return d.View(), ErrTicketClosed
	}

	in := models.MessageInput{Text: strings.TrimSpace(text), Attachments: attachments}
	if err := d.cfg.Validator.Struct(in); err != nil {
		return d.View(), err
	}

	msg, err := d.client.SendTicketMessage(ctx, sel.ID, in)
	if err != nil {
		d.cfg.Notifier.Error(api.MessageOf(err, "Could not send your message."))
		return d.View(), fmt.Errorf("failed to send message: %w", err)
	}

	d.mu.Lock()
	if d.selected != nil && d.selected.ID == sel.ID {
		d.selected.Messages = append(d.selected.Messages, *msg)
		SortThread(d.selected.Messages)
		at := msg.CreatedAt
		d.selected.LastMessageAt = &at
	}
	d.mu.Unlock()
	return d.View(), nil
}

// UploadAttachment uploads a file for the next message
func (d *Desk) UploadAttachment(ctx context.Context, file api.UploadFile) (models.Attachment, error) {
	up, err := d.client.UploadSupportAttachment(ctx, file)
	if err != nil {
		d.cfg.Notifier.Error(api.MessageOf(err, "Could not upload the attachment."))
		return models.Attachment{}, fmt.Errorf("failed to upload attachment: %w", err)
	}
	att := models.Attachment{URL: up.URL, Type: up.Type, Name: up.Name}
	if att.Type == "" {
		att.Type = file.ContentType
	}
	if att.Name == "" {
		att.Name = file.Name
	}
	return att, nil
}

// SortThread orders messages oldest first
func SortThread(msgs []models.SupportMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// Side places a message in a thread: the viewer's own messages on the right
func Side(sender models.SenderRole, viewer models.Role) string {
	own := models.SenderUser
	if viewer == models.RoleAdmin {
		own = models.SenderAdmin
	}
	if sender == own {
		return "right"
	}
	return "left"
}

// Attachment categories
const (
	CategoryImage = "image"
	CategoryVideo = "video"
	CategoryFile  = "file"
)

var (
	imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true, ".heic": true}
	videoExts = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true, ".m4v": true}
)

// Category decides how an attachment renders
func Category(a models.Attachment) string {
	mime := strings.ToLower(a.Type)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo
	}

	name := a.Name
	if name == "" {
		name = a.URL
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExts[ext]:
		return CategoryImage
	case videoExts[ext]:
		return CategoryVideo
	}
	return CategoryFile
}
