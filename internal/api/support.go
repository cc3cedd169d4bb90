package api

import (
	"context"
	"net/url"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// MyTickets lists the user's support tickets
func (c *Client) MyTickets(ctx context.Context) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := c.get(ctx, "/api/support/tickets/my", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreateTicket opens a ticket. A 409 carrying ActiveTicketID means one is already open.
func (c *Client) CreateTicket(ctx context.Context, in models.NewTicketInput) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := c.post(ctx, "/api/support/tickets", in, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetTicket returns a ticket with its thread
func (c *Client) GetTicket(ctx context.Context, id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := c.get(ctx, "/api/support/tickets/"+url.PathEscape(id), nil, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// SendTicketMessage appends the user's message to a thread
func (c *Client) SendTicketMessage(ctx context.Context, id string, in models.MessageInput) (*models.SupportMessage, error) {
	var msg models.SupportMessage
	if err := c.post(ctx, "/api/support/tickets/"+url.PathEscape(id)+"/messages", in, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
