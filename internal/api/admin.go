package api

import (
	"context"
	"net/url"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// AdminUsers lists every account
func (c *Client) AdminUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminLandlords lists landlord accounts
func (c *Client) AdminLandlords(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/api/admin/landlords", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminTenants lists tenant accounts
func (c *Client) AdminTenants(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/api/admin/tenants", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// VerifyUser marks a landlord verified
func (c *Client) VerifyUser(ctx context.Context, id string) error {
	return c.put(ctx, "/api/admin/users/"+url.PathEscape(id)+"/verify", struct{}{}, nil)
}

// UnverifyUser revokes a landlord's verification
func (c *Client) UnverifyUser(ctx context.Context, id string) error {
	return c.put(ctx, "/api/admin/users/"+url.PathEscape(id)+"/unverify", struct{}{}, nil)
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/admin/users/"+url.PathEscape(id), nil)
}

// AdminHouses lists every listing
func (c *Client) AdminHouses(ctx context.Context) ([]models.House, error) {
	var houses []models.House
	if err := c.get(ctx, "/api/admin/houses", nil, &houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// ApproveHouse publishes a pending listing
func (c *Client) ApproveHouse(ctx context.Context, id string) error {
	return c.put(ctx, "/api/admin/houses/"+url.PathEscape(id)+"/approve", struct{}{}, nil)
}

// RejectHouse rejects a listing with a reason
func (c *Client) RejectHouse(ctx context.Context, id, reason string) error {
	return c.put(ctx, "/api/admin/houses/"+url.PathEscape(id)+"/reject", map[string]string{"reason": reason}, nil)
}

// AdminDeleteHouse removes any listing
func (c *Client) AdminDeleteHouse(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/admin/houses/"+url.PathEscape(id), nil)
}

// AdminBookings lists every booking
func (c *Client) AdminBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.get(ctx, "/api/admin/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ApproveBooking confirms a paid booking
func (c *Client) ApproveBooking(ctx context.Context, id string) error {
	return c.post(ctx, "/api/admin/bookings/"+url.PathEscape(id)+"/approve", struct{}{}, nil)
}

// RejectBooking rejects a booking with a reason
func (c *Client) RejectBooking(ctx context.Context, id, reason string) error {
	return c.post(ctx, "/api/admin/bookings/"+url.PathEscape(id)+"/reject", map[string]string{"reason": reason}, nil)
}

// MarkBookingTransferred records the payout UTR
func (c *Client) MarkBookingTransferred(ctx context.Context, id, utr string) error {
	return c.post(ctx, "/api/admin/bookings/"+url.PathEscape(id)+"/mark-transferred", map[string]string{"utr": utr}, nil)
}

// AdminTickets lists every support ticket
func (c *Client) AdminTickets(ctx context.Context) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	if err := c.get(ctx, "/api/admin/support/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ReplyTicket posts an admin reply
func (c *Client) ReplyTicket(ctx context.Context, id string, in models.MessageInput) (*models.SupportMessage, error) {
	var msg models.SupportMessage
	if err := c.post(ctx, "/api/admin/support/tickets/"+url.PathEscape(id)+"/reply", in, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetTicketStatus moves a ticket through its lifecycle
func (c *Client) SetTicketStatus(ctx context.Context, id string, status models.TicketStatus) error {
	return c.put(ctx, "/api/admin/support/tickets/"+url.PathEscape(id)+"/status", map[string]string{"status": string(status)}, nil)
}
