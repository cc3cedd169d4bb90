package api

import (
	"context"
	"net/url"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// CreateBooking starts a booking on houseID. A 400 carrying BookingID means
// an active booking already exists.
func (c *Client) CreateBooking(ctx context.Context, houseID string) (*models.BookingIntent, error) {
	var intent models.BookingIntent
	if err := c.post(ctx, "/api/bookings/create", map[string]string{"houseId": houseID}, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// BookingStatus polls a booking
func (c *Client) BookingStatus(ctx context.Context, bookingID string) (*models.BookingStatusResponse, error) {
	var resp models.BookingStatusResponse
	if err := c.get(ctx, "/api/bookings/"+url.PathEscape(bookingID)+"/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkBookingPaid tells the server the tenant has paid, with an optional UTR
func (c *Client) MarkBookingPaid(ctx context.Context, bookingID, utr string) (*models.BookingStatusResponse, error) {
	body := map[string]string{}
	if utr != "" {
		body["utr"] = utr
	}
	var resp models.BookingStatusResponse
	if err := c.post(ctx, "/api/bookings/"+url.PathEscape(bookingID)+"/mark-paid", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelBooking cancels a non-terminal booking
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	return c.post(ctx, "/api/bookings/"+url.PathEscape(bookingID)+"/cancel", struct{}{}, nil)
}

// MyBookings lists the tenant's bookings
func (c *Client) MyBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.get(ctx, "/api/bookings/my", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}
