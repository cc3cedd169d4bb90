package api

import (
	"context"
	"net/url"
	"time"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// VisitInput requests a viewing window
type VisitInput struct {
	HouseID        string    `json:"houseId"`
	RequestedStart time.Time `json:"requestedStart"`
	RequestedEnd   time.Time `json:"requestedEnd"`
	Note           string    `json:"note,omitempty"`
}

// RequestVisit asks the landlord for a viewing
func (c *Client) RequestVisit(ctx context.Context, in VisitInput) (*models.VisitRequest, error) {
	var visit models.VisitRequest
	if err := c.post(ctx, "/api/visits", in, &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

// MyVisits lists the tenant's requests
func (c *Client) MyVisits(ctx context.Context) ([]models.VisitRequest, error) {
	var visits []models.VisitRequest
	if err := c.get(ctx, "/api/visits/my", nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// LandlordVisits lists requests on the landlord's houses
func (c *Client) LandlordVisits(ctx context.Context) ([]models.VisitRequest, error) {
	var visits []models.VisitRequest
	if err := c.get(ctx, "/api/visits/landlord", nil, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// AcceptVisit accepts a request, optionally proposing a different slot
func (c *Client) AcceptVisit(ctx context.Context, id string, finalSlot *models.Slot, note string) (*models.VisitRequest, error) {
	body := struct {
		FinalSlot    *models.Slot `json:"finalSlot,omitempty"`
		LandlordNote string       `json:"landlordNote,omitempty"`
	}{finalSlot, note}

	var visit models.VisitRequest
	if err := c.post(ctx, "/api/visits/"+url.PathEscape(id)+"/accept", body, &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

// RejectVisit declines a request
func (c *Client) RejectVisit(ctx context.Context, id, note string) (*models.VisitRequest, error) {
	var visit models.VisitRequest
	if err := c.post(ctx, "/api/visits/"+url.PathEscape(id)+"/reject", map[string]string{"landlordNote": note}, &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

// CancelVisit withdraws a tenant's request
func (c *Client) CancelVisit(ctx context.Context, id string) (*models.VisitRequest, error) {
	var visit models.VisitRequest
	if err := c.post(ctx, "/api/visits/"+url.PathEscape(id)+"/cancel", struct{}{}, &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}
