package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// ListHouses returns approved listings matching filter
func (c *Client) ListHouses(ctx context.Context, filter models.HouseFilter) ([]models.House, error) {
	q := url.Values{}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	if filter.Furnished != "" {
		q.Set("furnished", filter.Furnished)
	}
	if filter.MinRent != nil {
		q.Set("minRent", filter.MinRent.String())
	}
	if filter.MaxRent != nil {
		q.Set("maxRent", filter.MaxRent.String())
	}
	if filter.Beds > 0 {
		q.Set("beds", strconv.Itoa(filter.Beds))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var houses []models.House
	if err := c.get(ctx, "/api/houses", q, &houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// GetHouse returns one listing
func (c *Client) GetHouse(ctx context.Context, id string) (*models.House, error) {
	var house models.House
	if err := c.get(ctx, "/api/houses/"+url.PathEscape(id), nil, &house); err != nil {
		return nil, err
	}
	return &house, nil
}

// MyHouses returns the signed-in landlord's listings
func (c *Client) MyHouses(ctx context.Context) ([]models.House, error) {
	var houses []models.House
	if err := c.get(ctx, "/api/houses/landlord/mine", nil, &houses); err != nil {
		return nil, err
	}
	return houses, nil
}

// CreateHouse submits a listing for approval
func (c *Client) CreateHouse(ctx context.Context, in models.HouseInput) (*models.House, error) {
	var house models.House
	if err := c.post(ctx, "/api/houses", in, &house); err != nil {
		return nil, err
	}
	return &house, nil
}

// UpdateHouse edits a listing
func (c *Client) UpdateHouse(ctx context.Context, id string, in models.HouseInput) (*models.House, error) {
	var house models.House
	if err := c.put(ctx, "/api/houses/"+url.PathEscape(id), in, &house); err != nil {
		return nil, err
	}
	return &house, nil
}

// DeleteHouse removes a listing
func (c *Client) DeleteHouse(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/houses/"+url.PathEscape(id), nil)
}
