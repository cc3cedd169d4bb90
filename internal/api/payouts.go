package api

import (
	"context"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// CreatePayoutAccount links the landlord's bank account with the gateway
func (c *Client) CreatePayoutAccount(ctx context.Context, in models.PayoutAccountInput) (*models.PayoutAccount, error) {
	var resp models.PayoutAccount
	if err := c.post(ctx, "/api/payouts/account", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
