package api

import (
	"context"
	"net/url"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// InitiateRent opens the rent record for (houseID, period). A 400 carrying
// PaymentID means it was already initiated.
func (c *Client) InitiateRent(ctx context.Context, houseID, period string) (*models.RentIntent, error) {
	var intent models.RentIntent
	body := map[string]string{"houseId": houseID, "period": period}
	if err := c.post(ctx, "/api/rent/initiate", body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// SubmitRentProof attaches the tenant's UTR and optional screenshot
func (c *Client) SubmitRentProof(ctx context.Context, paymentID, utr, proofURL string) (*models.RentPayment, error) {
	body := map[string]string{"utr": utr}
	if proofURL != "" {
		body["proofUrl"] = proofURL
	}
	var payment models.RentPayment
	if err := c.post(ctx, "/api/rent/"+url.PathEscape(paymentID)+"/submit-proof", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// MyRentPayments lists the tenant's rent history
func (c *Client) MyRentPayments(ctx context.Context) ([]models.RentPayment, error) {
	var payments []models.RentPayment
	if err := c.get(ctx, "/api/rent/my", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// RentFolders lists one folder per tenant for the landlord
func (c *Client) RentFolders(ctx context.Context) ([]models.RentFolder, error) {
	var folders []models.RentFolder
	if err := c.get(ctx, "/api/rent/landlord/tenants", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// TenantRentHistory lists one tenant's records for the landlord
func (c *Client) TenantRentHistory(ctx context.Context, tenantID string) ([]models.RentPayment, error) {
	var payments []models.RentPayment
	if err := c.get(ctx, "/api/rent/landlord/tenants/"+url.PathEscape(tenantID), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// ApproveRent confirms a submitted payment
func (c *Client) ApproveRent(ctx context.Context, paymentID string) error {
	return c.post(ctx, "/api/rent/"+url.PathEscape(paymentID)+"/approve", struct{}{}, nil)
}

// RejectRent rejects a submitted payment with an optional note
func (c *Client) RejectRent(ctx context.Context, paymentID, note string) error {
	return c.post(ctx, "/api/rent/"+url.PathEscape(paymentID)+"/reject", map[string]string{"note": note}, nil)
}
