package api

import (
	"context"
	"fmt"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
)

// UploadImages uploads listing photos and returns their URLs
func (c *Client) UploadImages(ctx context.Context, files []UploadFile) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no images to upload")
	}
	var resp struct {
		URLs []string `json:"urls"`
	}
	if err := c.upload(ctx, "/api/upload/images", "images", files, &resp); err != nil {
		return nil, err
	}
	return resp.URLs, nil
}

// UploadElectricityBill uploads a listing's compliance document
func (c *Client) UploadElectricityBill(ctx context.Context, file UploadFile) (*models.UploadedFile, error) {
	return c.uploadOne(ctx, "/api/upload/electricity-bill", "bill", file)
}

// UploadPaymentProof uploads a rent payment screenshot
func (c *Client) UploadPaymentProof(ctx context.Context, file UploadFile) (*models.UploadedFile, error) {
	return c.uploadOne(ctx, "/api/upload/payment-proof", "proof", file)
}

// UploadSupportAttachment uploads a file for a support message
func (c *Client) UploadSupportAttachment(ctx context.Context, file UploadFile) (*models.UploadedFile, error) {
	return c.uploadOne(ctx, "/api/upload/support-attachment", "file", file)
}

func (c *Client) uploadOne(ctx context.Context, path, field string, file UploadFile) (*models.UploadedFile, error) {
	var resp models.UploadedFile
	if err := c.upload(ctx, path, field, []UploadFile{file}, &resp); err != nil {
		return nil, err
	}
	if resp.Name == "" {
		resp.Name = file.Name
	}
	return &resp, nil
}
