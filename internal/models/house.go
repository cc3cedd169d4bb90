package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// HouseStatus is the moderation state of a listing
type HouseStatus string

const (
	HouseStatusPending  HouseStatus = "pending"
	HouseStatusApproved HouseStatus = "approved"
	HouseStatusRejected HouseStatus = "rejected"
)

// LandlordSummary is the landlord embedded in a listing
type LandlordSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// House is a rental listing
type House struct {
	ID                  string           `json:"id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Address             string           `json:"address"`
	City                string           `json:"city"`
	State               string           `json:"state"`
	Pincode             string           `json:"pincode"`
	Rent                decimal.Decimal  `json:"rent"`
	Deposit             decimal.Decimal  `json:"deposit"`
	BookingAmount       decimal.Decimal  `json:"bookingAmount"`
	Beds                int              `json:"beds"`
	Baths               int              `json:"baths"`
	Area                int              `json:"area"` // sq ft
	Type                string           `json:"type"`
	Furnished           string           `json:"furnished"`
	Images              []string         `json:"images"`
	ElectricityBillURL  string           `json:"electricityBillUrl,omitempty"`
	ElectricityBillType string           `json:"electricityBillType,omitempty"`
	AvailableFrom       *time.Time       `json:"availableFrom,omitempty"`
	Status              HouseStatus      `json:"status"`
	RejectionReason     string           `json:"rejectionReason,omitempty"`
	LandlordID          string           `json:"landlordId"`
	Landlord            *LandlordSummary `json:"landlord,omitempty"`
	CreatedAt           *time.Time       `json:"createdAt,omitempty"`
}

// Bookable reports whether tenants can start a booking on the listing
func (h *House) Bookable() bool {
	return h.Status == HouseStatusApproved && h.BookingAmount.IsPositive()
}

// HouseInput is the create/update payload for a listing
type HouseInput struct {
	Title               string          `json:"title" validate:"required,max=120"`
	Description         string          `json:"description" validate:"required"`
	Address             string          `json:"address" validate:"required"`
	City                string          `json:"city" validate:"required"`
	State               string          `json:"state" validate:"required"`
	Pincode             string          `json:"pincode" validate:"required,numeric,len=6"`
	Rent                decimal.Decimal `json:"rent" validate:"dec_positive"`
	Deposit             decimal.Decimal `json:"deposit" validate:"dec_nonnegative"`
	BookingAmount       decimal.Decimal `json:"bookingAmount" validate:"dec_positive"`
	Beds                int             `json:"beds" validate:"min=0,max=50"`
	Baths               int             `json:"baths" validate:"min=0,max=50"`
	Area                int             `json:"area" validate:"min=0"`
	Type                string          `json:"type" validate:"required"`
	Furnished           string          `json:"furnished" validate:"required,oneof=furnished semi-furnished unfurnished"`
	Images              []string        `json:"images"`
	ElectricityBillURL  string          `json:"electricityBillUrl,omitempty"`
	ElectricityBillType string          `json:"electricityBillType,omitempty"`
	AvailableFrom       string          `json:"availableFrom" validate:"required,datetime=2006-01-02"`
}

// HouseFilter narrows the public browse list
type HouseFilter struct {
	City      string
	Type      string
	Furnished string
	MinRent   *decimal.Decimal
	MaxRent   *decimal.Decimal
	Beds      int
	Search    string
}
