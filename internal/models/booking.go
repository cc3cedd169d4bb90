package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the server-side state of a booking
type BookingStatus string

const (
	BookingStatusCreated     BookingStatus = "created"
	BookingStatusQRCreated   BookingStatus = "qr_created"
	BookingStatusPaid        BookingStatus = "paid"
	BookingStatusApproved    BookingStatus = "approved"
	BookingStatusTransferred BookingStatus = "transferred"
	BookingStatusFailed      BookingStatus = "failed"
	BookingStatusExpired     BookingStatus = "expired"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRejected    BookingStatus = "rejected"
)

// IsTerminal reports whether no further transitions can happen
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusTransferred, BookingStatusFailed, BookingStatusExpired, BookingStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the booking still blocks a new one on the same house
func (s BookingStatus) IsActive() bool {
	return s != "" && !s.IsTerminal() && s != BookingStatusRejected
}

// Booking is a tenant's reservation of a house against a one-time fee
type Booking struct {
	ID               string          `json:"id"`
	HouseID          string          `json:"houseId"`
	House            *House          `json:"house,omitempty"`
	TenantID         string          `json:"tenantId"`
	Tenant           *User           `json:"tenant,omitempty"`
	LandlordID       string          `json:"landlordId"`
	Landlord         *User           `json:"landlord,omitempty"`
	Payee            *Payee          `json:"payee,omitempty"` // landlord's payout UPI, admin views only
	Amount           decimal.Decimal `json:"amount"`
	Status           BookingStatus   `json:"status"`
	GatewayPaymentID string          `json:"gatewayPaymentId,omitempty"`
	UTR              string          `json:"utr,omitempty"`
	PayoutTxnID      string          `json:"payoutTxnId,omitempty"`
	PayoutAt         *time.Time      `json:"payoutAt,omitempty"`
	AdminDecision    string          `json:"adminDecision,omitempty"`
	AdminNote        string          `json:"adminNote,omitempty"`
	DecidedAt        *time.Time      `json:"decidedAt,omitempty"`
	CreatedAt        *time.Time      `json:"createdAt,omitempty"`
}

// BookingIntent is the create-booking response
type BookingIntent struct {
	BookingID string          `json:"bookingId"`
	Amount    decimal.Decimal `json:"amount"`
	UPILink   string          `json:"upiLink"`
	Payee     Payee           `json:"payee"`
}

// BookingStatusResponse is the poll response
type BookingStatusResponse struct {
	BookingID string        `json:"bookingId,omitempty"`
	Status    BookingStatus `json:"status"`
	UTR       string        `json:"utr,omitempty"`
}
