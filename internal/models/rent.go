package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentStatus is the state of a monthly rent record
type RentStatus string

const (
	RentStatusInitiated        RentStatus = "initiated"
	RentStatusPaymentSubmitted RentStatus = "payment_submitted"
	RentStatusApproved         RentStatus = "approved"
	RentStatusRejected         RentStatus = "rejected"
	RentStatusCancelled        RentStatus = "cancelled"
)

// RentPayment is one tenant+house+month record
type RentPayment struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	HouseID       string          `json:"houseId"`
	HouseTitle    string          `json:"houseTitle,omitempty"`
	Period        string          `json:"period"` // YYYY-MM
	Amount        decimal.Decimal `json:"amount"`
	Status        RentStatus      `json:"status"`
	UTR           string          `json:"utr,omitempty"`
	ProofURL      string          `json:"proofUrl,omitempty"`
	RejectionNote string          `json:"rejectionNote,omitempty"`
	ApprovedAt    *time.Time      `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time      `json:"rejectedAt,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

// RentIntent is the initiate response
type RentIntent struct {
	PaymentID string          `json:"paymentId"`
	Period    string          `json:"period"`
	Amount    decimal.Decimal `json:"amount"`
	UPILink   string          `json:"upiLink"`
	Payee     Payee           `json:"payee"`
}

// RentFolder is a landlord's per-tenant grouping of rent history
type RentFolder struct {
	TenantID     string `json:"tenantId"`
	TenantName   string `json:"tenantName"`
	TenantEmail  string `json:"tenantEmail,omitempty"`
	HouseID      string `json:"houseId,omitempty"`
	HouseTitle   string `json:"houseTitle,omitempty"`
	PendingCount int    `json:"pendingCount"`
	TotalCount   int    `json:"totalCount"`
}
