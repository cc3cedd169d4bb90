package models

import "time"

// VisitStatus is the state of a visit request
type VisitStatus string

const (
	VisitStatusPending   VisitStatus = "pending"
	VisitStatusAccepted  VisitStatus = "accepted"
	VisitStatusRejected  VisitStatus = "rejected"
	VisitStatusCancelled VisitStatus = "cancelled"
)

// Slot is a time window
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// VisitRequest is a tenant's request to see a house
type VisitRequest struct {
	ID             string      `json:"id"`
	HouseID        string      `json:"houseId"`
	House          *House      `json:"house,omitempty"`
	TenantID       string      `json:"tenantId"`
	Tenant         *User       `json:"tenant,omitempty"`
	RequestedStart time.Time   `json:"requestedStart"`
	RequestedEnd   time.Time   `json:"requestedEnd"`
	Note           string      `json:"note,omitempty"`
	Status         VisitStatus `json:"status"`
	FinalSlot      *Slot       `json:"finalSlot,omitempty"`
	LandlordNote   string      `json:"landlordNote,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
}
