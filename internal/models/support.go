package models

import "time"

// TicketStatus is the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "open"
	TicketStatusInProgress  TicketStatus = "in_progress"
	TicketStatusWaitingUser TicketStatus = "waiting_user"
	TicketStatusResolved    TicketStatus = "resolved"
	TicketStatusClosed      TicketStatus = "closed"
)

// IsActive reports whether the ticket counts against the one-active-ticket rule
func (s TicketStatus) IsActive() bool {
	return s != TicketStatusClosed
}

// IsValid reports whether the status is known
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingUser, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// SenderRole is who wrote a support message
type SenderRole string

const (
	SenderUser  SenderRole = "user"
	SenderAdmin SenderRole = "admin"
)

// Attachment is a file attached to a support message
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"` // MIME type
	Name string `json:"name,omitempty"`
}

// SupportMessage is one entry in a ticket thread
type SupportMessage struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticketId"`
	SenderRole  SenderRole   `json:"senderRole"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// SupportTicket is a user's support conversation
type SupportTicket struct {
	ID            string           `json:"id"`
	UserID        string           `json:"userId"`
	User          *User            `json:"user,omitempty"`
	Subject       string           `json:"subject"`
	Category      string           `json:"category"`
	Status        TicketStatus     `json:"status"`
	LastMessageAt *time.Time       `json:"lastMessageAt,omitempty"`
	Messages      []SupportMessage `json:"messages,omitempty"`
	CreatedAt     *time.Time       `json:"createdAt,omitempty"`
}

// NewTicketInput opens a ticket with its first message
type NewTicketInput struct {
	Subject     string       `json:"subject" validate:"required,max=150"`
	Category    string       `json:"category" validate:"required,oneof=booking payment listing account other"`
	Message     string       `json:"message" validate:"required,max=5000"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// MessageInput is a reply on a thread
type MessageInput struct {
	Text        string       `json:"text" validate:"required_without=Attachments,max=5000"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
