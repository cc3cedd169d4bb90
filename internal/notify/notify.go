// Package notify carries short-lived user feedback (toasts) and operator alerts.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind is the style of a toast
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is one ephemeral message
type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier receives user feedback from flows and views
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// DefaultCapacity bounds a queue; the oldest toast is dropped first
const DefaultCapacity = 20

// Queue is an in-memory toast queue drained by whoever renders it
type Queue struct {
	mu       sync.Mutex
	toasts   []Toast
	capacity int
	now      func() time.Time
}

// NewQueue creates a queue holding at most capacity toasts
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity, now: time.Now}
}

// Success queues a success toast
func (q *Queue) Success(message string) { q.push(KindSuccess, message) }

// Error queues an error toast
func (q *Queue) Error(message string) { q.push(KindError, message) }

// Info queues an info toast
func (q *Queue) Info(message string) { q.push(KindInfo, message) }

func (q *Queue) push(kind Kind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.toasts = append(q.toasts, Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: q.now(),
	})
	if len(q.toasts) > q.capacity {
		q.toasts = q.toasts[len(q.toasts)-q.capacity:]
	}
}

// Drain returns and clears the queued toasts, oldest first
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.toasts
	q.toasts = nil
	if out == nil {
		return []Toast{}
	}
	return out
}

// Peek returns the queued toasts without clearing them
func (q *Queue) Peek() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Hub keeps one queue per browser session
type Hub struct {
	mu     sync.Mutex
	queues map[string]*Queue
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{queues: make(map[string]*Queue)}
}

// For returns the session's queue, creating it on first use
func (h *Hub) For(sessionID string) *Queue {
	h.mu.Lock()
	defer h.mu.Unlock()

	q, ok := h.queues[sessionID]
	if !ok {
		q = NewQueue(DefaultCapacity)
		h.queues[sessionID] = q
	}
	return q
}

// Drop forgets a session's queue
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	delete(h.queues, sessionID)
	h.mu.Unlock()
}

// Len returns the number of live queues
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queues)
}

// Printer writes toasts straight to a terminal
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Success prints a success line
func (p *Printer) Success(message string) { p.print("✔", message) }

// Error prints an error line
func (p *Printer) Error(message string) { p.print("✖", message) }

// Info prints an info line
func (p *Printer) Info(message string) { p.print("ℹ", message) }

func (p *Printer) print(icon, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", icon, message)
}

// Logged mirrors every toast to a logger before passing it on
type Logged struct {
	Next   Notifier
	Logger logrus.FieldLogger
}

// Success implements Notifier
func (l Logged) Success(message string) {
	l.Logger.WithField("kind", KindSuccess).Debug(message)
	l.Next.Success(message)
}

// Error implements Notifier
func (l Logged) Error(message string) {
	l.Logger.WithField("kind", KindError).Info(message)
	l.Next.Error(message)
}

// Info implements Notifier
func (l Logged) Info(message string) {
	l.Logger.WithField("kind", KindInfo).Debug(message)
	l.Next.Info(message)
}

// Discard drops every toast
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
func (Discard) Info(string)    {}
