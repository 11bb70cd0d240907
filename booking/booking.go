package booking

import (
	"errors"
	"fmt"
)

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

var ErrUnknownStatus = errors.New("unknown booking status")

// TransitionError reports a rejected status change.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}

// ParseStatus validates a wire status value.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return Status(v), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, v)
}

// transitions is the allowed-transition table. CANCELLED, COMPLETED and
// NO_SHOW are terminal: a closed booking is never reopened from the API.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusNoShow, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition checks the table and returns a typed error on a disallowed
// move, before anything touches the database.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// Booking is a reservation against an agenda.
type Booking struct {
	ID               string `json:"id" bson:"id"`
	AgendaID         string `json:"agendaId" bson:"agendaid"`
	BookingDate      string `json:"bookingDate" bson:"bookingDate"` // "YYYY-MM-DD"
	StartTime        string `json:"startTime" bson:"startTime"`     // "HH:MM"
	EndTime          string `json:"endTime" bson:"endTime"`
	ClientName       string `json:"clientName" bson:"clientName"`
	ClientPhone      string `json:"clientPhone" bson:"clientPhone"`
	ClientEmail      string `json:"clientEmail,omitempty" bson:"clientEmail,omitempty"`
	Notes            string `json:"notes,omitempty" bson:"notes,omitempty"`
	Status           Status `json:"status" bson:"status"`
	ConfirmationCode string `json:"confirmationCode" bson:"confirmationCode"`
	WhatsappLink     string `json:"whatsappLink,omitempty" bson:"whatsappLink,omitempty"`
	UserID           string `json:"userId,omitempty" bson:"userId,omitempty"`
	CreatedAt        int64  `json:"createdAt" bson:"createdAt"`
}

// FilterByStatus narrows a loaded list to one status, preserving order.
// An empty status returns the list unchanged.
func FilterByStatus(bookings []Booking, status Status) []Booking {
	if status == "" {
		return bookings
	}
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// ReplaceByID swaps in the server's updated record, touching only the entry
// with the matching id.
func ReplaceByID(bookings []Booking, updated Booking) []Booking {
	out := make([]Booking, len(bookings))
	copy(out, bookings)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}
