// Package dealer is the boundary to the business-data collaborator: car
// inventory queries, appointment mutations and external-identity linking.
// The engine does not own that service's schema; it only relies on the
// {success, data|error, summary?} response contract exposed here.
package dealer

import (
	"context"
	"time"
)

// Car is one inventory row in the collaborator's display shape.
type Car struct {
	ID        string  `json:"id"`
	Brand     string  `json:"brand"`
	Model     string  `json:"model"`
	Category  string  `json:"category"`
	Branch    string  `json:"branch"`
	Year      int     `json:"year"`
	Price     float64 `json:"price"`
	Mileage   int     `json:"mileage"`
	ImageURL  string  `json:"image_url"`
	DetailURL string  `json:"detail_url"`
}

// CarFilter is the structured search request built from model tool arguments.
type CarFilter struct {
	Brand    string  `json:"brand,omitempty"`
	Category string  `json:"category,omitempty"`
	Branch   string  `json:"branch,omitempty"`
	MinPrice float64 `json:"min_price,omitempty"`
	MaxPrice float64 `json:"max_price,omitempty"`
	MinYear  int     `json:"min_year,omitempty"`
	MaxYear  int     `json:"max_year,omitempty"`
	SortBy   string  `json:"sort_by,omitempty"`
	Limit    int     `json:"limit,omitempty"`
}

// Appointment is one booking row.
type Appointment struct {
	ReferenceID  string    `json:"reference_id"`
	EmployeeID   string    `json:"employee_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone,omitempty"`
	Branch       string    `json:"branch,omitempty"`
	Status       string    `json:"status"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Note         string    `json:"note,omitempty"`
}

// AppointmentRequest creates a booking.
type AppointmentRequest struct {
	EmployeeID   string    `json:"employee_id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone,omitempty"`
	Branch       string    `json:"branch,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Note         string    `json:"note,omitempty"`
}

// AppointmentEdit modifies a booking, resolved by reference id first and
// customer name second.
type AppointmentEdit struct {
	ReferenceID  string     `json:"reference_id,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	Note         string     `json:"note,omitempty"`
}

// AppointmentFilter scopes an appointment query.
type AppointmentFilter struct {
	EmployeeID string    `json:"employee_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	From       time.Time `json:"from,omitzero"`
	To         time.Time `json:"to,omitzero"`
}

// MutationResult is the collaborator's outcome for create/edit/cancel calls.
// Summary is relayed to the user verbatim when present.
type MutationResult struct {
	Success     bool   `json:"success"`
	ReferenceID string `json:"reference_id,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Error       string `json:"error,omitempty"`
}

// LinkStatus reports whether an external messaging identity maps to an
// internal user record.
type LinkStatus struct {
	Linked     bool   `json:"linked"`
	UserID     string `json:"user_id,omitempty"`
	EmployeeID string `json:"employee_id,omitempty"`
}

// Service is the collaborator interface consumed by tool handlers and
// adapters. Implementations must be safe for concurrent use.
type Service interface {
	QueryCars(ctx context.Context, filter CarFilter) ([]Car, error)
	CreateAppointment(ctx context.Context, req AppointmentRequest) (*MutationResult, error)
	EditAppointment(ctx context.Context, edit AppointmentEdit) (*MutationResult, error)
	CancelAppointment(ctx context.Context, referenceID string) (*MutationResult, error)
	QueryAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	CheckIdentityLink(ctx context.Context, platform, externalID string) (*LinkStatus, error)
}
