package tool

import "github.com/siamauto/chatcore/model"

// Function names shared between declarations, handlers and adapters.
const (
	FnQueryCars         = "queryCarsComprehensive"
	FnBookAppointment   = "bookAppointment"
	FnEditAppointment   = "editAppointment"
	FnCancelAppointment = "cancelAppointment"
	FnQueryAppointments = "queryAppointments"
)

// MagicCurrentUser is the token the model uses to mean "the authenticated
// caller". It is substituted server-side; model output is never trusted to
// name a privileged employee id directly.
const MagicCurrentUser = "current_user"

// IsAppointmentFunction reports whether the function belongs to the
// appointment family, which requires a linked account before execution.
func IsAppointmentFunction(name string) bool {
	switch name {
	case FnBookAppointment, FnEditAppointment, FnCancelAppointment, FnQueryAppointments:
		return true
	}
	return false
}

// Declarations returns the tool definitions exposed to the model. Kept
// separate from handler registration so the registry can verify the 1:1
// mapping at startup.
func Declarations() []model.ToolDefinition {
	return []model.ToolDefinition{
		{
			Name:        FnQueryCars,
			Description: "Search the used-car inventory with filters for brand, category, branch, price range, year range, sorting and limit.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"brand":     map[string]any{"type": "string", "description": "Car brand, e.g. Toyota"},
					"category":  map[string]any{"type": "string", "description": "Vehicle category from the catalog"},
					"branch":    map[string]any{"type": "string", "description": "Dealership branch"},
					"min_price": map[string]any{"type": "number", "description": "Minimum price in THB"},
					"max_price": map[string]any{"type": "number", "description": "Maximum price in THB"},
					"min_year":  map[string]any{"type": "integer", "description": "Earliest model year (Gregorian)"},
					"max_year":  map[string]any{"type": "integer", "description": "Latest model year (Gregorian)"},
					"sort_by":   map[string]any{"type": "string", "description": "price_asc, price_desc, year_desc or newest"},
					"limit":     map[string]any{"type": "integer", "description": "Maximum rows to return"},
				},
			},
		},
		{
			Name:        FnBookAppointment,
			Description: "Book a customer appointment. Requires an authenticated staff user.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"customer_name": map[string]any{"type": "string", "description": "Customer full name"},
					"phone":         map[string]any{"type": "string", "description": "Customer phone number"},
					"date":          map[string]any{"type": "string", "description": "Appointment date, YYYY-MM-DD Gregorian"},
					"start_time":    map[string]any{"type": "string", "description": "Start time, HH:MM 24h"},
					"end_time":      map[string]any{"type": "string", "description": "End time, HH:MM 24h; defaults to one hour after start"},
					"branch":        map[string]any{"type": "string", "description": "Branch for the appointment"},
					"note":          map[string]any{"type": "string", "description": "Free-form note"},
				},
				"required": []string{"customer_name", "date", "start_time"},
			},
		},
		{
			Name:        FnEditAppointment,
			Description: "Edit an existing appointment, located by reference id or customer name.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference_id":  map[string]any{"type": "string", "description": "Appointment reference id"},
					"customer_name": map[string]any{"type": "string", "description": "Customer name when no reference id is known"},
					"date":          map[string]any{"type": "string", "description": "New date, YYYY-MM-DD"},
					"start_time":    map[string]any{"type": "string", "description": "New start time, HH:MM"},
					"end_time":      map[string]any{"type": "string", "description": "New end time, HH:MM"},
					"note":          map[string]any{"type": "string", "description": "Replacement note"},
				},
			},
		},
		{
			Name:        FnCancelAppointment,
			Description: "Cancel an appointment by reference id.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reference_id": map[string]any{"type": "string", "description": "Appointment reference id"},
				},
			},
		},
		{
			Name:        FnQueryAppointments,
			Description: "List appointments, optionally filtered by employee, status and date range.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"employee_id": map[string]any{"type": "string", "description": "Employee id, or current_user for the caller"},
					"status":      map[string]any{"type": "string", "description": "Appointment status filter"},
					"date_from":   map[string]any{"type": "string", "description": "Range start, YYYY-MM-DD"},
					"date_to":     map[string]any{"type": "string", "description": "Range end, YYYY-MM-DD"},
				},
			},
		},
	}
}
