package core

// User identifies the authenticated caller on whose behalf a turn executes.
// It is consumed, not owned, by this engine; authentication happens upstream.
// A nil *User means a guest: tool handlers that mutate business data must
// refuse guests, and query handlers scope guests to nothing.
type User struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
	// CanViewAll grants cross-employee visibility on appointment queries.
	// Without it the query handler forces employee_id to the caller's own,
	// regardless of what the model asked for.
	CanViewAll bool `json:"can_view_all"`
}

// ReferenceData is the catalog of valid filter values embedded into the
// system prompt so the model produces arguments the data layer understands.
type ReferenceData struct {
	Categories []string `json:"categories"`
	Branches   []string `json:"branches"`
}
