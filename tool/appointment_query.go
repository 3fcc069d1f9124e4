package tool

import (
	"context"
	"time"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
)

// NoAppointmentsMessage is the explicit empty-result summary. An empty set
// is a successful query, not an error.
const NoAppointmentsMessage = "ไม่พบนัดหมายตามเงื่อนไขที่เลือกค่ะ"

// QueryAppointmentsTool lists appointments with a server-side permission
// override: a caller without CanViewAll is always scoped to their own
// employee id regardless of what the model asked for, which defuses prompt
// injection and model mistakes alike.
type QueryAppointmentsTool struct {
	svc dealer.Service
}

// NewQueryAppointmentsTool constructs the handler for queryAppointments.
func NewQueryAppointmentsTool(svc dealer.Service) *QueryAppointmentsTool {
	return &QueryAppointmentsTool{svc: svc}
}

// Name implements Tool.
func (t *QueryAppointmentsTool) Name() string { return FnQueryAppointments }

// Parameters implements Tool.
func (t *QueryAppointmentsTool) Parameters() map[string]any {
	return declarationFor(FnQueryAppointments)
}

// Execute implements Tool.
func (t *QueryAppointmentsTool) Execute(ctx context.Context, args map[string]any, user *core.User) (*core.FunctionResult, error) {
	if user == nil {
		return &core.FunctionResult{
			Success: false,
			Summary: LoginRequiredMessage,
			Error:   "authentication required",
			Kind:    core.KindAppointment,
		}, nil
	}

	employeeID := stringArg(args, "employee_id")
	if employeeID == MagicCurrentUser {
		employeeID = user.EmployeeID
	}
	if !user.CanViewAll {
		// Security override: requested id is ignored, not validated.
		employeeID = user.EmployeeID
	}

	filter := dealer.AppointmentFilter{
		EmployeeID: employeeID,
		Status:     stringArg(args, "status"),
	}
	if from := stringArg(args, "date_from"); from != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", from, bangkok); err == nil {
			filter.From = parsed
		}
	}
	if to := stringArg(args, "date_to"); to != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", to, bangkok); err == nil {
			filter.To = parsed.Add(24*time.Hour - time.Second)
		}
	}

	appts, err := t.svc.QueryAppointments(ctx, filter)
	if err != nil {
		return nil, NewToolError(FnQueryAppointments, err.Error(), "EXECUTION_ERROR")
	}

	query := map[string]any{}
	if filter.EmployeeID != "" {
		query["employee_id"] = filter.EmployeeID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.From.IsZero() {
		query["date_from"] = filter.From.Format("2006-01-02")
	}
	if !filter.To.IsZero() {
		query["date_to"] = filter.To.Format("2006-01-02")
	}

	if len(appts) == 0 {
		return &core.FunctionResult{
			Success: true,
			Summary: NoAppointmentsMessage,
			Kind:    core.KindAppointment,
			Query:   query,
		}, nil
	}

	records := make([]map[string]any, 0, len(appts))
	for _, a := range appts {
		records = append(records, appointmentRecord(a))
	}
	return &core.FunctionResult{
		Success: true,
		RawData: records,
		Count:   len(records),
		Kind:    core.KindAppointment,
		Query:   query,
	}, nil
}

// appointmentRecord flattens a booking row for display and summarization.
func appointmentRecord(a dealer.Appointment) map[string]any {
	return map[string]any{
		"reference_id":  a.ReferenceID,
		"employee_id":   a.EmployeeID,
		"customer_name": a.CustomerName,
		"phone":         a.Phone,
		"branch":        a.Branch,
		"status":        a.Status,
		"date":          a.Start.In(bangkok).Format("2006-01-02"),
		"time":          a.Start.In(bangkok).Format("15:04"),
	}
}
