package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/dealer"
)

// Fixed user-facing responses for the appointment mutation handlers. The
// collaborator's own summary wins when it provides one.
const (
	LoginRequiredMessage        = "กรุณาเข้าสู่ระบบก่อนทำรายการนัดหมายค่ะ"
	BookingFallbackMessage      = "จองนัดหมายเรียบร้อยแล้วค่ะ"
	BookingFailedMessage        = "ไม่สามารถทำรายการนัดหมายได้ กรุณาลองใหม่อีกครั้งค่ะ"
	CancelNeedsReferenceMessage = "กรุณาระบุหมายเลขอ้างอิงของนัดหมายที่ต้องการยกเลิกค่ะ"
	EditNeedsTargetMessage      = "กรุณาระบุหมายเลขอ้างอิงหรือชื่อลูกค้าของนัดหมายที่ต้องการแก้ไขค่ะ"
)

// defaultAppointmentDuration applies when the model supplies no end time.
const defaultAppointmentDuration = time.Hour

// Appointments are local to the dealership; avoid a tzdata dependency.
var bangkok = time.FixedZone("ICT", 7*60*60)

// BookAppointmentTool creates bookings through the collaborator. Booking is
// forbidden for guests: the durability boundary for business effects lives
// downstream, but authorization is enforced here before any network call.
type BookAppointmentTool struct {
	svc dealer.Service
}

// NewBookAppointmentTool constructs the handler for bookAppointment.
func NewBookAppointmentTool(svc dealer.Service) *BookAppointmentTool {
	return &BookAppointmentTool{svc: svc}
}

// Name implements Tool.
func (t *BookAppointmentTool) Name() string { return FnBookAppointment }

// Parameters implements Tool.
func (t *BookAppointmentTool) Parameters() map[string]any { return declarationFor(FnBookAppointment) }

// Execute implements Tool.
func (t *BookAppointmentTool) Execute(ctx context.Context, args map[string]any, user *core.User) (*core.FunctionResult, error) {
	if user == nil {
		return &core.FunctionResult{
			Success: false,
			Summary: LoginRequiredMessage,
			Error:   "authentication required",
			Kind:    core.KindAppointment,
		}, nil
	}

	start, err := parseDateTime(stringArg(args, "date"), stringArg(args, "start_time"))
	if err != nil {
		return &core.FunctionResult{
			Success: false,
			Summary: BookingFailedMessage,
			Error:   err.Error(),
			Kind:    core.KindAppointment,
		}, nil
	}
	end := start.Add(defaultAppointmentDuration)
	if endTime := stringArg(args, "end_time"); endTime != "" {
		if parsed, err := parseDateTime(stringArg(args, "date"), endTime); err == nil {
			end = parsed
		}
	}

	res, err := t.svc.CreateAppointment(ctx, dealer.AppointmentRequest{
		EmployeeID:   user.EmployeeID,
		CustomerName: stringArg(args, "customer_name"),
		Phone:        stringArg(args, "phone"),
		Branch:       stringArg(args, "branch"),
		Note:         stringArg(args, "note"),
		Start:        start,
		End:          end,
	})
	if err != nil {
		return nil, NewToolError(FnBookAppointment, err.Error(), "EXECUTION_ERROR")
	}
	return mutationToResult(res, BookingFallbackMessage), nil
}

// EditAppointmentTool modifies bookings, resolving the target by reference
// id first and customer name second.
type EditAppointmentTool struct {
	svc dealer.Service
}

// NewEditAppointmentTool constructs the handler for editAppointment.
func NewEditAppointmentTool(svc dealer.Service) *EditAppointmentTool {
	return &EditAppointmentTool{svc: svc}
}

// Name implements Tool.
func (t *EditAppointmentTool) Name() string { return FnEditAppointment }

// Parameters implements Tool.
func (t *EditAppointmentTool) Parameters() map[string]any { return declarationFor(FnEditAppointment) }

// Execute implements Tool.
func (t *EditAppointmentTool) Execute(ctx context.Context, args map[string]any, user *core.User) (*core.FunctionResult, error) {
	if user == nil {
		return &core.FunctionResult{
			Success: false,
			Summary: LoginRequiredMessage,
			Error:   "authentication required",
			Kind:    core.KindAppointment,
		}, nil
	}

	refID := stringArg(args, "reference_id")
	customer := stringArg(args, "customer_name")
	if refID == "" && customer == "" {
		return &core.FunctionResult{
			Success: false,
			Summary: EditNeedsTargetMessage,
			Error:   "missing reference_id and customer_name",
			Kind:    core.KindAppointment,
		}, nil
	}

	edit := dealer.AppointmentEdit{
		ReferenceID:  refID,
		CustomerName: customer,
		Note:         stringArg(args, "note"),
	}
	if date := stringArg(args, "date"); date != "" {
		if startTime := stringArg(args, "start_time"); startTime != "" {
			if start, err := parseDateTime(date, startTime); err == nil {
				edit.Start = &start
				end := start.Add(defaultAppointmentDuration)
				if endTime := stringArg(args, "end_time"); endTime != "" {
					if parsed, err := parseDateTime(date, endTime); err == nil {
						end = parsed
					}
				}
				edit.End = &end
			}
		}
	}

	res, err := t.svc.EditAppointment(ctx, edit)
	if err != nil {
		return nil, NewToolError(FnEditAppointment, err.Error(), "EXECUTION_ERROR")
	}
	return mutationToResult(res, BookingFallbackMessage), nil
}

// CancelAppointmentTool cancels bookings. The reference id is validated
// before any network call.
type CancelAppointmentTool struct {
	svc dealer.Service
}

// NewCancelAppointmentTool constructs the handler for cancelAppointment.
func NewCancelAppointmentTool(svc dealer.Service) *CancelAppointmentTool {
	return &CancelAppointmentTool{svc: svc}
}

// Name implements Tool.
func (t *CancelAppointmentTool) Name() string { return FnCancelAppointment }

// Parameters implements Tool.
func (t *CancelAppointmentTool) Parameters() map[string]any {
	return declarationFor(FnCancelAppointment)
}

// Execute implements Tool.
func (t *CancelAppointmentTool) Execute(ctx context.Context, args map[string]any, user *core.User) (*core.FunctionResult, error) {
	if user == nil {
		return &core.FunctionResult{
			Success: false,
			Summary: LoginRequiredMessage,
			Error:   "authentication required",
			Kind:    core.KindAppointment,
		}, nil
	}

	refID := stringArg(args, "reference_id")
	if refID == "" {
		return &core.FunctionResult{
			Success: false,
			Summary: CancelNeedsReferenceMessage,
			Error:   "missing reference_id",
			Kind:    core.KindAppointment,
		}, nil
	}

	res, err := t.svc.CancelAppointment(ctx, refID)
	if err != nil {
		return nil, NewToolError(FnCancelAppointment, err.Error(), "EXECUTION_ERROR")
	}
	return mutationToResult(res, BookingFallbackMessage), nil
}

// mutationToResult relays the collaborator's summary/error verbatim, with
// fixed fallbacks when it gives none.
func mutationToResult(res *dealer.MutationResult, successFallback string) *core.FunctionResult {
	summary := res.Summary
	if summary == "" {
		if res.Success {
			summary = successFallback
		} else {
			summary = BookingFailedMessage
		}
	}
	out := &core.FunctionResult{
		Success: res.Success,
		Summary: summary,
		Error:   res.Error,
		Kind:    core.KindAppointment,
	}
	if res.ReferenceID != "" {
		out.RawData = []map[string]any{{"reference_id": res.ReferenceID}}
		out.Count = 1
	}
	return out
}

// parseDateTime combines a Gregorian date and 24h time in dealership local time.
func parseDateTime(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, bangkok)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q %q: %w", date, clock, err)
	}
	return t, nil
}
