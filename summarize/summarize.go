// Package summarize turns raw tool result sets into short natural-language
// answers via a second, narrower model call. Empty inputs and unknown result
// kinds short-circuit to fixed strings without touching the model, and a
// failed model call degrades to a fixed apology; Summarize never fails.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/siamauto/chatcore/core"
	"github.com/siamauto/chatcore/logging"
	"github.com/siamauto/chatcore/model"
)

// Fixed responses for the short-circuit paths. Thai because that is what
// the dealership's customers read.
const (
	NoResultsMessage   = "ไม่พบข้อมูลที่ตรงกับเงื่อนไขที่ค้นหาค่ะ ลองปรับเงื่อนไขดูนะคะ"
	UnknownKindMessage = "ขออภัยค่ะ ไม่สามารถสรุปข้อมูลประเภทนี้ได้"
	ApologyMessage     = "ขออภัยค่ะ ระบบไม่สามารถสรุปผลได้ในขณะนี้ กรุณาลองใหม่อีกครั้งนะคะ"
)

// maxEmbeddedRecords caps how many records a prompt embeds so a large result
// set cannot blow up prompt size.
const maxEmbeddedRecords = 10

const carTemplate = `You summarize used-car search results for customers of Siam Auto.
The customer asked: %q
Matching cars (JSON, up to %d shown of %d total):
%s

Write a friendly Thai summary. List at most 3 top picks, one per line, each
formatted exactly as: • {brand} {model} ปี {year} ราคา {price} บาท {url}
Keep the detail URL at the end of the line unchanged so it stays clickable.
Close with one short sentence inviting the customer to view the rest.`

const appointmentTemplate = `You summarize appointment records for staff of Siam Auto.
The request was: %q
Appointments (JSON, up to %d shown of %d total):
%s

Write a concise Thai summary, one appointment per line, each formatted exactly
as: • {date} {time} — {customer_name} ({status})
Mention the total count in the first sentence.`

// Options configure a Summarizer.
type Options struct {
	Logger logging.Logger
}

// Summarizer produces natural-language summaries of tool results.
type Summarizer struct {
	model  model.Model
	logger logging.Logger
}

// New constructs a Summarizer around the given model.
func New(m model.Model, optFns ...func(o *Options)) *Summarizer {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Summarizer{model: m, logger: opts.Logger}
}

// Summarize renders records into a short answer. kind selects the prompt
// template (core.KindCar or core.KindAppointment).
func (s *Summarizer) Summarize(ctx context.Context, records []map[string]any, originalQuery, kind string) string {
	if len(records) == 0 {
		return NoResultsMessage
	}

	var template string
	switch kind {
	case core.KindCar:
		template = carTemplate
	case core.KindAppointment:
		template = appointmentTemplate
	default:
		s.logger.Warn("summarize.unknown_kind", "kind", kind)
		return UnknownKindMessage
	}

	if b := model.BudgetFrom(ctx); b != nil {
		if err := b.Increment(); err != nil {
			s.logger.Warn("summarize.budget_exceeded", "error", err.Error())
			return ApologyMessage
		}
	}

	embedded := records
	if len(embedded) > maxEmbeddedRecords {
		embedded = embedded[:maxEmbeddedRecords]
	}
	encoded, err := json.Marshal(embedded)
	if err != nil {
		s.logger.Error("summarize.encode_failed", "error", err.Error())
		return ApologyMessage
	}

	prompt := fmt.Sprintf(template, originalQuery, len(embedded), len(records), string(encoded))
	resp, err := s.model.Generate(ctx, model.Request{
		Latest: core.NewUserMessage(prompt),
	})
	if err != nil {
		s.logger.Error("summarize.model_failed", "kind", kind, "error", err.Error())
		return ApologyMessage
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return ApologyMessage
	}
	return text
}
