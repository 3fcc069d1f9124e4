package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/siamauto/chatcore/core"
)

// buddhistEraOffset converts a Gregorian year to the Thai Buddhist era.
// Customers state years like 2567; filters and bookings run on Gregorian
// dates, so the prompt spells out both calendars.
const buddhistEraOffset = 543

// BuildSystemPrompt assembles the per-turn system prompt from platform
// identity, the current date and the caller-supplied reference catalog.
func BuildSystemPrompt(platform string, now time.Time, ref core.ReferenceData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are the virtual assistant of Siam Auto, a used-car dealership in Thailand. ")
	fmt.Fprintf(&b, "You are answering a customer on the %s channel.\n", platform)
	fmt.Fprintf(&b, "Today is %s (Buddhist era year %d).\n", now.Format("2 January 2006"), now.Year()+buddhistEraOffset)
	b.WriteString("Customers often give dates and years in the Buddhist era; convert them to the Gregorian calendar before filling tool arguments.\n")

	if len(ref.Categories) > 0 {
		fmt.Fprintf(&b, "Valid vehicle categories: %s.\n", strings.Join(ref.Categories, ", "))
	}
	if len(ref.Branches) > 0 {
		fmt.Fprintf(&b, "Branches: %s.\n", strings.Join(ref.Branches, ", "))
	}

	b.WriteString("Answer in the customer's language (Thai or English). ")
	b.WriteString("Use the provided tools for car search and appointment management; never invent inventory or booking data. ")
	b.WriteString("When no tool applies, answer briefly and helpfully.")

	return b.String()
}
