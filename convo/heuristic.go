package convo

import "strings"

// HeuristicConfig holds the keyword sets driving two cheap decisions per
// turn: whether the incoming text needs history beyond the cache, and
// whether the finished turn is important enough to persist. The lists are
// deployment configuration, not a contract; tune them per channel.
type HeuristicConfig struct {
	HistoryKeywords    []string
	ImportanceKeywords []string
}

// DefaultHeuristicConfig returns the keyword sets observed to work for the
// dealership's Thai/English traffic.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		HistoryKeywords: []string{
			"เมื่อกี้", "ก่อนหน้า", "ที่คุยไว้", "ที่บอกไป", "คันเดิม", "คันที่แล้ว",
			"earlier", "before", "previous", "last time", "that car",
		},
		ImportanceKeywords: []string{
			"จอง", "นัด", "ยกเลิก", "เลื่อน", "มัดจำ", "ซื้อ", "ผ่อน",
			"book", "appointment", "cancel", "reschedule", "deposit", "buy",
		},
	}
}

// NeedsHistory reports whether the text references earlier conversation,
// warranting a store read instead of the cache-only fast path.
func (h HeuristicConfig) NeedsHistory(text string) bool {
	return containsAny(text, h.HistoryKeywords)
}

// IsImportant gates durable persistence. Turns that invoked a tool are
// always important; otherwise the text decides.
func (h HeuristicConfig) IsImportant(userText, responseText string, functionCalled bool) bool {
	if functionCalled {
		return true
	}
	return containsAny(userText, h.ImportanceKeywords) || containsAny(responseText, h.ImportanceKeywords)
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
