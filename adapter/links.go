package adapter

import (
	"encoding/json"
	"net/url"
	"strings"
)

// liffHost is LINE's in-app browser entry point.
const liffHost = "https://liff.line.me"

// CarSearchURL builds the "view all results" deep link. The resolved query
// travels URL-encoded in the q parameter so the listing page replays the
// exact search. When a LIFF id is configured the link opens inside LINE;
// otherwise it falls back to the public website.
func CarSearchURL(baseURL, liffID string, query map[string]any) string {
	encoded, err := json.Marshal(query)
	if err != nil {
		encoded = []byte("{}")
	}
	q := url.QueryEscape(string(encoded))

	if liffID != "" {
		return liffHost + "/" + liffID + "?q=" + q
	}
	return strings.TrimSuffix(baseURL, "/") + "/cars?q=" + q
}
