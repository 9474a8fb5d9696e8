package generate

import (
	"encoding/json"
	"regexp"
)

var embeddedError = regexp.MustCompile(`\{"error":(.*)\}`)

// ParseErrorMessage looks for a JSON object of the form {"error":{...}}
// inside raw and returns its message field. raw is returned unchanged when
// there is no match, the JSON is invalid or the message is empty.
func ParseErrorMessage(raw string) string {
	m := embeddedError.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(m[1]), &body); err != nil || body.Message == "" {
		return raw
	}
	return body.Message
}
