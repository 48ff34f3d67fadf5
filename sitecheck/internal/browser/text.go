package browser

import (
	"encoding/json"
	"strings"
)

// remoteText renders one console argument the way DevTools prints it:
// strings verbatim, objects and numbers by their description, and other
// primitives by their JSON value.
func remoteText(typ, description, unserializable string, raw []byte) string {
	if typ == "string" {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if description != "" {
		return description
	}
	if unserializable != "" {
		return unserializable
	}
	if len(raw) == 0 {
		return typ
	}
	return string(raw)
}

// joinArgs joins rendered console arguments with single spaces.
func joinArgs(parts []string) string {
	return strings.Join(parts, " ")
}

// exceptionText extracts the message of an uncaught exception. The
// description of an Error carries the stack after the first line; only
// the "Name: message" line is kept. Thrown non-Error values fall back to
// their rendered value, then to the CDP summary text.
func exceptionText(summary, description, value string) string {
	if description != "" {
		if i := strings.IndexByte(description, '\n'); i >= 0 {
			description = description[:i]
		}
		return strings.TrimSpace(description)
	}
	if value != "" {
		return value
	}
	return summary
}
