package components

import (
	"encoding/json"
	"log"
	"strings"
)

// JSON marshals an object to a JSON string, returning "{}" on error
func JSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARNING] Error marshaling JSON: %v", err)
		return "{}"
	}
	return string(b)
}

// ScriptJSON is JSON safe to place inside a <script> element
func ScriptJSON(v interface{}) string {
	return strings.ReplaceAll(JSON(v), "</", "<\\/")
}
