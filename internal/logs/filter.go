package logs

import (
	"encoding/json"
	"fmt"
	"strings"

	"puppetmask/internal/logging"
)

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter narrows JSON log records. The zero Filter matches every line.
// Lines that are not JSON only match the zero Filter.
type Filter struct {
	PuppetID  string
	Component string
	MinLevel  string
}

// Record is the subset of a JSON log line the CLI displays.
type Record struct {
	Time      string `json:"ts"`
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Component string `json:"component"`
	PuppetID  string `json:"puppet_id"`
	EventType string `json:"event_type"`
	Error     string `json:"error"`
}

func (f Filter) empty() bool {
	return f.PuppetID == "" && f.Component == "" && f.MinLevel == ""
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	rec, ok := ParseRecord(line)
	if !ok {
		return false
	}
	if f.PuppetID != "" && rec.PuppetID != f.PuppetID {
		return false
	}
	if f.Component != "" && !strings.EqualFold(rec.Component, f.Component) {
		return false
	}
	if f.MinLevel != "" {
		want, known := levelRank[strings.ToLower(f.MinLevel)]
		if known && levelRank[strings.ToLower(rec.Level)] < want {
			return false
		}
	}
	return true
}

// ParseRecord decodes a JSON log line.
func ParseRecord(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

// Format renders a JSON record as a single human readable line. Non-JSON
// lines are returned unchanged.
func Format(line string) string {
	rec, ok := ParseRecord(line)
	if !ok {
		return line
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s", rec.Time, strings.ToUpper(rec.Level))
	if rec.Component != "" {
		fmt.Fprintf(&b, " [%s]", rec.Component)
	}
	b.WriteString(" " + rec.Message)
	if rec.PuppetID != "" {
		fmt.Fprintf(&b, " %s=%s", logging.FieldPuppetID, rec.PuppetID)
	}
	if rec.EventType != "" {
		fmt.Fprintf(&b, " %s=%s", logging.FieldEventType, rec.EventType)
	}
	if rec.Error != "" {
		fmt.Fprintf(&b, " error=%q", rec.Error)
	}
	return b.String()
}
