package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"puppetmask/internal/deps"
	"puppetmask/internal/preflight"
	"puppetmask/internal/storage"
	"puppetmask/internal/storage/history"
)

// PNGMediaType is the media type of masks and extracted frames.
const PNGMediaType = "image/png"

var errEmptyPayload = errors.New("empty image payload")

// EncodeDataURL wraps data in a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the bytes of a base64 data URL. A payload without
// the "data:...;base64," prefix is decoded as plain base64.
func DecodeDataURL(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		comma := strings.IndexByte(value, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data url: missing comma")
		}
		if !strings.HasSuffix(value[:comma], ";base64") {
			return nil, fmt.Errorf("malformed data url: only base64 payloads are supported")
		}
		value = value[comma+1:]
	}
	if value == "" {
		return nil, errEmptyPayload
	}
	data, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return data, nil
}

// FormatTime renders t in the API timestamp format; the zero time renders
// as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime parses an API timestamp; "" yields the zero time.
func ParseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateTimeFormat, value)
}

// FromPuppets converts storage puppets to wire form.
func FromPuppets(puppets []storage.Puppet) []Puppet {
	out := make([]Puppet, 0, len(puppets))
	for _, p := range puppets {
		out = append(out, Puppet{ID: p.ID, Name: p.Name})
	}
	return out
}

// ToPuppets converts wire puppets back to storage form.
func ToPuppets(puppets []Puppet) []storage.Puppet {
	out := make([]storage.Puppet, 0, len(puppets))
	for _, p := range puppets {
		out = append(out, storage.Puppet{ID: p.ID, Name: p.Name})
	}
	return out
}

// FromMaskStatus converts a storage status to wire form.
func FromMaskStatus(status storage.MaskStatus) MaskStatusResponse {
	resp := MaskStatusResponse{Exists: status.Exists}
	if status.Exists {
		resp.CreatedAt = FormatTime(status.CreatedAt)
	}
	return resp
}

// ToMaskStatus converts a wire status back to storage form.
func ToMaskStatus(resp MaskStatusResponse) (storage.MaskStatus, error) {
	created, err := ParseTime(resp.CreatedAt)
	if err != nil {
		return storage.MaskStatus{}, fmt.Errorf("parse createdAt: %w", err)
	}
	return storage.MaskStatus{Exists: resp.Exists, CreatedAt: created}, nil
}

// FromHistory converts history entries to wire form.
func FromHistory(entries []history.Entry) HistoryResponse {
	out := HistoryResponse{Entries: make([]HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, HistoryEntry{
			ID:         e.ID,
			ObjectPath: e.ObjectPath,
			SizeBytes:  e.SizeBytes,
			SHA256:     e.SHA256,
			CreatedAt:  FormatTime(e.CreatedAt),
		})
	}
	return out
}

// ToHistory converts wire history back to entries for puppetID.
func ToHistory(puppetID string, resp HistoryResponse) ([]history.Entry, error) {
	out := make([]history.Entry, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		created, err := ParseTime(e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse createdAt: %w", err)
		}
		out = append(out, history.Entry{
			ID:         e.ID,
			PuppetID:   puppetID,
			ObjectPath: e.ObjectPath,
			SizeBytes:  e.SizeBytes,
			SHA256:     e.SHA256,
			CreatedAt:  created,
		})
	}
	return out, nil
}

// FromDependencies converts dependency checks to wire form.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

// FromChecks converts preflight results to wire form.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail}
	}
	return out
}
