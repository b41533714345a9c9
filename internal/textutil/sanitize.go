package textutil

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	errEmptyID   = errors.New("puppet id is empty")
	errUnsafeID  = errors.New("puppet id contains path separators or control characters")
	errHiddenID  = errors.New("puppet id must not start with a dot")
	wordReplacer = strings.NewReplacer("_", " ", "-", " ", ".", " ")
)

// ValidateID reports whether id is safe to use as a single bucket path
// segment.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errEmptyID
	}
	if strings.HasPrefix(id, ".") {
		return errHiddenID
	}
	for _, r := range id {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return errUnsafeID
		}
	}
	return nil
}

// DisplayName renders a puppet id as a human-readable title.
func DisplayName(id string) string {
	words := strings.Fields(wordReplacer.Replace(strings.TrimSpace(id)))
	if len(words) == 0 {
		return ""
	}
	// Casers carry state and are not safe for concurrent use.
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
