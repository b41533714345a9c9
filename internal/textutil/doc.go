// Package textutil normalizes puppet identifiers and renders them for
// display.
//
// Identifiers double as bucket directory names, so ValidateID rejects
// anything that could escape the bucket root. DisplayName turns ids like
// "red_fox-02" into "Red Fox 02" using language-aware title casing.
package textutil
