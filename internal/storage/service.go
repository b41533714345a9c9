package storage

import (
	"context"
	"time"
)

// Puppet is one calibration subject with at least one camera recording.
type Puppet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaskStatus reports whether a puppet has a saved mask.
type MaskStatus struct {
	Exists    bool      `json:"exists"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// SaveResult describes a stored mask.
type SaveResult struct {
	Success  bool   `json:"success"`
	Location string `json:"url"`
}

// Service is the collaborator boundary the editing session talks to.
// Implementations own transport, caching and per-puppet coalescing.
type Service interface {
	ListPuppets(ctx context.Context) ([]Puppet, error)
	// FetchFrame returns an encoded still image extracted from the puppet's
	// recording.
	FetchFrame(ctx context.Context, puppetID string) ([]byte, error)
	// FetchExistingMask returns the latest saved mask. A puppet without a
	// mask yields (nil, false, nil).
	FetchExistingMask(ctx context.Context, puppetID string) ([]byte, bool, error)
	SaveMask(ctx context.Context, puppetID string, png []byte) (SaveResult, error)
	MaskStatus(ctx context.Context, puppetID string) (MaskStatus, error)
}
