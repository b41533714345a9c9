package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Puppet is one entry of GET /api/puppets.
type Puppet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaskStatusResponse answers GET /api/puppets/{id}/mask.
type MaskStatusResponse struct {
	Exists    bool   `json:"exists"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FrameResponse answers GET /api/puppets/{id}/frame.
type FrameResponse struct {
	FrameData string `json:"frameData"`
	VideoPath string `json:"videoPath,omitempty"`
}

// ExistingMaskResponse answers GET /api/puppets/{id}/existing-mask.
type ExistingMaskResponse struct {
	MaskData string `json:"maskData"`
}

// SaveMaskRequest is the body of POST /api/puppets/{id}/mask.
type SaveMaskRequest struct {
	MaskData string `json:"maskData"`
}

// SaveMaskResponse answers POST /api/puppets/{id}/mask.
type SaveMaskResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// HistoryEntry is one recorded mask save.
type HistoryEntry struct {
	ID         string `json:"id"`
	ObjectPath string `json:"objectPath"`
	SizeBytes  int64  `json:"sizeBytes"`
	SHA256     string `json:"sha256"`
	CreatedAt  string `json:"createdAt"`
}

// HistoryResponse answers GET /api/puppets/{id}/mask/history.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	StartedAt     string             `json:"startedAt,omitempty"`
	BucketDir     string             `json:"bucketDir"`
	HistoryDBPath string             `json:"historyDbPath,omitempty"`
	LockFilePath  string             `json:"lockFilePath"`
	Puppets       int                `json:"puppets"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Checks        []CheckResult      `json:"checks"`
}
