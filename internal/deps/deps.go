package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Requirement names an external binary and whether its absence is fatal.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of checking one Requirement. Command holds the
// resolved path when the binary was found.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check resolves a single requirement.
func Check(req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}

// FrameTools describes the binaries used for frame extraction. ffmpeg is
// required. ffprobe only clamps the seek on short recordings, so it is
// optional; a bare "ffprobe" prefers the copy installed next to ffmpeg,
// which keeps static builds unpacked into one directory consistent.
func FrameTools(ffmpeg, ffprobe string) []Requirement {
	ffprobe = strings.TrimSpace(ffprobe)
	if ffprobe == "ffprobe" {
		if sidecar, ok := sidecarOf(ffmpeg, "ffprobe"); ok {
			ffprobe = sidecar
		}
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Required for frame extraction"},
		{Name: "FFprobe", Command: ffprobe, Description: "Clamps the frame seek for short recordings", Optional: true},
	}
}

func sidecarOf(primary, name string) (string, bool) {
	resolved, err := exec.LookPath(strings.TrimSpace(primary))
	if err != nil {
		return "", false
	}
	candidate := filepath.Join(filepath.Dir(resolved), name)
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return candidate, true
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
