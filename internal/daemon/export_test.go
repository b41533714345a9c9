package daemon

import "testing"

// SetMaxBodyBytes lowers the request body cap for the duration of t.
func SetMaxBodyBytes(t testing.TB, n int64) {
	t.Helper()
	prev := maxBodyBytes
	maxBodyBytes = n
	t.Cleanup(func() { maxBodyBytes = prev })
}
