// Package deps checks that the external binaries used for frame extraction
// are installed.
package deps
