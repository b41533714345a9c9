// Package session ties the editing core to a storage collaborator.
//
// Load fetches the frame and any prior mask concurrently, waits for both,
// and only then reconstructs geometry and hands back an editable Session.
// Save rasterizes the current model and uploads it, tracking a
// pending/success/error status. Results that arrive after Close are ignored.
package session
