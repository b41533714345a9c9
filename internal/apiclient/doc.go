// Package apiclient implements storage.Service against a running
// puppetmask daemon, so the CLI can edit masks held by a remote bucket.
//
// Non-2xx replies are mapped back onto the services error markers:
// 400 validation, 404 not found, 502 external tool, 504 timeout and any
// other failure transient. A 204 from the existing-mask endpoint is the
// explicit "no mask" result.
package apiclient
