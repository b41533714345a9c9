// Package api defines the JSON wire types shared by the daemon's HTTP API
// and its client.
//
// Image payloads travel as data URLs ("data:image/png;base64,...") so a
// browser can use them directly; DecodeDataURL also accepts bare base64.
// Timestamps use RFC3339 with milliseconds. Field names are camelCase for
// JavaScript consumers.
package api
