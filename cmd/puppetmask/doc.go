// Package main hosts the puppetmask CLI entrypoint and command graph.
//
// Commands work against the local bucket by default. With --server they talk
// to a running daemon over HTTP instead; both paths share the storage.Service
// contract so editing, rendering and history look identical either way.
package main
