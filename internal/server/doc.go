// Package server runs the gate process.
//
// It starts the HTTP server and the background workers under one context
// and shuts both down when a stop signal arrives or the listener fails.
package server
