package server

// Server defines the lifecycle of the gate process.
type Server interface {
	// RunServer serves requests and runs background workers until SIGINT,
	// SIGTERM or SIGQUIT, then shuts down gracefully.
	RunServer() error

	// Shutdown stops the HTTP server, waiting for in-flight requests up to
	// the configured timeout.
	Shutdown() error
}
