// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled and must return promptly afterwards.
//
// Example implementation:
//
//	type MyWorker struct{ interval time.Duration }
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    ticker := time.NewTicker(w.interval)
//	    defer ticker.Stop()
//	    for {
//	        select {
//	        case <-ctx.Done():
//	            return
//	        case <-ticker.C:
//	            // periodic work
//	        }
//	    }
//	}
type Worker interface {
	Run(ctx context.Context)
}
