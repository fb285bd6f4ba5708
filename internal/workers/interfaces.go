// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to return quickly and spawn goroutines
// internally for long-running work.
type Worker interface {
	Run()
}

// Refresher is the part of the menu session a refresh worker drives.
type Refresher interface {
	RequestRefresh()
}
