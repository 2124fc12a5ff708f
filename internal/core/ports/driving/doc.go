// Package driving defines interfaces that external actors (CLI, watcher)
// use to interact with core services. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// BatchRunner is implemented in internal/core/services. The read-only
// views (RemoteLister, RunHistory) are satisfied directly by the adapter
// that holds the data.
package driving
