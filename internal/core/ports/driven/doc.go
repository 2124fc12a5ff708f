// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Converter: Submits documents and retrieves results from the
//     conversion service
//   - PageStream: Live page events for one submitted job
//   - SinkFactory / OutputSink: Output file persistence
//   - ProgressReporter: Conversion lifecycle reporting
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PageCounter: Local page counting for batch progress totals.
//     Without it, batch progress has no pre-computed page total.
//   - DocumentLister: Remote document listing. Only the list command
//     needs it.
//   - HistoryStore: Run history persistence. Without it, runs are not
//     recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
