// Package domain defines the core business entities for Pagestream.
//
// # Architectural Position
//
// This is the innermost layer of the hexagonal architecture. Every other
// package may import domain; domain imports nothing but the standard
// library.
//
// # Contents
//
//   - Job, JobResult, BatchSummary: the conversion lifecycle records
//   - PageEvent, PageSet: streamed page reconstruction state
//   - Options: the pass-through conversion option bag
//   - RemoteDocument: a document as reported by the conversion service
//   - Error taxonomy: typed errors for each conversion phase
//
// # Import Rules
//
//   - Can Import: standard library only
//   - Cannot Import: Any other internal package, any third-party package
package domain
