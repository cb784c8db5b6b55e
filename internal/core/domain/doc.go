// Package domain defines the core entities for Paddock.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Circuit, Driver, Constructor, Race, Result: mirrored racing records
//   - Chat, Message: the conversation log consumed by the chat loop
//   - EmbeddingRecord: a stored vector with its source sentence
//   - SyncOptions, SyncReport: inputs and outputs of a sync run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
