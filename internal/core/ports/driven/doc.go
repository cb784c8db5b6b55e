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
//   - RaceDataSource: Fetches records from the racing statistics API
//   - RecordStore: Relational persistence of circuits, drivers, constructors, races, results
//   - EmbeddingStore: Embedding table plus the inline row vectors
//   - MessageStore: Chat and message log persistence
//   - StateStore: Small persisted runtime state (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, retrieval and embedding are disabled.
//   - VectorIndex: Vector storage/search (in memory or pgvector).
//   - LLMService: Chat completions. Without it, the conversational loop is disabled.
//   - SchedulerStore: Task state and history. Without it, the scheduler keeps no history.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
