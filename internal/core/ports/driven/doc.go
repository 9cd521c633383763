// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingProvider: Embeds text, lists and pulls models (Ollama)
//   - VectorIndex: In-memory append-only vector storage and exact search
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChatProvider: Streams chat completions. Without it, chat is disabled.
//   - DocumentStore: Document persistence. Without it, the index cannot be rebuilt.
//   - UsageStore: Per-model token accounting. Without it, usage is not recorded.
//   - PromptStore: Saved prompts. Without it, prompts cannot be saved.
//   - ChatStore: Saved conversations. Without it, chats cannot be saved.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
