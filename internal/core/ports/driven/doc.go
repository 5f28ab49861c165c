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
//   - DocumentLoader: Reads every file of one DocumentKind from a directory
//   - TextSplitter: Splits documents into overlapping chunks
//   - EmbeddingService: Generates vector embeddings
//   - IndexStore: Builds, persists and loads vector indexes
//   - VectorIndex: A loaded, read-only index handle
//   - LLMService: Language model completion
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TranscriptStore: Persists conversation turns. Without it, history ends with the session.
//   - AudioRecorder, Transcriber: Voice input. Without them, questions are typed.
//   - SpeechSynthesizer, AudioPlayer: Voice output. Without them, answers are printed only.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
