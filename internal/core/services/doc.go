// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The retrieval engine lives here: Provisioner guarantees the embedding
// model is present, RetrievalService ingests and searches, and ChatService
// and DocumentService build on top of it.
package services
