package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProvisioning indicates the embedding model could not be listed or pulled.
	ErrProvisioning = errors.New("model provisioning failed")

	// ErrEmbedding indicates a text could not be embedded.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates a vector whose length differs from the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelNotFound indicates the provider does not have the requested model.
	ErrModelNotFound = errors.New("model not found")

	// ErrProviderUnavailable indicates the provider cannot be reached.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProvisioningError is returned when a model could not be made available.
type ProvisioningError struct {
	Model string
	// Op is the failing step, "list" or "pull".
	Op  string
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision model %q: %s: %v", e.Model, e.Op, e.Err)
}

// Unwrap exposes both ErrProvisioning and the cause to errors.Is.
func (e *ProvisioningError) Unwrap() []error {
	return []error{ErrProvisioning, e.Err}
}

// EmbeddingError is returned when a single text could not be embedded.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed with %q: %v", e.Model, e.Err)
}

// Unwrap exposes both ErrEmbedding and the cause to errors.Is.
func (e *EmbeddingError) Unwrap() []error {
	return []error{ErrEmbedding, e.Err}
}
