/*
Package llm defines the provider-neutral contract used to ask an external
language model for structured output. Concrete providers live in their own
packages (geminiservice, openaiservice) and translate a Request into their
wire format.
*/
package llm

import "context"

// StructuredMimeType asks the provider for machine-parseable JSON instead of prose.
const StructuredMimeType = "application/json"

// Request is a single structured-output call.
type Request struct {
	// Model is the provider's model identifier. Providers fall back to
	// their configured default when it is empty.
	Model string

	// Prompt is the user turn sent to the model.
	Prompt string

	// SystemInstruction fixes the model's role and output constraints.
	SystemInstruction string

	// ResponseMimeType requests the reply encoding (StructuredMimeType).
	ResponseMimeType string

	// Schema constrains the reply. It is forwarded to the provider and
	// callers should still validate the reply against it.
	Schema *Schema
}

// Provider is a handle to an external model service.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name identifies the provider in logs and health output.
	Name() string

	// Generate performs exactly one call and returns the raw reply text.
	Generate(ctx context.Context, req Request) (string, error)
}
