/*
Package symptom turns free-text symptom descriptions into structured
suggestions by delegating to an external language model. Every failure is
absorbed into a fallback payload so callers always receive the same shape.
*/
package symptom

import (
	"context"
	"encoding/json"
	"fmt"

	"SymptomCheck_V0.1/internal/llm"
	"github.com/rs/zerolog"
)

// Adapter holds the read-only provider handle built at startup.
// A nil provider means the client could not be initialized.
type Adapter struct {
	provider llm.Provider
	model    string
}

// NewAdapter wires a provider into the adapter. provider may be nil.
func NewAdapter(provider llm.Provider, model string) *Adapter {
	return &Adapter{provider: provider, model: model}
}

// Available reports whether a provider client was initialized.
func (a *Adapter) Available() bool {
	return a.provider != nil
}

// ProviderName returns the provider's name, or "none".
func (a *Adapter) ProviderName() string {
	if a.provider == nil {
		return "none"
	}
	return a.provider.Name()
}

// Model returns the configured model identifier.
func (a *Adapter) Model() string {
	return a.model
}

// Generate returns suggestions for the given symptoms. It never fails:
// provider problems are replaced by a fallback result.
func (a *Adapter) Generate(ctx context.Context, symptoms string) SuggestionResult {
	return a.Suggest(ctx, symptoms).Payload()
}

// Suggest performs at most one provider call and reports the typed outcome.
func (a *Adapter) Suggest(ctx context.Context, symptoms string) Outcome {
	logger := zerolog.Ctx(ctx)

	if a.provider == nil {
		logger.Error().Msg("LLM client not available, returning setup error payload")
		return Outcome{Status: StatusProviderUnavailable, Err: ErrProviderUnavailable}
	}

	req := llm.Request{
		Model:             a.model,
		Prompt:            BuildPrompt(symptoms),
		SystemInstruction: SystemInstruction,
		ResponseMimeType:  llm.StructuredMimeType,
		Schema:            ResponseSchema,
	}

	logger.Info().
		Str("provider", a.provider.Name()).
		Str("model", a.model).
		Str("schema_version", SchemaVersion).
		Msg("Requesting symptom suggestions")

	text, err := a.provider.Generate(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("An error occurred during LLM API call")
		return Outcome{Status: StatusCallFailed, Err: err}
	}

	result, err := parseResult(logger, text)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse LLM response")
		return Outcome{Status: StatusCallFailed, Err: err}
	}

	return Outcome{Status: StatusSuccess, Result: result}
}

// parseResult decodes the reply text and checks it against ResponseSchema
// before mapping it onto SuggestionResult.
func parseResult(logger *zerolog.Logger, text string) (SuggestionResult, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return SuggestionResult{}, fmt.Errorf("failed to decode structured output: %w", err)
	}
	if err := ResponseSchema.Validate(raw); err != nil {
		return SuggestionResult{}, err
	}
	if missing := ResponseSchema.MissingRequired(raw); len(missing) > 0 {
		logger.Warn().Strs("fields", missing).Msg("LLM response missing required fields, using defaults")
	}

	var result SuggestionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return SuggestionResult{}, fmt.Errorf("failed to map structured output: %w", err)
	}
	return result.withDefaults(), nil
}
