package symptom

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultDisclaimer replaces an empty safety_disclaimer in a model reply.
const DefaultDisclaimer = "This information is educational only and is not a diagnosis. Consult a qualified healthcare professional, and seek emergency care if symptoms are severe."

// ErrProviderUnavailable marks an adapter whose provider failed to initialize.
var ErrProviderUnavailable = errors.New("llm client not available")

// SuggestionResult is the structured reply. JSON tags match the provider
// schema; the HTTP layer renames the reasoning field.
type SuggestionResult struct {
	ProbableConditions   []string `json:"probable_conditions"`
	RecommendedNextSteps []string `json:"recommended_next_steps"`
	SafetyDisclaimer     string   `json:"safety_disclaimer"`
	Reasoning            string   `json:"llm_reasoning_quality"`
}

// Status distinguishes the three ways an invocation can end.
type Status int

const (
	StatusSuccess Status = iota
	StatusProviderUnavailable
	StatusCallFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusProviderUnavailable:
		return "provider_unavailable"
	case StatusCallFailed:
		return "call_failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the typed result of one adapter invocation.
// Result is only meaningful when Status is StatusSuccess; Err is set otherwise.
type Outcome struct {
	Status Status
	Result SuggestionResult
	Err    error
}

// Payload flattens the outcome into the caller-facing shape, substituting
// the matching fallback for the failure variants.
func (o Outcome) Payload() SuggestionResult {
	switch o.Status {
	case StatusSuccess:
		return o.Result.withDefaults()
	case StatusProviderUnavailable:
		return SetupErrorResult()
	default:
		return APIFailureResult(o.Err)
	}
}

// SetupErrorResult is returned when no provider client could be built at startup.
func SetupErrorResult() SuggestionResult {
	return SuggestionResult{
		ProbableConditions:   []string{"Setup Error: LLM Client Not Available"},
		RecommendedNextSteps: []string{"Ensure your API key is correctly set as a GEMINI_API_KEY environment variable."},
		SafetyDisclaimer:     "⚠️ **FATAL ERROR:** The AI service is offline. Seek medical attention if needed.",
		Reasoning:            "Failed to connect to LLM.",
	}
}

// APIFailureResult is returned when the provider call or the reply parsing fails.
func APIFailureResult(err error) SuggestionResult {
	detail := "unknown error"
	if err != nil {
		detail = err.Error()
	}
	return SuggestionResult{
		ProbableConditions: []string{"API Call Failed"},
		RecommendedNextSteps: []string{
			"Error Details: " + detail,
			"Please check your network connection and API key status.",
		},
		SafetyDisclaimer: "⚠️ **ERROR:** The AI service failed to generate a response. Seek immediate medical attention if concerned.",
		Reasoning:        "API Exception encountered.",
	}
}

func (r SuggestionResult) withDefaults() SuggestionResult {
	if r.ProbableConditions == nil {
		r.ProbableConditions = []string{}
	}
	if r.RecommendedNextSteps == nil {
		r.RecommendedNextSteps = []string{}
	}
	// The disclaimer must never reach a user empty.
	if strings.TrimSpace(r.SafetyDisclaimer) == "" {
		r.SafetyDisclaimer = DefaultDisclaimer
	}
	return r
}
