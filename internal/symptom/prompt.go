package symptom

import (
	"fmt"

	"SymptomCheck_V0.1/internal/llm"
)

// SchemaVersion identifies the response contract below. Bump it whenever a
// property is added, removed or retyped.
const SchemaVersion = "symptom-suggestion/v1"

// SystemInstruction defines the model's role and constraints.
const SystemInstruction = `You are a helpful, professional, and educational symptom checker AI.
Your responses MUST include: 1) a list of 2-3 probable medical conditions, 2) a list of 2-3 recommended next steps, and 3) a prominent safety disclaimer.
The output must be STRICTLY in JSON format and conform to the supplied response schema.
Prioritize safety and education. Do NOT provide a diagnosis.`

// UserPromptTemplate wraps the raw symptom text (%s).
const UserPromptTemplate = `Based on these symptoms: '%s', suggest possible conditions and next steps with an educational disclaimer.`

// Provider-side property names.
const (
	fieldConditions = "probable_conditions"
	fieldNextSteps  = "recommended_next_steps"
	fieldDisclaimer = "safety_disclaimer"
	fieldReasoning  = "llm_reasoning_quality"
)

// ResponseSchema is the structure the model must return.
var ResponseSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		fieldConditions: {
			Type:        llm.TypeArray,
			Items:       &llm.Schema{Type: llm.TypeString},
			Description: "A list of 2-3 potential conditions based on the symptoms.",
		},
		fieldNextSteps: {
			Type:        llm.TypeArray,
			Items:       &llm.Schema{Type: llm.TypeString},
			Description: "A list of 2-3 specific, safe, and actionable next steps.",
		},
		fieldDisclaimer: {
			Type:        llm.TypeString,
			Description: "A required, prominent, educational safety disclaimer.",
		},
		fieldReasoning: {
			Type:        llm.TypeString,
			Description: "A brief internal note on the complexity of the reasoning applied.",
		},
	},
	Required: []string{fieldConditions, fieldNextSteps, fieldDisclaimer, fieldReasoning},
}

// BuildPrompt embeds the symptom text verbatim.
func BuildPrompt(symptoms string) string {
	return fmt.Sprintf(UserPromptTemplate, symptoms)
}
