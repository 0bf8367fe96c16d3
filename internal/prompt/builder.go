// Package prompt builds the system and user instructions sent to the
// answer generator. Building is deterministic: identical inputs always
// produce byte-identical output.
package prompt

import "strings"

// DefaultPersona is the base instruction block used when the caller has
// not supplied a custom system prompt.
const DefaultPersona = `Jesteś ekspertem od rozmów rekrutacyjnych.

ZASADY:
- 2-4 zdania (zwięźle!)
- Konkretne przykłady
- Pozytywny ton
- Po polsku
`

// BuildSystemPrompt combines the interview context into one system
// instruction. A non-empty customSystemPrompt replaces the default
// persona verbatim. The CV, company and position blocks follow in fixed
// order, each emitted only when non-empty. Content is injected as-is;
// length limits are enforced at the transport boundary.
func BuildSystemPrompt(cv, company, position, customSystemPrompt string) string {
	var b strings.Builder

	if customSystemPrompt != "" {
		b.WriteString(customSystemPrompt)
	} else {
		b.WriteString(DefaultPersona)
	}

	if cv != "" {
		b.WriteString("\n\nTWOJE CV:\n")
		b.WriteString(cv)
		b.WriteString("\n")
	}

	if company != "" {
		b.WriteString("\nFIRMA: ")
		b.WriteString(company)
		b.WriteString("\n")
	}

	if position != "" {
		b.WriteString("\nSTANOWISKO: ")
		b.WriteString(position)
		b.WriteString("\n")
	}

	return b.String()
}

// BuildUserPrompt wraps a recruiter question into the fixed answer
// request template.
func BuildUserPrompt(question string) string {
	return "Pytanie rekrutera: " + question + "\n\nWygeneruj profesjonalną odpowiedź:"
}
