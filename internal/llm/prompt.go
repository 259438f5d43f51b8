package llm

import "strings"

// Verdict markers the backend is instructed to end its reply with. The
// validation policy only ever checks for the reject marker; these exact
// tokens are the wire contract with the backend.
const (
	AcceptMarker = "MODEL_VALID"
	RejectMarker = "MODEL_INVALID"
)

// RequestContext carries the human-supplied metadata that accompanies an
// uploaded model. It is threaded read-only through every analysis call for
// one request.
type RequestContext struct {
	Description       string
	SetupInstructions string
}

// BuildValidationPrompt composes the grading prompt: the code under review,
// the uploader's description and setup instructions, the grading rubric, a
// leniency instruction, and the verdict marker convention.
func BuildValidationPrompt(code string, meta RequestContext) string {
	var b strings.Builder

	b.WriteString("You are reviewing code submitted as a machine-learning model for publication.\n\n")

	b.WriteString("Model description:\n")
	b.WriteString(meta.Description)
	b.WriteString("\n\nSetup instructions:\n")
	b.WriteString(meta.SetupInstructions)
	b.WriteString("\n\nCode:\n")
	b.WriteString(code)

	b.WriteString("\n\nGrade the submission on:\n")
	b.WriteString("1. Code quality and relevance to the stated description\n")
	b.WriteString("2. Documentation quality\n")
	b.WriteString("3. Consistency between the code, description and setup instructions\n\n")

	b.WriteString("Be lenient: accept working code that matches its stated purpose even if minimal. ")
	b.WriteString("Reject only if the code is non-functional or unrelated to its description.\n\n")

	b.WriteString("End your response with exactly one of: ")
	b.WriteString(AcceptMarker)
	b.WriteString(" if the model should be published, or ")
	b.WriteString(RejectMarker)
	b.WriteString(" if it should be rejected.")

	return b.String()
}
