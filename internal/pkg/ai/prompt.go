// Package ai provides the AI provider interface and backend implementations
// for CommitCraft.
package ai

import (
	"bytes"
	"text/template"

	"github.com/commitcraft/commitcraft/internal/pkg/git"
)

// DefaultSystemPrompt is the fixed system instruction, reused verbatim
// across every backend.
const DefaultSystemPrompt = `You are an expert at writing semantic git commit messages.

Format Requirements:
- Use Conventional Commits format: <type>(<scope>): <description>
- Types: feat, fix, docs, style, refactor, test, chore, perf, ci, build, revert
- Description: imperative mood, no period, header line max 72 characters
- Body: optional, explain what and why (not how)
- Mark breaking changes with "!" after the type/scope or a "BREAKING CHANGE:" footer

Rules:
1. Be concise and specific
2. Focus on the "what" and "why", not the "how"
3. Use present tense ("add" not "added")
4. First line should be a standalone summary
5. Separate description from body with a blank line

Output only the commit message, no explanations.`

// DefaultUserPromptTemplate is the default user prompt template.
const DefaultUserPromptTemplate = `Generate a commit message for these staged changes:

Files changed: {{len .Files}} (+{{.TotalAdditions}} -{{.TotalDeletions}})
{{range .Files}}- {{.Path}} ({{.ChangeType}}, +{{.Additions}} -{{.Deletions}})
{{end}}
{{- if .Summarized}}
The diff is too large to include in full. Write the message from the file
list and change counts above.
{{- else}}
Diff:
{{range .Files}}{{.Patch}}{{end}}
{{- end}}
{{- if .Gitmoji}}

Prefix the commit header with a single fitting gitmoji (for example
"✨ feat: ..." or "🐛 fix: ...").
{{- end}}
{{- if .PreviousAttempt}}

Previous attempt (user requested a different message):
{{.PreviousAttempt}}
{{- end}}`

// PromptTemplate handles prompt generation for AI providers.
type PromptTemplate struct {
	SystemPrompt string
	UserPrompt   string
	tmpl         *template.Template
}

// PromptData contains the data used to render the user prompt template.
type PromptData struct {
	Files           []git.FileChange
	TotalAdditions  int
	TotalDeletions  int
	Summarized      bool
	Gitmoji         bool
	PreviousAttempt string
}

// NewPromptTemplate creates a new PromptTemplate with default prompts.
func NewPromptTemplate() *PromptTemplate {
	return &PromptTemplate{
		SystemPrompt: DefaultSystemPrompt,
		UserPrompt:   DefaultUserPromptTemplate,
	}
}

// NewPromptTemplateWithCustom creates a new PromptTemplate with custom prompts.
// If systemPrompt or userPrompt is empty, the default is used.
func NewPromptTemplateWithCustom(systemPrompt, userPrompt string) *PromptTemplate {
	pt := NewPromptTemplate()
	if systemPrompt != "" {
		pt.SystemPrompt = systemPrompt
	}
	if userPrompt != "" {
		pt.UserPrompt = userPrompt
	}
	return pt
}

// RenderUserPrompt renders the user prompt template with the given data.
func (pt *PromptTemplate) RenderUserPrompt(data *PromptData) (string, error) {
	if pt.tmpl == nil {
		tmpl, err := template.New("userPrompt").Parse(pt.UserPrompt)
		if err != nil {
			return "", err
		}
		pt.tmpl = tmpl
	}

	var buf bytes.Buffer
	if err := pt.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// GetSystemPrompt returns the system prompt.
func (pt *PromptTemplate) GetSystemPrompt() string {
	return pt.SystemPrompt
}

// BuildPromptData creates PromptData from a GenerateRequest.
func BuildPromptData(req *GenerateRequest) *PromptData {
	return &PromptData{
		Files:           req.Diff.Diff.Files,
		TotalAdditions:  req.Diff.Diff.TotalAdditions,
		TotalDeletions:  req.Diff.Diff.TotalDeletions,
		Summarized:      req.Diff.Summarized,
		Gitmoji:         req.Gitmoji,
		PreviousAttempt: req.PreviousAttempt,
	}
}
