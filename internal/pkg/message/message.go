// Package message provides the conventional commit message model for CommitCraft.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidCommitTypes contains all valid Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxDescriptionLength is the maximum length for the commit header line.
const MaxDescriptionLength = 72

// conventionalCommitRegex matches the Conventional Commits header.
// Format: <type>(<scope>)!: <description>, scope and "!" optional. An
// optional leading gitmoji is tolerated when gitmoji mode is on.
var conventionalCommitRegex = regexp.MustCompile(`^(?:[^\s\w(]+ )?(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)(\([^)]+\))?(!)?:\s*(.+)$`)

// Parse errors. Callers map these to the malformed-response error kind.
var (
	ErrEmptyResponse = errors.New("response is empty")
	ErrNoTypePrefix  = errors.New("first line has no recognizable conventional commit type")
)

// CommitMessage is the normalized output every provider must produce.
// Constructed exactly once per successful backend call and immutable by
// convention afterwards; it is never persisted.
type CommitMessage struct {
	Type           string `json:"type"`
	Scope          string `json:"scope,omitempty"`
	Description    string `json:"description"`
	Body           string `json:"body,omitempty"`
	BreakingChange bool   `json:"breaking_change"`

	// Raw is the unmodified text the provider returned, kept for display
	// and editing. Not part of the wire model.
	Raw string `json:"-"`
}

// Parse parses raw assistant text into a CommitMessage.
// A response whose first line has no recognizable type prefix is an error,
// never silently coerced into a default type.
func Parse(rawText string) (*CommitMessage, error) {
	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	// Models occasionally wrap the message in a code fence.
	trimmed = stripCodeFence(trimmed)

	lines := strings.Split(trimmed, "\n")
	header := strings.TrimSpace(lines[0])

	matches := conventionalCommitRegex.FindStringSubmatch(header)
	if matches == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoTypePrefix, header)
	}

	cm := &CommitMessage{
		Type:           matches[1],
		Scope:          strings.Trim(matches[2], "()"),
		BreakingChange: matches[3] == "!",
		Description:    strings.TrimSpace(matches[4]),
		Raw:            trimmed,
	}

	// Body is everything after the first blank line.
	if len(lines) > 1 {
		body := strings.TrimSpace(strings.Join(lines[1:], "\n"))
		cm.Body = body
		if containsBreakingFooter(body) {
			cm.BreakingChange = true
		}
	}

	return cm, nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag on the opening fence line.
	if idx := strings.Index(s, "\n"); idx >= 0 && !strings.ContainsAny(s[:idx], ":") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// containsBreakingFooter checks for a BREAKING CHANGE footer line.
func containsBreakingFooter(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		upper := strings.ToUpper(strings.TrimSpace(line))
		if strings.HasPrefix(upper, "BREAKING CHANGE:") || strings.HasPrefix(upper, "BREAKING-CHANGE:") {
			return true
		}
	}
	return false
}

// Header formats the commit header line in Conventional Commits format.
func (m *CommitMessage) Header() string {
	var sb strings.Builder
	sb.WriteString(m.Type)
	if m.Scope != "" {
		sb.WriteString("(" + m.Scope + ")")
	}
	if m.BreakingChange && !containsBreakingFooter(m.Body) {
		sb.WriteString("!")
	}
	sb.WriteString(": ")
	sb.WriteString(m.Description)
	return sb.String()
}

// Format returns the full commit message text, ready for git commit.
// A message without a parsed type (a free-form user edit) falls back to
// its raw text.
func (m *CommitMessage) Format() string {
	if m.Type == "" && m.Raw != "" {
		return m.Raw
	}
	if m.Body == "" {
		return m.Header()
	}
	return m.Header() + "\n\n" + m.Body
}

// JSON returns the message as indented JSON for --json output.
func (m *CommitMessage) JSON() (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Validate checks the message against the model invariants.
// Returns one issue per distinct problem found (empty when valid).
func (m *CommitMessage) Validate() []string {
	var issues []string

	if m.Type == "" {
		issues = append(issues, "missing commit type")
	} else if !IsValidCommitType(m.Type) {
		issues = append(issues, "invalid commit type: "+m.Type)
	}

	if m.Description == "" {
		issues = append(issues, "missing commit description")
	}

	if len(m.Header()) > MaxDescriptionLength {
		issues = append(issues, fmt.Sprintf("header line exceeds %d characters", MaxDescriptionLength))
	}

	return issues
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}
