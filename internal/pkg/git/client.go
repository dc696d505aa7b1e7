// Package git provides staged-diff extraction and commit execution for CommitCraft.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/commitcraft/commitcraft/internal/pkg/errors"
)

const (
	// CommandTimeout is the default timeout for git commands.
	CommandTimeout = 10 * time.Second
)

// ChangeType represents the type of change in a diff.
type ChangeType int

const (
	ChangeTypeAdded ChangeType = iota
	ChangeTypeModified
	ChangeTypeDeleted
	ChangeTypeRenamed
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdded:
		return "added"
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeDeleted:
		return "deleted"
	case ChangeTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileChange represents one file's staged change.
type FileChange struct {
	Path       string
	ChangeType ChangeType
	Additions  int
	Deletions  int
	Patch      string
	IsBinary   bool
	OldPath    string // For renames, the original file path
}

// Diff is the staged-changes representation consumed by message generation:
// unified-diff text per file plus minimal metadata.
type Diff struct {
	Files          []FileChange
	TotalAdditions int
	TotalDeletions int
}

// ChangedPaths returns the list of changed file paths.
func (d *Diff) ChangedPaths() []string {
	paths := make([]string, len(d.Files))
	for i, f := range d.Files {
		paths[i] = f.Path
	}
	return paths
}

// Unified returns the concatenated unified-diff text of all files.
func (d *Diff) Unified() string {
	var sb strings.Builder
	for _, f := range d.Files {
		sb.WriteString(f.Patch)
	}
	return sb.String()
}

// Client defines the interface for the git operations this tool needs.
type Client interface {
	HasStagedChanges(ctx context.Context) (bool, error)
	StagedDiff(ctx context.Context) (*Diff, error)
	Commit(ctx context.Context, message string) error
}

// DefaultClient implements the Client interface using exec.CommandContext.
type DefaultClient struct {
	// workDir is the working directory for git commands.
	// If empty, uses the current directory.
	workDir string
}

// NewClient creates a new DefaultClient.
func NewClient() *DefaultClient {
	return &DefaultClient{}
}

// NewClientWithWorkDir creates a new DefaultClient with a specific working directory.
func NewClientWithWorkDir(workDir string) *DefaultClient {
	return &DefaultClient{workDir: workDir}
}

// HasStagedChanges checks if there are any staged changes in the repository.
func (c *DefaultClient) HasStagedChanges(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return false, apperrors.Wrap(ctx.Err(), apperrors.ErrGitCommandFailed, "git diff timed out")
		}
		// Exit code 1 means there are differences (staged changes exist)
		if exitErr, ok := err.(*exec.ExitError); ok {
			if exitErr.ExitCode() == 1 {
				return true, nil
			}
		}
		return false, apperrors.NewGitError(err, "")
	}

	return false, nil
}

// StagedDiff returns the staged diff with per-file patches and stats.
func (c *DefaultClient) StagedDiff(ctx context.Context) (*Diff, error) {
	numstat, err := c.run(ctx, "diff", "--cached", "--numstat")
	if err != nil {
		return nil, err
	}

	patch, err := c.run(ctx, "diff", "--cached")
	if err != nil {
		return nil, err
	}

	diff := parseNumstat(numstat)
	attachPatches(diff, patch)
	return diff, nil
}

// Commit creates a commit with the given message using the staged changes.
func (c *DefaultClient) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return apperrors.New(apperrors.ErrInvalidArguments, "commit message cannot be empty")
	}
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// run executes a git subcommand and returns its stdout.
func (c *DefaultClient) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", apperrors.Wrap(ctx.Err(), apperrors.ErrGitCommandFailed, fmt.Sprintf("git %s timed out", args[0]))
		}
		return "", apperrors.NewGitError(err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// parseNumstat parses `git diff --cached --numstat` output.
// Format per line: "<additions>\t<deletions>\t<path>", with "-" for binary files.
func parseNumstat(out string) *Diff {
	diff := &Diff{}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}

		fc := FileChange{Path: fields[2]}

		if fields[0] == "-" || fields[1] == "-" {
			fc.IsBinary = true
		} else {
			fc.Additions, _ = strconv.Atoi(fields[0])
			fc.Deletions, _ = strconv.Atoi(fields[1])
		}

		// Renames come through as "old => new" or "prefix/{old => new}/suffix".
		// Added/deleted status is refined later from the patch headers.
		if strings.Contains(fc.Path, " => ") {
			fc.ChangeType = ChangeTypeRenamed
			fc.OldPath, fc.Path = splitRenamePath(fc.Path)
		} else {
			fc.ChangeType = ChangeTypeModified
		}

		diff.Files = append(diff.Files, fc)
		diff.TotalAdditions += fc.Additions
		diff.TotalDeletions += fc.Deletions
	}

	return diff
}

// splitRenamePath resolves numstat rename notation into (old, new) paths.
func splitRenamePath(p string) (string, string) {
	// Braced form: prefix/{old => new}/suffix
	if open := strings.Index(p, "{"); open >= 0 {
		if close := strings.Index(p, "}"); close > open {
			inner := p[open+1 : close]
			parts := strings.SplitN(inner, " => ", 2)
			if len(parts) == 2 {
				prefix, suffix := p[:open], p[close+1:]
				return prefix + parts[0] + suffix, prefix + parts[1] + suffix
			}
		}
	}
	parts := strings.SplitN(p, " => ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", p
}

// attachPatches splits the full unified diff into per-file patches and
// attaches each to its FileChange. Also fixes up added/deleted detection
// from the patch headers, which numstat alone cannot provide.
func attachPatches(diff *Diff, patch string) {
	if patch == "" {
		return
	}

	sections := splitPatch(patch)
	for i := range diff.Files {
		fc := &diff.Files[i]
		for _, sec := range sections {
			if sec.path == fc.Path || sec.path == fc.OldPath {
				fc.Patch = sec.text
				if sec.newFile {
					fc.ChangeType = ChangeTypeAdded
				} else if sec.deleted {
					fc.ChangeType = ChangeTypeDeleted
				}
				break
			}
		}
	}
}

type patchSection struct {
	path    string
	text    string
	newFile bool
	deleted bool
}

// splitPatch splits unified diff output on "diff --git" boundaries.
func splitPatch(patch string) []patchSection {
	var sections []patchSection

	lines := strings.SplitAfter(patch, "\n")
	var cur *patchSection
	var buf strings.Builder

	flush := func() {
		if cur != nil {
			cur.text = buf.String()
			sections = append(sections, *cur)
		}
		buf.Reset()
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			cur = &patchSection{path: parseDiffGitPath(strings.TrimRight(line, "\n"))}
		}
		if cur != nil {
			buf.WriteString(line)
			if strings.HasPrefix(line, "new file mode") {
				cur.newFile = true
			} else if strings.HasPrefix(line, "deleted file mode") {
				cur.deleted = true
			}
		}
	}
	flush()

	return sections
}

// parseDiffGitPath extracts the b/ path from a "diff --git a/x b/x" line.
func parseDiffGitPath(line string) string {
	idx := strings.LastIndex(line, " b/")
	if idx < 0 {
		return ""
	}
	return line[idx+3:]
}
