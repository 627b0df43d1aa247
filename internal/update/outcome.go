package update

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Outcome summarizes one run.
type Outcome struct {
	FoundNext       bool
	DryRun          bool
	Previous        string
	Next            string
	PreviousVersion string
	DerivedVersion  string
	Message         string
	Changed         bool
	Committed       bool
	CommitHash      string
}

// Status is a short machine-readable state.
func (o *Outcome) Status() string {
	switch {
	case !o.FoundNext:
		return "up-to-date"
	case o.DryRun:
		return "pending"
	case o.Committed:
		return "updated"
	default:
		return "unchanged"
	}
}

// HasChanges reports whether the run left a new commit behind.
func (o *Outcome) HasChanges() bool {
	return o.Committed
}

// WriteResult prints the single stdout line consumed by workflows.
func WriteResult(w io.Writer, o *Outcome) error {
	_, err := fmt.Fprintf(w, "has_changes=%t\n", o.HasChanges())

	return err
}

// GitHubOutput renders o in the key=value format of $GITHUB_OUTPUT.
func (o *Outcome) GitHubOutput() string {
	revision := o.Previous
	version := o.PreviousVersion
	if o.FoundNext {
		revision = o.Next
		version = o.DerivedVersion
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "has_changes=%t\n", o.HasChanges())
	fmt.Fprintf(&sb, "status=%s\n", o.Status())
	fmt.Fprintf(&sb, "revision=%s\n", revision)
	fmt.Fprintf(&sb, "mc_version=%s\n", version)
	fmt.Fprintf(&sb, "message=%s\n", singleLine(o.Message))
	if o.CommitHash != "" {
		fmt.Fprintf(&sb, "commit=%s\n", o.CommitHash)
	}

	return sb.String()
}

// AppendGitHubOutput appends o to the file at path.
func AppendGitHubOutput(path string, o *Outcome) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("update: open github output: %w", err)
	}

	if _, err := f.WriteString(o.GitHubOutput()); err != nil {
		_ = f.Close()

		return fmt.Errorf("update: write github output: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("update: close github output: %w", err)
	}

	return nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
