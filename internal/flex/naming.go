package flex

import (
	"fmt"
	"regexp"
	"strings"
)

const shortRevisionLen = 8

var revisionAllowed = regexp.MustCompile(`[a-f0-9]+`)

// ShortRevision returns the leading hex characters of rev used in messages.
func ShortRevision(rev string) string {
	rev = strings.ToLower(strings.TrimSpace(rev))
	if m := revisionAllowed.FindString(rev); m != "" {
		rev = m
	}
	if len(rev) > shortRevisionLen {
		rev = rev[:shortRevisionLen]
	}

	return rev
}

// CommitMessage renders the message used for a dependency bump.
func CommitMessage(dependency, rev, label, version string) string {
	if label == "" {
		return fmt.Sprintf("Update %s to %s (%s)", dependency, ShortRevision(rev), version)
	}

	return fmt.Sprintf("Update %s to %s (%s %s)", dependency, ShortRevision(rev), label, version)
}
