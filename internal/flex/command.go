// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var errEmptyCommand = errors.New("command is empty")

// RunCommand runs argv in dir and returns its stdout. On failure the error
// joins ErrCommand with the exit status and the captured stderr.
func RunCommand(ctx context.Context, dir string, argv ...string) (string, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return "", errors.Join(ErrCommand, errEmptyCommand)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", commandError(argv, err, stderr.String())
	}

	return stdout.String(), nil
}

func commandError(argv []string, cmdErr error, stderr string) error {
	wrapped := fmt.Errorf("%s: %w", strings.Join(argv, " "), cmdErr)
	stderr = strings.TrimRight(stderr, "\n")
	if stderr != "" {
		wrapped = fmt.Errorf("%w\n%s", wrapped, stderr)
	}

	return errors.Join(ErrCommand, wrapped)
}
