package oc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// preprocess runs the C preprocessor over path with the given -D
// definitions and returns its output.  The lexer consumes the output
// directly, tracking the emitted line markers.
func preprocess(path string, defines []string) (string, error) {
	args := make([]string, 0, len(defines)+1)
	for _, def := range defines {
		args = append(args, "-D"+def)
	}
	args = append(args, path)

	cmd := exec.Command("cpp", args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("cpp %s failed: %w", path, err)
	}
	return stdout.String(), nil
}
