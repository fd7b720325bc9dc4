package cmd

import (
	"os"
	"os/exec"
	"strings"
)

// openInEditor opens path with $EDITOR. Nothing happens when it is unset.
func openInEditor(path string) error {
	fields := strings.Fields(os.Getenv("EDITOR"))
	if len(fields) == 0 {
		return nil
	}
	c := exec.Command(fields[0], append(fields[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
