// Package util holds small helpers shared by the config layer and the topology
// sources.
package util

import "os/exec"

// HasCommand reports whether name resolves to an executable. Bare names are
// searched on PATH; names containing a slash are checked directly.
func HasCommand(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
