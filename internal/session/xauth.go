package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists reports whether path names an existing file.
type FileExists func(path string) bool

// Glob matches filepath.Glob.
type Glob func(pattern string) ([]string, error)

// XAuthorityCandidates lists the well-known authority file locations, in
// probe order.
func (c Context) XAuthorityCandidates() []string {
	var out []string
	if c.Home != "" {
		out = append(out, filepath.Join(c.Home, ".Xauthority"))
	}
	out = append(out, fmt.Sprintf("/run/user/%d/gdm/Xauthority", c.UID))
	return out
}

// ResolveXAuthority returns the authority file the X connection should use.
// An explicit XAUTHORITY always wins. Without a DISPLAY there is nothing to
// authenticate against and the result is empty. The process environment is
// never modified.
func (c Context) ResolveXAuthority(exists FileExists, glob Glob) string {
	if c.XAuthority != "" || !c.HasDisplay() {
		return c.XAuthority
	}
	for _, candidate := range c.XAuthorityCandidates() {
		if exists(candidate) {
			return candidate
		}
	}
	// Mutter's XWayland writes a randomly suffixed cookie file.
	if glob != nil {
		matches, err := glob(fmt.Sprintf("/run/user/%d/.mutter-Xwaylandauth.*", c.UID))
		if err == nil && len(matches) > 0 {
			return matches[0]
		}
	}
	return ""
}

// ResolveXAuthorityFS probes the real filesystem.
func (c Context) ResolveXAuthorityFS() string {
	return c.ResolveXAuthority(fileExists, filepath.Glob)
}

// XEnv returns the environment a child process talking to the X server
// should run with: the parent environment with the resolved DISPLAY and
// XAUTHORITY applied.
func (c Context) XEnv(base []string) []string {
	env := append([]string(nil), base...)
	if c.Display != "" {
		env = append(env, "DISPLAY="+c.Display)
	}
	if auth := c.ResolveXAuthorityFS(); auth != "" {
		env = append(env, "XAUTHORITY="+auth)
	}
	return env
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
