package topology

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/stigoleg/stayactive/internal/geometry"
)

var (
	ansiEscape       = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	kscreenEnabled   = regexp.MustCompile(`\benabled\b`)
	kscreenConnected = regexp.MustCompile(`\bconnected\b`)
	kscreenGeometry  = regexp.MustCompile(`Geometry:\s*(-?\d+),(-?\d+)\s+(\d+)x(\d+)`)
)

// KScreenSource asks KDE's kscreen-doctor for the output layout.
type KScreenSource struct {
	Runner Runner
}

func (s *KScreenSource) Name() string { return "kscreen-doctor" }

func (s *KScreenSource) Monitors(ctx context.Context) ([]geometry.Rect, error) {
	out, err := s.Runner.Run(ctx, "kscreen-doctor", "--outputs")
	if err != nil {
		return nil, err
	}
	return ParseKScreen(string(out)), nil
}

// ParseKScreen extracts the geometry of every output block that is both
// enabled and connected.
func ParseKScreen(output string) []geometry.Rect {
	output = ansiEscape.ReplaceAllString(output, "")

	var monitors []geometry.Rect
	for _, block := range strings.Split(output, "Output:")[1:] {
		if !kscreenEnabled.MatchString(block) || !kscreenConnected.MatchString(block) {
			continue
		}
		m := kscreenGeometry.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		monitors = append(monitors, geometry.Rect{
			X:      atoi(m[1]),
			Y:      atoi(m[2]),
			Width:  atoi(m[3]),
			Height: atoi(m[4]),
		})
	}
	return monitors
}

// atoi is only fed regexp-validated digits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
