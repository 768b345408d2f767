package topology

import (
	"context"
	"regexp"
	"strings"

	"github.com/stigoleg/stayactive/internal/geometry"
)

var xrandrGeometry = regexp.MustCompile(`(\d+)x(\d+)\+(\d+)\+(\d+)`)

// XrandrSource parses `xrandr --query`. It works on X11 and XWayland.
type XrandrSource struct {
	Runner Runner
}

func (s *XrandrSource) Name() string { return "xrandr" }

func (s *XrandrSource) Monitors(ctx context.Context) ([]geometry.Rect, error) {
	out, err := s.Runner.Run(ctx, "xrandr", "--query")
	if err != nil {
		return nil, err
	}
	return ParseXrandr(string(out)), nil
}

// ParseXrandr reads the WxH+X+Y token of every connected output line.
// Connected outputs without an active mode carry no geometry and are skipped.
func ParseXrandr(output string) []geometry.Rect {
	var monitors []geometry.Rect
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, " connected ") {
			continue
		}
		m := xrandrGeometry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		monitors = append(monitors, geometry.Rect{
			Width:  atoi(m[1]),
			Height: atoi(m[2]),
			X:      atoi(m[3]),
			Y:      atoi(m[4]),
		})
	}
	return monitors
}
