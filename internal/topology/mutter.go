package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/godbus/dbus/v5"

	"github.com/stigoleg/stayactive/internal/geometry"
)

const (
	mutterBusName   = "org.gnome.Mutter.DisplayConfig"
	mutterPath      = "/org/gnome/Mutter/DisplayConfig"
	mutterGetState  = mutterBusName + ".GetCurrentState"
	mutterIsCurrent = "is-current"
)

// MutterSource runs the helper process that talks to Mutter's DisplayConfig
// interface and parses the JSON it prints.
type MutterSource struct {
	Runner  Runner
	Command []string
}

func (s *MutterSource) Name() string { return "mutter" }

func (s *MutterSource) Monitors(ctx context.Context) ([]geometry.Rect, error) {
	if len(s.Command) == 0 {
		return nil, fmt.Errorf("mutter helper command not configured: %w", ErrResolution)
	}
	out, err := s.Runner.Run(ctx, s.Command[0], s.Command[1:]...)
	if err != nil {
		return nil, err
	}
	return ParseMutterJSON(out)
}

// mutterRect is the helper's wire format.
type mutterRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ParseMutterJSON decodes the helper output.
func ParseMutterJSON(data []byte) ([]geometry.Rect, error) {
	var raw []mutterRect
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode mutter helper output: %w", err)
	}
	monitors := make([]geometry.Rect, 0, len(raw))
	for _, r := range raw {
		monitors = append(monitors, geometry.Rect{X: r.X, Y: r.Y, Width: r.W, Height: r.H})
	}
	return monitors, nil
}

// WriteMutterJSON is the helper side of ParseMutterJSON.
func WriteMutterJSON(w io.Writer, monitors []geometry.Rect) error {
	raw := make([]mutterRect, 0, len(monitors))
	for _, m := range monitors {
		raw = append(raw, mutterRect{X: m.X, Y: m.Y, W: m.Width, H: m.Height})
	}
	return json.NewEncoder(w).Encode(raw)
}

// D-Bus shapes of org.gnome.Mutter.DisplayConfig.GetCurrentState.

type MutterMonitorSpec struct {
	Connector string
	Vendor    string
	Product   string
	Serial    string
}

type MutterMode struct {
	ID              string
	Width           int32
	Height          int32
	Refresh         float64
	PreferredScale  float64
	SupportedScales []float64
	Properties      map[string]dbus.Variant
}

type MutterMonitor struct {
	Spec       MutterMonitorSpec
	Modes      []MutterMode
	Properties map[string]dbus.Variant
}

type MutterLogicalMonitor struct {
	X          int32
	Y          int32
	Scale      float64
	Transform  uint32
	Primary    bool
	Monitors   []MutterMonitorSpec
	Properties map[string]dbus.Variant
}

// QueryMutter calls GetCurrentState on the session bus and converts the
// logical monitors into desktop rectangles.
func QueryMutter(ctx context.Context) ([]geometry.Rect, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	defer conn.Close()

	var (
		serial   uint32
		monitors []MutterMonitor
		logical  []MutterLogicalMonitor
		props    map[string]dbus.Variant
	)
	obj := conn.Object(mutterBusName, dbus.ObjectPath(mutterPath))
	if err := obj.CallWithContext(ctx, mutterGetState, 0).Store(&serial, &monitors, &logical, &props); err != nil {
		return nil, fmt.Errorf("%s: %w", mutterGetState, err)
	}
	return LogicalRects(monitors, logical), nil
}

// LogicalRects sizes each logical monitor by the current mode of its first
// known physical monitor divided by the logical scale.
func LogicalRects(monitors []MutterMonitor, logical []MutterLogicalMonitor) []geometry.Rect {
	sizes := make(map[string][2]int32, len(monitors))
	for _, pm := range monitors {
		for _, mode := range pm.Modes {
			if isCurrent(mode.Properties) {
				sizes[pm.Spec.Connector] = [2]int32{mode.Width, mode.Height}
				break
			}
		}
	}

	var out []geometry.Rect
	for _, lm := range logical {
		scale := lm.Scale
		if scale <= 0 {
			scale = 1
		}
		for _, spec := range lm.Monitors {
			size, ok := sizes[spec.Connector]
			if !ok {
				continue
			}
			w := int(math.Round(float64(size[0]) / scale))
			h := int(math.Round(float64(size[1]) / scale))
			if rotated(lm.Transform) {
				w, h = h, w
			}
			out = append(out, geometry.Rect{X: int(lm.X), Y: int(lm.Y), Width: w, Height: h})
			break
		}
	}
	return out
}

func isCurrent(props map[string]dbus.Variant) bool {
	v, ok := props[mutterIsCurrent]
	if !ok {
		return false
	}
	current, _ := v.Value().(bool)
	return current
}

// rotated reports whether a wl_output transform turns the output sideways
// (90, 270 and their flipped variants).
func rotated(transform uint32) bool {
	return transform%2 == 1
}
