package topology

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/xgb/randr"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/xconn"
)

// RandRSource queries the RandR extension directly over a short-lived X
// connection. It covers systems where the xrandr binary is not installed.
//
// xgb cannot abandon a handshake, so a query against a stalled server keeps
// running after Monitors has given up on it. At most one such query is in
// flight; further calls fail fast until it finishes.
type RandRSource struct {
	Display   string
	Authority string
	// Timeout bounds each query. Zero means DefaultTimeout.
	Timeout time.Duration

	pending atomic.Bool
}

func (s *RandRSource) Name() string { return "randr" }

func (s *RandRSource) Monitors(parent context.Context) ([]geometry.Rect, error) {
	if !s.pending.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("previous randr query still pending: %w", ErrResolution)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	type result struct {
		monitors []geometry.Rect
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer s.pending.Store(false)
		m, err := s.query()
		done <- result{m, err}
	}()

	select {
	case r := <-done:
		return r.monitors, r.err
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("randr timed out after %v: %w", timeout, ErrResolution)
	}
}

func (s *RandRSource) query() ([]geometry.Rect, error) {
	xu, err := xconn.Dial(xconn.Options{Display: s.Display, Authority: s.Authority})
	if err != nil {
		return nil, err
	}
	defer xu.Conn().Close()

	X := xu.Conn()
	if err := randr.Init(X); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(X, xu.RootWin()).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []geometry.Rect
	for _, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(X, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTCs report a zero size or no outputs.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}
		monitors = append(monitors, geometry.Rect{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}
