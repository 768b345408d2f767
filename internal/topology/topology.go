// Package topology discovers the monitor layout of the running desktop.
//
// Each display server exposes its layout differently, so the resolver walks
// an ordered chain of sources and takes the first non-empty answer. Nothing
// is cached: monitors can be hot-plugged or reconfigured between two cycles.
package topology

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/session"
)

// ErrResolution marks a single source failing or returning nothing.
var ErrResolution = errors.New("monitor resolution failed")

// Source is one way of asking the desktop for its monitors.
type Source interface {
	Name() string
	Monitors(ctx context.Context) ([]geometry.Rect, error)
}

// Resolver walks the source chain.
type Resolver struct {
	sources []Source
	logger  *log.Logger
}

// NewResolver builds the chain appropriate for sess:
// kscreen-doctor on KDE Wayland, the Mutter helper on GNOME Wayland, then
// xrandr and the in-process RandR query everywhere. timeout bounds the
// in-process query; subprocess sources are bounded by the runner.
func NewResolver(sess session.Context, runner Runner, helper []string, timeout time.Duration, logger *log.Logger) *Resolver {
	var sources []Source
	if sess.IsWayland() {
		switch sess.Desktop {
		case session.DesktopKDE:
			sources = append(sources, &KScreenSource{Runner: runner})
		case session.DesktopGNOME:
			if len(helper) > 0 {
				sources = append(sources, &MutterSource{Runner: runner, Command: helper})
			}
		}
	}
	sources = append(sources, &XrandrSource{Runner: runner})
	if sess.HasDisplay() {
		sources = append(sources, &RandRSource{
			Display:   sess.Display,
			Authority: sess.ResolveXAuthorityFS(),
			Timeout:   timeout,
		})
	}
	return NewResolverWithSources(logger, sources...)
}

// NewResolverWithSources builds a resolver over an explicit chain.
func NewResolverWithSources(logger *log.Logger, sources ...Source) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

// Sources returns the names of the sources in chain order.
func (r *Resolver) Sources() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}

// Monitors returns the first non-empty monitor list in the chain, or nil.
func (r *Resolver) Monitors(ctx context.Context) []geometry.Rect {
	monitors, _, _ := r.Resolve(ctx)
	return monitors
}

// Resolve is Monitors plus the name of the winning source. When every source
// fails the error joins each failure.
func (r *Resolver) Resolve(ctx context.Context) ([]geometry.Rect, string, error) {
	var errs []error
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		monitors, err := src.Monitors(ctx)
		if err == nil {
			monitors = validOnly(monitors)
			if len(monitors) == 0 {
				err = fmt.Errorf("%s: no monitors reported: %w", src.Name(), ErrResolution)
			}
		} else if !errors.Is(err, ErrResolution) {
			err = fmt.Errorf("%s: %w: %w", src.Name(), ErrResolution, err)
		}
		if err != nil {
			r.debug("source failed", "source", src.Name(), "err", err)
			errs = append(errs, err)
			continue
		}
		r.debug("monitors resolved", "source", src.Name(), "count", len(monitors))
		return monitors, src.Name(), nil
	}
	return nil, "", errors.Join(errs...)
}

// MonitorContaining returns the monitor that contains p. When resolution
// yields nothing, or p lies outside every monitor, it returns a rectangle at
// the origin sized fallback.
func (r *Resolver) MonitorContaining(ctx context.Context, p geometry.Point, fallback geometry.Size) geometry.Rect {
	return Containing(r.Monitors(ctx), p, fallback)
}

// Containing is the pure lookup behind MonitorContaining.
func Containing(monitors []geometry.Rect, p geometry.Point, fallback geometry.Size) geometry.Rect {
	for _, m := range monitors {
		if m.Contains(p) {
			return m
		}
	}
	return geometry.RectAtOrigin(fallback)
}

func (r *Resolver) debug(msg string, keyvals ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, keyvals...)
	}
}

func validOnly(in []geometry.Rect) []geometry.Rect {
	out := in[:0:0]
	for _, m := range in {
		if m.Valid() {
			out = append(out, m)
		}
	}
	return out
}
