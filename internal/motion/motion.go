// Package motion turns pointer targets into eased sequences of backend
// moves and builds the randomized "wiggle" episodes the scheduler runs.
package motion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform"
)

// StepInterval is the target spacing between pointer updates.
const (
	StepInterval = 10 * time.Millisecond
	MinSteps     = 5
)

// ErrCenteringUnavailable is returned by Center on relative backends.
var ErrCenteringUnavailable = errors.New("centering not available: backend has no absolute pointer position")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MonitorLocator finds the monitor under a point. *topology.Resolver
// implements it.
type MonitorLocator interface {
	MonitorContaining(ctx context.Context, p geometry.Point, fallback geometry.Size) geometry.Rect
}

// Steps returns the number of pointer updates for a move lasting d.
func Steps(d time.Duration) int {
	return max(int(d/StepInterval), MinSteps)
}

// Mover drives a backend.
type Mover struct {
	backend  platform.Backend
	absolute bool
	monitors MonitorLocator
	planner  *Planner
	sleep    Sleeper
	logger   *log.Logger
}

// Option configures a Mover.
type Option func(*Mover)

// WithSleeper replaces the real-time sleeper.
func WithSleeper(s Sleeper) Option {
	return func(m *Mover) { m.sleep = s }
}

// WithRand sets the random source for episode plans.
func WithRand(rnd *rand.Rand) Option {
	return func(m *Mover) { m.planner = NewPlanner(rnd) }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Mover) { m.logger = l }
}

// NewMover creates a Mover. The backend's positioning capability is read
// once here. monitors may be nil, in which case the whole screen is used.
func NewMover(b platform.Backend, monitors MonitorLocator, opts ...Option) *Mover {
	m := &Mover{
		backend:  b,
		absolute: b.SupportsAbsolutePositioning(),
		monitors: monitors,
		sleep:    Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.planner == nil {
		m.planner = NewPlanner(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return m
}

// Absolute reports whether the backend addresses absolute coordinates.
func (m *Mover) Absolute() bool { return m.absolute }

// SmoothMoveAbsolute glides the pointer from its current position to target.
func (m *Mover) SmoothMoveAbsolute(ctx context.Context, target geometry.Point, d time.Duration, ease geometry.Easing) error {
	start, err := m.backend.Position()
	if err != nil {
		return err
	}
	steps := Steps(d)
	pause := d / time.Duration(steps)
	for i := 1; i <= steps; i++ {
		t := ease(float64(i) / float64(steps))
		p := geometry.Point{
			X: geometry.Lerp(start.X, target.X, t),
			Y: geometry.Lerp(start.Y, target.Y, t),
		}
		if err := m.backend.MovePointer(p); err != nil {
			return err
		}
		if err := m.sleep(ctx, pause); err != nil {
			return err
		}
	}
	return nil
}

// SmoothMoveRelative moves the pointer by total in eased increments. Each
// step emits the rounded cumulative target minus what was already sent, so
// the deltas sum to total exactly.
func (m *Mover) SmoothMoveRelative(ctx context.Context, total geometry.Point, d time.Duration, ease geometry.Easing) error {
	steps := Steps(d)
	pause := d / time.Duration(steps)
	var sent geometry.Point
	for i := 1; i <= steps; i++ {
		t := ease(float64(i) / float64(steps))
		want := geometry.Point{
			X: int(math.Round(float64(total.X) * t)),
			Y: int(math.Round(float64(total.Y) * t)),
		}
		delta := geometry.Point{X: want.X - sent.X, Y: want.Y - sent.Y}
		if delta.X != 0 || delta.Y != 0 {
			if err := m.backend.MovePointer(delta); err != nil {
				return err
			}
			sent = want
		}
		if err := m.sleep(ctx, pause); err != nil {
			return err
		}
	}
	return nil
}

// Episode runs one randomized wiggle and returns the pointer near where it
// started.
func (m *Mover) Episode(ctx context.Context) error {
	plan := m.planner.Plan()
	if m.absolute {
		return m.absoluteEpisode(ctx, plan)
	}
	return m.relativeEpisode(ctx, plan)
}

func (m *Mover) absoluteEpisode(ctx context.Context, plan Plan) error {
	start, err := m.backend.Position()
	if err != nil {
		return err
	}
	mon := m.monitorFor(ctx, start)
	for _, sm := range plan.Moves {
		target := mon.Clamp(geometry.Point{X: start.X + sm.Offset.X, Y: start.Y + sm.Offset.Y})
		if err := m.SmoothMoveAbsolute(ctx, target, sm.Duration, sm.Easing); err != nil {
			return err
		}
		if err := m.sleep(ctx, sm.Pause); err != nil {
			return err
		}
	}
	home := mon.Clamp(geometry.Point{
		X: start.X + plan.Return.Offset.X,
		Y: start.Y + plan.Return.Offset.Y,
	})
	return m.SmoothMoveAbsolute(ctx, home, plan.Return.Duration, plan.Return.Easing)
}

// relativeEpisode cannot observe the pointer, so it tracks the net delta of
// the wandering legs and undoes it in the return leg.
func (m *Mover) relativeEpisode(ctx context.Context, plan Plan) error {
	var net geometry.Point
	for _, sm := range plan.Moves {
		if err := m.SmoothMoveRelative(ctx, sm.Offset, sm.Duration, sm.Easing); err != nil {
			return err
		}
		net.X += sm.Offset.X
		net.Y += sm.Offset.Y
		if err := m.sleep(ctx, sm.Pause); err != nil {
			return err
		}
	}
	// Undo the net delta, then land within the return jitter of the start.
	back := geometry.Point{X: plan.Return.Offset.X - net.X, Y: plan.Return.Offset.Y - net.Y}
	return m.SmoothMoveRelative(ctx, back, plan.Return.Duration, plan.Return.Easing)
}

// Center warps the pointer to the middle of the monitor it is on.
func (m *Mover) Center(ctx context.Context) error {
	if !m.absolute {
		return ErrCenteringUnavailable
	}
	cur, err := m.backend.Position()
	if err != nil {
		return fmt.Errorf("center pointer: %w", err)
	}
	c := m.monitorFor(ctx, cur).Center()
	if err := m.backend.MovePointer(c); err != nil {
		return fmt.Errorf("center pointer: %w", err)
	}
	return nil
}

func (m *Mover) monitorFor(ctx context.Context, p geometry.Point) geometry.Rect {
	screen, err := m.backend.ScreenSize()
	if err != nil {
		screen = geometry.DefaultSize
	}
	if m.monitors == nil {
		return geometry.RectAtOrigin(screen)
	}
	mon := m.monitors.MonitorContaining(ctx, p, screen)
	if m.logger != nil {
		m.logger.Debug("monitor for pointer", "pointer", p, "monitor", mon)
	}
	return mon
}
