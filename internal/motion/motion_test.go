package motion

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/platform/platformtest"
	"github.com/stigoleg/stayactive/internal/topology"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

type staticMonitors []geometry.Rect

func (s staticMonitors) MonitorContaining(_ context.Context, p geometry.Point, fallback geometry.Size) geometry.Rect {
	return topology.Containing(s, p, fallback)
}

func TestSteps(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 5},
		{20 * time.Millisecond, 5},
		{50 * time.Millisecond, 5},
		{60 * time.Millisecond, 6},
		{500 * time.Millisecond, 50},
		{795 * time.Millisecond, 79},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Steps(tt.d), "duration %v", tt.d)
	}
}

func TestSmoothMoveAbsoluteReachesTarget(t *testing.T) {
	for i, ease := range geometry.Easings {
		b := platformtest.NewAbsolute(geometry.Point{X: 100, Y: 100}, geometry.DefaultSize)
		m := NewMover(b, nil, WithSleeper(noSleep))

		target := geometry.Point{X: 400, Y: 20}
		require.NoError(t, m.SmoothMoveAbsolute(context.Background(), target, 300*time.Millisecond, ease))

		moves := b.Moves()
		assert.Len(t, moves, 30, "easing %d", i)
		assert.Equal(t, target, b.Pointer(), "easing %d", i)
	}
}

func TestSmoothMoveRelativeSumsExactly(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		total := geometry.Point{X: rnd.Intn(601) - 300, Y: rnd.Intn(401) - 200}
		d := time.Duration(rnd.Intn(800)) * time.Millisecond
		ease := geometry.RandomEasing(rnd)

		b := platformtest.NewRelative()
		m := NewMover(b, nil, WithSleeper(noSleep))
		require.NoError(t, m.SmoothMoveRelative(context.Background(), total, d, ease))

		assert.Equal(t, total, b.Pointer(), "total %v over %v", total, d)
		for _, mv := range b.Moves() {
			assert.False(t, mv.X == 0 && mv.Y == 0, "zero delta emitted")
		}
	}
}

func TestSmallRelativeMoveIsNotLost(t *testing.T) {
	b := platformtest.NewRelative()
	m := NewMover(b, nil, WithSleeper(noSleep))
	require.NoError(t, m.SmoothMoveRelative(context.Background(), geometry.Point{X: 3, Y: -2}, 700*time.Millisecond, geometry.EaseInOutSine))
	assert.Equal(t, geometry.Point{X: 3, Y: -2}, b.Pointer())
}

func TestRelativeEpisodeNeverQueriesPosition(t *testing.T) {
	b := platformtest.NewRelative()
	m := NewMover(b, nil, WithSleeper(noSleep), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, m.Episode(context.Background()))
	assert.Zero(t, b.PositionCalls())
	assert.NotEmpty(t, b.Moves())
}

func TestRelativeEpisodeReturnsNearStart(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		plan := NewPlanner(rand.New(rand.NewSource(seed))).Plan()

		b := platformtest.NewRelative()
		m := NewMover(b, nil, WithSleeper(noSleep), WithRand(rand.New(rand.NewSource(seed))))
		require.NoError(t, m.Episode(context.Background()))
		assert.Equal(t, plan.Return.Offset, b.Pointer(), "seed %d", seed)
	}
}

func TestAbsoluteEpisodeStaysOnMonitor(t *testing.T) {
	monitors := staticMonitors{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1080, Height: 1920},
	}
	for seed := int64(0); seed < 20; seed++ {
		start := geometry.Point{X: 1925, Y: 5}
		b := platformtest.NewAbsolute(start, geometry.Size{Width: 3000, Height: 1920})
		m := NewMover(b, monitors, WithSleeper(noSleep), WithRand(rand.New(rand.NewSource(seed))))
		require.NoError(t, m.Episode(context.Background()))

		for _, p := range b.Moves() {
			require.True(t, monitors[1].Contains(p), "seed %d: %v left the monitor", seed, p)
		}
		end := b.Pointer()
		assert.LessOrEqual(t, abs(end.X-start.X), MaxReturnOffset)
		assert.LessOrEqual(t, abs(end.Y-start.Y), MaxReturnOffset)
	}
}

func TestEpisodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := platformtest.NewRelative()
	m := NewMover(b, nil, WithRand(rand.New(rand.NewSource(3))))
	err := m.Episode(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, len(b.Moves()), 1)
}

func TestCenter(t *testing.T) {
	monitors := staticMonitors{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1080, Height: 1920},
	}
	b := platformtest.NewAbsolute(geometry.Point{X: 2000, Y: 500}, geometry.Size{Width: 3000, Height: 1920})
	m := NewMover(b, monitors, WithSleeper(noSleep))
	require.NoError(t, m.Center(context.Background()))
	assert.Equal(t, geometry.Point{X: 2460, Y: 960}, b.Pointer())
}

func TestCenterFallsBackToDefaultSize(t *testing.T) {
	b := platformtest.NewAbsolute(geometry.Point{X: 5000, Y: 5000}, geometry.Size{})
	m := NewMover(b, staticMonitors{}, WithSleeper(noSleep))
	require.NoError(t, m.Center(context.Background()))
	assert.Equal(t, geometry.Point{X: 960, Y: 540}, b.Pointer())
}

func TestCenterRelative(t *testing.T) {
	b := platformtest.NewRelative()
	m := NewMover(b, nil)
	assert.ErrorIs(t, m.Center(context.Background()), ErrCenteringUnavailable)
	assert.Empty(t, b.Moves())
	assert.Zero(t, b.PositionCalls())
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
