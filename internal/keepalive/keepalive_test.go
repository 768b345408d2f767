package keepalive

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stigoleg/stayactive/internal/geometry"
	"github.com/stigoleg/stayactive/internal/logging"
	"github.com/stigoleg/stayactive/internal/motion"
	"github.com/stigoleg/stayactive/internal/platform"
	"github.com/stigoleg/stayactive/internal/platform/platformtest"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// cyclesThenCancel lets n interval waits pass and cancels on the n-th.
func cyclesThenCancel(n int, cancel context.CancelFunc) motion.Sleeper {
	waits := 0
	return func(ctx context.Context, _ time.Duration) error {
		waits++
		if waits >= n {
			cancel()
			return ctx.Err()
		}
		return nil
	}
}

func newKeeper(t *testing.T, b platform.Backend, mode Mode, sleep motion.Sleeper, buf *bytes.Buffer) *Keeper {
	t.Helper()
	rnd := rand.New(rand.NewSource(1))
	mover := motion.NewMover(b, nil, motion.WithSleeper(noSleep), motion.WithRand(rnd))
	return New(b, mover, Config{
		Mode:     mode,
		Interval: time.Second,
		Rand:     rnd,
		Sleep:    sleep,
		Logger:   logging.New(buf, "info"),
	})
}

func TestRunMouseOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	b := platformtest.NewRelative()
	k := newKeeper(t, b, ModeMouseOnly, cyclesThenCancel(3, cancel), &buf)

	assert.Equal(t, StateIdle, k.State())
	require.NoError(t, k.Run(ctx))
	assert.Equal(t, StateStopped, k.State())

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "Mouse moved"))
	assert.Zero(t, strings.Count(out, "Key pressed"))
	assert.Contains(t, out, "Centering not available")
	assert.Contains(t, out, "Keep-alive stopped")

	stats := k.Stats()
	assert.Equal(t, 3, stats.MouseMoves)
	assert.Zero(t, stats.KeyPresses)
	assert.Empty(t, b.Keys())
	assert.Zero(t, b.PositionCalls())
}

func TestRunKeyOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	b := platformtest.NewAbsolute(geometry.Point{X: 10, Y: 10}, geometry.DefaultSize)
	k := newKeeper(t, b, ModeKeyOnly, cyclesThenCancel(4, cancel), &buf)
	require.NoError(t, k.Run(ctx))

	keys := b.Keys()
	require.Len(t, keys, 4)
	for _, key := range keys {
		assert.Contains(t, platform.ModifierKeys, key)
	}
	assert.Empty(t, b.Moves())
	assert.Equal(t, 4, strings.Count(buf.String(), "Key pressed ("))
}

func TestRunBothCentersFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := platformtest.NewAbsolute(geometry.Point{X: 10, Y: 10}, geometry.Size{Width: 1000, Height: 800})
	var actions []Action
	rnd := rand.New(rand.NewSource(5))
	mover := motion.NewMover(b, nil, motion.WithSleeper(noSleep), motion.WithRand(rnd))
	k := New(b, mover, Config{
		Interval: time.Second,
		Rand:     rnd,
		Sleep:    cyclesThenCancel(2, cancel),
		OnAction: func(a Action) { actions = append(actions, a) },
	})
	require.NoError(t, k.Run(ctx))

	require.Len(t, actions, 5)
	assert.Equal(t, ActionCenter, actions[0].Kind)
	assert.Equal(t, ActionMouse, actions[1].Kind)
	assert.Equal(t, ActionKey, actions[2].Kind)
	assert.Equal(t, ActionMouse, actions[3].Kind)
	assert.Equal(t, ActionKey, actions[4].Kind)
	assert.Equal(t, geometry.Point{X: 500, Y: 400}, b.Moves()[0])
	assert.Equal(t, 2, k.Stats().Cycles)
}

func TestActionFailuresDoNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf bytes.Buffer
	b := platformtest.NewRelative()
	b.KeyErr = errors.New("write: resource temporarily unavailable")
	k := newKeeper(t, b, ModeKeyOnly, cyclesThenCancel(3, cancel), &buf)

	assert.Equal(t, SimulationHealthUnknown, k.Stats().Health)
	require.NoError(t, k.Run(ctx))

	stats := k.Stats()
	assert.Equal(t, 3, stats.Failures)
	assert.Equal(t, 3, stats.ConsecutiveFailures)
	assert.Equal(t, 3, stats.Cycles)
	assert.Equal(t, SimulationHealthFailed, stats.Health)
	assert.Contains(t, buf.String(), "failed")
}

func TestHealthRecoversAfterSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := platformtest.NewRelative()
	b.KeyErr = errors.New("write: no such device")
	var cycles int
	sleep := func(ctx context.Context, _ time.Duration) error {
		cycles++
		switch cycles {
		case 2:
			b.KeyErr = nil
		case 3:
			cancel()
		}
		return ctx.Err()
	}
	k := newKeeper(t, b, ModeKeyOnly, sleep, &bytes.Buffer{})
	require.NoError(t, k.Run(ctx))

	stats := k.Stats()
	assert.Equal(t, 2, stats.Failures)
	assert.Zero(t, stats.ConsecutiveFailures)
	assert.Equal(t, SimulationHealthOK, stats.Health)
	assert.Equal(t, 1, stats.KeyPresses)
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := platformtest.NewRelative()
	k := newKeeper(t, b, ModeBoth, noSleep, &bytes.Buffer{})
	require.NoError(t, k.Run(ctx))
	assert.Empty(t, b.Keys())
	assert.Equal(t, StateStopped, k.State())
}

func TestRunOnlyOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := newKeeper(t, platformtest.NewRelative(), ModeBoth, noSleep, &bytes.Buffer{})
	require.NoError(t, k.Run(ctx))
	assert.ErrorIs(t, k.Run(ctx), ErrAlreadyRunning)
}

func TestRunStopsDuringInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := platformtest.NewRelative()
	k := New(b, motion.NewMover(b, nil, motion.WithSleeper(noSleep)), Config{
		Mode:     ModeKeyOnly,
		Interval: time.Hour,
	})

	done := make(chan error, 1)
	go func() { done <- k.Run(ctx) }()

	require.Eventually(t, func() bool { return len(b.Keys()) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, StateStopped, k.State())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "failing", SimulationHealthFailed.String())
	assert.Equal(t, "unknown", SimulationHealthUnknown.String())
	assert.Equal(t, "mouse only", ModeMouseOnly.String())
	assert.Equal(t, "mouse and keyboard", ModeBoth.String())
	assert.True(t, ModeBoth.Mouse() && ModeBoth.Keyboard())
	assert.False(t, ModeKeyOnly.Mouse())
	assert.Equal(t, "Key pressed (Alt)", Action{Kind: ActionKey, Key: platform.KeyAlt}.String())
	assert.Equal(t, "Mouse moved", Action{Kind: ActionMouse}.String())
}
